package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newHealthTestRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestHealthChecker_Liveness(t *testing.T) {
	checker := NewHealthChecker(nil, "test")

	req := httptest.NewRequest("GET", "/healthz", nil)
	rr := httptest.NewRecorder()

	checker.Liveness(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Liveness returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["status"] != StatusHealthy {
		t.Errorf("Expected status %s, got %v", StatusHealthy, response["status"])
	}
	if _, ok := response["timestamp"]; !ok {
		t.Error("Expected timestamp in response")
	}
}

func TestHealthChecker_Readiness(t *testing.T) {
	t.Run("healthy with reachable store", func(t *testing.T) {
		_, client := newHealthTestRedis(t)
		checker := NewHealthChecker(client, "test")

		req := httptest.NewRequest("GET", "/readyz", nil)
		rr := httptest.NewRecorder()
		checker.Readiness(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("Readiness returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
		}

		var status HealthStatus
		if err := json.NewDecoder(rr.Body).Decode(&status); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if status.Status != StatusHealthy {
			t.Errorf("Expected status %s, got %s", StatusHealthy, status.Status)
		}
		if status.Dependencies["redis"].Status != StatusHealthy {
			t.Errorf("Expected healthy redis dependency, got %+v", status.Dependencies["redis"])
		}
	})

	t.Run("degraded with store down", func(t *testing.T) {
		mr, client := newHealthTestRedis(t)
		checker := NewHealthChecker(client, "test")
		mr.Close()

		req := httptest.NewRequest("GET", "/readyz", nil)
		rr := httptest.NewRecorder()
		checker.Readiness(rr, req)

		// Reads degrade to safe defaults without the store, so readiness
		// stays 200 with a degraded status.
		if rr.Code != http.StatusOK {
			t.Errorf("Readiness returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
		}

		var status HealthStatus
		if err := json.NewDecoder(rr.Body).Decode(&status); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if status.Status != StatusDegraded {
			t.Errorf("Expected status %s, got %s", StatusDegraded, status.Status)
		}
		if status.Dependencies["redis"].Status != StatusUnhealthy {
			t.Errorf("Expected unhealthy redis dependency, got %+v", status.Dependencies["redis"])
		}
	})
}

func TestHealthChecker_Check(t *testing.T) {
	_, client := newHealthTestRedis(t)
	checker := NewHealthChecker(client, "1.2.3")

	status := checker.Check(context.Background())
	if status.Status != StatusHealthy {
		t.Errorf("Expected status %s, got %s", StatusHealthy, status.Status)
	}
	if status.Version != "1.2.3" {
		t.Errorf("Expected version 1.2.3, got %s", status.Version)
	}
	if _, ok := status.Dependencies["redis"]; !ok {
		t.Error("Expected redis dependency entry")
	}
}

func TestHealthChecker_NilStore(t *testing.T) {
	checker := NewHealthChecker(nil, "test")

	status := checker.Check(context.Background())
	if status.Status != StatusHealthy {
		t.Errorf("Expected status %s with no dependencies, got %s", StatusHealthy, status.Status)
	}
	if len(status.Dependencies) != 0 {
		t.Errorf("Expected no dependency entries, got %v", status.Dependencies)
	}
}
