// Package async provides panic-safe goroutine helpers and a bounded worker
// pool.
//
// Tracking writes must never block or fail the user action that triggered
// them, so the engine dispatches them through a WorkerPool via TrySubmit:
// when the queue is full the write is dropped and counted, not waited on.
// SafeGo and Batch cover one-off background tasks and bounded fan-out.
package async
