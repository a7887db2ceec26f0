// Package task runs best-effort background work, such as notification
// delivery, on a bounded in-memory queue drained by a pool of workers.
// Enqueueing never blocks the caller: a full queue is reported as an error
// and the work is dropped.
package task
