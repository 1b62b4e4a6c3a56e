// Package mirror replicates committed mutations to the backup webhook.
//
// Replication is best-effort and fully detached from the request path:
// handlers enqueue an event after the primary write commits and return
// immediately. A single worker goroutine drains the queue in commit
// order and delivers each event over HTTP, retrying with exponential
// backoff and shedding load through a circuit breaker when the webhook
// stays down. A delivery that exhausts its retries is logged and
// dropped; nothing here can change a response the client already has.
//
// Events carry their payload as canonical JSON serialized at enqueue
// time, so a retry sends exactly the bytes the first attempt sent and
// a record mutated after the handler returned cannot leak into the
// mirror.
package mirror
