// Package program defines the shared core of the framework: the structured
// error taxonomy, the raw account handle, the Host capability boundary, rent
// parameters and the per-call execution Context.
//
// Processing is single-threaded, synchronous and non-reentrant: one payload
// runs start-to-finish with no suspension points. A nested call is a
// synchronous sub-call, not a parallel task. No retries, no rollback: the
// discarding of uncommitted external mutations on failure is a platform
// guarantee, not implemented here.
package program
