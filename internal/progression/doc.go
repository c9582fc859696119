// Package progression decides the next prescription for an exercise after a
// session and rounds proposed loads to what the lifter's equipment allows.
//
// Everything here is a pure function of its inputs: no I/O, no shared state,
// safe to call concurrently for different lifters or exercises. Persisting the
// result and recording events is the caller's job.
package progression
