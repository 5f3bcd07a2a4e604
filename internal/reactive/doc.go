// Package reactive provides the change-notification primitives the rest of
// the module is built on: Value, a typed container whose writes always
// notify, and Event, its zero-payload counterpart.
//
// Both types are synchronous and single-goroutine. Subscribers run on the
// caller's goroutine, in subscription order, before Set, Raise or Signal
// returns. Callers that share a Value across goroutines must serialize
// access themselves.
package reactive
