// Package registry groups named variables and events into one container
// that supports lookup, bulk reset and raise, and persistence to a JSON
// snapshot file.
//
// Iteration order is insertion order. Names are unique per kind: adding a
// second variable (or event) under an existing name is rejected with
// ErrDuplicateName.
//
// A Registry is not safe for concurrent use. SaveToPath and LoadFromPath
// follow the in-editor convention of reporting failure as false plus a log
// line rather than an error value.
package registry
