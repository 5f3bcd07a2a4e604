// Package broadcast mirrors registries over socket.io so out-of-process
// consumers can follow and drive variables.
//
// On connect a client receives one snapshot.Document per registry under
// EventSnapshot. Afterwards every variable notification is broadcast as a
// Change and every event signal as a Signal. Clients write through
// EventSet and EventSignal.
//
// Registries are single-goroutine, while socket.io callbacks run on their
// own goroutines. The Hub therefore funnels every registry access through
// Do, and code that shares the registries with a running Hub must do the
// same.
package broadcast
