package broadcast

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vk/scriptvars/internal/registry"
	"github.com/vk/scriptvars/internal/snapshot"
	"github.com/vk/scriptvars/internal/variable"
	"github.com/zishang520/socket.io/v2/socket"
)

var (
	// ErrUnknownRegistry is returned for requests naming no served registry.
	ErrUnknownRegistry = errors.New("broadcast: unknown registry")
	// ErrUnknownName is returned for requests naming no variable or event.
	ErrUnknownName = errors.New("broadcast: unknown name")
	// ErrClosed is returned for requests after Close.
	ErrClosed = errors.New("broadcast: hub closed")
)

// Hub serves a set of registries over socket.io.
type Hub struct {
	mu         sync.Mutex
	logger     *slog.Logger
	registries map[string]*registry.Registry
	order      []string
	unsubs     []func()
	closed     bool

	io *socket.Server
	// emit broadcasts to every connected client.
	emit func(event string, args ...any)
}

// NewHub creates a hub and subscribes to every variable and event of regs.
// Registries added to regs later are not tracked.
func NewHub(logger *slog.Logger, regs ...*registry.Registry) *Hub {
	io := socket.NewServer(nil, nil)
	h := &Hub{
		logger:     logger,
		registries: make(map[string]*registry.Registry, len(regs)),
		io:         io,
		emit: func(event string, args ...any) {
			io.Emit(event, args...)
		},
	}
	for _, reg := range regs {
		h.registries[reg.Name()] = reg
		h.order = append(h.order, reg.Name())
		h.watch(reg)
	}

	io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		h.onConnect(client)
	})
	return h
}

// Handler returns the socket.io HTTP handler, to be mounted at /socket.io/.
func (h *Hub) Handler() http.Handler {
	return h.io.ServeHandler(nil)
}

// Do runs fn while holding the hub lock.
func (h *Hub) Do(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
}

// Snapshots returns one document per registry, in registration order.
func (h *Hub) Snapshots() []snapshot.Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotsLocked()
}

func (h *Hub) snapshotsLocked() []snapshot.Document {
	docs := make([]snapshot.Document, 0, len(h.order))
	for _, name := range h.order {
		docs = append(docs, h.registries[name].Snapshot())
	}
	return docs
}

// HandleSet decodes req.Value into the named variable. The variable's
// subscribers, including the hub's own broadcast, run before it returns.
func (h *Hub) HandleSet(req SetRequest) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	reg, ok := h.registries[req.Registry]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRegistry, req.Registry)
	}
	e, ok := reg.GetByName(req.Name)
	if !ok {
		return fmt.Errorf("%w: variable %q in %q", ErrUnknownName, req.Name, req.Registry)
	}
	return e.DecodeValue(req.Value)
}

// HandleSignal fires the named event.
func (h *Hub) HandleSignal(sig Signal) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	reg, ok := h.registries[sig.Registry]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRegistry, sig.Registry)
	}
	ev, ok := reg.EventByName(sig.Name)
	if !ok {
		return fmt.Errorf("%w: event %q in %q", ErrUnknownName, sig.Name, sig.Registry)
	}
	ev.Signal()
	return nil
}

// Close unsubscribes from every registry and shuts the socket.io server
// down. It is safe to call more than once.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for _, unsub := range h.unsubs {
		unsub()
	}
	h.unsubs = nil
	h.mu.Unlock()

	h.io.Close(nil)
	h.logger.Debug("Broadcast hub closed.")
}

// watch subscribes the broadcast callbacks. Callbacks run on whichever
// goroutine changed the variable.
func (h *Hub) watch(reg *registry.Registry) {
	for _, e := range reg.Entries() {
		h.watchEntry(reg.Name(), e)
	}
	for _, ev := range reg.Events() {
		sig := Signal{Registry: reg.Name(), Name: ev.Name()}
		id := ev.Subscribe(func() { h.emit(EventSignalled, sig) })
		h.unsubs = append(h.unsubs, func() { ev.Unsubscribe(id) })
	}
}

func (h *Hub) watchEntry(regName string, e variable.Entry) {
	id := e.Subscribe(func() {
		text, err := e.EncodeValue()
		if err != nil {
			h.logger.Warn("Not broadcasting variable that failed to encode.", "registry", regName, "variable", e.Name(), "error", err)
			return
		}
		h.emit(EventChanged, Change{Registry: regName, Name: e.Name(), Type: e.Kind(), Value: text})
	})
	h.unsubs = append(h.unsubs, func() { e.Unsubscribe(id) })
}

func (h *Hub) onConnect(client *socket.Socket) {
	logger := h.logger.With("sid", client.Id())
	logger.Info("Client connected.")

	if err := client.Emit(EventSnapshot, h.Snapshots()); err != nil {
		logger.Warn("Failed to send snapshot.", "error", err)
	}

	client.On(EventSet, func(args ...any) {
		args, ack := splitAck(args)
		var req SetRequest
		err := DecodeArgs(args, &req)
		if err == nil {
			err = h.HandleSet(req)
		}
		reply(logger, client.Emit, EventSet, ack, err)
	})

	client.On(EventSignal, func(args ...any) {
		args, ack := splitAck(args)
		var sig Signal
		err := DecodeArgs(args, &sig)
		if err == nil {
			err = h.HandleSignal(sig)
		}
		reply(logger, client.Emit, EventSignal, ack, err)
	})

	client.On("disconnect", func(reason ...any) {
		logger.Info("Client disconnected.", "reason", reason)
	})
}

// splitAck separates the acknowledgement callback socket.io appends to the
// arguments when the sender asked for one.
func splitAck(args []any) ([]any, socket.Ack) {
	if n := len(args); n > 0 {
		if ack, ok := args[n-1].(socket.Ack); ok {
			return args[:n-1], ack
		}
	}
	return args, nil
}

// reply answers a request. A sender that asked for an acknowledgement gets
// the outcome there; otherwise only failures are reported, to the sender
// alone.
func reply(logger *slog.Logger, send func(string, ...any) error, event string, ack socket.Ack, err error) {
	if err != nil {
		logger.Warn("Rejected client request.", "event", event, "error", err)
	}
	if ack != nil {
		var result Ack
		if err != nil {
			result.Error = err.Error()
		}
		ack([]any{result}, nil)
		return
	}
	if err == nil {
		return
	}
	if emitErr := send(EventRejected, Rejection{Event: event, Error: err.Error()}); emitErr != nil {
		logger.Warn("Failed to send rejection.", "error", emitErr)
	}
}
