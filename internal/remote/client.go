// Package remote is the client side of the broadcast hub. It lets a process
// follow and drive the variables of another process over socket.io.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/vk/scriptvars/internal/broadcast"
	"github.com/vk/scriptvars/internal/ctxlog"
	"github.com/vk/scriptvars/internal/snapshot"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const connectTimeout = 15 * time.Second

// ErrRejected wraps the reason the hub gave for refusing a request.
var ErrRejected = errors.New("remote: hub rejected request")

// Client is a connection to a broadcast hub.
type Client struct {
	io     *socket.Socket
	logger *slog.Logger
	emit   func(ev string, args ...any) error

	snapshots chan []snapshot.Document
}

// Dial connects to the hub at rawURL, whose path is the socket.io path
// (usually /socket.io/). It blocks until the connection is established,
// ctx is done, or the connect timeout passes.
func Dial(ctx context.Context, rawURL, namespace string) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL %q must include scheme and host", rawURL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))
	opts.SetReconnection(false)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	c := newClient(logger, io.Emit)
	c.io = io
	// Registered before connecting so the greeting snapshot is not missed.
	io.On(types.EventName(broadcast.EventSnapshot), c.onSnapshot)
	io.On(types.EventName(broadcast.EventRejected), func(args ...any) {
		var rej broadcast.Rejection
		if err := broadcast.DecodeArgs(args, &rej); err != nil {
			logger.Warn("Dropping malformed rejection.", "error", err)
			return
		}
		logger.Warn("Hub rejected request.", "event", rej.Event, "error", rej.Error)
	})

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to hub.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		connectChan <- connectError(errs)
	})

	logger.Debug("Connecting to hub...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return c, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}
}

func newClient(logger *slog.Logger, emit func(ev string, args ...any) error) *Client {
	return &Client{
		logger:    logger,
		emit:      emit,
		snapshots: make(chan []snapshot.Document, 1),
	}
}

// Set asks the hub to assign a text-encoded value to a variable and waits
// until the hub has applied it. A refusal is returned wrapping ErrRejected.
func (c *Client) Set(ctx context.Context, registry, name, value string) error {
	return c.request(ctx, broadcast.EventSet, broadcast.SetRequest{Registry: registry, Name: name, Value: value})
}

// Signal asks the hub to fire an event and waits until it has fired.
func (c *Client) Signal(ctx context.Context, registry, name string) error {
	return c.request(ctx, broadcast.EventSignal, broadcast.Signal{Registry: registry, Name: name})
}

// request emits payload with an acknowledgement callback and blocks until
// the hub answers or ctx is done.
func (c *Client) request(ctx context.Context, event string, payload any) error {
	done := make(chan error, 1)
	ack := func(args []any, err error) {
		if err != nil {
			done <- err
			return
		}
		var reply broadcast.Ack
		if err := broadcast.DecodeArgs(args, &reply); err != nil {
			done <- fmt.Errorf("malformed acknowledgement: %w", err)
			return
		}
		if reply.Error != "" {
			done <- fmt.Errorf("%w: %s", ErrRejected, reply.Error)
			return
		}
		done <- nil
	}
	if err := c.emit(event, payload, ack); err != nil {
		return fmt.Errorf("sending %s: %w", event, err)
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("waiting for %s acknowledgement: %w", event, ctx.Err())
	}
}

// OnChange registers fn for every variable change the hub broadcasts.
func (c *Client) OnChange(fn func(broadcast.Change)) {
	c.io.On(types.EventName(broadcast.EventChanged), decoding(c.logger, fn))
}

// OnSignal registers fn for every event the hub reports as fired.
func (c *Client) OnSignal(fn func(broadcast.Signal)) {
	c.io.On(types.EventName(broadcast.EventSignalled), decoding(c.logger, fn))
}

// Snapshot waits for the documents the hub sends on connect.
func (c *Client) Snapshot(ctx context.Context) ([]snapshot.Document, error) {
	select {
	case docs := <-c.snapshots:
		return docs, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for registry snapshot: %w", ctx.Err())
	}
}

// Close disconnects from the hub.
func (c *Client) Close() {
	if c.io == nil {
		return
	}
	c.logger.Debug("Disconnecting from hub.", "sid", c.io.Id())
	c.io.Disconnect()
}

func (c *Client) onSnapshot(args ...any) {
	var docs []snapshot.Document
	if err := broadcast.DecodeArgs(args, &docs); err != nil {
		c.logger.Warn("Dropping malformed snapshot.", "error", err)
		return
	}
	// Keep only the newest snapshot if nobody has read the previous one.
	select {
	case <-c.snapshots:
	default:
	}
	c.snapshots <- docs
}

func connectError(errs []any) error {
	if len(errs) == 0 {
		return errors.New("connect_error without a reason")
	}
	if err, ok := errs[0].(error); ok {
		return err
	}
	return fmt.Errorf("%v", errs[0])
}

func decoding[T any](logger *slog.Logger, fn func(T)) func(...any) {
	return func(args ...any) {
		var msg T
		if err := broadcast.DecodeArgs(args, &msg); err != nil {
			logger.Warn("Dropping malformed message.", "error", err)
			return
		}
		fn(msg)
	}
}
