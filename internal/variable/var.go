package variable

import (
	"fmt"
	"log/slog"

	"github.com/vk/scriptvars/internal/reactive"
)

// Entry is the type-erased view of a variable that registries, codecs and
// the broadcast hub work with.
type Entry interface {
	Name() string
	// Kind returns the persistence tag, e.g. "IntVariable".
	Kind() string
	Raise()
	// Reset restores the default. It is a no-op when HasReset is false.
	Reset()
	HasReset() bool
	Subscribe(fn func()) reactive.Subscription
	Unsubscribe(h reactive.Subscription)
	EncodeValue() (string, error)
	DecodeValue(text string) error
}

// Option configures a variable at construction time.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	noReset bool
}

// WithLogger sets the logger used for warnings. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithoutReset marks the variable as having no reset; bulk resets skip it.
func WithoutReset() Option {
	return func(o *options) { o.noReset = true }
}

// Var is a named reactive value with a default and a Kind.
type Var[T any] struct {
	*reactive.Value[T]
	name    string
	kind    *Kind[T]
	def     T
	noReset bool
	logger  *slog.Logger
}

// NewVar creates a variable holding def.
func NewVar[T any](name string, kind *Kind[T], def T, opts ...Option) *Var[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return &Var[T]{
		Value:   reactive.New(def),
		name:    name,
		kind:    kind,
		def:     def,
		noReset: o.noReset,
		logger:  o.logger,
	}
}

func (v *Var[T]) Name() string { return v.name }

func (v *Var[T]) Kind() string { return v.kind.Tag }

// Descriptor returns the variable's Kind.
func (v *Var[T]) Descriptor() *Kind[T] { return v.kind }

// Default returns the value Reset restores.
func (v *Var[T]) Default() T { return v.def }

// SetDefault replaces the reset value without touching the current one.
func (v *Var[T]) SetDefault(def T) { v.def = def }

func (v *Var[T]) HasReset() bool { return !v.noReset }

// Reset sets the variable back to its default, notifying subscribers.
func (v *Var[T]) Reset() {
	if v.noReset {
		return
	}
	v.Set(v.def)
}

// EncodeValue formats the current value with the variable's Kind.
func (v *Var[T]) EncodeValue() (string, error) {
	s, err := v.kind.Format(v.Get())
	if err != nil {
		return "", fmt.Errorf("variable %q: encode %s: %w", v.name, v.kind.Tag, err)
	}
	return s, nil
}

// DecodeValue parses text and assigns it. A parse failure leaves the value
// and the subscribers untouched.
func (v *Var[T]) DecodeValue(text string) error {
	val, err := v.kind.Parse(text)
	if err != nil {
		return fmt.Errorf("variable %q: decode %s: %w", v.name, v.kind.Tag, err)
	}
	v.Set(val)
	return nil
}

func (v *Var[T]) log() *slog.Logger {
	if v.logger != nil {
		return v.logger
	}
	return slog.Default()
}

// Convenience constructors for the non-numeric kinds.

func NewBool(name string, def bool, opts ...Option) *Var[bool] {
	return NewVar(name, BoolKind, def, opts...)
}

func NewString(name string, def string, opts ...Option) *Var[string] {
	return NewVar(name, StringKind, def, opts...)
}
