package variable

import "math"

// NumericPayload is implemented by every numeric variable so consumers can
// read and drive int and float containers the same way.
type NumericPayload interface {
	AsFloat() float64
	SetFromFloat(f float64)
}

// Number is a Var over int or float64 with arithmetic helpers. Every helper
// that changes the value goes through Set and therefore notifies.
type Number[N int | float64] struct {
	*Var[N]
	fromFloat func(float64) N
}

type (
	Int   = Number[int]
	Float = Number[float64]
)

var (
	_ NumericPayload = (*Int)(nil)
	_ NumericPayload = (*Float)(nil)
	_ Entry          = (*Int)(nil)
	_ Entry          = (*Float)(nil)
	_ Entry          = (*Vector3)(nil)
)

// NewInt creates an integer variable. Float inputs are rounded half away
// from zero.
func NewInt(name string, def int, opts ...Option) *Int {
	return &Int{
		Var:       NewVar(name, IntKind, def, opts...),
		fromFloat: func(f float64) int { return int(math.Round(f)) },
	}
}

// NewFloat creates a float variable.
func NewFloat(name string, def float64, opts ...Option) *Float {
	return &Float{
		Var:       NewVar(name, FloatKind, def, opts...),
		fromFloat: func(f float64) float64 { return f },
	}
}

func (n *Number[N]) AsFloat() float64 {
	return float64(n.Get())
}

// AsInt rounds half away from zero.
func (n *Number[N]) AsInt() int {
	return int(math.Round(float64(n.Get())))
}

func (n *Number[N]) SetFromFloat(f float64) {
	n.Set(n.fromFloat(f))
}

func (n *Number[N]) Add(d N) {
	n.Set(n.Get() + d)
}

func (n *Number[N]) Subtract(d N) {
	n.Set(n.Get() - d)
}

func (n *Number[N]) Multiply(f N) {
	n.Set(n.Get() * f)
}

// Divide divides by d. Integer variables truncate. Dividing by zero leaves
// the value unchanged, does not notify and logs a warning.
func (n *Number[N]) Divide(d N) {
	if d == 0 {
		n.log().Warn("Ignoring division by zero.", "variable", n.Name(), "kind", n.Kind())
		return
	}
	n.Set(n.Get() / d)
}

// Clamp limits the value to [lo, hi]; swapped bounds are accepted.
func (n *Number[N]) Clamp(lo, hi N) {
	if lo > hi {
		lo, hi = hi, lo
	}
	v := n.Get()
	switch {
	case v < lo:
		v = lo
	case v > hi:
		v = hi
	}
	n.Set(v)
}

// GetNormalized maps the value from [lo, hi] onto [0, 1], clamping values
// outside the range. A degenerate range yields 0.
func (n *Number[N]) GetNormalized(lo, hi N) float64 {
	if lo == hi {
		return 0
	}
	t := (n.AsFloat() - float64(lo)) / (float64(hi) - float64(lo))
	return clamp01(t)
}

// SetFromNormalized sets the value to the point t (clamped to [0, 1]) along
// [lo, hi].
func (n *Number[N]) SetFromNormalized(t float64, lo, hi N) {
	n.SetFromFloat(lerp(float64(lo), float64(hi), t))
}

// LerpTo moves the value a fraction t (clamped to [0, 1]) of the way to
// target.
func (n *Number[N]) LerpTo(target N, t float64) {
	n.SetFromFloat(lerp(n.AsFloat(), float64(target), t))
}

// MoveTowards moves the value toward target by at most maxDelta without
// overshooting. A negative maxDelta moves away from target.
func (n *Number[N]) MoveTowards(target N, maxDelta N) {
	cur, tgt, step := n.AsFloat(), float64(target), float64(maxDelta)
	if math.Abs(tgt-cur) <= step {
		n.Set(target)
		return
	}
	dir := 1.0
	if tgt < cur {
		dir = -1
	}
	n.SetFromFloat(cur + dir*step)
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*clamp01(t)
}
