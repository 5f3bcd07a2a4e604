package variable

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vk/scriptvars/internal/geom"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Kind describes one variable type: its persistence tag, the config keyword
// that declares it, its cty type and its text encoding.
type Kind[T any] struct {
	Tag     string
	Keyword string
	Type    cty.Type
	// Zero is the default used when a declaration omits one.
	Zero   T
	Format func(T) (string, error)
	Parse  func(string) (T, error)

	components []component[T]
}

// component names one float field of a structured kind.
type component[T any] struct {
	name  string
	field func(*T) *float64
}

// FromCty converts a cty value of any compatible type into T.
func (k *Kind[T]) FromCty(v cty.Value) (T, error) {
	var out T
	if v.IsNull() {
		return out, fmt.Errorf("%s: value is null", k.Tag)
	}
	if !v.IsWhollyKnown() {
		return out, fmt.Errorf("%s: value is not known", k.Tag)
	}
	converted, err := convert.Convert(v, k.Type)
	if err != nil {
		return out, fmt.Errorf("%s: cannot convert %s: %w", k.Tag, v.Type().FriendlyName(), err)
	}
	if err := gocty.FromCtyValue(converted, &out); err != nil {
		return out, fmt.Errorf("%s: %w", k.Tag, err)
	}
	return out, nil
}

// ToCty converts v into a value of the kind's cty type. cty numbers cannot
// hold NaN, so NaN floats and structured values with a NaN component are
// rejected.
func (k *Kind[T]) ToCty(v T) (cty.Value, error) {
	if f, ok := any(v).(float64); ok && math.IsNaN(f) {
		return cty.NilVal, fmt.Errorf("%s: value is NaN", k.Tag)
	}
	for _, c := range k.components {
		if math.IsNaN(*c.field(&v)) {
			return cty.NilVal, fmt.Errorf("%s: component %s is NaN", k.Tag, c.name)
		}
	}
	return gocty.ToCtyValue(v, k.Type)
}

var (
	IntKind = &Kind[int]{
		Tag:     "IntVariable",
		Keyword: "int",
		Type:    cty.Number,
		Format:  func(v int) (string, error) { return strconv.Itoa(v), nil },
		Parse: func(s string) (int, error) {
			return strconv.Atoi(strings.TrimSpace(s))
		},
	}

	FloatKind = &Kind[float64]{
		Tag:     "FloatVariable",
		Keyword: "float",
		Type:    cty.Number,
		Format: func(v float64) (string, error) {
			return strconv.FormatFloat(v, 'g', -1, 64), nil
		},
		Parse: func(s string) (float64, error) {
			return strconv.ParseFloat(strings.TrimSpace(s), 64)
		},
	}

	BoolKind = &Kind[bool]{
		Tag:     "BoolVariable",
		Keyword: "bool",
		Type:    cty.Bool,
		Format:  func(v bool) (string, error) { return strconv.FormatBool(v), nil },
		Parse: func(s string) (bool, error) {
			return strconv.ParseBool(strings.TrimSpace(s))
		},
	}

	StringKind = &Kind[string]{
		Tag:     "StringVariable",
		Keyword: "string",
		Type:    cty.String,
		Format:  func(v string) (string, error) { return v, nil },
		Parse:   func(s string) (string, error) { return s, nil },
	}

	Vector2Kind = structKind("Vector2Variable", "vector2", geom.Vector2Type, geom.Vector2{},
		component[geom.Vector2]{"x", func(v *geom.Vector2) *float64 { return &v.X }},
		component[geom.Vector2]{"y", func(v *geom.Vector2) *float64 { return &v.Y }},
	)
	Vector3Kind = structKind("Vector3Variable", "vector3", geom.Vector3Type, geom.Vector3{},
		component[geom.Vector3]{"x", func(v *geom.Vector3) *float64 { return &v.X }},
		component[geom.Vector3]{"y", func(v *geom.Vector3) *float64 { return &v.Y }},
		component[geom.Vector3]{"z", func(v *geom.Vector3) *float64 { return &v.Z }},
	)
	QuaternionKind = structKind("QuaternionVariable", "quaternion", geom.QuaternionType, geom.IdentityQuaternion,
		component[geom.Quaternion]{"w", func(v *geom.Quaternion) *float64 { return &v.W }},
		component[geom.Quaternion]{"x", func(v *geom.Quaternion) *float64 { return &v.X }},
		component[geom.Quaternion]{"y", func(v *geom.Quaternion) *float64 { return &v.Y }},
		component[geom.Quaternion]{"z", func(v *geom.Quaternion) *float64 { return &v.Z }},
	)
	ColorKind = structKind("ColorVariable", "color", geom.ColorType, geom.White,
		component[geom.Color]{"a", func(v *geom.Color) *float64 { return &v.A }},
		component[geom.Color]{"b", func(v *geom.Color) *float64 { return &v.B }},
		component[geom.Color]{"g", func(v *geom.Color) *float64 { return &v.G }},
		component[geom.Color]{"r", func(v *geom.Color) *float64 { return &v.R }},
	)

	StringListKind = &Kind[[]string]{
		Tag:     "StringListVariable",
		Keyword: "list(string)",
		Type:    cty.List(cty.String),
		Format: func(v []string) (string, error) {
			if v == nil {
				v = []string{}
			}
			return marshalCty(v, cty.List(cty.String))
		},
		Parse: func(s string) ([]string, error) {
			if strings.TrimSpace(s) == "" {
				return nil, nil
			}
			return unmarshalCty[[]string](s, cty.List(cty.String))
		},
	}
)

// structKind builds a Kind whose text form is a JSON object with one
// attribute per component in key order, e.g. {"x":1,"y":2,"z":3}. JSON has
// no literal for NaN or infinity, so those components are written as
// strings ("NaN", "+Inf", "-Inf").
func structKind[T any](tag, keyword string, ty cty.Type, zero T, comps ...component[T]) *Kind[T] {
	return &Kind[T]{
		Tag:        tag,
		Keyword:    keyword,
		Type:       ty,
		Zero:       zero,
		Format:     func(v T) (string, error) { return formatComponents(v, comps), nil },
		Parse:      func(s string) (T, error) { return parseComponents(s, comps) },
		components: comps,
	}
}

func formatComponents[T any](v T, comps []component[T]) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range comps {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(c.name))
		b.WriteByte(':')
		f := *c.field(&v)
		text := strconv.FormatFloat(f, 'g', -1, 64)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			text = strconv.Quote(text)
		}
		b.WriteString(text)
	}
	b.WriteByte('}')
	return b.String()
}

func parseComponents[T any](s string, comps []component[T]) (T, error) {
	var out T
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return out, err
	}
	for _, c := range comps {
		msg, ok := raw[c.name]
		if !ok {
			return out, fmt.Errorf("missing component %q", c.name)
		}
		text := string(msg)
		if strings.HasPrefix(text, `"`) {
			if err := json.Unmarshal(msg, &text); err != nil {
				return out, fmt.Errorf("component %q: %w", c.name, err)
			}
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return out, fmt.Errorf("component %q: %w", c.name, err)
		}
		*c.field(&out) = f
	}
	if len(raw) != len(comps) {
		for name := range raw {
			if !hasComponent(comps, name) {
				return out, fmt.Errorf("unsupported component %q", name)
			}
		}
	}
	return out, nil
}

func hasComponent[T any](comps []component[T], name string) bool {
	for _, c := range comps {
		if c.name == name {
			return true
		}
	}
	return false
}

func marshalCty(v any, ty cty.Type) (string, error) {
	val, err := gocty.ToCtyValue(v, ty)
	if err != nil {
		return "", err
	}
	buf, err := ctyjson.Marshal(val, ty)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func unmarshalCty[T any](s string, ty cty.Type) (T, error) {
	var out T
	val, err := ctyjson.Unmarshal([]byte(s), ty)
	if err != nil {
		return out, err
	}
	if err := gocty.FromCtyValue(val, &out); err != nil {
		return out, err
	}
	return out, nil
}
