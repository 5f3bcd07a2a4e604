// Package geom defines the structured payloads variables can hold and their
// cty object types, which the codecs and the config loader share.
package geom

import "github.com/zclconf/go-cty/cty"

// Vector2 is a 2D vector.
type Vector2 struct {
	X float64 `cty:"x"`
	Y float64 `cty:"y"`
}

// Vector3 is a 3D vector.
type Vector3 struct {
	X float64 `cty:"x"`
	Y float64 `cty:"y"`
	Z float64 `cty:"z"`
}

// Quaternion is a rotation in x, y, z, w order.
type Quaternion struct {
	X float64 `cty:"x"`
	Y float64 `cty:"y"`
	Z float64 `cty:"z"`
	W float64 `cty:"w"`
}

// Color is a linear RGBA color with components in [0,1].
type Color struct {
	R float64 `cty:"r"`
	G float64 `cty:"g"`
	B float64 `cty:"b"`
	A float64 `cty:"a"`
}

var (
	IdentityQuaternion = Quaternion{W: 1}
	White              = Color{R: 1, G: 1, B: 1, A: 1}
	Black              = Color{A: 1}
)

var (
	Vector2Type = cty.Object(map[string]cty.Type{
		"x": cty.Number,
		"y": cty.Number,
	})
	Vector3Type = cty.Object(map[string]cty.Type{
		"x": cty.Number,
		"y": cty.Number,
		"z": cty.Number,
	})
	QuaternionType = cty.Object(map[string]cty.Type{
		"x": cty.Number,
		"y": cty.Number,
		"z": cty.Number,
		"w": cty.Number,
	})
	ColorType = cty.Object(map[string]cty.Type{
		"r": cty.Number,
		"g": cty.Number,
		"b": cty.Number,
		"a": cty.Number,
	})
)
