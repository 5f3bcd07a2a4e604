package variable

import "github.com/vk/scriptvars/internal/geom"

type (
	Bool       = Var[bool]
	String     = Var[string]
	Vector2    = Var[geom.Vector2]
	Vector3    = Var[geom.Vector3]
	Quaternion = Var[geom.Quaternion]
	Color      = Var[geom.Color]
	StringList = Var[[]string]
)

func NewVector2(name string, def geom.Vector2, opts ...Option) *Vector2 {
	return NewVar(name, Vector2Kind, def, opts...)
}

func NewVector3(name string, def geom.Vector3, opts ...Option) *Vector3 {
	return NewVar(name, Vector3Kind, def, opts...)
}

func NewQuaternion(name string, def geom.Quaternion, opts ...Option) *Quaternion {
	return NewVar(name, QuaternionKind, def, opts...)
}

func NewColor(name string, def geom.Color, opts ...Option) *Color {
	return NewVar(name, ColorKind, def, opts...)
}

// NewStringList copies def so later edits to the caller's slice do not leak
// into the default.
func NewStringList(name string, def []string, opts ...Option) *StringList {
	if def != nil {
		def = append([]string(nil), def...)
	}
	return NewVar(name, StringListKind, def, opts...)
}
