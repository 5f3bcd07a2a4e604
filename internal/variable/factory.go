package variable

import (
	"fmt"
	"sort"

	"github.com/vk/scriptvars/internal/geom"
	"github.com/zclconf/go-cty/cty"
)

// Factory builds an Entry from a declaration. def may be nil, in which case
// the kind's zero value is used.
type Factory struct {
	Tag     string
	Keyword string
	Type    cty.Type
	Build   func(name string, def *cty.Value, opts ...Option) (Entry, error)
}

// factories is keyed by kind tag. keywords maps config keywords to tags.
var (
	factories = map[string]*Factory{}
	keywords  = map[string]string{}
)

func init() {
	register(IntKind, func(name string, def int, opts ...Option) Entry { return NewInt(name, def, opts...) })
	register(FloatKind, func(name string, def float64, opts ...Option) Entry { return NewFloat(name, def, opts...) })
	register(BoolKind, func(name string, def bool, opts ...Option) Entry { return NewBool(name, def, opts...) })
	register(StringKind, func(name string, def string, opts ...Option) Entry { return NewString(name, def, opts...) })
	register(Vector2Kind, func(name string, def geom.Vector2, opts ...Option) Entry { return NewVector2(name, def, opts...) })
	register(Vector3Kind, func(name string, def geom.Vector3, opts ...Option) Entry { return NewVector3(name, def, opts...) })
	register(QuaternionKind, func(name string, def geom.Quaternion, opts ...Option) Entry { return NewQuaternion(name, def, opts...) })
	register(ColorKind, func(name string, def geom.Color, opts ...Option) Entry { return NewColor(name, def, opts...) })
	register(StringListKind, func(name string, def []string, opts ...Option) Entry { return NewStringList(name, def, opts...) })
}

func register[T any](kind *Kind[T], build func(name string, def T, opts ...Option) Entry) {
	if _, exists := factories[kind.Tag]; exists {
		panic(fmt.Sprintf("variable kind '%s' already registered", kind.Tag))
	}
	factories[kind.Tag] = &Factory{
		Tag:     kind.Tag,
		Keyword: kind.Keyword,
		Type:    kind.Type,
		Build: func(name string, def *cty.Value, opts ...Option) (Entry, error) {
			val := kind.Zero
			if def != nil && !def.IsNull() {
				v, err := kind.FromCty(*def)
				if err != nil {
					return nil, fmt.Errorf("default for %q: %w", name, err)
				}
				val = v
			}
			return build(name, val, opts...), nil
		},
	}
	keywords[kind.Keyword] = kind.Tag
}

// FactoryForTag returns the factory registered under a persistence tag.
func FactoryForTag(tag string) (*Factory, bool) {
	f, ok := factories[tag]
	return f, ok
}

// FactoryForKeyword returns the factory for a config type keyword such as
// "vector3" or "list(string)".
func FactoryForKeyword(keyword string) (*Factory, bool) {
	tag, ok := keywords[keyword]
	if !ok {
		return nil, false
	}
	return factories[tag], true
}

// Keywords lists the config type keywords in sorted order.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
