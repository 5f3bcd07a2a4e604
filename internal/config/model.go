package config

import "github.com/zclconf/go-cty/cty"

// Model holds every declared registry.
type Model struct {
	Registries map[string]*RegistryDefinition
	// Order lists registry names in declaration order.
	Order []string
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{Registries: make(map[string]*RegistryDefinition)}
}

// Add stores def and records its position. It reports false if the name is
// already taken.
func (m *Model) Add(def *RegistryDefinition) bool {
	if _, exists := m.Registries[def.Name]; exists {
		return false
	}
	m.Registries[def.Name] = def
	m.Order = append(m.Order, def.Name)
	return true
}

// Ordered returns the definitions in declaration order.
func (m *Model) Ordered() []*RegistryDefinition {
	out := make([]*RegistryDefinition, 0, len(m.Order))
	for _, name := range m.Order {
		out = append(out, m.Registries[name])
	}
	return out
}

// RegistryDefinition is the format-agnostic representation of a `registry`
// block.
type RegistryDefinition struct {
	Name        string
	Description string
	// SavePath is where the registry's state is saved; empty means the app
	// decides.
	SavePath  string
	Variables []*VariableDefinition
	Events    []*EventDefinition
	// File is the source file, for error messages.
	File string
}

// VariableDefinition declares one variable.
type VariableDefinition struct {
	Name string
	// Kind is the persistence tag, e.g. "IntVariable".
	Kind        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	// NoReset excludes the variable from bulk resets.
	NoReset bool
}

// EventDefinition declares one event.
type EventDefinition struct {
	Name        string
	Description string
}
