package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top-level blocks of any declaration file.
type fileRoot struct {
	Registries []*registryBlock `hcl:"registry,block"`
	Remain     hcl.Body         `hcl:",remain"`
}

// registryBlock is a `registry "name" { ... }` block.
type registryBlock struct {
	Name        string           `hcl:"name,label"`
	Description string           `hcl:"description,optional"`
	SavePath    string           `hcl:"save_path,optional"`
	Variables   []*variableBlock `hcl:"variable,block"`
	Events      []*eventBlock    `hcl:"event,block"`
}

// variableBlock declares one variable. Type is a type expression such as
// `int` or `list(string)`, not a string.
type variableBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	Reset       *bool          `hcl:"reset,optional"`
}

// eventBlock declares one event.
type eventBlock struct {
	Name        string `hcl:"name,label"`
	Description string `hcl:"description,optional"`
}
