// Package hcl is the HCL implementation of config.Loader. It parses
// `registry` blocks, resolves variable type expressions to variable kinds
// and evaluates defaults into cty values of the declared type.
package hcl
