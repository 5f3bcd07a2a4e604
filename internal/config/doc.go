// Package config defines the format-agnostic model of registry declarations
// and the Loader interface that fills it.
//
// `config.Model` is what the app builds registries from. Concrete loaders,
// such as the HCL one, live in their own packages.
package config
