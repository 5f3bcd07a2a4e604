package hcl

import (
	"context"
	"fmt"

	"github.com/vk/scriptvars/internal/config"
	"github.com/vk/scriptvars/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// translateRegistry converts a registry block into the agnostic model.
func (l *Loader) translateRegistry(ctx context.Context, b *registryBlock, file string) (*config.RegistryDefinition, error) {
	def := &config.RegistryDefinition{
		Name:        b.Name,
		Description: b.Description,
		SavePath:    b.SavePath,
		File:        file,
	}

	seen := make(map[string]struct{})
	for _, vb := range b.Variables {
		if _, dup := seen[vb.Name]; dup {
			return nil, fmt.Errorf("registry '%s': variable '%s' declared more than once", b.Name, vb.Name)
		}
		seen[vb.Name] = struct{}{}

		v, err := translateVariable(ctx, vb)
		if err != nil {
			return nil, fmt.Errorf("registry '%s', variable '%s': %w", b.Name, vb.Name, err)
		}
		def.Variables = append(def.Variables, v)
	}

	seen = make(map[string]struct{})
	for _, eb := range b.Events {
		if _, dup := seen[eb.Name]; dup {
			return nil, fmt.Errorf("registry '%s': event '%s' declared more than once", b.Name, eb.Name)
		}
		seen[eb.Name] = struct{}{}
		def.Events = append(def.Events, &config.EventDefinition{
			Name:        eb.Name,
			Description: eb.Description,
		})
	}
	return def, nil
}

// translateVariable resolves the type and evaluates the default. Defaults
// are evaluated without variables or functions.
func translateVariable(ctx context.Context, vb *variableBlock) (*config.VariableDefinition, error) {
	logger := ctxlog.FromContext(ctx)

	factory, err := typeExprToFactory(ctx, vb.Type)
	if err != nil {
		return nil, err
	}

	var defaultVal *cty.Value
	if vb.Default != nil {
		val, diags := vb.Default.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid default: %w", diags)
		}
		if !val.IsNull() {
			converted, err := convert.Convert(val, factory.Type)
			if err != nil {
				return nil, fmt.Errorf("default of type %s is not a valid %s: %w",
					val.Type().FriendlyName(), factory.Keyword, err)
			}
			if !val.Type().Equals(converted.Type()) {
				logger.Debug("Implicitly converted default.", "from", val.Type().FriendlyName(), "to", converted.Type().FriendlyName())
			}
			defaultVal = &converted
		}
	}

	return &config.VariableDefinition{
		Name:        vb.Name,
		Kind:        factory.Tag,
		Type:        factory.Type,
		Description: vb.Description,
		Default:     defaultVal,
		NoReset:     vb.Reset != nil && !*vb.Reset,
	}, nil
}
