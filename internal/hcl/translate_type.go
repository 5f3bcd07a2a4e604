// This file turns HCL type expressions (e.g. `int`, `list(string)`) into
// the keywords variable factories are registered under.

package hcl

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/scriptvars/internal/ctxlog"
	"github.com/vk/scriptvars/internal/variable"
)

// typeExprToFactory resolves a type expression to the factory for its kind.
func typeExprToFactory(ctx context.Context, expr hcl.Expression) (*variable.Factory, error) {
	keyword, err := typeExprToKeyword(expr)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Parsed type expression.", "keyword", keyword)

	f, ok := variable.FactoryForKeyword(keyword)
	if !ok {
		return nil, fmt.Errorf("unknown type %q, expected one of: %s", keyword, strings.Join(variable.Keywords(), ", "))
	}
	return f, nil
}

func typeExprToKeyword(expr hcl.Expression) (string, error) {
	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return "", fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		return v.Traversal.RootName(), nil

	case *hclsyntax.FunctionCallExpr:
		if len(v.Args) != 1 {
			return "", fmt.Errorf("type constructor %q requires exactly one argument, got %d", v.Name, len(v.Args))
		}
		inner, err := typeExprToKeyword(v.Args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", v.Name, inner), nil

	case nil:
		return "", fmt.Errorf("missing type expression")

	default:
		return "", fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}
