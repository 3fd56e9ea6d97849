// This file contains the logic for parsing HCL type keywords (`string`,
// `number`, `bool`, `any`) used by `arg` blocks into cty.Type objects.

package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/patchc/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// isExprDefined checks if an HCL expression was actually present in the
// source. The decoder populates omitted optional expression fields with
// zero-width placeholders, so a nil check is insufficient.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// typeExprToCtyType converts an HCL type keyword into its cty.Type equivalent.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	logger := ctxlog.FromContext(ctx)

	if !isExprDefined(expr) {
		logger.Debug("Type expression is not defined, defaulting to any.")
		return cty.DynamicPseudoType, nil
	}

	v, ok := expr.(*hclsyntax.ScopeTraversalExpr)
	if !ok {
		return cty.DynamicPseudoType, fmt.Errorf("unsupported expression for arg type: %T", expr)
	}
	if len(v.Traversal) != 1 {
		return cty.DynamicPseudoType, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
	}

	rootName := v.Traversal.RootName()
	logger.Debug("Parsing type expression as a primitive.", "keyword", rootName)
	switch rootName {
	case "string":
		return cty.String, nil
	case "number":
		return cty.Number, nil
	case "bool":
		return cty.Bool, nil
	case "any":
		return cty.DynamicPseudoType, nil
	default:
		return cty.DynamicPseudoType, fmt.Errorf("unknown primitive type %q", rootName)
	}
}
