// Package bggohcl holds small helpers on top of the hcl/v2 API.
package bggohcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// TraversalKey generates a stable, canonical string representation for an hcl.Traversal,
// suitable for use as a map key.
func TraversalKey(t hcl.Traversal) string {
	// e.g., adder.iadd.sum
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// Reference reads an expression that names something, either as a string
// literal or as a bare traversal like adder.iadd.sum.
func Reference(expr hcl.Expression) (string, hcl.Diagnostics) {
	if traversal, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() {
		return TraversalKey(traversal), nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() || !val.IsKnown() || val.Type() != cty.String {
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid reference",
			Detail:   fmt.Sprintf("A reference must be a string or a bare name, got %s.", val.Type().FriendlyName()),
			Subject:  expr.Range().Ptr(),
		}}
	}
	return val.AsString(), nil
}

// References reads a list of references. A null expression is an empty
// list.
func References(expr hcl.Expression) ([]string, hcl.Diagnostics) {
	if expr == nil {
		return nil, nil
	}
	if val, diags := expr.Value(nil); !diags.HasErrors() && val.IsNull() {
		return nil, nil
	}

	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, diags
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		ref, refDiags := Reference(item)
		diags = append(diags, refDiags...)
		if refDiags.HasErrors() {
			continue
		}
		out = append(out, ref)
	}
	return out, diags
}
