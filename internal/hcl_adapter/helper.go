package hcl_adapter

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/catalogplan/internal/config"
	"github.com/vk/catalogplan/internal/ctxlog"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with non-nil,
// zero-width expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}

	// A real attribute occupies bytes in the file, while a placeholder for an
	// omitted optional attribute has a zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)

	return isDefined
}

var propertyBag = cty.Map(cty.String)

// properties evaluates a property map. Values of any primitive type are
// converted to their string form; the result is sorted by name.
func properties(ctx context.Context, expr hcl.Expression, owner string) ([]config.Property, error) {
	if !isExprDefined(ctx, expr, "properties") {
		return nil, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid properties of %s: %w", owner, diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	bag, err := convert.Convert(val, propertyBag)
	if err != nil {
		return nil, fmt.Errorf("properties of %s must map names to primitive values: %w", owner, err)
	}
	if !bag.IsWhollyKnown() {
		return nil, fmt.Errorf("properties of %s must be constant", owner)
	}

	var out []config.Property
	for name, v := range bag.AsValueMap() {
		p := config.Property{Name: name}
		if !v.IsNull() {
			p.Value = v.AsString()
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b config.Property) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}
