// Package filter evaluates annotation visibility predicates against a
// resolved target. Predicates are HCL expressions whose only binding is the
// `target` object; evaluation is pure and never touches resolver caches.
package filter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/resolver"
)

// Enabled reports whether the annotation is active for the resolved target.
// An absent filter means always enabled.
func Enabled(ann *config.Annotation, target *resolver.Target) (bool, error) {
	if ann.Filter == nil {
		return true, nil
	}
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"target": targetObject(target),
		},
	}
	v, diags := ann.Filter.Value(evalCtx)
	if diags.HasErrors() {
		return false, fmt.Errorf("annotation %q: evaluating filter: %s", ann.Name, diags.Error())
	}
	v, err := convert.Convert(v, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("annotation %q: filter must produce a bool: %w", ann.Name, err)
	}
	if v.IsNull() {
		return false, fmt.Errorf("annotation %q: filter produced null", ann.Name)
	}
	return v.True(), nil
}

// Active returns the annotations enabled for the target, in declaration
// order. Annotations failing their filter are absent entirely, not shown
// disabled.
func Active(model *config.Model, target *resolver.Target) ([]*config.Annotation, error) {
	var out []*config.Annotation
	for _, ann := range model.AnnotationsInOrder() {
		ok, err := Enabled(ann, target)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, ann)
		}
	}
	return out, nil
}

// targetObject converts the resolved target into a cty object for the
// expression scope. Concrete values are strings; hook results are included
// when they have a natural cty representation and skipped otherwise.
func targetObject(target *resolver.Target) cty.Value {
	attrs := make(map[string]cty.Value)
	for _, name := range target.Keys() {
		v, _ := target.Value(name)
		if s, ok := v.(string); ok {
			attrs[name] = cty.StringVal(s)
			continue
		}
		t, err := gocty.ImpliedType(v)
		if err != nil {
			continue
		}
		cv, err := gocty.ToCtyValue(v, t)
		if err != nil {
			continue
		}
		attrs[name] = cv
	}
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}
