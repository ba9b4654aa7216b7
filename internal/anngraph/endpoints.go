package anngraph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/geom"
	"github.com/cortexmark/cortexmark/internal/registry"
)

// NotReadyError reports a fixed endpoint whose required annotations have no
// drawn points yet. It is recoverable: drawing the missing dependencies
// makes the endpoint resolvable.
type NotReadyError struct {
	Annotation string
	Missing    []string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("annotation %q is not ready: requires %s",
		e.Annotation, strings.Join(e.Missing, ", "))
}

// Endpoints holds the resolved fixed head and tail coordinates of an
// annotation. A nil field means that end is unconstrained.
type Endpoints struct {
	Head *geom.Point
	Tail *geom.Point
}

// ResolveEndpoints computes the fixed head and tail of an annotation from
// the already-drawn instances. The literal ref form pins to the referenced
// annotation's last point; the calculate form invokes the registered hook.
// The calculate form wins when a fixed point carries both.
func ResolveEndpoints(
	ctx context.Context,
	ann *config.Annotation,
	target *registry.TargetView,
	points map[string][]geom.Point,
	reg *registry.Registry,
	shared any,
) (*Endpoints, error) {
	var missing []string
	for _, dep := range ann.Dependencies() {
		if len(points[dep]) == 0 {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &NotReadyError{Annotation: ann.Name, Missing: missing}
	}

	eps := &Endpoints{}
	for end, f := range map[string]*config.FixedPoint{"head": ann.FixedHead, "tail": ann.FixedTail} {
		if f == nil {
			continue
		}
		pt, err := resolveFixed(ctx, ann, f, target, points, reg, shared)
		if err != nil {
			return nil, fmt.Errorf("annotation %q: fixed %s: %w", ann.Name, end, err)
		}
		if end == "head" {
			eps.Head = &pt
		} else {
			eps.Tail = &pt
		}
	}
	return eps, nil
}

func resolveFixed(
	ctx context.Context,
	ann *config.Annotation,
	f *config.FixedPoint,
	target *registry.TargetView,
	points map[string][]geom.Point,
	reg *registry.Registry,
	shared any,
) (geom.Point, error) {
	if f.Calculate != "" {
		hook, ok := reg.Calc(f.Calculate)
		if !ok {
			return geom.Point{}, fmt.Errorf("calc hook %q is not registered", f.Calculate)
		}
		required := make(map[string][]geom.Point, len(f.Requires))
		for _, dep := range f.Requires {
			required[dep] = geom.ClonePoints(points[dep])
		}
		return hook(ctx, &registry.CalcCall{
			Annotation: ann.Name,
			Target:     target,
			Points:     required,
			Shared:     shared,
		})
	}
	pts := points[f.Ref]
	// Dependencies() already guaranteed pts is non-empty.
	return pts[len(pts)-1], nil
}

// DrawnDependents returns the names of annotations with drawn points whose
// fixed endpoints require the given annotation, sorted. Editing an
// annotation that drawn annotations depend on would silently invalidate
// their pinned endpoints, so callers surface this list before allowing a
// selection.
func DrawnDependents(model *config.Model, name string, points map[string][]geom.Point) []string {
	var out []string
	for _, other := range model.AnnotationsInOrder() {
		if other.Name == name || len(points[other.Name]) == 0 {
			continue
		}
		for _, dep := range other.Dependencies() {
			if dep == name {
				out = append(out, other.Name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}
