package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Model is the unified representation of the entire annotation workspace
// configuration: target keys, annotation definitions, figure bindings, and
// display defaults.
type Model struct {
	// Targets holds the target keys in declaration order. Order is
	// authoritative: a computed key may only consume keys declared before it.
	Targets []*TargetKey

	// Annotations maps annotation name to its definition. Order preserves
	// the declaration order of the names.
	Annotations map[string]*Annotation
	Order       []string

	Figures  *FigureSet
	Display  *Display
	InitHook string
}

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads all configuration files under the given paths and
	// translates them into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// TargetKey describes one entry of the ordered target chain. Exactly one of
// Values and Hook is set: Values for a concrete user choice, Hook for a
// value computed from the keys declared before it.
type TargetKey struct {
	Name   string
	Values []string
	Hook   string
}

// Concrete reports whether the key holds a finite list of user-selectable
// values rather than a computation hook.
func (k *TargetKey) Concrete() bool { return k.Hook == "" }

// SelectionKeys returns the concrete target keys with more than one allowed
// value, in declaration order. Keys with exactly one value are resolved
// implicitly and never appear on a selection surface.
func (m *Model) SelectionKeys() []*TargetKey {
	var keys []*TargetKey
	for _, k := range m.Targets {
		if k.Concrete() && len(k.Values) > 1 {
			keys = append(keys, k)
		}
	}
	return keys
}

// AnnotationsInOrder returns the annotation definitions in declaration order.
func (m *Model) AnnotationsInOrder() []*Annotation {
	out := make([]*Annotation, 0, len(m.Order))
	for _, name := range m.Order {
		out = append(out, m.Annotations[name])
	}
	return out
}

// Kind determines an annotation's point-count and closure rules.
type Kind string

const (
	// KindPoint holds exactly one coordinate; adding another replaces it.
	KindPoint Kind = "point"
	// KindContour holds zero or more coordinates and stays open.
	KindContour Kind = "contour"
	// KindBoundary is drawn open but implicitly closed whenever a geometric
	// consumer reads it.
	KindBoundary Kind = "boundary"
)

// Annotation is the definition of a single drawable annotation.
type Annotation struct {
	Name string
	Kind Kind

	// Grid is the rectangular matrix of figure names shown while drawing
	// this annotation. An empty cell renders blank.
	Grid [][]string

	// Filter is an optional predicate expression evaluated against the
	// resolved target; nil means always enabled.
	Filter hcl.Expression

	PlotStyle Style
	FgStyle   Style

	FixedHead *FixedPoint
	FixedTail *FixedPoint
}

// FixedPoint pins an annotation endpoint either to another annotation's last
// drawn point (Ref) or to a coordinate computed by a registered hook
// (Requires + Calculate). When both forms are present, Calculate wins.
type FixedPoint struct {
	Ref       string
	Requires  []string
	Calculate string
}

// Dependencies returns the annotation names that must have drawn points
// before this fixed point can be resolved.
func (f *FixedPoint) Dependencies() []string {
	if f == nil {
		return nil
	}
	if f.Calculate != "" {
		return f.Requires
	}
	if f.Ref != "" {
		return []string{f.Ref}
	}
	return nil
}

// Dependencies returns the union of the annotation's fixed head and tail
// dependencies, de-duplicated, preserving first-seen order.
func (a *Annotation) Dependencies() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, f := range []*FixedPoint{a.FixedHead, a.FixedTail} {
		for _, dep := range f.Dependencies() {
			if _, ok := seen[dep]; ok {
				continue
			}
			seen[dep] = struct{}{}
			out = append(out, dep)
		}
	}
	return out
}

// FigureSet binds figure names to rendering hooks. The wildcard entry backs
// any figure name without an explicit binding; Init and Term are reserved
// wrapper hooks run around every figure hook.
type FigureSet struct {
	Hooks    map[string]string
	Wildcard string
	Init     string
	Term     string
}

// HookFor returns the rendering hook bound to the figure name, falling back
// to the wildcard entry when no explicit binding exists.
func (fs *FigureSet) HookFor(name string) (string, bool) {
	if fs == nil {
		return "", false
	}
	if hook, ok := fs.Hooks[name]; ok {
		return hook, true
	}
	if fs.Wildcard != "" {
		return fs.Wildcard, true
	}
	return "", false
}

// Display holds the global figure defaults and the two global style tiers.
type Display struct {
	FigSize [2]float64
	DPI     int
	Plot    Style
	Fg      Style
}

// ImageSize returns the pixel dimensions of a rendered figure cell.
func (d *Display) ImageSize() (w, h int) {
	return int(float64(d.DPI)*d.FigSize[0] + 0.5), int(float64(d.DPI)*d.FigSize[1] + 0.5)
}
