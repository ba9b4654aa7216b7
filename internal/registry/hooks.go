package registry

import (
	"context"

	"github.com/cortexmark/cortexmark/internal/geom"
)

// TargetView is the read-only, ordered view of resolved target keys that a
// hook receives. A target hook only ever sees the keys declared before its
// own, so hooks cannot introduce forward references.
type TargetView struct {
	keys   []string
	values map[string]any
}

// NewTargetView builds a view over the given keys in order. The values map
// is used as-is; callers hand over ownership.
func NewTargetView(keys []string, values map[string]any) *TargetView {
	return &TargetView{keys: keys, values: values}
}

// Keys returns the key names in declaration order.
func (v *TargetView) Keys() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Value returns the resolved value for a key.
func (v *TargetView) Value(name string) (any, bool) {
	val, ok := v.values[name]
	return val, ok
}

// String returns the resolved value for a key when it is a string.
func (v *TargetView) String(name string) (string, bool) {
	if val, ok := v.values[name]; ok {
		if s, ok := val.(string); ok {
			return s, true
		}
	}
	return "", false
}

// Len returns the number of resolved keys in the view.
func (v *TargetView) Len() int { return len(v.keys) }

// InitHook runs once at startup and produces the shared, read-only state
// passed to every other hook invocation.
type InitHook func(ctx context.Context) (any, error)

// TargetCall carries the inputs of a target hook invocation.
type TargetCall struct {
	// Key is the name of the target key being computed.
	Key string
	// Prefix is the ordered mapping of all target keys declared before Key.
	Prefix *TargetView
	// Shared is the init hook's result.
	Shared any
}

// TargetHook computes a derived target value from the resolved prefix. Hook
// results may be large derived objects; the resolver memoises them per
// prefix.
type TargetHook func(ctx context.Context, call *TargetCall) (any, error)

// CalcCall carries the inputs of a fixed-point calculation hook invocation.
type CalcCall struct {
	// Annotation is the name of the annotation whose endpoint is computed.
	Annotation string
	Target     *TargetView
	// Points exposes the already-resolved annotation instances by name.
	// Every annotation listed in the fixed point's requires clause is
	// guaranteed to be present with at least one point.
	Points map[string][]geom.Point
	Shared any
}

// CalcHook computes a single fixed-endpoint coordinate.
type CalcHook func(ctx context.Context, call *CalcCall) (geom.Point, error)

// Figure is the rendered output of a figure hook: encoded image bytes plus
// the data-space coordinate ranges the image covers.
type Figure struct {
	Image []byte
	XLim  [2]float64
	YLim  [2]float64
}

// FigureCall carries the inputs of a figure hook invocation.
type FigureCall struct {
	// Figure is the name of the figure cell being rendered.
	Figure  string
	Target  *TargetView
	FigSize [2]float64
	DPI     int
	Shared  any
}

// FigureHook renders one figure cell for a target.
type FigureHook func(ctx context.Context, call *FigureCall) (*Figure, error)

// WrapHook runs before (init) or after (term) every figure hook, for shared
// setup and teardown such as dataset handles or render state.
type WrapHook func(ctx context.Context, call *FigureCall) error
