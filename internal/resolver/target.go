package resolver

import (
	"strings"

	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/registry"
)

// Target is a fully resolved target: an ordered mapping from key name to
// value, where concrete keys hold the user's choice and hook keys hold the
// hook's computed result.
type Target struct {
	keys   []*config.TargetKey
	values map[string]any
}

// Keys returns the key names in declaration order.
func (t *Target) Keys() []string {
	out := make([]string, len(t.keys))
	for i, k := range t.keys {
		out[i] = k.Name
	}
	return out
}

// Value returns the resolved value for a key.
func (t *Target) Value(name string) (any, bool) {
	v, ok := t.values[name]
	return v, ok
}

// String returns the resolved value for a key when it is a string.
func (t *Target) String(name string) (string, bool) {
	if v, ok := t.values[name]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

// ConcreteValues returns the values of the concrete (non-hook) keys in
// declaration order. Keys with a single allowed value are included: they are
// part of every resolved target even though they never appear on a
// selection surface.
func (t *Target) ConcreteValues() []string {
	var out []string
	for _, k := range t.keys {
		if k.Concrete() {
			out = append(out, t.values[k.Name].(string))
		}
	}
	return out
}

// PathKey is the deterministic storage address for this target, derived
// from the concrete values only. Hook results never influence it, so two
// resolutions with identical concrete choices always share a path key.
func (t *Target) PathKey() string {
	return strings.Join(t.ConcreteValues(), "/")
}

// View exposes the target to hook invocations.
func (t *Target) View() *registry.TargetView {
	names := make([]string, len(t.keys))
	values := make(map[string]any, len(t.values))
	for i, k := range t.keys {
		names[i] = k.Name
		values[k.Name] = t.values[k.Name]
	}
	return registry.NewTargetView(names, values)
}
