// Package targetpath provides the built-in TargetPath hook: a computed
// target key holding the slash-joined concrete values of its prefix. It is
// useful for workspaces whose data lives under directories mirroring the
// selection.
package targetpath

import (
	"context"
	"strings"

	"github.com/cortexmark/cortexmark/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// ComputePath joins the string values of the prefix keys with "/", in
// declaration order. Non-string prefix values are skipped.
func ComputePath(ctx context.Context, call *registry.TargetCall) (any, error) {
	var parts []string
	for _, key := range call.Prefix.Keys() {
		if s, ok := call.Prefix.String(key); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/"), nil
}

// Register registers the hook with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTarget("TargetPath", ComputePath)
}
