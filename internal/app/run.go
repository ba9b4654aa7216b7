package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cortexmark/cortexmark/internal/ctxlog"
)

// Run prints a summary of the loaded workspace: the selection surface, the
// annotations with their dependency structure, and the figure bindings.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	fmt.Fprintf(a.outW, "Workspace: %s\n", a.config.ConfigPath)
	fmt.Fprintf(a.outW, "User: %s\n\n", a.config.User)

	fmt.Fprintln(a.outW, "Target keys:")
	for _, key := range a.model.Targets {
		if key.Concrete() {
			fmt.Fprintf(a.outW, "  %s: %s\n", key.Name, strings.Join(key.Values, ", "))
		} else {
			fmt.Fprintf(a.outW, "  %s: computed by %s\n", key.Name, key.Hook)
		}
	}

	fmt.Fprintln(a.outW, "\nAnnotations:")
	for _, ann := range a.model.AnnotationsInOrder() {
		line := fmt.Sprintf("  %s (%s)", ann.Name, ann.Kind)
		if deps := ann.Dependencies(); len(deps) > 0 {
			line += " requires " + strings.Join(deps, ", ")
		}
		fmt.Fprintln(a.outW, line)
	}

	if a.model.Figures != nil {
		fmt.Fprintln(a.outW, "\nFigures:")
		names := make([]string, 0, len(a.model.Figures.Hooks))
		for name := range a.model.Figures.Hooks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(a.outW, "  %s: %s\n", name, a.model.Figures.Hooks[name])
		}
		if a.model.Figures.Wildcard != "" {
			fmt.Fprintf(a.outW, "  _: %s\n", a.model.Figures.Wildcard)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
