package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/ctxlog"
)

// Validate performs a strict parity check between the configuration and the
// registered Go hooks: every hook name the workspace refers to must have a
// matching handler. A mismatch is a startup error, never a runtime surprise.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	if model.InitHook != "" {
		if _, ok := r.inits[model.InitHook]; !ok {
			errs = append(errs, fmt.Sprintf("init: hook '%s' is not registered", model.InitHook))
		}
	}

	for _, key := range model.Targets {
		if key.Hook == "" {
			continue
		}
		if _, ok := r.targets[key.Hook]; !ok {
			errs = append(errs, fmt.Sprintf("targets.%s: target hook '%s' is not registered", key.Name, key.Hook))
		}
	}

	for _, name := range model.Order {
		ann := model.Annotations[name]
		for end, f := range map[string]*config.FixedPoint{"fixed_head": ann.FixedHead, "fixed_tail": ann.FixedTail} {
			if f == nil || f.Calculate == "" {
				continue
			}
			if _, ok := r.calcs[f.Calculate]; !ok {
				errs = append(errs, fmt.Sprintf("annotations.%s: %s calc hook '%s' is not registered", name, end, f.Calculate))
			}
		}
	}

	if fs := model.Figures; fs != nil {
		for figName, hook := range fs.Hooks {
			if _, ok := r.figures[hook]; !ok {
				errs = append(errs, fmt.Sprintf("figures.%s: figure hook '%s' is not registered", figName, hook))
			}
		}
		if fs.Wildcard != "" {
			if _, ok := r.figures[fs.Wildcard]; !ok {
				errs = append(errs, fmt.Sprintf("figures._: figure hook '%s' is not registered", fs.Wildcard))
			}
		}
		for label, hook := range map[string]string{"init": fs.Init, "term": fs.Term} {
			if hook == "" {
				continue
			}
			if _, ok := r.wraps[hook]; !ok {
				errs = append(errs, fmt.Sprintf("figures.%s: wrap hook '%s' is not registered", label, hook))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.")
	return nil
}
