package config

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

// Validate performs the structural checks that do not require hook handlers:
// target key shape, annotation kinds, grid/figure references, and fixed
// point references. Dependency cycles are detected separately by the
// anngraph package once the active set is known; the app additionally runs
// that check over the full annotation set at load time.
func (m *Model) Validate() error {
	if len(m.Targets) == 0 {
		return Errorf("targets", "at least one target key is required")
	}
	seen := make(map[string]struct{}, len(m.Targets))
	for _, k := range m.Targets {
		section := "targets." + k.Name
		if _, dup := seen[k.Name]; dup {
			return Errorf(section, "duplicate target key")
		}
		seen[k.Name] = struct{}{}
		switch {
		case k.Hook != "" && len(k.Values) > 0:
			return Errorf(section, "target key must have either values or a hook, not both")
		case k.Hook == "" && len(k.Values) == 0:
			return Errorf(section, "target key must have a non-empty value list or a hook")
		}
	}

	figureNames := make([]string, 0, len(m.Figures.Hooks))
	for name := range m.Figures.Hooks {
		figureNames = append(figureNames, name)
	}
	sort.Strings(figureNames)

	for _, name := range m.Order {
		ann := m.Annotations[name]
		section := "annotations." + name
		switch ann.Kind {
		case KindPoint, KindContour, KindBoundary:
		default:
			return Errorf(section, "kind must be one of 'point', 'contour', or 'boundary', got %q", ann.Kind)
		}
		if len(ann.Grid) == 0 {
			return Errorf(section, "grid is required and must not be empty")
		}
		cols := len(ann.Grid[0])
		for _, row := range ann.Grid {
			if len(row) != cols {
				return Errorf(section, "grid must not be ragged")
			}
			for _, cell := range row {
				if cell == "" {
					continue
				}
				if _, ok := m.Figures.HookFor(cell); !ok {
					return Errorf(section, "grid references unknown figure %q%s",
						cell, suggestion(cell, figureNames))
				}
			}
		}
		if err := ann.PlotStyle.Validate(section + ".plot_options"); err != nil {
			return err
		}
		if err := ann.FgStyle.Validate(section + ".fg_options"); err != nil {
			return err
		}
		for end, f := range map[string]*FixedPoint{"fixed_head": ann.FixedHead, "fixed_tail": ann.FixedTail} {
			if f == nil {
				continue
			}
			if f.Ref == "" && f.Calculate == "" {
				return Errorf(section, "%s must carry either 'ref' or 'calculate'", end)
			}
			for _, dep := range f.Dependencies() {
				if dep == name {
					return Errorf(section, "%s must not reference the annotation itself", end)
				}
				if _, ok := m.Annotations[dep]; !ok {
					return Errorf(section, "%s references unknown annotation %q%s",
						end, dep, suggestion(dep, m.Order))
				}
			}
		}
	}

	if m.Display != nil {
		if m.Display.DPI < 1 {
			return Errorf("display", "dpi must be a positive integer, got %d", m.Display.DPI)
		}
		if m.Display.FigSize[0] <= 0 || m.Display.FigSize[1] <= 0 {
			return Errorf("display", "figsize values must be positive")
		}
		if err := m.Display.Plot.Validate("display.plot_options"); err != nil {
			return err
		}
		if err := m.Display.Fg.Validate("display.fg_options"); err != nil {
			return err
		}
	}
	return nil
}

// suggestion returns a "did you mean" hint when a known name is within a
// small edit distance of the unknown one.
func suggestion(name string, known []string) string {
	best, bestDist := "", 4
	for _, candidate := range known {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}
