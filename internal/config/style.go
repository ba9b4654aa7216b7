package config

import "fmt"

// Style is a partial style specification. Nil fields are inherited from the
// next less-specific tier when the style is resolved.
type Style struct {
	Color      *string
	LineWidth  *float64
	LineStyle  *string
	MarkerSize *float64
	Visible    *bool
}

// ResolvedStyle is a fully reified style with every field populated.
type ResolvedStyle struct {
	Color      string
	LineWidth  float64
	LineStyle  string
	MarkerSize float64
	Visible    bool
}

// DefaultStyle returns the built-in base tier of the style cascade.
func DefaultStyle() ResolvedStyle {
	return ResolvedStyle{
		Color:      "black",
		LineWidth:  1,
		LineStyle:  "solid",
		MarkerSize: 1,
		Visible:    true,
	}
}

var lineStyles = map[string]struct{}{
	"solid":      {},
	"dashed":     {},
	"dot-dashed": {},
	"dotted":     {},
}

// Validate checks the specified fields of a partial style. Unset fields are
// always valid since they inherit.
func (s Style) Validate(section string) error {
	if s.LineWidth != nil && (*s.LineWidth < 0 || *s.LineWidth > 20) {
		return Errorf(section, "linewidth %g out of range [0, 20]", *s.LineWidth)
	}
	if s.MarkerSize != nil && (*s.MarkerSize < 0 || *s.MarkerSize > 20) {
		return Errorf(section, "markersize %g out of range [0, 20]", *s.MarkerSize)
	}
	if s.LineStyle != nil {
		if _, ok := lineStyles[*s.LineStyle]; !ok {
			return Errorf(section, "invalid linestyle %q", *s.LineStyle)
		}
	}
	if s.Color != nil && *s.Color == "" {
		return Errorf(section, "color must not be empty")
	}
	return nil
}

// apply overlays the set fields of s onto r.
func (s Style) apply(r ResolvedStyle) ResolvedStyle {
	if s.Color != nil {
		r.Color = *s.Color
	}
	if s.LineWidth != nil {
		r.LineWidth = *s.LineWidth
	}
	if s.LineStyle != nil {
		r.LineStyle = *s.LineStyle
	}
	if s.MarkerSize != nil {
		r.MarkerSize = *s.MarkerSize
	}
	if s.Visible != nil {
		r.Visible = *s.Visible
	}
	return r
}

// StyleFor resolves the style cascade for the named annotation. The tiers
// merge most-specific-wins: built-in defaults, then the global plot options,
// then the annotation's plot options; a foreground lookup additionally
// overlays the global and per-annotation foreground options.
func (m *Model) StyleFor(name string, foreground bool) (ResolvedStyle, error) {
	ann, ok := m.Annotations[name]
	if !ok {
		return ResolvedStyle{}, fmt.Errorf("unknown annotation %q", name)
	}
	style := DefaultStyle()
	if m.Display != nil {
		style = m.Display.Plot.apply(style)
	}
	style = ann.PlotStyle.apply(style)
	if foreground {
		if m.Display != nil {
			style = m.Display.Fg.apply(style)
		}
		style = ann.FgStyle.apply(style)
	}
	return style, nil
}
