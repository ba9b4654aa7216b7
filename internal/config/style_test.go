package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool      { return &b }

func styleTestModel() *Model {
	return &Model{
		Annotations: map[string]*Annotation{
			"V1": {
				Name:      "V1",
				Kind:      KindContour,
				PlotStyle: Style{Color: strPtr("red")},
				FgStyle:   Style{LineWidth: f64Ptr(3)},
			},
			"plain": {Name: "plain", Kind: KindContour},
		},
		Order: []string{"V1", "plain"},
		Display: &Display{
			FigSize: [2]float64{4, 4},
			DPI:     128,
			Plot:    Style{LineWidth: f64Ptr(2), LineStyle: strPtr("dashed")},
			Fg:      Style{Color: strPtr("yellow")},
		},
	}
}

func TestStyleFor_BackgroundCascade(t *testing.T) {
	m := styleTestModel()

	style, err := m.StyleFor("V1", false)
	require.NoError(t, err)

	// Annotation plot options override the display tier, which overrides the
	// built-in defaults; foreground tiers are not applied.
	assert.Equal(t, "red", style.Color)
	assert.Equal(t, 2.0, style.LineWidth)
	assert.Equal(t, "dashed", style.LineStyle)
	assert.Equal(t, 1.0, style.MarkerSize)
	assert.True(t, style.Visible)
}

func TestStyleFor_ForegroundCascade(t *testing.T) {
	m := styleTestModel()

	style, err := m.StyleFor("V1", true)
	require.NoError(t, err)

	// The display foreground tier overrides the annotation's plot options,
	// and the annotation's fg options win over everything.
	assert.Equal(t, "yellow", style.Color)
	assert.Equal(t, 3.0, style.LineWidth)
	assert.Equal(t, "dashed", style.LineStyle)
}

func TestStyleFor_DefaultsOnly(t *testing.T) {
	m := styleTestModel()

	style, err := m.StyleFor("plain", false)
	require.NoError(t, err)
	assert.Equal(t, DefaultStyle(), style)
}

func TestStyleFor_UnknownAnnotation(t *testing.T) {
	m := styleTestModel()

	_, err := m.StyleFor("nope", false)
	require.Error(t, err)
}

func TestStyleValidate(t *testing.T) {
	testCases := []struct {
		name    string
		style   Style
		wantErr string
	}{
		{name: "empty style is valid", style: Style{}},
		{name: "valid full style", style: Style{
			Color:      strPtr("red"),
			LineWidth:  f64Ptr(2),
			LineStyle:  strPtr("dotted"),
			MarkerSize: f64Ptr(4),
			Visible:    boolPtr(false),
		}},
		{name: "linewidth too large", style: Style{LineWidth: f64Ptr(21)}, wantErr: "linewidth"},
		{name: "negative markersize", style: Style{MarkerSize: f64Ptr(-1)}, wantErr: "markersize"},
		{name: "unknown linestyle", style: Style{LineStyle: strPtr("wavy")}, wantErr: "linestyle"},
		{name: "empty color", style: Style{Color: strPtr("")}, wantErr: "color"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.style.Validate("display.plot_options")
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Contains(t, err.Error(), "display.plot_options")
		})
	}
}
