package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/geom"
)

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	r.RegisterTarget("BuildPath", func(ctx context.Context, call *TargetCall) (any, error) {
		return "path", nil
	})
	r.RegisterCalc("Midpoint", func(ctx context.Context, call *CalcCall) (geom.Point, error) {
		return geom.Point{}, nil
	})

	_, ok := r.Target("BuildPath")
	assert.True(t, ok)
	_, ok = r.Target("Midpoint")
	assert.False(t, ok)
	_, ok = r.Calc("Midpoint")
	assert.True(t, ok)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := New()
	hook := func(ctx context.Context, call *TargetCall) (any, error) { return nil, nil }
	r.RegisterTarget("BuildPath", hook)
	assert.Panics(t, func() { r.RegisterTarget("BuildPath", hook) })
}

func TestTargetView(t *testing.T) {
	v := NewTargetView([]string{"Subject", "Depth"}, map[string]any{
		"Subject": "s1",
		"Depth":   3,
	})

	assert.Equal(t, []string{"Subject", "Depth"}, v.Keys())
	assert.Equal(t, 2, v.Len())

	s, ok := v.String("Subject")
	require.True(t, ok)
	assert.Equal(t, "s1", s)

	// Non-string values are reachable via Value but not String.
	_, ok = v.String("Depth")
	assert.False(t, ok)
	d, ok := v.Value("Depth")
	require.True(t, ok)
	assert.Equal(t, 3, d)
}

func validationModel() *config.Model {
	return &config.Model{
		InitHook: "Setup",
		Targets: []*config.TargetKey{
			{Name: "Subject", Values: []string{"s1"}},
			{Name: "Path", Hook: "BuildPath"},
		},
		Annotations: map[string]*config.Annotation{
			"V2": {
				Name:      "V2",
				FixedHead: &config.FixedPoint{Requires: []string{"V1"}, Calculate: "HeadOfV1"},
			},
		},
		Order: []string{"V2"},
		Figures: &config.FigureSet{
			Hooks:    map[string]string{"curvature": "RenderCurvature"},
			Wildcard: "RenderAny",
			Init:     "FigSetup",
			Term:     "FigTeardown",
		},
	}
}

func fullyRegistered() *Registry {
	r := New()
	r.RegisterInit("Setup", func(ctx context.Context) (any, error) { return nil, nil })
	r.RegisterTarget("BuildPath", func(ctx context.Context, call *TargetCall) (any, error) { return "", nil })
	r.RegisterCalc("HeadOfV1", func(ctx context.Context, call *CalcCall) (geom.Point, error) { return geom.Point{}, nil })
	r.RegisterFigure("RenderCurvature", func(ctx context.Context, call *FigureCall) (*Figure, error) { return &Figure{}, nil })
	r.RegisterFigure("RenderAny", func(ctx context.Context, call *FigureCall) (*Figure, error) { return &Figure{}, nil })
	r.RegisterWrap("FigSetup", func(ctx context.Context, call *FigureCall) error { return nil })
	r.RegisterWrap("FigTeardown", func(ctx context.Context, call *FigureCall) error { return nil })
	return r
}

func TestValidate_AllHooksPresent(t *testing.T) {
	require.NoError(t, fullyRegistered().Validate(context.Background(), validationModel()))
}

func TestValidate_ReportsEveryMissingHook(t *testing.T) {
	err := New().Validate(context.Background(), validationModel())
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "registry validation failed")
	assert.Contains(t, msg, "init: hook 'Setup' is not registered")
	assert.Contains(t, msg, "targets.Path: target hook 'BuildPath' is not registered")
	assert.Contains(t, msg, "calc hook 'HeadOfV1' is not registered")
	assert.Contains(t, msg, "figure hook 'RenderCurvature' is not registered")
	assert.Contains(t, msg, "figures._: figure hook 'RenderAny' is not registered")
	assert.Contains(t, msg, "wrap hook 'FigSetup' is not registered")
	assert.Contains(t, msg, "wrap hook 'FigTeardown' is not registered")
}
