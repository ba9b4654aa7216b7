package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexmark/cortexmark/internal/geom"
	"github.com/cortexmark/cortexmark/internal/registry"
	"github.com/cortexmark/cortexmark/internal/testutil"
)

const appWorkspace = `
init {
  hook = "LoadDataset"
}

target "Subject" {
  values = ["s1", "s2"]
}

target "Hemisphere" {
  values = ["LH", "RH"]
}

target "Path" {
  hook = "BuildPath"
}

figure "_" {
  hook = "RenderAny"
}

annotation "V1" {
  grid = ["curvature"]
}

annotation "V2" {
  grid = ["curvature"]

  fixed_head {
    ref = "V1"
  }
}
`

func appModules() *testutil.HookModule {
	return &testutil.HookModule{
		Inits: map[string]registry.InitHook{
			"LoadDataset": func(ctx context.Context) (any, error) { return "dataset", nil },
		},
		Targets: map[string]registry.TargetHook{
			"BuildPath": func(ctx context.Context, call *registry.TargetCall) (any, error) {
				s, _ := call.Prefix.String("Subject")
				h, _ := call.Prefix.String("Hemisphere")
				return s + "/" + h, nil
			},
		},
		Figures: map[string]registry.FigureHook{
			"RenderAny": func(ctx context.Context, call *registry.FigureCall) (*registry.Figure, error) {
				return &registry.Figure{
					Image: []byte("img:" + call.Figure),
					XLim:  [2]float64{0, 1},
					YLim:  [2]float64{0, 1},
				}, nil
			},
		},
	}
}

func TestBoot_FullWorkspace(t *testing.T) {
	result := testutil.RunWorkspaceTest(t, map[string]string{"main.hcl": appWorkspace}, appModules())
	require.NoError(t, result.Err)
	require.NotNil(t, result.App)

	model := result.App.Model()
	assert.Len(t, model.Targets, 3)
	assert.Equal(t, []string{"V1", "V2"}, model.Order)
}

func TestBoot_EndToEndAnnotationFlow(t *testing.T) {
	result := testutil.RunWorkspaceTest(t, map[string]string{"main.hcl": appWorkspace}, appModules())
	require.NoError(t, result.Err)

	sess := result.App.Session()
	ctx := context.Background()

	view, err := sess.Select(ctx, map[string]string{"Subject": "s1", "Hemisphere": "LH"})
	require.NoError(t, err)
	assert.Equal(t, []string{"V1", "V2"}, view.Active)
	assert.Contains(t, view.NotReady, "V2")

	require.NoError(t, sess.SelectAnnotation(ctx, "V1"))
	require.NoError(t, sess.Editor().AddPoint(geom.Point{X: 1, Y: 2}))
	rev, err := sess.Save(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, rev)

	grid, err := sess.Grid(ctx, "V1")
	require.NoError(t, err)
	require.Len(t, grid, 1)
	assert.Equal(t, []byte("img:curvature"), grid[0][0].Image)
}

func TestBoot_MissingHookFailsStartup(t *testing.T) {
	result := testutil.RunWorkspaceTest(t, map[string]string{"main.hcl": appWorkspace},
		&testutil.HookModule{})
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "registry validation failed")
	assert.Contains(t, result.Err.Error(), "BuildPath")
}

func TestBoot_DependencyCycleFailsStartup(t *testing.T) {
	cyclic := `
		target "Subject" { values = ["s1"] }
		figure "_" { hook = "RenderAny" }
		annotation "A" {
			grid = ["f"]
			fixed_head { ref = "B" }
		}
		annotation "B" {
			grid = ["f"]
			fixed_head { ref = "A" }
		}
	`
	result := testutil.RunWorkspaceTest(t, map[string]string{"main.hcl": cyclic}, appModules())
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "annotation dependency cycle")
}

func TestBoot_InvalidStyleFailsStartup(t *testing.T) {
	bad := `
		target "Subject" { values = ["s1"] }
		figure "_" { hook = "RenderAny" }
		annotation "V1" {
			grid = ["f"]
			plot_options {
				linewidth = 99
			}
		}
	`
	result := testutil.RunWorkspaceTest(t, map[string]string{"main.hcl": bad}, appModules())
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "linewidth")
}
