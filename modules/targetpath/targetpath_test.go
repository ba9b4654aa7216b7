package targetpath

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexmark/cortexmark/internal/registry"
)

func TestComputePath(t *testing.T) {
	view := registry.NewTargetView(
		[]string{"Subject", "Session", "Hemisphere"},
		map[string]any{"Subject": "s1", "Session": "anat", "Hemisphere": "LH"},
	)

	got, err := ComputePath(context.Background(), &registry.TargetCall{Key: "Path", Prefix: view})
	require.NoError(t, err)
	assert.Equal(t, "s1/anat/LH", got)
}

func TestComputePath_SkipsNonStrings(t *testing.T) {
	view := registry.NewTargetView(
		[]string{"Subject", "Mesh"},
		map[string]any{"Subject": "s1", "Mesh": struct{}{}},
	)

	got, err := ComputePath(context.Background(), &registry.TargetCall{Key: "Path", Prefix: view})
	require.NoError(t, err)
	assert.Equal(t, "s1", got)
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)
	_, ok := r.Target("TargetPath")
	assert.True(t, ok)
}
