package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexmark/cortexmark/internal/geom"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	sets := map[string][]geom.Point{
		"V1": {{X: 1, Y: 2}, {X: 3.5, Y: -4}},
		"V2": {},
	}
	rev, err := s.Save(ctx, "bob/s1/LH", sets)
	require.NoError(t, err)
	require.NotEmpty(t, rev)

	loaded, err := s.Load(ctx, "bob/s1/LH", []string{"V1", "V2"})
	require.NoError(t, err)
	assert.Equal(t, sets["V1"], loaded["V1"])
	// An explicitly saved empty set comes back empty, not missing.
	require.Contains(t, loaded, "V2")
	assert.Empty(t, loaded["V2"])
}

func TestLoad_MissingFileIsEmptyWorkspace(t *testing.T) {
	s := New(t.TempDir())

	loaded, err := s.Load(context.Background(), "bob/s2/RH", []string{"V1", "V2"})
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Empty(t, loaded["V1"])
	assert.Empty(t, loaded["V2"])
}

func TestLoad_UnknownAnnotationsGetEmptySets(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	_, err := s.Save(ctx, "bob/s1/LH", map[string][]geom.Point{"V1": {{X: 1, Y: 1}}})
	require.NoError(t, err)

	// A newly configured annotation has no saved entry yet.
	loaded, err := s.Load(ctx, "bob/s1/LH", []string{"V1", "V9"})
	require.NoError(t, err)
	assert.Len(t, loaded["V1"], 1)
	require.Contains(t, loaded, "V9")
	assert.Empty(t, loaded["V9"])
}

func TestLoad_IgnoresRemovedAnnotations(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	_, err := s.Save(ctx, "bob/s1/LH", map[string][]geom.Point{
		"V1":      {{X: 1, Y: 1}},
		"retired": {{X: 9, Y: 9}},
	})
	require.NoError(t, err)

	// The saved file predates a configuration change that dropped "retired".
	loaded, err := s.Load(ctx, "bob/s1/LH", []string{"V1"})
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
	assert.NotContains(t, loaded, "retired")
}

func TestLoad_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	path := filepath.Join(dir, "bob", "s1", "LH", "annotations.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := s.Load(context.Background(), "bob/s1/LH", []string{"V1"})
	var corrupt *CorruptError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, path, corrupt.Path)
}

func TestSave_RevisionChangesEverySave(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()
	sets := map[string][]geom.Point{"V1": {{X: 1, Y: 1}}}

	rev1, err := s.Save(ctx, "bob/s1/LH", sets)
	require.NoError(t, err)
	rev2, err := s.Save(ctx, "bob/s1/LH", sets)
	require.NoError(t, err)
	assert.NotEqual(t, rev1, rev2)

	got, err := s.Revision(ctx, "bob/s1/LH")
	require.NoError(t, err)
	assert.Equal(t, rev2, got)
}

func TestRevision_Unsaved(t *testing.T) {
	s := New(t.TempDir())
	rev, err := s.Revision(context.Background(), "bob/s1/LH")
	require.NoError(t, err)
	assert.Empty(t, rev)
}

func TestSave_TargetsDoNotCollide(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	_, err := s.Save(ctx, "bob/s1/LH", map[string][]geom.Point{"V1": {{X: 1, Y: 1}}})
	require.NoError(t, err)
	_, err = s.Save(ctx, "bob/s1/RH", map[string][]geom.Point{"V1": {{X: 2, Y: 2}}})
	require.NoError(t, err)

	lh, err := s.Load(ctx, "bob/s1/LH", []string{"V1"})
	require.NoError(t, err)
	rh, err := s.Load(ctx, "bob/s1/RH", []string{"V1"})
	require.NoError(t, err)
	assert.Equal(t, geom.Point{X: 1, Y: 1}, lh["V1"][0])
	assert.Equal(t, geom.Point{X: 2, Y: 2}, rh["V1"][0])
}

func TestSave_CancelledContext(t *testing.T) {
	s := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Save(ctx, "bob/s1/LH", nil)
	require.ErrorIs(t, err, context.Canceled)
}
