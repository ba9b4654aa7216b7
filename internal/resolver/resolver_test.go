package resolver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/registry"
)

func chainModel() *config.Model {
	return &config.Model{
		Targets: []*config.TargetKey{
			{Name: "Subject", Values: []string{"s1", "s2"}},
			{Name: "Session", Values: []string{"anat"}},
			{Name: "Hemisphere", Values: []string{"LH", "RH"}},
			{Name: "Path", Hook: "BuildPath"},
		},
	}
}

func pathHook(calls *atomic.Int64) registry.TargetHook {
	return func(ctx context.Context, call *registry.TargetCall) (any, error) {
		calls.Add(1)
		subject, _ := call.Prefix.String("Subject")
		session, _ := call.Prefix.String("Session")
		hemi, _ := call.Prefix.String("Hemisphere")
		return subject + "/" + session + "/" + hemi, nil
	}
}

func TestResolve_ChainsValues(t *testing.T) {
	var calls atomic.Int64
	reg := registry.New()
	reg.RegisterTarget("BuildPath", pathHook(&calls))

	r, err := New(chainModel(), reg, nil, 0)
	require.NoError(t, err)

	target, err := r.Resolve(context.Background(), map[string]string{
		"Subject": "s1", "Hemisphere": "LH",
	})
	require.NoError(t, err)

	// The single-valued Session key resolves implicitly but is still present.
	session, ok := target.String("Session")
	require.True(t, ok)
	assert.Equal(t, "anat", session)

	path, ok := target.String("Path")
	require.True(t, ok)
	assert.Equal(t, "s1/anat/LH", path)

	assert.Equal(t, []string{"Subject", "Session", "Hemisphere", "Path"}, target.Keys())
	assert.Equal(t, "s1/anat/LH", target.PathKey())
}

func TestResolve_MemoisesPerPrefix(t *testing.T) {
	var calls atomic.Int64
	reg := registry.New()
	reg.RegisterTarget("BuildPath", pathHook(&calls))

	r, err := New(chainModel(), reg, nil, 0)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = r.Resolve(ctx, map[string]string{"Subject": "s1", "Hemisphere": "LH"})
	require.NoError(t, err)
	require.Equal(t, int64(1), calls.Load())

	// Same prefix again: the memo serves the hook value.
	_, err = r.Resolve(ctx, map[string]string{"Subject": "s1", "Hemisphere": "LH"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())

	// A different hemisphere is a different prefix and recomputes.
	_, err = r.Resolve(ctx, map[string]string{"Subject": "s1", "Hemisphere": "RH"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())

	// Returning to the first prefix is still cached.
	_, err = r.Resolve(ctx, map[string]string{"Subject": "s1", "Hemisphere": "LH"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestResolve_MissingSelection(t *testing.T) {
	reg := registry.New()
	reg.RegisterTarget("BuildPath", pathHook(&atomic.Int64{}))

	r, err := New(chainModel(), reg, nil, 0)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), map[string]string{"Subject": "s1"})
	var missing *MissingSelectionError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Hemisphere", missing.Key)
}

func TestResolve_InvalidSelection(t *testing.T) {
	reg := registry.New()
	reg.RegisterTarget("BuildPath", pathHook(&atomic.Int64{}))

	r, err := New(chainModel(), reg, nil, 0)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), map[string]string{
		"Subject": "s3", "Hemisphere": "LH",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid selection "s3"`)
}

func TestResolve_HookFailureIsNotMemoised(t *testing.T) {
	var calls atomic.Int64
	fail := errors.New("dataset unavailable")
	reg := registry.New()
	reg.RegisterTarget("BuildPath", func(ctx context.Context, call *registry.TargetCall) (any, error) {
		if calls.Add(1) == 1 {
			return nil, fail
		}
		return "ok", nil
	})

	r, err := New(chainModel(), reg, nil, 0)
	require.NoError(t, err)
	ctx := context.Background()
	selection := map[string]string{"Subject": "s1", "Hemisphere": "LH"}

	_, err = r.Resolve(ctx, selection)
	require.ErrorIs(t, err, fail)

	// The failure left no memo entry; the retry invokes the hook again and
	// succeeds.
	target, err := r.Resolve(ctx, selection)
	require.NoError(t, err)
	path, _ := target.String("Path")
	assert.Equal(t, "ok", path)
	assert.Equal(t, int64(2), calls.Load())
}

func TestResolve_UnregisteredHook(t *testing.T) {
	r, err := New(chainModel(), registry.New(), nil, 0)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), map[string]string{
		"Subject": "s1", "Hemisphere": "LH",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `hook "BuildPath" is not registered`)
}

func TestResolve_ConcurrentSamePrefix(t *testing.T) {
	var calls atomic.Int64
	started := make(chan struct{})
	release := make(chan struct{})
	reg := registry.New()
	reg.RegisterTarget("BuildPath", func(ctx context.Context, call *registry.TargetCall) (any, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		return "shared", nil
	})

	r, err := New(chainModel(), reg, nil, 0)
	require.NoError(t, err)
	ctx := context.Background()
	selection := map[string]string{"Subject": "s1", "Hemisphere": "LH"}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = r.Resolve(ctx, selection)
		}(i)
	}
	<-started
	close(release)
	wg.Wait()

	for _, err := range results {
		require.NoError(t, err)
	}
	// Both resolutions shared one in-flight hook invocation.
	assert.Equal(t, int64(1), calls.Load())
}

func TestResolve_CancelledContext(t *testing.T) {
	reg := registry.New()
	reg.RegisterTarget("BuildPath", pathHook(&atomic.Int64{}))

	r, err := New(chainModel(), reg, nil, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Resolve(ctx, map[string]string{"Subject": "s1", "Hemisphere": "LH"})
	require.ErrorIs(t, err, context.Canceled)
}
