// Package figure renders and caches the figure cells shown while drawing.
// Rendering is delegated to registered figure hooks; encoded images and
// their data-space limits are cached on disk per target so re-selecting a
// target never re-renders.
package figure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"

	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/ctxlog"
	"github.com/cortexmark/cortexmark/internal/registry"
	"github.com/cortexmark/cortexmark/internal/resolver"
)

// limits is the sidecar metadata stored next to each cached image.
type limits struct {
	XLim [2]float64 `json:"xlim"`
	YLim [2]float64 `json:"ylim"`
}

// Generator renders figure cells through registered hooks with a disk cache
// under <cacheDir>/figures/<path-key>/.
type Generator struct {
	cacheDir string
	model    *config.Model
	reg      *registry.Registry
	shared   any
	group    singleflight.Group
}

// New creates a generator caching under cacheDir.
func New(cacheDir string, model *config.Model, reg *registry.Registry, shared any) *Generator {
	return &Generator{cacheDir: cacheDir, model: model, reg: reg, shared: shared}
}

func (g *Generator) cachePaths(pathKey, name string) (img, meta string) {
	dir := filepath.Join(g.cacheDir, "figures", filepath.FromSlash(pathKey))
	return filepath.Join(dir, name+".png"), filepath.Join(dir, name+".json")
}

// Figure returns the rendered figure cell for the target. An empty name
// produces a blank cell with unit limits. Cached renders are served from
// disk; concurrent requests for the same cell share one render.
func (g *Generator) Figure(ctx context.Context, target *resolver.Target, name string) (*registry.Figure, error) {
	if name == "" {
		return Blank(g.model.Display)
	}
	pathKey := target.PathKey()
	key := pathKey + "\x1f" + name
	fig, err, _ := g.group.Do(key, func() (any, error) {
		return g.figure(ctx, target, pathKey, name)
	})
	if err != nil {
		return nil, err
	}
	return fig.(*registry.Figure), nil
}

func (g *Generator) figure(ctx context.Context, target *resolver.Target, pathKey, name string) (*registry.Figure, error) {
	imgPath, metaPath := g.cachePaths(pathKey, name)
	if fig, ok := g.readCache(imgPath, metaPath); ok {
		return fig, nil
	}

	hookName, ok := g.model.Figures.HookFor(name)
	if !ok {
		return nil, fmt.Errorf("figure %q has no rendering hook", name)
	}
	hook, ok := g.reg.Figure(hookName)
	if !ok {
		return nil, fmt.Errorf("figure %q: hook %q is not registered", name, hookName)
	}

	call := &registry.FigureCall{
		Figure:  name,
		Target:  target.View(),
		FigSize: g.model.Display.FigSize,
		DPI:     g.model.Display.DPI,
		Shared:  g.shared,
	}
	if err := g.runWrap(ctx, g.model.Figures.Init, call); err != nil {
		return nil, fmt.Errorf("figure %q: init wrapper: %w", name, err)
	}
	ctxlog.FromContext(ctx).Debug("Rendering figure.", "figure", name, "hook", hookName, "path_key", pathKey)
	fig, err := hook(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("rendering figure %q: %w", name, err)
	}
	if err := g.runWrap(ctx, g.model.Figures.Term, call); err != nil {
		return nil, fmt.Errorf("figure %q: term wrapper: %w", name, err)
	}

	if err := g.writeCache(imgPath, metaPath, fig); err != nil {
		// A cache write failure is not a render failure.
		ctxlog.FromContext(ctx).Warn("Failed to cache figure.", "figure", name, "error", err)
	}
	return fig, nil
}

func (g *Generator) runWrap(ctx context.Context, name string, call *registry.FigureCall) error {
	if name == "" {
		return nil
	}
	wrap, ok := g.reg.Wrap(name)
	if !ok {
		return fmt.Errorf("wrap hook %q is not registered", name)
	}
	return wrap(ctx, call)
}

func (g *Generator) readCache(imgPath, metaPath string) (*registry.Figure, bool) {
	img, err := os.ReadFile(imgPath)
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, false
	}
	var lim limits
	if err := json.Unmarshal(data, &lim); err != nil {
		return nil, false
	}
	return &registry.Figure{Image: img, XLim: lim.XLim, YLim: lim.YLim}, true
}

func (g *Generator) writeCache(imgPath, metaPath string, fig *registry.Figure) error {
	if err := os.MkdirAll(filepath.Dir(imgPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(imgPath, fig.Image, 0o644); err != nil {
		return err
	}
	data, err := json.Marshal(&limits{XLim: fig.XLim, YLim: fig.YLim})
	if err != nil {
		return err
	}
	return os.WriteFile(metaPath, data, 0o644)
}

// Grid renders the annotation's full figure grid for the target. Every
// rendered cell must report the same data-space limits, since drawn
// coordinates are shared across the grid; a mismatch is an error.
func (g *Generator) Grid(ctx context.Context, target *resolver.Target, ann *config.Annotation) ([][]*registry.Figure, error) {
	out := make([][]*registry.Figure, len(ann.Grid))
	var ref *registry.Figure
	var refName string
	for i, row := range ann.Grid {
		out[i] = make([]*registry.Figure, len(row))
		for j, name := range row {
			fig, err := g.Figure(ctx, target, name)
			if err != nil {
				return nil, err
			}
			out[i][j] = fig
			if name == "" {
				continue
			}
			if ref == nil {
				ref, refName = fig, name
				continue
			}
			if fig.XLim != ref.XLim || fig.YLim != ref.YLim {
				return nil, fmt.Errorf(
					"annotation %q: figure %q limits (x=%v, y=%v) differ from figure %q (x=%v, y=%v)",
					ann.Name, name, fig.XLim, fig.YLim, refName, ref.XLim, ref.YLim)
			}
		}
	}
	return out, nil
}

// Invalidate removes every cached render for the target. The next request
// re-invokes the hooks.
func (g *Generator) Invalidate(pathKey string) error {
	dir := filepath.Join(g.cacheDir, "figures", filepath.FromSlash(pathKey))
	if err := os.RemoveAll(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clearing figure cache: %w", err)
	}
	return nil
}
