// Package session coordinates one user's annotation workflow: selecting a
// target, loading and editing its annotation instances, and saving them
// back. Target selection follows last-selection-wins: a newer Select call
// cancels and supersedes any still-running older one.
package session

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/cortexmark/cortexmark/internal/anngraph"
	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/ctxlog"
	"github.com/cortexmark/cortexmark/internal/editor"
	"github.com/cortexmark/cortexmark/internal/figure"
	"github.com/cortexmark/cortexmark/internal/filter"
	"github.com/cortexmark/cortexmark/internal/geom"
	"github.com/cortexmark/cortexmark/internal/registry"
	"github.com/cortexmark/cortexmark/internal/resolver"
	"github.com/cortexmark/cortexmark/internal/store"
)

// ErrSuperseded reports that a Select call was overtaken by a newer one and
// its result was discarded.
var ErrSuperseded = errors.New("selection superseded by a newer one")

// ErrNoTarget reports an operation that needs a resolved target before one
// has been selected.
var ErrNoTarget = errors.New("no target selected")

// BlockedError reports an annotation that cannot be edited because drawn
// annotations pin their endpoints to it.
type BlockedError struct {
	Annotation string
	Dependents []string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("annotation %q cannot be edited: drawn annotations depend on it: %v",
		e.Annotation, e.Dependents)
}

// View is the state handed back after a successful target selection.
type View struct {
	Target *resolver.Target
	// Active lists the enabled annotation names in dependency order.
	Active []string
	// NotReady maps annotations whose fixed endpoints cannot be resolved yet
	// to the dependencies still missing drawn points.
	NotReady map[string][]string
}

// Session is one user's editing session over the workspace.
type Session struct {
	model  *config.Model
	res    *resolver.Resolver
	st     *store.Store
	figs   *figure.Generator
	reg    *registry.Registry
	shared any
	user   string

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc

	target *resolver.Target
	active []*config.Annotation
	graph  *anngraph.Graph
	ed     *editor.Editor
}

// New creates a session for the given user.
func New(
	model *config.Model,
	res *resolver.Resolver,
	st *store.Store,
	figs *figure.Generator,
	reg *registry.Registry,
	shared any,
	user string,
) *Session {
	return &Session{
		model:  model,
		res:    res,
		st:     st,
		figs:   figs,
		reg:    reg,
		shared: shared,
		user:   user,
		ed:     editor.New(),
	}
}

// Editor returns the session's point editor for the current target.
func (s *Session) Editor() *editor.Editor { return s.ed }

func (s *Session) saveKey(target *resolver.Target) string {
	return path.Join(s.user, target.PathKey())
}

// Select resolves the selection into a target and loads its annotation
// instances. A concurrent newer Select cancels this one; the overtaken call
// returns ErrSuperseded. Unsaved edits on the previous target are saved
// first.
func (s *Session) Select(ctx context.Context, selection map[string]string) (*View, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	selCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	prevTarget := s.target
	dirty := s.ed.Dirty()
	snapshot := s.ed.PointSets()
	s.mu.Unlock()

	if dirty && prevTarget != nil {
		// Autosave must outlive this selection's cancellation.
		saveCtx := context.WithoutCancel(ctx)
		if _, err := s.st.Save(saveCtx, s.saveKey(prevTarget), snapshot); err != nil {
			return nil, fmt.Errorf("saving previous target: %w", err)
		}
	}

	target, err := s.res.Resolve(selCtx, selection)
	if err != nil {
		if selCtx.Err() != nil && ctx.Err() == nil {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	active, err := filter.Active(s.model, target)
	if err != nil {
		return nil, err
	}
	graph, err := anngraph.Build(active)
	if err != nil {
		return nil, err
	}
	order := graph.Order()

	names := make([]string, 0, len(active))
	kinds := make(map[string]config.Kind, len(active))
	for _, ann := range active {
		names = append(names, ann.Name)
		kinds[ann.Name] = ann.Kind
	}
	sets, err := s.st.Load(selCtx, s.saveKey(target), names)
	if err != nil {
		var corrupt *store.CorruptError
		if errors.As(err, &corrupt) {
			// A malformed save file must not make the target unusable. Start
			// with empty instances; the broken file stays on disk until the
			// next save replaces it.
			ctxlog.FromContext(ctx).Warn("Ignoring corrupt annotation file.",
				"path", corrupt.Path, "error", corrupt.Err)
			sets = make(map[string][]geom.Point, len(names))
			for _, name := range names {
				sets[name] = []geom.Point{}
			}
		} else {
			if selCtx.Err() != nil && ctx.Err() == nil {
				return nil, ErrSuperseded
			}
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil, ErrSuperseded
	}
	s.target = target
	s.active = active
	s.graph = graph
	s.ed.Reset()
	for _, name := range order {
		s.ed.Load(name, kinds[name], sets[name])
	}

	view := &View{Target: target, Active: order, NotReady: make(map[string][]string)}
	for _, ann := range active {
		if ann.FixedHead == nil && ann.FixedTail == nil {
			continue
		}
		eps, err := anngraph.ResolveEndpoints(selCtx, ann, target.View(), sets, s.reg, s.shared)
		if err != nil {
			var nr *anngraph.NotReadyError
			if errors.As(err, &nr) {
				view.NotReady[ann.Name] = nr.Missing
				continue
			}
			return nil, err
		}
		if err := s.ed.SetFixedEndpoints(ann.Name, eps.Head, eps.Tail); err != nil {
			return nil, err
		}
	}
	ctxlog.FromContext(ctx).Info("Target selected.",
		"path_key", target.PathKey(), "annotations", len(order), "not_ready", len(view.NotReady))
	return view, nil
}

// SelectAnnotation makes the named annotation the foreground of the editor.
// It refuses when drawn annotations pin endpoints to it, and refreshes the
// annotation's own fixed endpoints from the current drawn state first.
func (s *Session) SelectAnnotation(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		return ErrNoTarget
	}
	ann, ok := s.model.Annotations[name]
	if !ok {
		return fmt.Errorf("unknown annotation %q", name)
	}
	points := s.ed.PointSets()
	if deps := anngraph.DrawnDependents(s.model, name, points); len(deps) > 0 {
		return &BlockedError{Annotation: name, Dependents: deps}
	}
	if ann.FixedHead != nil || ann.FixedTail != nil {
		eps, err := anngraph.ResolveEndpoints(ctx, ann, s.target.View(), points, s.reg, s.shared)
		if err != nil {
			return err
		}
		if err := s.ed.SetFixedEndpoints(name, eps.Head, eps.Tail); err != nil {
			return err
		}
	}
	return s.ed.Select(name)
}

// Grid renders the figure grid of the named annotation for the current
// target.
func (s *Session) Grid(ctx context.Context, name string) ([][]*registry.Figure, error) {
	s.mu.Lock()
	target := s.target
	ann, ok := s.model.Annotations[name]
	s.mu.Unlock()
	if target == nil {
		return nil, ErrNoTarget
	}
	if !ok {
		return nil, fmt.Errorf("unknown annotation %q", name)
	}
	return s.figs.Grid(ctx, target, ann)
}

// Points returns the consumable point sequence of the named annotation:
// boundaries come back closed, everything else as stored.
func (s *Session) Points(name string) ([]geom.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.ed.Instance(name)
	if !ok {
		return nil, fmt.Errorf("unknown annotation instance %q", name)
	}
	pts := inst.Points()
	if inst.Kind() == config.KindBoundary {
		pts = editor.Closed(pts)
	}
	return pts, nil
}

// Save persists every instance of the current target and returns the new
// revision id.
func (s *Session) Save(ctx context.Context) (string, error) {
	s.mu.Lock()
	target := s.target
	sets := s.ed.PointSets()
	s.mu.Unlock()
	if target == nil {
		return "", ErrNoTarget
	}
	rev, err := s.st.Save(ctx, s.saveKey(target), sets)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.ed.ClearDirty()
	s.mu.Unlock()
	return rev, nil
}

// Target returns the currently selected target, if any.
func (s *Session) Target() (*resolver.Target, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, s.target != nil
}
