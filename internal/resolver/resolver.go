// Package resolver evaluates the ordered chain of target keys for a user
// selection. Concrete keys take their value from the selection; hook keys
// are computed by registered hooks and memoised per prefix, since a hook's
// result can only depend on the keys declared before it.
package resolver

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/ctxlog"
	"github.com/cortexmark/cortexmark/internal/registry"
)

// DefaultMemoSize bounds the number of distinct prefixes whose hook results
// are retained. Hook results may be large derived objects (loaded datasets,
// projections), so the bound is a memory tuning parameter, not a
// correctness requirement.
const DefaultMemoSize = 32

// MissingSelectionError reports a concrete key with more than one allowed
// value that the selection did not assign.
type MissingSelectionError struct {
	Key string
}

func (e *MissingSelectionError) Error() string {
	return fmt.Sprintf("no selection for target key %q", e.Key)
}

// Resolver evaluates selections against the model's target chain.
type Resolver struct {
	model  *config.Model
	reg    *registry.Registry
	shared any
	memo   *lru.Cache[string, any]
	group  singleflight.Group
}

// New creates a resolver. memoSize bounds the prefix memo; values below 1
// fall back to DefaultMemoSize. shared is the init hook's result, threaded
// into every target hook invocation.
func New(model *config.Model, reg *registry.Registry, shared any, memoSize int) (*Resolver, error) {
	if memoSize < 1 {
		memoSize = DefaultMemoSize
	}
	memo, err := lru.New[string, any](memoSize)
	if err != nil {
		return nil, fmt.Errorf("creating prefix memo: %w", err)
	}
	return &Resolver{model: model, reg: reg, shared: shared, memo: memo}, nil
}

// Resolve walks the target keys in declaration order and produces a fully
// resolved target for the given concrete selection. A hook failure aborts
// the resolution and leaves no partial memo entry behind.
func (r *Resolver) Resolve(ctx context.Context, selection map[string]string) (*Target, error) {
	logger := ctxlog.FromContext(ctx)
	target := &Target{
		keys:   r.model.Targets,
		values: make(map[string]any, len(r.model.Targets)),
	}
	// prefix accumulates the concrete assignments seen so far; it fully
	// determines every hook value in the prefix, so it doubles as the memo
	// key material.
	var prefix []string
	var prefixKeys []string

	for _, key := range r.model.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if key.Concrete() {
			value, err := concreteValue(key, selection)
			if err != nil {
				return nil, err
			}
			target.values[key.Name] = value
			prefix = append(prefix, key.Name+"="+value)
			prefixKeys = append(prefixKeys, key.Name)
			continue
		}

		memoKey := key.Name + "\x1f" + strings.Join(prefix, "\x1f")
		if cached, ok := r.memo.Get(memoKey); ok {
			target.values[key.Name] = cached
			prefixKeys = append(prefixKeys, key.Name)
			continue
		}

		hook, ok := r.reg.Target(key.Hook)
		if !ok {
			return nil, fmt.Errorf("target key %q: hook %q is not registered", key.Name, key.Hook)
		}
		// The singleflight group guarantees at most one in-flight
		// computation per prefix even under concurrent resolutions.
		view := prefixView(prefixKeys, target.values)
		result, err, _ := r.group.Do(memoKey, func() (any, error) {
			logger.Debug("Computing target hook.", "key", key.Name, "hook", key.Hook)
			return hook(ctx, &registry.TargetCall{
				Key:    key.Name,
				Prefix: view,
				Shared: r.shared,
			})
		})
		if err != nil {
			// Nothing is memoised on failure; the next resolution retries.
			return nil, fmt.Errorf("resolving target key %q: %w", key.Name, err)
		}
		r.memo.Add(memoKey, result)
		target.values[key.Name] = result
		prefixKeys = append(prefixKeys, key.Name)
	}
	return target, nil
}

func concreteValue(key *config.TargetKey, selection map[string]string) (string, error) {
	if len(key.Values) == 1 {
		// A single-valued key needs no selection; it is resolved implicitly
		// but still present in the target mapping.
		return key.Values[0], nil
	}
	value, ok := selection[key.Name]
	if !ok {
		return "", &MissingSelectionError{Key: key.Name}
	}
	for _, allowed := range key.Values {
		if value == allowed {
			return value, nil
		}
	}
	return "", fmt.Errorf("invalid selection %q for target key %q (allowed: %s)",
		value, key.Name, strings.Join(key.Values, ", "))
}

func prefixView(keys []string, values map[string]any) *registry.TargetView {
	names := make([]string, len(keys))
	copy(names, keys)
	snapshot := make(map[string]any, len(keys))
	for _, k := range keys {
		snapshot[k] = values[k]
	}
	return registry.NewTargetView(names, snapshot)
}
