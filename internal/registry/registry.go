package registry

import (
	"fmt"
	"log/slog"
)

// Module is the interface that hook modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all registered hook handlers for a single application
// instance.
type Registry struct {
	targets map[string]TargetHook
	calcs   map[string]CalcHook
	figures map[string]FigureHook
	wraps   map[string]WrapHook
	inits   map[string]InitHook
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		targets: make(map[string]TargetHook),
		calcs:   make(map[string]CalcHook),
		figures: make(map[string]FigureHook),
		wraps:   make(map[string]WrapHook),
		inits:   make(map[string]InitHook),
	}
}

// RegisterTarget registers a target computation hook.
func (r *Registry) RegisterTarget(name string, hook TargetHook) {
	if _, exists := r.targets[name]; exists {
		panic(fmt.Sprintf("target hook with name '%s' already registered", name))
	}
	slog.Debug("Registering target hook.", "name", name)
	r.targets[name] = hook
}

// RegisterCalc registers a fixed-point calculation hook.
func (r *Registry) RegisterCalc(name string, hook CalcHook) {
	if _, exists := r.calcs[name]; exists {
		panic(fmt.Sprintf("calc hook with name '%s' already registered", name))
	}
	slog.Debug("Registering calc hook.", "name", name)
	r.calcs[name] = hook
}

// RegisterFigure registers a figure rendering hook.
func (r *Registry) RegisterFigure(name string, hook FigureHook) {
	if _, exists := r.figures[name]; exists {
		panic(fmt.Sprintf("figure hook with name '%s' already registered", name))
	}
	slog.Debug("Registering figure hook.", "name", name)
	r.figures[name] = hook
}

// RegisterWrap registers a figure init/term wrapper hook.
func (r *Registry) RegisterWrap(name string, hook WrapHook) {
	if _, exists := r.wraps[name]; exists {
		panic(fmt.Sprintf("wrap hook with name '%s' already registered", name))
	}
	slog.Debug("Registering wrap hook.", "name", name)
	r.wraps[name] = hook
}

// RegisterInit registers a one-time init hook.
func (r *Registry) RegisterInit(name string, hook InitHook) {
	if _, exists := r.inits[name]; exists {
		panic(fmt.Sprintf("init hook with name '%s' already registered", name))
	}
	slog.Debug("Registering init hook.", "name", name)
	r.inits[name] = hook
}

// Target returns the named target hook.
func (r *Registry) Target(name string) (TargetHook, bool) {
	h, ok := r.targets[name]
	return h, ok
}

// Calc returns the named calc hook.
func (r *Registry) Calc(name string) (CalcHook, bool) {
	h, ok := r.calcs[name]
	return h, ok
}

// Figure returns the named figure hook.
func (r *Registry) Figure(name string) (FigureHook, bool) {
	h, ok := r.figures[name]
	return h, ok
}

// Wrap returns the named wrapper hook.
func (r *Registry) Wrap(name string) (WrapHook, bool) {
	h, ok := r.wraps[name]
	return h, ok
}

// Init returns the named init hook.
func (r *Registry) Init(name string) (InitHook, bool) {
	h, ok := r.inits[name]
	return h, ok
}
