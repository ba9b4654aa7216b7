package testutil

import (
	"github.com/cortexmark/cortexmark/internal/registry"
)

// HookModule is a registry.Module assembled from plain maps, letting each
// test declare exactly the hooks its workspace references.
type HookModule struct {
	Inits   map[string]registry.InitHook
	Targets map[string]registry.TargetHook
	Calcs   map[string]registry.CalcHook
	Figures map[string]registry.FigureHook
	Wraps   map[string]registry.WrapHook
}

// Register registers every hook of the module.
func (m *HookModule) Register(r *registry.Registry) {
	for name, hook := range m.Inits {
		r.RegisterInit(name, hook)
	}
	for name, hook := range m.Targets {
		r.RegisterTarget(name, hook)
	}
	for name, hook := range m.Calcs {
		r.RegisterCalc(name, hook)
	}
	for name, hook := range m.Figures {
		r.RegisterFigure(name, hook)
	}
	for name, hook := range m.Wraps {
		r.RegisterWrap(name, hook)
	}
}
