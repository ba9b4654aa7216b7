package app

import (
	"github.com/cortexmark/cortexmark/internal/registry"
	"github.com/cortexmark/cortexmark/modules/blankfigure"
	"github.com/cortexmark/cortexmark/modules/targetpath"
)

// coreModules is the default hook set registered when the caller supplies
// none. Real workspaces register their own modules on top of these.
var coreModules = []registry.Module{
	&targetpath.Module{},
	&blankfigure.Module{},
}
