// Package blankfigure provides the built-in BlankFigure hook: a figure that
// renders an empty white cell with unit data-space limits. Workspaces use
// it as a wildcard binding while their real rendering hooks are developed.
package blankfigure

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/cortexmark/cortexmark/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// RenderBlank produces a white image at the requested size with unit limits.
func RenderBlank(ctx context.Context, call *registry.FigureCall) (*registry.Figure, error) {
	w := int(call.FigSize[0]*float64(call.DPI) + 0.5)
	h := int(call.FigSize[1]*float64(call.DPI) + 0.5)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding blank figure: %w", err)
	}
	return &registry.Figure{
		Image: buf.Bytes(),
		XLim:  [2]float64{0, 1},
		YLim:  [2]float64{0, 1},
	}, nil
}

// Register registers the hook with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFigure("BlankFigure", RenderBlank)
}
