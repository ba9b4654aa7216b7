package figure

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/registry"
)

// Blank renders an empty white cell at the display's pixel dimensions with
// unit data-space limits. Grid cells left unnamed render this way.
func Blank(d *config.Display) (*registry.Figure, error) {
	w, h := d.ImageSize()
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
