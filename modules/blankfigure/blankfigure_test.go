package blankfigure

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexmark/cortexmark/internal/registry"
)

func TestRenderBlank(t *testing.T) {
	fig, err := RenderBlank(context.Background(), &registry.FigureCall{
		Figure:  "anything",
		FigSize: [2]float64{2, 1},
		DPI:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, [2]float64{0, 1}, fig.XLim)
	assert.Equal(t, [2]float64{0, 1}, fig.YLim)

	img, err := png.Decode(bytes.NewReader(fig.Image))
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 20, bounds.Dx())
	assert.Equal(t, 10, bounds.Dy())
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)
	_, ok := r.Figure("BlankFigure")
	assert.True(t, ok)
}
