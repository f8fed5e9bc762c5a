package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/labelgrid/images"
	"github.com/ByLCY/labelgrid/layout"
)

func writeSolidPNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func buildResult(t *testing.T, n int) *layout.Result {
	t.Helper()
	dir := t.TempDir()
	items := make([]layout.Item, n)
	for i := range items {
		path := filepath.Join(dir, fmt.Sprintf("red-%d.png", i))
		writeSolidPNG(t, path, 100, 50, color.RGBA{R: 255, A: 255})
		items[i] = layout.Item{Label: fmt.Sprintf("red-%d", i), Path: path}
	}
	res, err := layout.Build(items, layout.BuildOptions{
		Page:   layout.A4,
		Grid:   layout.DefaultGrid(),
		Prober: images.NewLoader(),
	})
	require.NoError(t, err)
	return res
}

func TestRenderPagesOnePNGPerPage(t *testing.T) {
	res := buildResult(t, 7)
	pages, err := NewRenderer(0, nil).RenderPages(res)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	for _, data := range pages {
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 595, img.Bounds().Dx())
		assert.Equal(t, 842, img.Bounds().Dy())
	}
}

func TestRenderPagesScalesWithDPI(t *testing.T) {
	res := buildResult(t, 1)
	pages, err := NewRenderer(144, nil).RenderPages(res)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	img, err := png.Decode(bytes.NewReader(pages[0]))
	require.NoError(t, err)
	assert.Equal(t, 1190, img.Bounds().Dx())
	assert.Equal(t, 1684, img.Bounds().Dy())
}

// TestImagePaintedInsideItsCell 图片中心像素应为红色，页面角落保持白色。
func TestImagePaintedInsideItsCell(t *testing.T) {
	res := buildResult(t, 1)
	pages, err := NewRenderer(0, nil).RenderPages(res)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(pages[0]))
	require.NoError(t, err)

	box := res.Cells()[0].Image
	require.NotNil(t, box)
	cx := int(box.X + box.Width/2)
	cy := int(res.Page.Height - (box.Y + box.Height/2))
	r, g, b, _ := img.At(cx, cy).RGBA()
	assert.Greater(t, r>>8, uint32(200), "center should be red")
	assert.Less(t, g>>8, uint32(60))
	assert.Less(t, b>>8, uint32(60))

	r, g, b, _ = img.At(5, 5).RGBA()
	assert.Equal(t, uint32(255), r>>8)
	assert.Equal(t, uint32(255), g>>8)
	assert.Equal(t, uint32(255), b>>8)
}

func TestRenderPagesNil(t *testing.T) {
	_, err := NewRenderer(0, nil).RenderPages(nil)
	assert.Error(t, err)
}

func TestRenderPagesEmpty(t *testing.T) {
	pages, err := NewRenderer(0, nil).RenderPages(&layout.Result{})
	require.NoError(t, err)
	assert.Empty(t, pages)
}
