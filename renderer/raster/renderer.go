// Package raster paints layout results into PNG page previews with
// github.com/fogleman/gg.
package raster

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/ByLCY/labelgrid/fonts"
	"github.com/ByLCY/labelgrid/images"
	"github.com/ByLCY/labelgrid/layout"
	"github.com/ByLCY/labelgrid/logging"
	"github.com/ByLCY/labelgrid/renderer"
)

// DefaultDPI renders one pixel per point.
const DefaultDPI = 72.0

const frameStrokeWidth = 0.5 // pt

type Renderer struct {
	dpi    float64
	loader *images.Loader

	fontMu sync.Mutex
	parsed map[string]*truetype.Font
	faces  map[faceKey]font.Face
}

type faceKey struct {
	name string
	size float64
}

var _ renderer.PageRenderer = (*Renderer)(nil)

// NewRenderer creates a raster renderer; dpi <= 0 selects DefaultDPI and a nil
// loader selects images.NewLoader().
func NewRenderer(dpi float64, loader *images.Loader) *Renderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if loader == nil {
		loader = images.NewLoader()
	}
	return &Renderer{
		dpi:    dpi,
		loader: loader,
		parsed: map[string]*truetype.Font{},
		faces:  map[faceKey]font.Face{},
	}
}

// RenderPages returns one PNG per layout page.
func (r *Renderer) RenderPages(result *layout.Result) ([][]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	out := make([][]byte, 0, len(result.Pages))
	for _, page := range result.Pages {
		data, err := r.renderPage(page)
		if err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", page.Number, err)
		}
		out = append(out, data)
	}
	return out, nil
}

func (r *Renderer) scale() float64 { return r.dpi / 72.0 }

func (r *Renderer) renderPage(page layout.Page) ([]byte, error) {
	k := r.scale()
	w := int(math.Ceil(page.Width * k))
	h := int(math.Ceil(page.Height * k))
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for _, rc := range page.Rects {
		r.drawRect(dc, page, rc)
	}
	for _, img := range page.Images {
		if err := r.drawImage(dc, page, img); err != nil {
			return nil, err
		}
	}
	for _, tb := range page.Texts {
		if err := r.drawText(dc, page, tb); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// flipY converts a bottom-left point y to gg's top-left pixel space.
func (r *Renderer) flipY(page layout.Page, y float64) float64 {
	return (page.Height - y) * r.scale()
}

func (r *Renderer) drawRect(dc *gg.Context, page layout.Page, rc layout.Rect) {
	k := r.scale()
	width := rc.StrokeWidth
	if width <= 0 {
		width = frameStrokeWidth
	}
	dc.SetRGB255(rc.Color.R, rc.Color.G, rc.Color.B)
	dc.SetLineWidth(width * k)
	dc.DrawRectangle(rc.X*k, r.flipY(page, rc.Y+rc.Height), rc.Width*k, rc.Height*k)
	dc.Stroke()
}

func (r *Renderer) drawImage(dc *gg.Context, page layout.Page, box layout.ImageBox) error {
	k := r.scale()
	img, err := r.loader.Load(box.Path)
	if err != nil {
		logging.Logger().Warn("image unreadable at draw time", "path", box.Path, "error", err)
		if box.Fallback != nil {
			return r.drawText(dc, page, *box.Fallback)
		}
		return nil
	}
	w := int(math.Round(box.Width * k))
	h := int(math.Round(box.Height * k))
	if w <= 0 || h <= 0 {
		return nil
	}
	scaled := imaging.Resize(img, w, h, imaging.Lanczos)
	dc.DrawImage(scaled, int(math.Round(box.X*k)), int(math.Round(r.flipY(page, box.Y+box.Height))))
	return nil
}

func (r *Renderer) drawText(dc *gg.Context, page layout.Page, tb layout.TextBox) error {
	if tb.Content == "" {
		return nil
	}
	face, err := r.face(tb.Font, tb.FontSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetRGB255(tb.Color.R, tb.Color.G, tb.Color.B)
	ax := 0.0
	switch strings.ToLower(tb.Align) {
	case "center":
		ax = 0.5
	case "right", "end":
		ax = 1
	}
	dc.DrawStringAnchored(tb.Content, tb.X*r.scale(), r.flipY(page, tb.Y), ax, 0)
	return nil
}

func (r *Renderer) face(name string, size float64) (font.Face, error) {
	if name == "" {
		name = fonts.Default
	}
	if size <= 0 {
		size = layout.DefaultLabelFontSize
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	key := faceKey{name: name, size: size}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	parsed, ok := r.parsed[name]
	if !ok {
		data, err := fonts.Load(name)
		if err != nil {
			if data, err = fonts.Load(fonts.Default); err != nil {
				return nil, err
			}
		}
		if parsed, err = truetype.Parse(data); err != nil {
			return nil, fmt.Errorf("解析字体 %s 失败: %w", name, err)
		}
		r.parsed[name] = parsed
	}
	f := truetype.NewFace(parsed, &truetype.Options{Size: size, DPI: r.dpi})
	r.faces[key] = f
	return f, nil
}
