package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/labelgrid/fonts"
	"github.com/ByLCY/labelgrid/images"
	"github.com/ByLCY/labelgrid/layout"
	"github.com/ByLCY/labelgrid/logging"
	"github.com/ByLCY/labelgrid/renderer"
)

// stroke widths in points
const (
	frameStrokeWidth = 0.5
	faintStrokeWidth = 0.3
)

// Renderer draws layout results into a PDF via github.com/tdewolff/canvas.
// Layout coordinates are points with a bottom-left origin, which matches the
// canvas default coordinate system; only the unit changes (pt -> mm).
type Renderer struct {
	loader *images.Loader

	// injected fonts by name, take precedence over the built-in ones
	fontBlobs map[string][]byte

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer   = (*Renderer)(nil)
	_ layout.TextMeasurer = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	// Loader reads cell images at draw time; nil uses images.NewLoader().
	Loader *images.Loader
	// Fonts overrides or adds faces addressable by TextBox.Font.
	Fonts map[string]Resource
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a renderer with the built-in fonts and a default loader.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected resources.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		loader:       opts.Loader,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	if r.loader == nil {
		r.loader = images.NewLoader()
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // a broken path falls back to the default face on use
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// Render renders the result into a PDF byte slice. A result without pages
// still yields a valid single blank page.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	size := result.Page
	if size.Width <= 0 || size.Height <= 0 {
		size = layout.A4
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, toMm(size.Width), toMm(size.Height), nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		width, height := page.Width, page.Height
		if width <= 0 || height <= 0 {
			width, height = size.Width, size.Height
		}
		if i > 0 {
			writer.NewPage(toMm(width), toMm(height))
		}
		c := canvas.New(toMm(width), toMm(height))
		ctx := canvas.NewContext(c)
		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", page.Number, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// TextWidth implements layout.TextMeasurer; the result is in points.
func (r *Renderer) TextWidth(content, font string, fontSize float64) (float64, error) {
	face, err := r.fontFace(font, fontSize, layout.Color{})
	if err != nil {
		return 0, err
	}
	return toPt(face.TextWidth(content)), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	creator := meta.Creator
	if creator == "" {
		creator = "labelgrid"
	}
	writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, creator)
}

// drawPage paints frames first, then images, then captions and placeholders.
func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	r.drawRects(ctx, page.Rects)
	if err := r.drawImages(ctx, page.Images); err != nil {
		return err
	}
	for _, tb := range page.Texts {
		if err := r.drawTextBox(ctx, tb); err != nil {
			return err
		}
	}
	return nil
}

// drawRects strokes rectangles without filling them.
func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		w := rc.StrokeWidth
		if w <= 0 {
			w = frameStrokeWidth
			if rc.Faint {
				w = faintStrokeWidth
			}
		}
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeColor(colorFromLayout(rc.Color))
		ctx.SetStrokeWidth(toMm(w))
		ctx.DrawPath(toMm(rc.X), toMm(rc.Y), canvas.Rectangle(toMm(rc.Width), toMm(rc.Height)))
	}
}

// drawImages loads every image only for the duration of its own cell. An image
// that disappeared or broke after layout is replaced by its fallback text.
func (r *Renderer) drawImages(ctx *canvas.Context, boxes []layout.ImageBox) error {
	for _, box := range boxes {
		if box.Path == "" || box.Width <= 0 || box.Height <= 0 {
			continue
		}
		img, err := r.loader.Load(box.Path)
		if err != nil {
			logging.Logger().Warn("image unreadable at draw time", "path", box.Path, "error", err)
			if box.Fallback != nil {
				if err := r.drawTextBox(ctx, *box.Fallback); err != nil {
					return err
				}
			}
			continue
		}
		img = r.loader.Downsample(img, box.Width, box.Height)
		widthMm := toMm(box.Width)
		dpmm := float64(img.Bounds().Dx()) / widthMm
		if dpmm <= 0 {
			dpmm = 1
		}
		ctx.DrawImage(toMm(box.X), toMm(box.Y), img, canvas.DPMM(dpmm))
	}
	return nil
}

// drawTextBox draws one line of text with its baseline at tb.Y.
func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox) error {
	if tb.Content == "" {
		return nil
	}
	face, err := r.fontFace(tb.Font, tb.FontSize, tb.Color)
	if err != nil {
		return err
	}
	align := canvas.Left
	switch strings.ToLower(tb.Align) {
	case "center":
		align = canvas.Center
	case "right", "end":
		align = canvas.Right
	}
	ctx.DrawText(toMm(tb.X), toMm(tb.Y), canvas.NewTextLine(face, tb.Content, align))
	return nil
}

// fontFace returns a face for the named font; size is in points.
func (r *Renderer) fontFace(name string, size float64, col layout.Color) (*canvas.FontFace, error) {
	if size <= 0 {
		size = layout.DefaultLabelFontSize
	}
	family, err := r.ensureFontFamily(name)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(name string) (*canvas.FontFamily, error) {
	if name == "" {
		name = fonts.Default
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[name]; ok {
		return family, nil
	}
	family, err := r.loadFamily(name)
	if err != nil {
		if name == fonts.Default {
			return nil, err
		}
		logging.Logger().Warn("font unavailable, using default", "font", name, "error", err)
		fallback, ok := r.fontFamilies[fonts.Default]
		if !ok {
			if fallback, err = r.loadFamily(fonts.Default); err != nil {
				return nil, err
			}
			r.fontFamilies[fonts.Default] = fallback
		}
		family = fallback
	}
	r.fontFamilies[name] = family
	return family, nil
}

func (r *Renderer) loadFamily(name string) (*canvas.FontFamily, error) {
	data, ok := r.fontBlobs[name]
	if !ok {
		var err error
		if data, err = fonts.Load(name); err != nil {
			return nil, err
		}
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toMm converts points to millimeters.
func toMm(pt float64) float64 { return pt * layout.PtToMm }

// toPt converts millimeters to points.
func toPt(mm float64) float64 { return mm * layout.MmToPt }
