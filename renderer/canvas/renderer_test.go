package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/ByLCY/labelgrid/fonts"
	"github.com/ByLCY/labelgrid/images"
	"github.com/ByLCY/labelgrid/layout"
)

func init() {
	// pdfcpu 默认会在用户目录下创建配置文件，测试中禁用
	api.DisableConfigDir()
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("读取 PDF 页数失败: %v", err)
	}
	return n
}

func build(t *testing.T, items []layout.Item, r *Renderer) *layout.Result {
	t.Helper()
	res, err := layout.Build(items, layout.BuildOptions{
		Page:              layout.A4,
		Grid:              layout.DefaultGrid(),
		Prober:            images.NewLoader(),
		Measurer:          r,
		OutlineEmptySlots: true,
		Meta:              layout.DocumentMeta{Title: "labels"},
	})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res
}

func TestRenderPaginates(t *testing.T) {
	dir := t.TempDir()
	var items []layout.Item
	for i := 0; i < 7; i++ {
		path := filepath.Join(dir, fmt.Sprintf("img-%d.png", i))
		writePNG(t, path, 100, 50)
		items = append(items, layout.Item{Label: fmt.Sprintf("img-%d", i), Path: path})
	}
	r := NewRenderer()
	data, err := r.Render(build(t, items, r))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if got := pageCount(t, data); got != 2 {
		t.Fatalf("expected 2 pages, got %d", got)
	}
}

func TestRenderFallbacksDoNotFail(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "cat.png")
	writePNG(t, good, 100, 50)
	bad := filepath.Join(dir, "notes.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	items := []layout.Item{
		{Label: "cat", Path: good},
		{Label: "ghost", Path: filepath.Join(dir, "ghost.png")},
		{Label: "notes", Path: bad},
	}
	r := NewRenderer()
	data, err := r.Render(build(t, items, r))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := pageCount(t, data); got != 1 {
		t.Fatalf("expected 1 page, got %d", got)
	}
}

// TestRenderImageRemovedAfterLayout 布局后图片被删除，渲染阶段应改画占位文本而不是报错。
func TestRenderImageRemovedAfterLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat.png")
	writePNG(t, path, 20, 20)
	r := NewRenderer()
	res := build(t, []layout.Item{{Label: "cat", Path: path}}, r)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render(res); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestRenderEmptyResultWritesBlankPage(t *testing.T) {
	r := NewRenderer()
	data, err := r.Render(build(t, nil, r))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := pageCount(t, data); got != 1 {
		t.Fatalf("expected a single blank page, got %d", got)
	}
}

func TestRenderNilResult(t *testing.T) {
	if _, err := NewRenderer().Render(nil); err == nil {
		t.Fatal("expected error for nil result")
	}
}

func TestTextWidthInPoints(t *testing.T) {
	r := NewRenderer()
	short, err := r.TextWidth("cat", "sans", 12)
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	long, err := r.TextWidth("catcatcatcat", "sans", 12)
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	if short <= 0 || long <= short {
		t.Fatalf("unexpected widths: short=%g long=%g", short, long)
	}
	// 12pt 的 3 个字符不会超过 36pt，也不会小于 6pt
	if short > 36 || short < 6 {
		t.Fatalf("width %gpt is not in points", short)
	}
}

func TestUnknownFontFallsBack(t *testing.T) {
	r := NewRenderer()
	w, err := r.TextWidth("cat", "does-not-exist", 12)
	if err != nil {
		t.Fatalf("expected fallback to default face, got %v", err)
	}
	want, _ := r.TextWidth("cat", "sans", 12)
	if w != want {
		t.Fatalf("fallback width %g != default width %g", w, want)
	}
}

func TestInjectedFont(t *testing.T) {
	mono, err := fonts.Load("mono")
	if err != nil {
		t.Fatal(err)
	}
	r := NewRendererWithOptions(Options{Fonts: map[string]Resource{
		"code":   {Bytes: mono},
		"broken": {Path: filepath.Join(t.TempDir(), "missing.ttf")},
	}})
	narrow, err := r.TextWidth("iii", "code", 10)
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	wide, _ := r.TextWidth("MMM", "code", 10)
	if math.Abs(narrow-wide) > 1e-6 {
		t.Fatalf("injected monospace face not used: iii=%g MMM=%g", narrow, wide)
	}
	if _, err := r.TextWidth("x", "broken", 10); err != nil {
		t.Fatalf("broken injected font should fall back: %v", err)
	}
}
