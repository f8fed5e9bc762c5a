// Package sheet ties layout and rendering together and owns the files a run
// writes: the PDF, optional page previews and the debug layout dump.
package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ByLCY/labelgrid/images"
	"github.com/ByLCY/labelgrid/layout"
	"github.com/ByLCY/labelgrid/logging"
	"github.com/ByLCY/labelgrid/renderer"
	canvasrenderer "github.com/ByLCY/labelgrid/renderer/canvas"
)

// Options configures one Render call.
type Options struct {
	Layout layout.BuildOptions

	// Renderer produces the document bytes; nil uses the canvas PDF renderer.
	// When it also implements layout.TextMeasurer and Layout.Measurer is nil,
	// it measures captions too.
	Renderer renderer.Renderer

	// DebugJSON receives the layout result as JSON when non-empty.
	DebugJSON string
}

// Render lays out items, renders the document and writes it to outPath.
// The previous file at outPath is replaced only once the new one is complete.
func Render(items []layout.Item, outPath string, opts Options) (*layout.Result, error) {
	if outPath == "" {
		return nil, errors.New("输出路径不能为空")
	}
	r := opts.Renderer
	if r == nil {
		r = canvasrenderer.NewRenderer()
	}
	buildOpts := opts.Layout
	if buildOpts.Prober == nil {
		buildOpts.Prober = images.NewLoader()
	}
	if buildOpts.Measurer == nil {
		if m, ok := r.(layout.TextMeasurer); ok {
			buildOpts.Measurer = m
		}
	}

	result, err := layout.Build(items, buildOpts)
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}
	if opts.DebugJSON != "" {
		if err := layout.WriteDebugJSON(result, opts.DebugJSON); err != nil {
			return nil, fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	data, err := r.Render(result)
	if err != nil {
		return nil, fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := WriteFileAtomic(outPath, data); err != nil {
		return nil, err
	}
	logging.Logger().Info("wrote label sheet",
		"path", outPath, "items", len(items), "pages", len(result.Pages), "bytes", len(data))
	return result, nil
}

// WritePreviews renders every page with r and writes page-001.png, page-002.png
// and so on into dir. It returns the written paths in page order.
func WritePreviews(result *layout.Result, dir string, r renderer.PageRenderer) ([]string, error) {
	if r == nil {
		return nil, errors.New("预览渲染器不能为空")
	}
	pages, err := r.RenderPages(result)
	if err != nil {
		return nil, fmt.Errorf("渲染预览失败: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建预览目录失败: %w", err)
	}
	paths := make([]string, 0, len(pages))
	for i, data := range pages {
		path := filepath.Join(dir, fmt.Sprintf("page-%03d.png", i+1))
		if err := WriteFileAtomic(path, data); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	logging.Logger().Info("wrote previews", "dir", dir, "pages", len(paths))
	return paths, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place, creating the parent directory if needed.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("设置文件权限失败: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	return nil
}
