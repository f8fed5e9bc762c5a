package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/ByLCY/labelgrid/config"
	"github.com/ByLCY/labelgrid/images"
	"github.com/ByLCY/labelgrid/layout"
	"github.com/ByLCY/labelgrid/logging"
	"github.com/ByLCY/labelgrid/manifest"
	"github.com/ByLCY/labelgrid/renderer"
	canvasrenderer "github.com/ByLCY/labelgrid/renderer/canvas"
	"github.com/ByLCY/labelgrid/renderer/raster"
	"github.com/ByLCY/labelgrid/sheet"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（.yaml/.yml/.hcl）")
	imagesDir := flag.String("images", "images", "未指定清单时扫描的图片目录")
	ext := flag.String("ext", ".png", "扫描目录时匹配的扩展名，多个以逗号分隔")
	manifestPath := flag.String("manifest", "", "标签清单文件，每行 label = path")
	output := flag.String("out", "labels.pdf", "PDF 输出路径")
	cols := flag.Int("cols", layout.DefaultColumns, "每页列数")
	rows := flag.Int("rows", layout.DefaultRows, "每页行数")
	margin := flag.String("margin", "0.5in", "页边距，例如 36、0.5in、12.7mm")
	page := flag.String("page", "A4", "纸张尺寸：A3/A4/A5/Letter/Legal")
	landscape := flag.Bool("landscape", false, "横向排版")
	labelFormat := flag.String("label-format", "", "标签模板，例如 \"${index:02}. ${label}\"")
	preview := flag.String("preview", "", "逐页 PNG 预览输出目录")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("加载配置失败: %v", err)
		}
		cfg = loaded
	}

	// 命令行显式给出的参数覆盖配置文件
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "images":
			cfg.ImagesDir = *imagesDir
		case "ext":
			cfg.Extensions = splitList(*ext)
		case "manifest":
			cfg.Manifest = *manifestPath
		case "out":
			cfg.Output = *output
		case "cols":
			cfg.Columns = *cols
		case "rows":
			cfg.Rows = *rows
		case "margin":
			cfg.Margin = *margin
		case "page":
			cfg.Page = *page
		case "landscape":
			cfg.Landscape = *landscape
		case "label-format":
			cfg.LabelFormat = *labelFormat
		case "preview":
			cfg.PreviewDir = *preview
		case "debug":
			cfg.DebugJSON = *debug
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("参数无效: %v", err)
	}

	pages, err := run(cfg)
	if err != nil {
		log.Fatalf("生成 PDF 失败: %v", err)
	}
	fmt.Printf("已生成 PDF：%s（%d 页）\n", cfg.Output, pages)
}

// run 串联条目收集、布局、渲染与可选的预览输出，返回页数。
func run(cfg *config.Config) (int, error) {
	items, err := collectItems(cfg)
	if err != nil {
		return 0, err
	}

	pageSize, err := cfg.PageSize()
	if err != nil {
		return 0, err
	}
	grid, err := cfg.Grid()
	if err != nil {
		return 0, err
	}

	loader := &images.Loader{AutoOrient: cfg.AutoOrient, MaxDPI: cfg.MaxDPI}
	var r renderer.Renderer = canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Loader: loader})

	result, err := sheet.Render(items, cfg.Output, sheet.Options{
		Layout: layout.BuildOptions{
			Page:              pageSize,
			Grid:              grid,
			Prober:            loader,
			LabelFormat:       cfg.LabelFormat,
			OutlineEmptySlots: cfg.OutlineEmptySlots,
			Meta:              cfg.Meta(),
		},
		Renderer:  r,
		DebugJSON: cfg.DebugJSON,
	})
	if err != nil {
		return 0, err
	}

	if cfg.PreviewDir != "" {
		if _, err := sheet.WritePreviews(result, cfg.PreviewDir, raster.NewRenderer(cfg.PreviewDPI, loader)); err != nil {
			return 0, err
		}
	}
	return max(len(result.Pages), 1), nil
}

// collectItems 优先读取清单文件，否则扫描图片目录。
func collectItems(cfg *config.Config) ([]layout.Item, error) {
	if cfg.Manifest != "" {
		items, err := manifest.ParseFile(cfg.Manifest)
		if err != nil {
			return nil, fmt.Errorf("读取清单失败: %w", err)
		}
		return items, nil
	}
	items, err := manifest.Scan(cfg.ImagesDir, cfg.Extensions...)
	if err != nil {
		return nil, fmt.Errorf("扫描图片目录失败: %w", err)
	}
	return items, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
