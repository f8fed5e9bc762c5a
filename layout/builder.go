package layout

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/ByLCY/labelgrid/binding"
	"github.com/ByLCY/labelgrid/logging"
)

const ellipsis = "…"

var (
	borderColor = Color{R: 0, G: 0, B: 0}
	faintColor  = Color{R: 200, G: 200, B: 200}
	textColor   = Color{R: 0, G: 0, B: 0}
)

// Build 将条目按行优先顺序填入网格，生成分页后的单元格与图元。
// 单个条目的图片缺失或解码失败只会生成占位文本，不会中断布局。
func Build(items []Item, opts BuildOptions) (*Result, error) {
	if opts.Prober == nil {
		return nil, ErrNoProber
	}
	page := opts.Page
	if page.Width <= 0 || page.Height <= 0 {
		page = A4
	}
	grid := opts.Grid.withDefaults()
	slots, err := Slots(page, grid)
	if err != nil {
		return nil, err
	}

	capacity := grid.Capacity()
	pageCount := PageCount(len(items), capacity)
	pages := make([]Page, 0, pageCount)
	logger := logging.Logger()

	for p := 0; p < pageCount; p++ {
		pg := Page{Number: p + 1, Width: page.Width, Height: page.Height}
		for s := 0; s < capacity; s++ {
			idx := p*capacity + s
			if idx >= len(items) {
				if opts.OutlineEmptySlots {
					empty := slots[s]
					empty.Color = faintColor
					empty.Faint = true
					pg.EmptySlots = append(pg.EmptySlots, empty)
					pg.Rects = append(pg.Rects, empty)
				}
				continue
			}
			cell := composeCell(items[idx], idx, p, s, slots[s], grid, opts)
			if cell.Status != StatusOK {
				logger.Warn("cell image fallback",
					"label", cell.Label, "path", cell.Path, "status", cell.Status, "error", cell.Err)
			}
			pg.appendCell(cell)
		}
		pages = append(pages, pg)
	}

	logger.Debug("layout built", "items", len(items), "pages", len(pages), "columns", grid.Columns, "rows", grid.Rows)
	return &Result{
		Pages: pages,
		Page:  page,
		Grid:  grid,
		Slots: slots,
		Meta:  opts.Meta,
	}, nil
}

// PageCount 返回容纳 n 个条目所需的页数，即 ceil(n / capacity)。
func PageCount(n, capacity int) int {
	if n <= 0 || capacity <= 0 {
		return 0
	}
	return (n + capacity - 1) / capacity
}

// Slots 预先计算一页上所有槽位的矩形，顺序为从上到下、从左到右。
func Slots(page PageSize, grid Grid) ([]Rect, error) {
	if grid.Columns < 1 || grid.Rows < 1 {
		return nil, fmt.Errorf("%w: %d columns x %d rows", ErrInvalidGrid, grid.Columns, grid.Rows)
	}
	if grid.Margin < 0 || math.IsNaN(grid.Margin) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidMargin, grid.Margin)
	}
	cellW := (page.Width - 2*grid.Margin) / float64(grid.Columns)
	cellH := (page.Height - 2*grid.Margin) / float64(grid.Rows)
	if cellW <= 0 || cellH <= 0 {
		return nil, fmt.Errorf("%w: margin %gpt leaves no room on a %gx%gpt page", ErrInvalidMargin, grid.Margin, page.Width, page.Height)
	}

	slots := make([]Rect, 0, grid.Capacity())
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Columns; c++ {
			slots = append(slots, Rect{
				X:      grid.Margin + float64(c)*cellW,
				Y:      page.Height - grid.Margin - float64(r+1)*cellH,
				Width:  cellW,
				Height: cellH,
				Color:  borderColor,
			})
		}
	}
	return slots, nil
}

// ImageRegion 返回单元格内留给图片的区域：四周减去内边距，顶部再减去标签带。
func ImageRegion(frame Rect, grid Grid) Rect {
	grid = grid.withDefaults()
	return Rect{
		X:      frame.X + grid.Padding,
		Y:      frame.Y + grid.Padding,
		Width:  frame.Width - 2*grid.Padding,
		Height: frame.Height - grid.LabelBand - 3*grid.Padding,
	}
}

// FitImage 按等比缩放把 iw×ih 像素的图片放入 region 并居中。
// 缩放比例取 min(rw/iw, rh/ih)，至少一边恰好贴合区域。
func FitImage(region Rect, iw, ih int) Rect {
	if iw <= 0 || ih <= 0 || region.Width <= 0 || region.Height <= 0 {
		return Rect{X: region.X, Y: region.Y}
	}
	scale := math.Min(region.Width/float64(iw), region.Height/float64(ih))
	w := float64(iw) * scale
	h := float64(ih) * scale
	return Rect{
		X:      region.X + (region.Width-w)/2,
		Y:      region.Y + (region.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

func composeCell(item Item, idx, pageIdx, slotIdx int, frame Rect, grid Grid, opts BuildOptions) Cell {
	cell := Cell{
		Index: idx,
		Page:  pageIdx + 1,
		Slot:  slotIdx,
		Label: item.Label,
		Path:  item.Path,
		Frame: frame,
	}

	label := item.Label
	if opts.LabelFormat != "" {
		label = binding.Interpolate(opts.LabelFormat, labelVars(item, idx, pageIdx, slotIdx))
	}
	label = fitLabel(label, frame.Width-2*grid.Padding, grid.LabelFontSize, opts.Measurer)
	cell.Caption = TextBox{
		Content:  label,
		X:        frame.X + frame.Width/2,
		Y:        frame.Y + frame.Height - grid.Padding - labelDrop,
		Font:     LabelFont,
		FontSize: grid.LabelFontSize,
		Color:    textColor,
		Align:    "center",
	}

	region := ImageRegion(frame, grid)
	cell.Region = region

	info, err := opts.Prober.Probe(item.Path)
	switch {
	case err == nil && info.Width > 0 && info.Height > 0:
		fit := FitImage(region, info.Width, info.Height)
		cell.Status = StatusOK
		cell.Image = &ImageBox{
			Path:        item.Path,
			X:           fit.X,
			Y:           fit.Y,
			Width:       fit.Width,
			Height:      fit.Height,
			PixelWidth:  info.Width,
			PixelHeight: info.Height,
			Fallback:    placeholder(ImageErrorPrefix+filepath.Base(item.Path), region, grid),
		}
	case errors.Is(err, ErrMissingImage):
		cell.Status = StatusMissing
		cell.Err = err.Error()
		cell.Placeholder = placeholder(MissingImageText, region, grid)
	default:
		if err == nil {
			err = fmt.Errorf("图片尺寸无效：%dx%d", info.Width, info.Height)
		}
		cell.Status = StatusError
		cell.Err = err.Error()
		cell.Placeholder = placeholder(ImageErrorPrefix+filepath.Base(item.Path), region, grid)
	}
	return cell
}

func placeholder(content string, region Rect, grid Grid) *TextBox {
	return &TextBox{
		Content:  content,
		X:        region.X,
		Y:        region.Y + region.Height/2,
		Font:     PlaceholderFont,
		FontSize: grid.PlaceholderFontSize,
		Color:    textColor,
		Align:    "left",
	}
}

func labelVars(item Item, idx, pageIdx, slotIdx int) map[string]any {
	base := filepath.Base(item.Path)
	return map[string]any{
		"label": item.Label,
		"path":  item.Path,
		"file":  base,
		"stem":  strings.TrimSuffix(base, filepath.Ext(base)),
		"index": idx + 1,
		"page":  pageIdx + 1,
		"slot":  slotIdx + 1,
	}
}

// fitLabel 在标签超出可用宽度时逐字符截断并追加省略号；无测量后端时原样返回。
func fitLabel(label string, width, fontSize float64, m TextMeasurer) string {
	if m == nil || width <= 0 || label == "" {
		return label
	}
	w, err := m.TextWidth(label, LabelFont, fontSize)
	if err != nil || w <= width {
		return label
	}
	runes := []rune(label)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := string(runes[:n]) + ellipsis
		cw, err := m.TextWidth(candidate, LabelFont, fontSize)
		if err != nil {
			return label
		}
		if cw <= width {
			return candidate
		}
	}
	return ellipsis
}

func (p *Page) appendCell(c Cell) {
	p.Cells = append(p.Cells, c)
	p.Rects = append(p.Rects, c.Frame)
	p.Texts = append(p.Texts, c.Caption)
	if c.Image != nil {
		p.Images = append(p.Images, *c.Image)
	}
	if c.Placeholder != nil {
		p.Texts = append(p.Texts, *c.Placeholder)
	}
}
