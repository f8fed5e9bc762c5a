package layout

// 该文件定义网格布局的输入、结果与可绘制图元，供布局计算、渲染与调试 JSON 共用。
// 所有坐标单位均为 pt（1/72 英寸），原点位于页面左下角，y 轴向上。

// Item 是一条待排版的条目：标签文本与图片路径。
type Item struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Result 保存布局后的页面与网格参数。
type Result struct {
	Pages []Page       `json:"pages"`
	Page  PageSize     `json:"page"`
	Grid  Grid         `json:"grid"`
	Slots []Rect       `json:"slots"`
	Meta  DocumentMeta `json:"meta"`
}

// Cells 按条目顺序返回所有页面上的单元格。
func (r *Result) Cells() []Cell {
	if r == nil {
		return nil
	}
	var out []Cell
	for _, p := range r.Pages {
		out = append(out, p.Cells...)
	}
	return out
}

// PageSize 以 pt 为单位描述纸张尺寸。
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Grid 描述每页的行列数以及单元格内部的留白。
type Grid struct {
	Columns             int     `json:"columns"`
	Rows                int     `json:"rows"`
	Margin              float64 `json:"margin"`
	Padding             float64 `json:"padding"`
	LabelBand           float64 `json:"labelBand"`
	LabelFontSize       float64 `json:"labelFontSize"`
	PlaceholderFontSize float64 `json:"placeholderFontSize"`
}

// Capacity 返回每页可容纳的单元格数量。
func (g Grid) Capacity() int { return g.Columns * g.Rows }

// Page 记录一页上的单元格以及最终可以直接渲染的图元。
type Page struct {
	Number     int        `json:"number"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Cells      []Cell     `json:"cells"`
	EmptySlots []Rect     `json:"emptySlots,omitempty"`
	Rects      []Rect     `json:"rects"`
	Texts      []TextBox  `json:"texts"`
	Images     []ImageBox `json:"images"`
}

// ImageStatus 标识单元格图片的三种结果。
type ImageStatus string

const (
	StatusOK      ImageStatus = "ok"
	StatusMissing ImageStatus = "missing"
	StatusError   ImageStatus = "error"
)

// Cell 是一个已放置条目的单元格。
type Cell struct {
	Index       int         `json:"index"`
	Page        int         `json:"page"`
	Slot        int         `json:"slot"`
	Label       string      `json:"label"`
	Path        string      `json:"path"`
	Frame       Rect        `json:"frame"`
	Region      Rect        `json:"region"`
	Caption     TextBox     `json:"caption"`
	Status      ImageStatus `json:"status"`
	Image       *ImageBox   `json:"image,omitempty"`
	Placeholder *TextBox    `json:"placeholder,omitempty"`
	Err         string      `json:"error,omitempty"`
}

// Rect 表示一个矩形（x, y 为左下角）。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// StrokeWidth <=0 时由渲染器给默认值
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Color       Color   `json:"color"`
	// Faint 表示空槽位的辅助边框
	Faint bool `json:"faint,omitempty"`
}

// TextBox 表示一行已经定位的文本，Y 为基线。
type TextBox struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Font     string  `json:"font"`
	FontSize float64 `json:"fontSize"`
	Color    Color   `json:"color"`
	Align    string  `json:"align,omitempty"` // left（默认）/center
}

// ImageBox 用于描述图片位置与绘制尺寸。
type ImageBox struct {
	Path        string  `json:"path"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	PixelWidth  int     `json:"pixelWidth"`
	PixelHeight int     `json:"pixelHeight"`
	// Fallback 在渲染阶段读取图片失败时代替图片绘制
	Fallback *TextBox `json:"fallback,omitempty"`
}

// ImageInfo 是探测图片得到的原始像素尺寸。
type ImageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
