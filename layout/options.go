package layout

import "errors"

// 默认几何参数（pt）。
const (
	DefaultMargin              = 36.0
	DefaultPadding             = 8.0
	DefaultLabelBand           = 18.0
	DefaultLabelFontSize       = 12.0
	DefaultPlaceholderFontSize = 10.0
	DefaultColumns             = 2
	DefaultRows                = 3

	// 标签基线距离单元格顶部内边距的额外下沉量
	labelDrop = 4.0

	LabelFont       = "sans"
	PlaceholderFont = "sans"

	MissingImageText = "MISSING IMAGE"
	ImageErrorPrefix = "IMAGE ERROR: "
)

var (
	// ErrMissingImage 由 ImageProber 返回，表示图片路径不存在。
	ErrMissingImage = errors.New("missing image")
	// ErrInvalidGrid 表示行列数不是正整数。
	ErrInvalidGrid = errors.New("invalid grid shape")
	// ErrInvalidMargin 表示边距为负或没有给单元格留下空间。
	ErrInvalidMargin = errors.New("invalid margin")
	// ErrNoProber 表示缺少图片探测后端。
	ErrNoProber = errors.New("layout: missing image prober")
)

// BuildOptions 配置布局阶段所需的依赖与参数。
type BuildOptions struct {
	Page     PageSize
	Grid     Grid
	Prober   ImageProber
	Measurer TextMeasurer
	// LabelFormat 为空时直接使用条目标签，否则按 binding 模板展开。
	LabelFormat       string
	OutlineEmptySlots bool
	Meta              DocumentMeta
}

// ImageProber 读取图片的原始像素尺寸。
// 路径不存在时返回包装了 ErrMissingImage 的错误，其他失败视为解码错误。
type ImageProber interface {
	Probe(path string) (ImageInfo, error)
}

// TextMeasurer 以 pt 为单位测量单行文本宽度，用于截断过长的标签。
type TextMeasurer interface {
	TextWidth(content, font string, fontSize float64) (float64, error)
}

// DefaultGrid 返回 2 列 3 行、半英寸边距的网格。
func DefaultGrid() Grid {
	return Grid{
		Columns:             DefaultColumns,
		Rows:                DefaultRows,
		Margin:              DefaultMargin,
		Padding:             DefaultPadding,
		LabelBand:           DefaultLabelBand,
		LabelFontSize:       DefaultLabelFontSize,
		PlaceholderFontSize: DefaultPlaceholderFontSize,
	}
}

// withDefaults 为未设置的内部留白与字号填充默认值，行列与边距保持调用方给定的值。
func (g Grid) withDefaults() Grid {
	if g.Padding <= 0 {
		g.Padding = DefaultPadding
	}
	if g.LabelBand <= 0 {
		g.LabelBand = DefaultLabelBand
	}
	if g.LabelFontSize <= 0 {
		g.LabelFontSize = DefaultLabelFontSize
	}
	if g.PlaceholderFontSize <= 0 {
		g.PlaceholderFontSize = DefaultPlaceholderFontSize
	}
	return g
}
