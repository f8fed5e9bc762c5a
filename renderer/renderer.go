package renderer

import "github.com/ByLCY/labelgrid/layout"

// Renderer 将布局结果输出为单个文档文件（例如 PDF），返回生成的二进制数据。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// PageRenderer 将布局结果逐页输出为独立的栅格图像（例如 PNG 预览）。
type PageRenderer interface {
	RenderPages(result *layout.Result) ([][]byte, error)
}
