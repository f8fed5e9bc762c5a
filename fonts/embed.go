package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// builtin 内置字体，名称不区分大小写。
var builtin = map[string][]byte{
	"sans":      goregular.TTF,
	"sans-bold": gobold.TTF,
	"mono":      gomono.TTF,
}

// Default 是标签与占位文本使用的字体名称。
const Default = "sans"

// Load 返回内置字体的 TTF 数据，name 可写为 "sans" 或 "embed:sans"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "embed:")))
	if key == "" {
		key = Default
	}
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 可用字体为 %s", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 列出可用的内置字体名称。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
