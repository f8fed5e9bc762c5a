package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${name} 替换为 vars 中的值。
// ${name:N} 会把整数值左侧补零到 N 位，其余类型按 N 右对齐补空格。
// 若 vars 为空或键不存在，则保留原占位符。
func Interpolate(text string, vars map[string]any) string {
	if len(vars) == 0 || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		name, width, ok := parseExpr(groups[1])
		if !ok {
			return match
		}
		val, found := vars[name]
		if !found {
			return match
		}
		return format(val, width)
	})
}

// Keys 返回模板中引用的全部变量名（按出现顺序，去重）。
func Keys(text string) []string {
	seen := map[string]bool{}
	var keys []string
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		name, _, ok := parseExpr(groups[1])
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		keys = append(keys, name)
	}
	return keys
}

func parseExpr(expr string) (string, int, bool) {
	expr = strings.TrimSpace(expr)
	name := expr
	width := 0
	if i := strings.IndexByte(expr, ':'); i != -1 {
		name = strings.TrimSpace(expr[:i])
		w, err := strconv.Atoi(strings.TrimSpace(expr[i+1:]))
		if err != nil || w < 0 {
			return "", 0, false
		}
		width = w
	}
	if name == "" {
		return "", 0, false
	}
	return name, width, true
}

func format(val any, width int) string {
	switch v := val.(type) {
	case int:
		if width > 0 {
			return fmt.Sprintf("%0*d", width, v)
		}
		return strconv.Itoa(v)
	case int64:
		if width > 0 {
			return fmt.Sprintf("%0*d", width, v)
		}
		return strconv.FormatInt(v, 10)
	default:
		s := fmt.Sprint(v)
		if width > 0 {
			return fmt.Sprintf("%*s", width, s)
		}
		return s
	}
}
