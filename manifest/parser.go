// Package manifest produces the ordered item list handed to the layout,
// either from a manifest file or from a directory scan.
package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/labelgrid/layout"
)

var (
	manifestLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "Comment", Pattern: `(?://|#)[^\n]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "Word", Pattern: `[^\s"=:#]+`},
		{Name: "Symbol", Pattern: `[=:]`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(manifestLexer),
		participle.Elide("Whitespace", "Comment"),
	)
)

// File is the root AST node of a manifest:
//
//	# label = path
//	cat = images/cat.png
//	"big dog": "images/big dog.jpg"
type File struct {
	Entries []*Entry `parser:"Newline* ( @@ Newline* )*"`
}

// Entry maps one label to one image path.
type Entry struct {
	Pos   lexer.Position `parser:""`
	Label Token          `parser:"@(Word | String)"`
	Path  Token          `parser:"('=' | ':') @(Word | String)"`
}

// Token unquotes string literals on capture and keeps bare words verbatim.
type Token string

// Capture implements participle.Capture.
func (t *Token) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("token capture requires value")
	}
	raw := values[0]
	if strings.HasPrefix(raw, `"`) {
		val, err := strconv.Unquote(raw)
		if err != nil {
			return err
		}
		*t = Token(val)
		return nil
	}
	*t = Token(raw)
	return nil
}

// Parse reads a manifest and returns its items in file order. Labels must be
// unique and non-empty.
func Parse(r io.Reader) ([]layout.Item, error) {
	f, err := fileParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("解析清单失败: %w", err)
	}
	return f.items("")
}

// ParseString parses manifest content from a string.
func ParseString(input string) ([]layout.Item, error) {
	return Parse(strings.NewReader(input))
}

// ParseFile parses the manifest at path. Relative image paths are resolved
// against the manifest's directory.
func ParseFile(path string) ([]layout.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开清单文件 %s: %w", path, err)
	}
	f, err := fileParser.ParseBytes(path, data)
	if err != nil {
		return nil, fmt.Errorf("解析清单失败: %w", err)
	}
	return f.items(filepath.Dir(path))
}

func (f *File) items(baseDir string) ([]layout.Item, error) {
	seen := make(map[string]lexer.Position, len(f.Entries))
	items := make([]layout.Item, 0, len(f.Entries))
	for _, e := range f.Entries {
		label := strings.TrimSpace(string(e.Label))
		if label == "" {
			return nil, fmt.Errorf("%s: 标签不能为空", e.Pos)
		}
		if prev, ok := seen[label]; ok {
			return nil, fmt.Errorf("%s: 标签 %q 重复（首次出现于 %s）", e.Pos, label, prev)
		}
		seen[label] = e.Pos
		path := string(e.Path)
		if baseDir != "" && path != "" && !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		items = append(items, layout.Item{Label: label, Path: path})
	}
	return items, nil
}
