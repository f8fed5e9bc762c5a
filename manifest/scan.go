package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/labelgrid/layout"
	"github.com/ByLCY/labelgrid/logging"
)

// DefaultExtension is used by Scan when no extension is given.
const DefaultExtension = ".png"

// Scan lists the files directly inside dir whose extension matches one of
// exts (case-insensitive), sorted by file name. Each label is the file's base
// name without extension; when two files share a label the first one wins.
func Scan(dir string, exts ...string) ([]layout.Item, error) {
	if len(exts) == 0 {
		exts = []string{DefaultExtension}
	}
	wanted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		wanted[ext] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("扫描图片目录 %s 失败: %w", dir, err)
	}

	logger := logging.Logger()
	seen := map[string]string{}
	var items []layout.Item
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !wanted[strings.ToLower(ext)] {
			continue
		}
		label := strings.TrimSuffix(name, ext)
		path := filepath.Join(dir, name)
		if prev, ok := seen[label]; ok {
			logger.Warn("duplicate label skipped", "label", label, "kept", prev, "skipped", path)
			continue
		}
		seen[label] = path
		items = append(items, layout.Item{Label: label, Path: path})
	}
	logger.Debug("scanned image directory", "dir", dir, "items", len(items))
	return items, nil
}
