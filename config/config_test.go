package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/labelgrid/layout"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "labels.pdf", cfg.Output)
	assert.Equal(t, "images", cfg.ImagesDir)
	assert.Equal(t, []string{".png"}, cfg.Extensions)
	assert.Equal(t, 2, cfg.Columns)
	assert.Equal(t, 3, cfg.Rows)

	g, err := cfg.Grid()
	require.NoError(t, err)
	assert.InDelta(t, 36.0, g.Margin, 1e-9)
	assert.InDelta(t, 8.0, g.Padding, 1e-9)
	assert.InDelta(t, 18.0, g.LabelBand, 1e-9)

	page, err := cfg.PageSize()
	require.NoError(t, err)
	assert.Equal(t, layout.A4, page)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "labelgrid.yaml", `
output: out/sheet.pdf
images: photos
extensions: [".png", ".jpg"]
page: letter
landscape: true
columns: 4
rows: 5
margin: 10mm
label-format: "${index:02} ${label}"
title: Pets
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out/sheet.pdf", cfg.Output)
	assert.Equal(t, "photos", cfg.ImagesDir)
	assert.Equal(t, []string{".png", ".jpg"}, cfg.Extensions)
	assert.Equal(t, 4, cfg.Columns)
	assert.Equal(t, 5, cfg.Rows)
	assert.Equal(t, "${index:02} ${label}", cfg.LabelFormat)
	assert.Equal(t, "Pets", cfg.Meta().Title)
	// 未设置的字段保持默认值
	assert.True(t, cfg.OutlineEmptySlots)

	page, err := cfg.PageSize()
	require.NoError(t, err)
	assert.Equal(t, layout.PageSize{Width: 792, Height: 612}, page)

	g, err := cfg.Grid()
	require.NoError(t, err)
	assert.InDelta(t, 10*layout.MmToPt, g.Margin, 1e-9)
}

func TestLoadHCL(t *testing.T) {
	path := writeFile(t, "labelgrid.hcl", `
output     = "sheet.pdf"
manifest   = "labels.txt"
columns    = 3
rows       = 4
margin     = "0.25in"
label_band = "20pt"
max_dpi    = 300
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sheet.pdf", cfg.Output)
	assert.Equal(t, "labels.txt", cfg.Manifest)
	assert.Equal(t, 3, cfg.Columns)
	assert.Equal(t, 4, cfg.Rows)
	assert.InDelta(t, 300.0, cfg.MaxDPI, 1e-9)

	g, err := cfg.Grid()
	require.NoError(t, err)
	assert.InDelta(t, 18.0, g.Margin, 1e-9)
	assert.InDelta(t, 20.0, g.LabelBand, 1e-9)
}

func TestLoadHCLSyntaxError(t *testing.T) {
	path := writeFile(t, "broken.hcl", "columns = = 3\n")
	_, err := Load(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "labelgrid.toml", "columns = 3\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"columns": "columns: 0\n",
		"rows":    "rows: -1\n",
		"page":    "page: B7\n",
		"margin":  "margin: wide\n",
		"output":  "output: \"\"\n",
		"max-dpi": "max-dpi: -10\n",
	}
	for field, content := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := Parse([]byte(content))
			require.Error(t, err)
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, field, cfgErr.Field)
			assert.ErrorIs(t, err, ErrConfigurationError)
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("columns: [1, 2\n"))
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestConfigErrorMessage(t *testing.T) {
	assert.Equal(t, "config error in 'rows': bad", NewConfigError("rows", "bad").Error())
	assert.Equal(t, "config error: bad", (&ConfigError{Message: "bad"}).Error())
}
