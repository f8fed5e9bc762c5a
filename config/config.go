// Package config holds the settings of a labelgrid run and loads them from
// YAML or HCL files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/labelgrid/layout"
)

// Common errors
var (
	ErrConfigurationError = errors.New("configuration error")
	ErrUnsupportedFormat  = errors.New("unsupported configuration format")
)

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap returns the underlying error, ErrConfigurationError by default.
func (e *ConfigError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrConfigurationError
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// Config is the complete set of knobs of one run.
type Config struct {
	// Output is the PDF written by the run.
	Output string `yaml:"output" hcl:"output,optional"`

	// ImagesDir is scanned when no manifest is given.
	ImagesDir string `yaml:"images" hcl:"images,optional"`

	// Extensions selects which files ImagesDir contributes.
	Extensions []string `yaml:"extensions" hcl:"extensions,optional"`

	// Manifest lists label/path pairs explicitly and takes precedence over ImagesDir.
	Manifest string `yaml:"manifest" hcl:"manifest,optional"`

	// Page is a paper size name such as A4 or Letter.
	Page      string `yaml:"page" hcl:"page,optional"`
	Landscape bool   `yaml:"landscape" hcl:"landscape,optional"`

	Columns int `yaml:"columns" hcl:"columns,optional"`
	Rows    int `yaml:"rows" hcl:"rows,optional"`

	// Margin, Padding and LabelBand are lengths such as "36", "0.5in" or "12.7mm".
	Margin    string `yaml:"margin" hcl:"margin,optional"`
	Padding   string `yaml:"padding" hcl:"padding,optional"`
	LabelBand string `yaml:"label-band" hcl:"label_band,optional"`

	LabelFontSize       float64 `yaml:"label-font-size" hcl:"label_font_size,optional"`
	PlaceholderFontSize float64 `yaml:"placeholder-font-size" hcl:"placeholder_font_size,optional"`

	// LabelFormat is a template such as "${index:02}. ${label}".
	LabelFormat       string `yaml:"label-format" hcl:"label_format,optional"`
	OutlineEmptySlots bool   `yaml:"outline-empty-slots" hcl:"outline_empty_slots,optional"`

	AutoOrient bool    `yaml:"auto-orient" hcl:"auto_orient,optional"`
	MaxDPI     float64 `yaml:"max-dpi" hcl:"max_dpi,optional"`

	// PreviewDir receives one PNG per page when set.
	PreviewDir string  `yaml:"preview-dir" hcl:"preview_dir,optional"`
	PreviewDPI float64 `yaml:"preview-dpi" hcl:"preview_dpi,optional"`

	// DebugJSON receives the layout result when set.
	DebugJSON string `yaml:"debug-json" hcl:"debug_json,optional"`

	Title   string `yaml:"title" hcl:"title,optional"`
	Author  string `yaml:"author" hcl:"author,optional"`
	Subject string `yaml:"subject" hcl:"subject,optional"`
}

// Default returns the settings of a bare run: scan images/*.png into a 2x3
// grid on A4 with half-inch margins and write labels.pdf.
func Default() *Config {
	return &Config{
		Output:              "labels.pdf",
		ImagesDir:           "images",
		Extensions:          []string{".png"},
		Page:                "A4",
		Columns:             layout.DefaultColumns,
		Rows:                layout.DefaultRows,
		Margin:              "0.5in",
		Padding:             "8pt",
		LabelBand:           "18pt",
		LabelFontSize:       layout.DefaultLabelFontSize,
		PlaceholderFontSize: layout.DefaultPlaceholderFontSize,
		OutlineEmptySlots:   true,
		AutoOrient:          true,
		PreviewDPI:          72,
	}
}

// Load reads the file at path on top of Default(). The format follows the
// extension: .yaml/.yml or .hcl.
func Load(path string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("failed to parse YAML %s: %v", path, err), Err: err}
		}
	case ".hcl":
		if err := decodeHCL(path, cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads YAML content on top of Default().
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("failed to parse YAML: %v", err), Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeHCL(path string, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return &ConfigError{Message: fmt.Sprintf("failed to parse HCL file %s: %s", path, diags.Error()), Err: diags}
	}
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return &ConfigError{Message: fmt.Sprintf("failed to decode HCL file %s: %s", path, diags.Error()), Err: diags}
	}
	return nil
}

// Validate checks the values that the layout cannot recover from.
func (c *Config) Validate() error {
	if c.Columns < 1 {
		return NewConfigError("columns", fmt.Sprintf("must be a positive integer, got %d", c.Columns))
	}
	if c.Rows < 1 {
		return NewConfigError("rows", fmt.Sprintf("must be a positive integer, got %d", c.Rows))
	}
	if c.Output == "" {
		return NewConfigError("output", "required field is missing")
	}
	if c.Manifest == "" && c.ImagesDir == "" {
		return NewConfigError("images", "either images or manifest is required")
	}
	if _, err := layout.ResolvePageSize(c.Page, c.Landscape); err != nil {
		return NewConfigError("page", err.Error())
	}
	for field, value := range map[string]string{"margin": c.Margin, "padding": c.Padding, "label-band": c.LabelBand} {
		if value == "" {
			continue
		}
		l, err := layout.ParseLength(value)
		if err != nil {
			return NewConfigError(field, err.Error())
		}
		if l.ToPT() < 0 {
			return NewConfigError(field, "must not be negative")
		}
	}
	if c.LabelFontSize < 0 || c.PlaceholderFontSize < 0 {
		return NewConfigError("label-font-size", "font sizes must not be negative")
	}
	if c.MaxDPI < 0 {
		return NewConfigError("max-dpi", "must not be negative")
	}
	if c.PreviewDPI < 0 {
		return NewConfigError("preview-dpi", "must not be negative")
	}
	return nil
}

// PageSize resolves the configured paper.
func (c *Config) PageSize() (layout.PageSize, error) {
	return layout.ResolvePageSize(c.Page, c.Landscape)
}

// Grid converts the configured lengths to a layout.Grid in points.
func (c *Config) Grid() (layout.Grid, error) {
	g := layout.DefaultGrid()
	g.Columns = c.Columns
	g.Rows = c.Rows
	for _, f := range []struct {
		name  string
		value string
		dst   *float64
	}{
		{"margin", c.Margin, &g.Margin},
		{"padding", c.Padding, &g.Padding},
		{"label-band", c.LabelBand, &g.LabelBand},
	} {
		if f.value == "" {
			continue
		}
		l, err := layout.ParseLength(f.value)
		if err != nil {
			return layout.Grid{}, NewConfigError(f.name, err.Error())
		}
		*f.dst = l.ToPT()
	}
	if c.LabelFontSize > 0 {
		g.LabelFontSize = c.LabelFontSize
	}
	if c.PlaceholderFontSize > 0 {
		g.PlaceholderFontSize = c.PlaceholderFontSize
	}
	return g, nil
}

// Meta returns the PDF document information.
func (c *Config) Meta() layout.DocumentMeta {
	return layout.DocumentMeta{
		Title:   c.Title,
		Author:  c.Author,
		Subject: c.Subject,
		Creator: "labelgrid",
	}
}
