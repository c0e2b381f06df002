// Package config loads the estimate generator settings from a YAML or TOML
// file: company profile, page geometry, style and pricing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"estimatedoc/services"
)

type Company struct {
	Name    string `yaml:"name" toml:"name"`
	CEO     string `yaml:"ceo" toml:"ceo"`
	Address string `yaml:"address" toml:"address"`
	Phone   string `yaml:"phone" toml:"phone"`
	Fax     string `yaml:"fax" toml:"fax"`
}

type Column struct {
	Key   string  `yaml:"key" toml:"key"`
	Width float64 `yaml:"width" toml:"width"`
}

// Page is the table geometry in millimetres.
type Page struct {
	Width        float64  `yaml:"width" toml:"width"`
	Height       float64  `yaml:"height" toml:"height"`
	TopMargin    float64  `yaml:"top_margin" toml:"top_margin"`
	BottomMargin float64  `yaml:"bottom_margin" toml:"bottom_margin"`
	LeftMargin   float64  `yaml:"left_margin" toml:"left_margin"`
	RowHeight    float64  `yaml:"row_height" toml:"row_height"`
	HeaderHeight float64  `yaml:"header_height" toml:"header_height"`
	Columns      []Column `yaml:"columns" toml:"columns"`
}

type Style struct {
	L1Color     string `yaml:"l1_color" toml:"l1_color"`
	L2Color     string `yaml:"l2_color" toml:"l2_color"`
	L3Color     string `yaml:"l3_color" toml:"l3_color"`
	TotalColor  string `yaml:"total_color" toml:"total_color"`
	AccentColor string `yaml:"accent_color" toml:"accent_color"`
	FontFamily  string `yaml:"font_family" toml:"font_family"`
	FontFile    string `yaml:"font_file" toml:"font_file"`
}

type Config struct {
	Company             Company            `yaml:"company" toml:"company"`
	Page                Page               `yaml:"page" toml:"page"`
	Style               Style              `yaml:"style" toml:"style"`
	TaxRate             float64            `yaml:"tax_rate" toml:"tax_rate"`
	DedicatedCategories []string           `yaml:"dedicated_categories" toml:"dedicated_categories"`
	OverheadCategory    string             `yaml:"overhead_category" toml:"overhead_category"`
	OverheadRates       map[string]float64 `yaml:"overhead_rates" toml:"overhead_rates"`
}

// Default reproduces the built-in A4 landscape layout.
func Default() *Config {
	g := services.DefaultGeometry()
	s := services.DefaultStyle()

	cols := make([]Column, 0, len(g.Columns))
	for _, c := range g.Columns {
		w := c.Width
		if c.Key == services.ColRemark {
			w = 0
		}
		cols = append(cols, Column{Key: c.Key, Width: w})
	}

	return &Config{
		Page: Page{
			Width:        g.PageWidth,
			Height:       g.PageHeight,
			TopMargin:    g.TopMargin,
			BottomMargin: g.BottomMargin,
			LeftMargin:   g.LeftMargin,
			RowHeight:    g.RowHeight,
			HeaderHeight: g.HeaderHeight,
			Columns:      cols,
		},
		Style: Style{
			L1Color:     s.LevelColor(1).Hex(),
			L2Color:     s.LevelColor(2).Hex(),
			L3Color:     s.LevelColor(3).Hex(),
			TotalColor:  s.TotalColor.Hex(),
			AccentColor: s.AccentColor.Hex(),
			FontFamily:  s.FontFamily,
		},
		TaxRate:             services.DefaultTaxRate,
		DedicatedCategories: []string{services.DefaultDedicatedCategory},
		OverheadCategory:    services.DefaultDedicatedCategory,
	}
}

// Load reads a config file on top of the defaults. The format follows the
// extension: .yaml/.yml or .toml. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	if cfg.Style.FontFile != "" && !filepath.IsAbs(cfg.Style.FontFile) {
		cfg.Style.FontFile = filepath.Join(filepath.Dir(path), cfg.Style.FontFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Page),
		validation.Field(&c.Style),
		validation.Field(&c.TaxRate, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.OverheadRates, validation.Each(validation.Min(0.0), validation.Max(100.0))),
	)
}

func (p Page) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Width, validation.Required, validation.Min(1.0)),
		validation.Field(&p.Height, validation.Required, validation.Min(1.0)),
		validation.Field(&p.RowHeight, validation.Required, validation.Min(0.5)),
		validation.Field(&p.TopMargin, validation.Min(0.0)),
		validation.Field(&p.BottomMargin, validation.Min(0.0)),
		validation.Field(&p.LeftMargin, validation.Min(0.0)),
		validation.Field(&p.Columns, validation.Required),
	)
	if err != nil {
		return err
	}
	return p.Geometry().Validate()
}

func (c Column) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Key, validation.Required, validation.In(
			services.ColName, services.ColSpec, services.ColQty, services.ColUnit,
			services.ColPrice, services.ColAmount, services.ColRemark,
		)),
		validation.Field(&c.Width, validation.Min(0.0)),
	)
}

func (s Style) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.L1Color, validation.Match(hexColor)),
		validation.Field(&s.L2Color, validation.Match(hexColor)),
		validation.Field(&s.L3Color, validation.Match(hexColor)),
		validation.Field(&s.TotalColor, validation.Match(hexColor)),
		validation.Field(&s.AccentColor, validation.Match(hexColor)),
	)
}

// Geometry converts the page section. The remark column takes the width left
// over by the others.
func (p Page) Geometry() services.PageGeometry {
	g := services.PageGeometry{
		PageWidth:    p.Width,
		PageHeight:   p.Height,
		TopMargin:    p.TopMargin,
		BottomMargin: p.BottomMargin,
		LeftMargin:   p.LeftMargin,
		RowHeight:    p.RowHeight,
		HeaderHeight: p.HeaderHeight,
	}
	for _, c := range p.Columns {
		g.Columns = append(g.Columns, services.Column{Key: c.Key, Width: c.Width})
	}
	return g.FillRemark()
}

func (c Config) StyleConfig() services.StyleConfig {
	s := services.DefaultStyle()
	set := func(dst *services.RGB, hex string) {
		if v, err := services.ParseHexColor(hex); err == nil {
			*dst = v
		}
	}
	set(&s.LevelColors[1], c.Style.L1Color)
	set(&s.LevelColors[2], c.Style.L2Color)
	set(&s.LevelColors[3], c.Style.L3Color)
	set(&s.TotalColor, c.Style.TotalColor)
	set(&s.AccentColor, c.Style.AccentColor)
	if c.Style.FontFamily != "" {
		s.FontFamily = c.Style.FontFamily
	}
	s.FontFile = c.Style.FontFile
	return s
}

func (c Config) CompanyProfile() services.CompanyProfile {
	return services.CompanyProfile{
		Name:    c.Company.Name,
		CEO:     c.Company.CEO,
		Address: c.Company.Address,
		Phone:   c.Company.Phone,
		Fax:     c.Company.Fax,
	}
}

// Options builds the document options for the services package.
func (c Config) Options() services.Options {
	o := services.DefaultOptions()
	o.Geometry = c.Page.Geometry()
	o.Style = c.StyleConfig()
	o.TaxRate = c.TaxRate
	o.DedicatedCategories = c.DedicatedCategories
	if c.OverheadCategory != "" {
		o.OverheadCategory = c.OverheadCategory
	}
	o.OverheadRates = c.OverheadRates
	o.Company = c.CompanyProfile()
	return o
}
