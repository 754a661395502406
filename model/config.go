package model

import (
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk model description consumed by the command-line
// tools. Palette entries are "#rrggbb" hex strings.
type Config struct {
	GridWidth  int      `yaml:"grid_width"`
	GridHeight int      `yaml:"grid_height"`
	Palette    []string `yaml:"palette"`
	BlurSigma  float32  `yaml:"blur_sigma"`
}

// LoadConfig reads and validates a YAML model config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("model: config %s: %w", path, err)
	}
	if cfg.GridWidth <= 0 || cfg.GridHeight <= 0 {
		return nil, fmt.Errorf("model: config %s: invalid grid size %dx%d", path, cfg.GridWidth, cfg.GridHeight)
	}
	if len(cfg.Palette) == 0 {
		return nil, fmt.Errorf("model: config %s: empty palette", path)
	}
	return &cfg, nil
}

// Model builds the palette model described by the config.
func (c *Config) Model() (*PaletteModel, error) {
	codebook := make([]color.RGBA, len(c.Palette))
	for i, hex := range c.Palette {
		rgba, err := parseHexColor(hex)
		if err != nil {
			return nil, fmt.Errorf("model: palette[%d]: %w", i, err)
		}
		codebook[i] = rgba
	}
	m, err := NewPaletteModel(codebook, c.GridWidth, c.GridHeight)
	if err != nil {
		return nil, err
	}
	m.BlurSigma = c.BlurSigma
	return m, nil
}

func parseHexColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid color %q, want #rrggbb", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %v", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
