package img2ppt

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/VantageDataChat/img2ppt/pptx"
)

// Config holds img2ppt settings.
type Config struct {
	// File is the presentation to work on.
	File string `yaml:"file"`
	// SlideSize names the slide size of new presentations.
	SlideSize string `yaml:"slide_size"`
	LogLevel  string `yaml:"log_level"`  // debug | info | warn | error
	LogFormat string `yaml:"log_format"` // text | json
	// FontSize is the UI text size.
	FontSize     float32 `yaml:"font_size"`
	PreviewWidth int     `yaml:"preview_width"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	var c Config
	c.defaults()
	return c
}

func (c *Config) defaults() {
	if c.File == "" {
		c.File = "img2ppt.pptx"
	}
	if c.SlideSize == "" {
		c.SlideSize = pptx.SizeScreen16x9
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.FontSize <= 0 {
		c.FontSize = 20
	}
	if c.PreviewWidth <= 0 {
		c.PreviewWidth = 480
	}
}

// LoadConfig reads a YAML config file and fills in defaults. An empty path
// returns DefaultConfig.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	c.defaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if _, err := pptx.NamedSlideSize(c.SlideSize); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}

// NewHost returns a FileHost for the configured file and slide size.
func (c Config) NewHost(logger *slog.Logger) (*FileHost, error) {
	size, err := pptx.NamedSlideSize(c.SlideSize)
	if err != nil {
		return nil, err
	}
	return &FileHost{Path: c.File, Size: size, Logger: logger}, nil
}
