package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/menta2k/object-extractor/internal/utils"
)

// Config holds the application configuration
type Config struct {
	Segmentation SegmentationConfig `json:"segmentation"`
	Output       OutputConfig       `json:"output"`
	Workers      int                `json:"workers"`
}

// SegmentationConfig holds configuration for preprocessing and component filtering
type SegmentationConfig struct {
	Threshold    int `json:"threshold"`
	MinPixels    int `json:"min_pixels"`
	MaxDimension int `json:"max_dimension"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Dir      string `json:"dir"`
	Format   string `json:"format"`
	Prefix   string `json:"prefix"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
	Manifest bool   `json:"manifest"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Segmentation: SegmentationConfig{
			Threshold:    240,
			MinPixels:    150,
			MaxDimension: 2000,
		},
		Output: OutputConfig{
			Dir:      "./output",
			Format:   "png",
			Prefix:   "object_",
			Quality:  90,
			Lossless: false,
			Manifest: true,
		},
		Workers: runtime.NumCPU(),
	}
}

// LoadFromFile loads configuration from a JSON file.
// Fields missing from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Segmentation.Threshold < 0 || c.Segmentation.Threshold > 255 {
		return fmt.Errorf("segmentation.threshold must be between 0 and 255")
	}

	if c.Segmentation.MinPixels < 1 {
		return fmt.Errorf("segmentation.min_pixels must be positive")
	}

	if c.Segmentation.MaxDimension < 1 {
		return fmt.Errorf("segmentation.max_dimension must be positive")
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir cannot be empty")
	}

	switch strings.ToLower(c.Output.Format) {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("output.format must be one of png, jpg, webp")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}

	return nil
}

// Flags holds CLI values that override config file settings.
// Zero values leave the file setting untouched.
type Flags struct {
	OutputDir string
	MinPixels int
	// Threshold is nil when the flag was not given, so 0 stays expressible.
	Threshold    *int
	MaxDimension int
	Format       string
	Quality      int
	Lossless     bool
	NoManifest   bool
	Workers      int
}

// Resolve applies non-zero CLI values on top of the configuration
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.Output.Dir = flags.OutputDir
	}
	if flags.MinPixels > 0 {
		c.Segmentation.MinPixels = flags.MinPixels
	}
	if flags.Threshold != nil {
		c.Segmentation.Threshold = *flags.Threshold
	}
	if flags.MaxDimension > 0 {
		c.Segmentation.MaxDimension = flags.MaxDimension
	}
	if flags.Format != "" {
		c.Output.Format = flags.Format
	}
	if flags.Quality > 0 {
		c.Output.Quality = flags.Quality
	}
	if flags.Lossless {
		c.Output.Lossless = true
	}
	if flags.NoManifest {
		c.Output.Manifest = false
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "object-extractor", "config.json")
}

// ResolvePath returns explicit when set, otherwise the default config path
// if a file exists there, otherwise "".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if path := GetConfigPath(); utils.FileExists(path) {
		return path
	}
	return ""
}

// ParseMinPixels parses the positional minPixels argument. ok is false when
// arg is empty, not a number or below 1; callers keep their configured value.
func ParseMinPixels(arg string) (n int, ok bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
