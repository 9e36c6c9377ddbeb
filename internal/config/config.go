// Package config holds the command-line tool's settings. Values come from
// the built-in defaults, then an optional YAML file, then THUMBCODEC_*
// environment variables, then command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/cocosip/go-thumb-codec/thumbhash"
)

const (
	EnvLogLevel   = "THUMBCODEC_LOG_LEVEL"
	EnvMaxHashDim = "THUMBCODEC_MAX_HASH_DIM"
	EnvDecodeSize = "THUMBCODEC_DECODE_SIZE"
	EnvNoColor    = "NO_COLOR"
)

type ThumbCodecConfig struct {
	LogLevel         string `yaml:"log_level"`
	MaxHashDimension int    `yaml:"max_hash_dimension"`
	DecodeSize       int    `yaml:"decode_size"`
	NoColor          bool   `yaml:"no_color"`
	OutputDir        string `yaml:"output_dir"`
}

// Config is the process-wide configuration used by the command-line tool.
var Config = Default()

func Default() ThumbCodecConfig {
	return ThumbCodecConfig{
		LogLevel:         zerolog.InfoLevel.String(),
		MaxHashDimension: thumbhash.MaxDimension,
		DecodeSize:       thumbhash.DefaultSize,
	}
}

// LoadFile overlays the settings present in a YAML file.
func (c *ThumbCodecConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays settings from environment variables. lookup is usually
// os.LookupEnv.
func (c *ThumbCodecConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvMaxHashDim); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxHashDim, err)
		}
		c.MaxHashDimension = n
	}
	if v, ok := lookup(EnvDecodeSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDecodeSize, err)
		}
		c.DecodeSize = n
	}
	if _, ok := lookup(EnvNoColor); ok {
		c.NoColor = true
	}
	return nil
}

// BindFlags registers flags that write straight into c.
func (c *ThumbCodecConfig) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (trace, debug, info, warn, error)")
	fs.IntVar(&c.MaxHashDimension, "max-hash-dim", c.MaxHashDimension, "images are downscaled to fit this square before hashing")
	fs.IntVar(&c.DecodeSize, "decode-size", c.DecodeSize, "longer side of decoded hash previews")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "disable colored log output")
	fs.StringVar(&c.OutputDir, "out", c.OutputDir, "directory for written images")
}

// Level parses LogLevel.
func (c *ThumbCodecConfig) Level() (zerolog.Level, error) {
	return zerolog.ParseLevel(c.LogLevel)
}

// HashParameters returns the hash codec parameters implied by c.
func (c *ThumbCodecConfig) HashParameters() *thumbhash.Parameters {
	p := thumbhash.NewParameters()
	p.DecodeSize = c.DecodeSize
	p.MaxInputDimension = c.MaxHashDimension
	return p
}

func (c *ThumbCodecConfig) Validate() error {
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return c.HashParameters().Validate()
}
