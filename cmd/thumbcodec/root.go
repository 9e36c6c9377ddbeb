package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cocosip/go-thumb-codec/codec"
	"github.com/cocosip/go-thumb-codec/internal/config"
	"github.com/cocosip/go-thumb-codec/internal/logging"
	"github.com/cocosip/go-thumb-codec/internal/oops"
)

var configFile string

var rootCommand = &cobra.Command{
	Use:           "thumbcodec",
	Short:         "PNG decoding and image placeholder hashes",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd.Flags())
	},
}

func init() {
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file")
	config.Config.BindFlags(rootCommand.PersistentFlags())
}

// loadConfig layers defaults, the config file and the environment under
// whatever flags were given explicitly.
func loadConfig(fs *pflag.FlagSet) error {
	explicit := map[string]string{}
	// Visit walks every flag ever set on fs, so filter on Changed instead.
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			explicit[f.Name] = f.Value.String()
		}
	})

	config.Config = config.Default()
	if configFile != "" {
		if err := config.Config.LoadFile(configFile); err != nil {
			return oops.New(err, "failed to load config")
		}
	}
	if err := config.Config.ApplyEnv(os.LookupEnv); err != nil {
		return oops.New(err, "bad environment")
	}
	for name, value := range explicit {
		if err := fs.Set(name, value); err != nil {
			return oops.New(err, "failed to reapply --%s", name)
		}
	}
	if err := config.Config.Validate(); err != nil {
		return oops.New(err, "invalid configuration")
	}

	level, _ := config.Config.Level()
	logging.Configure(level, config.Config.NoColor)
	return nil
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.New(err, "failed to read input")
	}
	return data, nil
}

// parseHash accepts padded or unpadded base64.
func parseHash(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	hash, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		hash, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return nil, oops.New(fmt.Errorf("%v: %w", err, codec.ErrInvalidHash), "hash is not base64")
	}
	return hash, nil
}
