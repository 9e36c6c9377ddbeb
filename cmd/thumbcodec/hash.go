package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/teacat/noire"

	"github.com/cocosip/go-thumb-codec/codec"
	"github.com/cocosip/go-thumb-codec/internal/config"
	"github.com/cocosip/go-thumb-codec/internal/imageio"
	"github.com/cocosip/go-thumb-codec/internal/logging"
	"github.com/cocosip/go-thumb-codec/internal/oops"
	"github.com/cocosip/go-thumb-codec/lqip"
	"github.com/cocosip/go-thumb-codec/png"
	"github.com/cocosip/go-thumb-codec/thumbhash"
)

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// loadForHashing decodes an image file and downscales it to the configured
// hash input bound.
func loadForHashing(path string, limit int) (w, h int, rgba []byte, err error) {
	data, err := readInput(path)
	if err != nil {
		return 0, 0, nil, err
	}
	img, format, err := imageio.Load(data)
	if err != nil {
		return 0, 0, nil, oops.New(err, "failed to load %s", path)
	}
	fitted := imageio.Fit(img, limit)
	b := fitted.Bounds()
	logging.Debug().
		Str("format", format).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Int("scaledWidth", b.Dx()).
		Int("scaledHeight", b.Dy()).
		Msg("loaded image")
	return b.Dx(), b.Dy(), imageio.Pix(fitted), nil
}

func init() {
	hashCommand := &cobra.Command{
		Use:   "hash <image>",
		Short: "Print the base64 ThumbHash of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, h, rgba, err := loadForHashing(args[0], config.Config.MaxHashDimension)
			if err != nil {
				return err
			}
			c := thumbhash.NewCodec(config.Config.HashParameters())
			hash, err := c.Encode(codec.EncodeParams{PixelData: rgba, Width: w, Height: h})
			if err != nil {
				return oops.New(err, "failed to hash")
			}
			fmt.Fprintln(cmd.OutOrStdout(), encodeBase64(hash))
			return nil
		},
	}
	rootCommand.AddCommand(hashCommand)

	unhashCommand := &cobra.Command{
		Use:   "unhash <base64>",
		Short: "Render a ThumbHash as a PNG placeholder",
		Long:  "Render a ThumbHash. The placeholder is written to --out as unhash.png, or printed as a data URL when --out is not set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := parseHash(args[0])
			if err != nil {
				return err
			}
			img, err := thumbhash.DecodeSize(hash, config.Config.DecodeSize)
			if err != nil {
				return oops.New(err, "failed to decode hash")
			}
			encoded, err := png.EncodeBytes(img.Width, img.Height, img.Pix, png.NewEncodeParameters().WithAlpha(true))
			if err != nil {
				return oops.New(err, "failed to encode placeholder")
			}
			if config.Config.OutputDir == "" {
				fmt.Fprintln(cmd.OutOrStdout(), png.DataURLPrefix+encodeBase64(encoded))
				return nil
			}
			name := filepath.Join(config.Config.OutputDir, "unhash.png")
			if err := os.WriteFile(name, encoded, 0o644); err != nil {
				return oops.New(err, "failed to write placeholder")
			}
			logging.Info().Str("file", name).Int("width", img.Width).Int("height", img.Height).Msg("wrote placeholder")
			return nil
		},
	}
	rootCommand.AddCommand(unhashCommand)

	averageCommand := &cobra.Command{
		Use:   "average <base64>",
		Short: "Print the average color of a ThumbHash as CSS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := parseHash(args[0])
			if err != nil {
				return err
			}
			avg, err := thumbhash.AverageColor(hash)
			if err != nil {
				return oops.New(err, "failed to read hash")
			}
			c := noire.NewRGBA(avg.R*255, avg.G*255, avg.B*255, avg.A)
			fmt.Fprintln(cmd.OutOrStdout(), c.HTML())
			return nil
		},
	}
	rootCommand.AddCommand(averageCommand)

	aspectCommand := &cobra.Command{
		Use:   "aspect <base64>",
		Short: "Print the approximate aspect ratio of a ThumbHash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := parseHash(args[0])
			if err != nil {
				return err
			}
			ratio, err := thumbhash.AspectRatio(hash)
			if err != nil {
				return oops.New(err, "failed to read hash")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.4g\n", ratio)
			return nil
		},
	}
	rootCommand.AddCommand(aspectCommand)

	var css bool
	lqipCommand := &cobra.Command{
		Use:   "lqip <image>",
		Short: "Print the CSS placeholder integer of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, h, rgba, err := loadForHashing(args[0], config.Config.MaxHashDimension)
			if err != nil {
				return err
			}
			v, err := lqip.EncodeRGBA(rgba, w, h)
			if err != nil {
				return oops.New(err, "failed to compute placeholder")
			}
			decoded, err := lqip.Decode(v)
			if err != nil {
				return oops.New(err, "placeholder did not decode")
			}
			r, g, b := decoded.Base.RGB()
			logging.Debug().Str("base", noire.NewRGB(float64(r), float64(g), float64(b)).HTML()).Msg("placeholder base color")

			if css {
				fmt.Fprintln(cmd.OutOrStdout(), decoded.CSS())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
	lqipCommand.Flags().BoolVar(&css, "css", false, "print a custom property declaration")
	rootCommand.AddCommand(lqipCommand)
}
