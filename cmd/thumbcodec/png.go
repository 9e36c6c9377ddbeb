package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/klauspost/compress/flate"
	"github.com/spf13/cobra"

	"github.com/cocosip/go-thumb-codec/internal/config"
	"github.com/cocosip/go-thumb-codec/internal/imageio"
	"github.com/cocosip/go-thumb-codec/internal/logging"
	"github.com/cocosip/go-thumb-codec/internal/oops"
	"github.com/cocosip/go-thumb-codec/png"
	"github.com/cocosip/go-thumb-codec/png/common"
)

func init() {
	decodeCommand := &cobra.Command{
		Use:   "decode <file.png>",
		Short: "Decode a PNG or APNG into RGBA frames",
		Long:  "Decode a PNG or APNG. Each composited frame is written to --out as an uncompressed PNG, or printed as a data URL when --out is not set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			img, err := png.DecodeContainer(data)
			if err != nil {
				return oops.New(err, "failed to decode %s", args[0])
			}

			md := img.Metadata
			ev := logging.Info().
				Int("width", md.Width).
				Int("height", md.Height).
				Int("bitDepth", md.BitDepth).
				Str("colorType", md.ColorType.String()).
				Bool("interlaced", md.Interlaced).
				Int("frames", len(img.Frames))
			if md.Animation != nil {
				ev = ev.Int("loops", md.Animation.LoopCount)
			}
			ev.Msg("decoded image")

			params := png.NewEncodeParameters().WithAlpha(true)
			for i, f := range img.Frames {
				encoded, err := png.EncodeBytes(f.Width, f.Height, f.Pix, params)
				if err != nil {
					return oops.New(err, "failed to encode frame %d", i)
				}
				if config.Config.OutputDir == "" {
					fmt.Fprintln(cmd.OutOrStdout(), png.DataURLPrefix+encodeBase64(encoded))
					continue
				}
				name := filepath.Join(config.Config.OutputDir, fmt.Sprintf("frame_%03d.png", i))
				if err := os.WriteFile(name, encoded, 0o644); err != nil {
					return oops.New(err, "failed to write frame")
				}
				logging.Debug().Str("file", name).Dur("delay", f.Control.Delay).Msg("wrote frame")
			}
			return nil
		},
	}
	rootCommand.AddCommand(decodeCommand)

	var recompress bool
	var level int
	inspectCommand := &cobra.Command{
		Use:   "inspect <file.png>",
		Short: "List the chunks of a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			chunks, err := png.ReadChunks(data)
			if err != nil {
				return oops.New(err, "failed to read chunks")
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tLENGTH\tCRC\tCRITICAL")
			for _, c := range chunks {
				fmt.Fprintf(tw, "%s\t%d\t%08x\t%v\n", c.Type, len(c.Data), c.CRC, common.IsCritical(c.Type))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			md, err := png.DecodeMetadata(data)
			if err != nil {
				return oops.New(err, "failed to read metadata")
			}
			for k, v := range md.Text {
				logging.Info().Str("keyword", k).Str("text", v).Msg("text chunk")
			}

			if recompress {
				stats, err := imageio.Recompress(data, level)
				if err != nil {
					return oops.New(err, "failed to recompress")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "image data: %d bytes stored, %d raw, %d recompressed (%.1f%%)\n",
					stats.Stored, stats.Raw, stats.Recompressed, stats.Ratio()*100)
			}
			return nil
		},
	}
	inspectCommand.Flags().BoolVar(&recompress, "recompress", false, "report the size of the image data recompressed with DEFLATE")
	inspectCommand.Flags().IntVar(&level, "level", flate.BestCompression, "compression level for --recompress")
	rootCommand.AddCommand(inspectCommand)
}
