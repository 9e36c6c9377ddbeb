// Command thumbcodec inspects and decodes PNG/APNG files and computes image
// placeholders (ThumbHash and the CSS LQIP integer).
package main

import (
	"os"

	"github.com/cocosip/go-thumb-codec/internal/logging"
)

func main() {
	if err := rootCommand.Execute(); err != nil {
		logging.Error().Err(err).Msg("thumbcodec failed")
		os.Exit(1)
	}
}
