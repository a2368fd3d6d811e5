package utils

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	log "github.com/rs/zerolog/log"
)

// SetupLogger routes the global zerolog logger to a console writer on stderr
func SetupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	})
}
