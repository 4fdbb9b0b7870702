// Package log wires up zerolog the way the rest of this codebase expects:
// a per-user log file under the OS temp directory, short field names, and a
// global level toggled by --verbose.
package log

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/rs/zerolog"
)

const defaultFileMode os.FileMode = 0600

// InitLogger opens (or creates) the daemon's log file and returns a
// zerolog.Logger writing to it. verbose sets the global level to Debug;
// otherwise Info per-event tracing stays off.
func InitLogger(verbose bool) (zerolog.Logger, error) {
	usr, err := user.Current()
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("retrieving current user: %w", err)
	}

	fileName := filepath.Join(os.TempDir(), fmt.Sprintf("mtgestured-%s.log", usr.Username))
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, defaultFileMode)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("opening log file %s: %w", fileName, err)
	}

	zerolog.TimestampFieldName = "t"
	zerolog.LevelFieldName = "l"
	zerolog.MessageFieldName = "m"

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(zerolog.ConsoleWriter{Out: file, NoColor: true}).With().Timestamp().Logger()
	logger.Info().Str("path", fileName).Bool("verbose", verbose).Msg("logger initialized")
	return logger, nil
}
