// Package logging installs the zerolog global logger.
package logging

import (
	"io"
	"os"

	"github.com/jaminalder/minimax-tic-tac-toe/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init installs the global logger. With file logging enabled, entries go
// to both cfg.LogFile and stdout. The returned closer releases the file.
func Init(cfg config.Config) (io.Closer, error) {
	return InitWriter(cfg, os.Stdout)
}

// InitWriter is Init with the console side of the output going to w.
func InitWriter(cfg config.Config, w io.Writer) (io.Closer, error) {
	zerolog.SetGlobalLevel(cfg.LogLevel)
	if !cfg.Logging {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return nopCloser{}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o664)
	if err != nil {
		return nil, err
	}
	multi := zerolog.MultiLevelWriter(f, w)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()
	return f, nil
}
