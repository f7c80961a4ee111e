// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Config holds settings shared by the server and the terminal game.
type Config struct {
	Addr     string
	Logging  bool
	LogFile  string
	LogLevel zerolog.Level
	// LevelSet records that TTT_LOG_LEVEL was given.
	LevelSet bool
	TieBreak string
	Seed     int64
}

// ErrInvalid wraps every rejected environment value.
var ErrInvalid = errors.New("invalid configuration")

// Default returns the settings used when nothing is set.
func Default() Config {
	return Config{
		Addr:     ":8080",
		LogFile:  "ttt.log",
		LogLevel: zerolog.InfoLevel,
		TieBreak: "random",
	}
}

// Load reads the process environment on top of Default.
func Load() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup is Load with an injectable environment.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if v, ok := lookup("TTT_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("LOGGING"); ok {
		cfg.Logging = v == "true"
	}
	if v, ok := lookup("TTT_LOG_FILE"); ok && v != "" {
		cfg.LogFile = v
	}
	if v, ok := lookup("TTT_LOG_LEVEL"); ok && v != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return cfg, fmt.Errorf("%w: TTT_LOG_LEVEL=%q: %v", ErrInvalid, v, err)
		}
		cfg.LogLevel = lvl
		cfg.LevelSet = true
	}
	if v, ok := lookup("TTT_TIE_BREAK"); ok && v != "" {
		switch strings.ToLower(v) {
		case "random", "lowest", "seeded":
			cfg.TieBreak = strings.ToLower(v)
		default:
			return cfg, fmt.Errorf("%w: TTT_TIE_BREAK=%q", ErrInvalid, v)
		}
	}
	if v, ok := lookup("TTT_SEED"); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("%w: TTT_SEED=%q", ErrInvalid, v)
		}
		cfg.Seed = seed
	}
	return cfg, nil
}

// ConsoleLevel is the log level for the terminal game: debug when verbose,
// else TTT_LOG_LEVEL if set, else warn so the board stays readable.
func (c Config) ConsoleLevel(verbose bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case c.LevelSet:
		return c.LogLevel
	default:
		return zerolog.WarnLevel
	}
}
