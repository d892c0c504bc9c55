package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging configures the package-level logrus logger.
// The returned closer releases the log file, if any.
func SetupLogging(cfg LoggingConfig) (io.Closer, error) {
	level, errLevel := log.ParseLevel(strings.TrimSpace(cfg.Level))
	if errLevel != nil {
		return nil, fmt.Errorf("config: invalid log level: %w", errLevel)
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if strings.TrimSpace(cfg.File) == "" {
		log.SetOutput(os.Stdout)
		return nopCloser{}, nil
	}
	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		LocalTime:  true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotating))
	return rotating, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
