package logging

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/go-sif/splitmerge/errors"
)

// ParseLevel translates a level name (trace, debug, info, warn, error or fatal) to a logrus Level.
// The empty string means info.
func ParseLevel(level string) (log.Level, error) {
	if strings.TrimSpace(level) == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return lvl, errors.ConfigurationError{Param: "logLevel", Reason: fmt.Sprintf("unknown log level %q", level)}
	}
	return lvl, nil
}

// New creates a text logger writing to out at the given level
func New(level string, out io.Writer) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return logger, nil
}

// Configure sets the level and output of the standard logger
func Configure(level string, out io.Writer) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	if out != nil {
		log.SetOutput(out)
	}
	return nil
}

// OrDefault returns logger, or the standard logger if logger is nil
func OrDefault(logger log.FieldLogger) log.FieldLogger {
	if logger == nil {
		return log.StandardLogger()
	}
	return logger
}
