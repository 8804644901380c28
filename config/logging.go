package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

func parseLevel(level string) (logrus.Level, error) {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return 0, fmt.Errorf("logging.level %q: %v", level, err)
	}
	return l, nil
}

// Apply configures the global logrus logger.
func (l LoggingConfig) Apply() error {
	level, err := parseLevel(l.Level)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	logrus.SetLevel(level)

	switch l.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
