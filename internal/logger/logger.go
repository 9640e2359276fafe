package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const serviceName = "dharmasaathi"

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Initialized with defaults so packages used outside main (tests) never see a nil entry.
func init() {
	Init("info", "text", os.Stderr)
}

// Init replaces the global logger. Unknown levels fall back to info.
func Init(level, format string, out io.Writer) {
	logger = logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(parseLevel(level))

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	Log = logger.WithFields(logrus.Fields{"service": serviceName})
}

func parseLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
