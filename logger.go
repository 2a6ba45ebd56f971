package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}

	log       = logrus.WithField("module", "taxrates")
	serverLog = logrus.WithField("module", "webserver")
	reportLog = logrus.WithField("module", "report")
)

// configureLogging sets the formatter and global level.
// Logs go to stderr so console tables on stdout stay clean.
func configureLogging(level string) error {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.0000",
	})

	lvl, ok := logLevels[level]
	if !ok {
		return fmt.Errorf("log level must be one of trace, debug, info, warn, error, critical, off (got %q)", level)
	}
	logrus.SetLevel(lvl)
	return nil
}
