// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = logrus.New()

// Setup applies the level and, when file is non-empty, tees output into a
// rotating log file.
func Setup(level, file string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if file == "" {
		log.SetOutput(os.Stdout)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}))
	}
	if err != nil && level != "" {
		log.WithField("level", level).Warn("Unknown log level, using info")
	}
}

// For returns an entry tagged with the given component name.
func For(component string) *logrus.Entry {
	return log.WithField("component", component)
}

// Logger exposes the underlying logger, e.g. for silencing it in tests.
func Logger() *logrus.Logger {
	return log
}
