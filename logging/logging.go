package logging

import (
	"github.com/mentorhub/bookings/config"
	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// GetLogger returns the service-wide log entry. Packages add their own fields.
func GetLogger() *logrus.Entry {
	return logger.WithFields(logrus.Fields{"service": config.ServiceName})
}

// SetupLogging sets the logging level for the service.
func SetupLogging(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("unrecognized log level %s, defaulting to info", level)
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
}
