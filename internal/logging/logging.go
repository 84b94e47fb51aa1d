// Package logging provides the shared logger factory.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stderr, keeping stdout clean for the
// usage report. At the default level only warnings and errors surface;
// debug mode (or DEBUG=TRUE in the environment) lowers the level.
func New(debug bool) *logrus.Logger {
	log := logrus.New()

	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	if debug || os.Getenv("DEBUG") == "TRUE" {
		log.SetLevel(logrus.DebugLevel)
	}

	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	return log
}
