// Package logging provides New, which builds a consistently configured
// *logrus.Entry for one component, grounded on cmd/crisk/main.go's
// PersistentPreRun logger setup (level from a verbose flag) and the
// structured logrus.Fields call style used throughout
// internal/ingestion/orchestrator.go. No other package in this module calls
// it: cmd/coderag and cmd/coderag-mcp build their own logrus entries with a
// component field, and library packages log through logrus directly or
// through an entry their caller passes in.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Entry for component, at the given level (use
// logrus.InfoLevel by default, logrus.DebugLevel under a verbose flag).
func New(component string, level logrus.Level) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l.WithField("component", component)
}
