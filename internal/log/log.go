// Package log provides the logrus logger shared by chains, effects and tools.
package log

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// debugEnv enables debug level output when set to a true value.
const debugEnv = "EFFECTS_DEBUG"

var debug bool

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv(debugEnv))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger instance.
func GetLogger() *logrus.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Discard returns a logger that drops everything. Tests and library users
// that do not want output pass it to the chain.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

var std = GetLogger()

// Std returns the process-wide default logger.
func Std() *logrus.Logger {
	return std
}

// SetDebug switches the default logger between debug and info level.
func SetDebug(on bool) {
	if on {
		std.SetLevel(logrus.DebugLevel)
		return
	}
	std.SetLevel(logrus.InfoLevel)
}
