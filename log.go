package imageio

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var logger atomic.Pointer[logrus.FieldLogger]

func init() {
	SetLogger(nil)
}

// SetLogger replaces the package logger. Drivers log state transitions at
// debug level; nil restores the default, which only emits warnings and worse.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		d := logrus.New()
		d.SetLevel(logrus.WarnLevel)
		l = d
	}
	logger.Store(&l)
}

// Logger returns the package logger.
func Logger() logrus.FieldLogger {
	return *logger.Load()
}

// transition logs a driver state change.
func transition(format Format, state string, width, height uint32) {
	Logger().WithFields(logrus.Fields{
		"format": format.String(),
		"state":  state,
		"width":  width,
		"height": height,
	}).Debug("state transition")
}
