package dataflow

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// stumpyLogger implements DebugSink on top of a stumpy-backed logiface
// Logger: every Debug-operator observation becomes one structured log line.
// A nil *stumpyLogger is valid and logs nothing, matching logiface's own
// nil-receiver safety (every Logger method no-ops on a nil *Logger).
type stumpyLogger struct {
	logger *logiface.Logger[*stumpy.Event]
}

// NewLogger builds a DebugSink writing newline-delimited JSON via stumpy,
// wired through logiface as the structured logging facade; opts configure
// the underlying stumpy writer (see stumpy.WithWriter, stumpy.WithTimeField,
// etc).
func NewLogger(opts ...stumpy.Option) DebugSink {
	return &stumpyLogger{
		logger: logiface.New(
			stumpy.L.WithStumpy(opts...),
			logiface.WithLevel[*stumpy.Event](logiface.LevelDebug),
		),
	}
}

func (s *stumpyLogger) LogData(label string, version Version, size int) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Debug().
		Str(`operator`, label).
		Str(`version`, version.String()).
		Int64(`size`, int64(size)).
		Log(`data`)
}

func (s *stumpyLogger) LogFrontier(label string, f Antichain) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Debug().
		Str(`operator`, label).
		Str(`frontier`, f.String()).
		Log(`frontier`)
}
