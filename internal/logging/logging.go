// Package logging provides the logger every component writes through.
// Each message goes to the run log file of the current invocation and to a
// structured console logger on stderr.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ZapLogger adapts a zap logger to Logger with printf-style messages.
type ZapLogger struct {
	s *zap.SugaredLogger
}

var _ Logger = (*ZapLogger)(nil)

func New(l *zap.Logger) *ZapLogger {
	return &ZapLogger{s: l.Sugar()}
}

func (z *ZapLogger) Info(msg string, args ...any)  { z.s.Infof(msg, args...) }
func (z *ZapLogger) Warn(msg string, args ...any)  { z.s.Warnf(msg, args...) }
func (z *ZapLogger) Error(msg string, args ...any) { z.s.Errorf(msg, args...) }

// Tee sends every entry to both the console logger and the run log.
func Tee(console *zap.Logger, runLog zapcore.Core) *zap.Logger {
	return zap.New(zapcore.NewTee(runLog, console.Core()))
}
