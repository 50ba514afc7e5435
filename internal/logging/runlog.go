package logging

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/raoulx24/mc-backup/internal/snapshot"
)

// appendFile opens, appends to and closes the file on every write, so a
// line is on disk as soon as it is logged. The first failed write is kept.
type appendFile struct {
	path string

	mu  sync.Mutex
	err error
}

func (a *appendFile) Write(p []byte) (int, error) {
	n, err := a.write(p)
	if err != nil {
		a.mu.Lock()
		if a.err == nil {
			a.err = err
		}
		a.mu.Unlock()
	}
	return n, err
}

func (a *appendFile) write(p []byte) (int, error) {
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := f.Write(p)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func (*appendFile) Sync() error { return nil }

// RunLog is the zap core behind the run log file of one invocation.
type RunLog struct {
	zapcore.Core
	sink *appendFile
}

func (l *RunLog) Path() string { return l.sink.path }

// Err returns the first write to the run log that failed, if any.
func (l *RunLog) Err() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.err == nil {
		return nil
	}
	return fmt.Errorf("writing run log: %w", l.sink.err)
}

// NewRunLog returns a core writing "[2006-01-02_15-04-05] message" lines
// to path. The file is created up front so an unwritable log location
// fails here rather than on the first message.
func NewRunLog(path string) (*RunLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating run log: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("creating run log: %w", err)
	}

	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "ts",
		MessageKey:       "msg",
		EncodeTime:       encodeRunLogTime,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
		LineEnding:       zapcore.DefaultLineEnding,
	})

	sink := &appendFile{path: path}
	return &RunLog{
		Core: zapcore.NewCore(enc, sink, zapcore.InfoLevel),
		sink: sink,
	}, nil
}

func encodeRunLogTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + snapshot.Stamp(t) + "]")
}
