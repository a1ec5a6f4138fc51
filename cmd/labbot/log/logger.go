package log

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	logFile *os.File
	buffer  *bufio.Writer
)

// lockedWriter serializes writes coming from the slog handler and the
// periodic flushes.
type lockedWriter struct {
	w io.Writer
}

func (l lockedWriter) Write(p []byte) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	return l.w.Write(p)
}

// NewLogger returns a text logger writing to stdout and to a new file under
// dir. The file is named after name, or after the current time when name is
// empty.
func NewLogger(debug bool, dir, name string) (*slog.Logger, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating log directory: %w", err)
	}

	fileName := "labbot-" + time.Now().Format("2006-01-02-15-04-05") + ".txt"
	if name != "" {
		fileName = "labbot-" + name + ".txt"
	}

	f, err := os.OpenFile(filepath.Join(dir, fileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	mu.Lock()
	if logFile != nil {
		_ = buffer.Flush()
		_ = logFile.Close()
	}
	logFile = f
	buffer = bufio.NewWriterSize(f, 32*1024)
	mu.Unlock()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Value = slog.StringValue(a.Value.Time().Format("15:04:05"))
			}
			return a
		},
	}

	w := lockedWriter{w: io.MultiWriter(os.Stdout, bufferWriter{})}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// bufferWriter writes to whichever buffer is current. Callers hold mu.
type bufferWriter struct{}

func (bufferWriter) Write(p []byte) (int, error) {
	if buffer == nil {
		return len(p), nil
	}
	return buffer.Write(p)
}

// FlushLog writes buffered lines to the log file.
func FlushLog() {
	mu.Lock()
	defer mu.Unlock()
	if buffer != nil {
		_ = buffer.Flush()
	}
}

// FlushAndClose flushes and closes the log file. The logger keeps writing to
// stdout afterwards.
func FlushAndClose() {
	mu.Lock()
	defer mu.Unlock()
	if buffer != nil {
		_ = buffer.Flush()
		buffer = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
