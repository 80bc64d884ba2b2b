package log

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB = 10
	defaultMaxFiles  = 3
)

// logFile opens the size-rotated file behind the process logger. The TUI owns
// the terminal, so logs never go to stdout. Backups are gzipped and stamped in
// local time.
func logFile(opts Options) (*lumberjack.Logger, error) {
	if opts.File == "" {
		return nil, errors.New("log file path is empty")
	}
	if fi, err := os.Stat(opts.File); err == nil && fi.IsDir() {
		return nil, fmt.Errorf("log file %s is a directory", opts.File)
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	lf := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxFiles,
		LocalTime:  true,
		Compress:   true,
	}
	if lf.MaxSize <= 0 {
		lf.MaxSize = defaultMaxSizeMB
	}
	if lf.MaxBackups <= 0 {
		lf.MaxBackups = defaultMaxFiles
	}
	return lf, nil
}
