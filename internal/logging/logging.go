// Package logging points the standard logger at stdout and, optionally, a
// size-rotated audit file.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where log output goes.
type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Setup configures the global logger and returns a closer for the log file.
// With an empty File only stdout is used.
func Setup(opts Options) io.Closer {
	log.SetFlags(log.LstdFlags)

	if opts.File == "" {
		log.SetOutput(os.Stdout)
		return io.NopCloser(nil)
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return rotator
}
