// Package logger provides leveled logging for the classifieds server on top of go-logging.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
)

const (
	module     = "classifieds"
	timeFormat = "2006/01/02 15:04:05"
)

var logger *logging.Logger

func init() {
	InitLogger(logging.INFO)
}

// InitLogger routes log output to stderr at the given level.
func InitLogger(level logging.Level) {
	initWithWriter(os.Stderr, level)
}

// InitWithWriter routes log output to w. Used by tests to capture logs.
func InitWithWriter(w io.Writer, level logging.Level) {
	initWithWriter(w, level)
}

func initWithWriter(w io.Writer, level logging.Level) {
	newLogger := logging.MustGetLogger(module)
	backend := logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), newFormatter())
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(level, module)
	newLogger.SetBackend(leveled)
	logger = newLogger
}

func newFormatter() logging.Formatter {
	return logging.MustStringFormatter(`%{time:` + timeFormat + `} %{level} - %{message}`)
}

// ParseLevel maps a configured level name to a go-logging level. Unknown names yield INFO.
func ParseLevel(name string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "warn":
		return logging.WARNING
	case "":
		return logging.INFO
	}
	level, err := logging.LogLevel(name)
	if err != nil {
		return logging.INFO
	}
	return level
}

func Debug(args ...any) {
	logger.Debug(args...)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Info(args ...any) {
	logger.Info(args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Notice(args ...any) {
	logger.Notice(args...)
}

func Noticef(format string, args ...any) {
	logger.Noticef(format, args...)
}

func Warning(args ...any) {
	logger.Warning(args...)
}

func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
}

func Error(args ...any) {
	logger.Error(args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}
