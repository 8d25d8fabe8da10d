// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

// Package log is a small leveled logger used for lifecycle tracing
// (binding, unbinding, loader diagnostics). It is never used on the
// adversarial parsing paths: a malformed header is a normal outcome there,
// not something worth a log line.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink every log call goes through.
type Logger interface {
	Log(level Level, msg string)
}

type stdLogger struct {
	out *log.Logger
}

// NewStdLogger builds a Logger that writes "LEVEL: msg" lines to w, each
// prefixed with the date and time.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{out: log.New(w, "", log.LstdFlags)}
}

func (l *stdLogger) Log(level Level, msg string) {
	l.out.Printf("%s: %s", level, msg)
}

// filter wraps a Logger and drops anything below its configured level.
type filter struct {
	next  Logger
	level Level
}

// FilterOption configures a filter built by NewFilter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level a filter lets through.
func FilterLevel(level Level) FilterOption {
	return func(f *filter) {
		f.level = level
	}
}

// NewFilter wraps next, applying the given options.
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filter{next: next, level: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, msg string) {
	if level < f.level {
		return
	}
	f.next.Log(level, msg)
}

// Helper adds the Debugf/Infof/Warnf/Errorf convenience methods on top of
// a plain Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) Debug(args ...interface{}) { h.logger.Log(LevelDebug, fmt.Sprint(args...)) }
func (h *Helper) Info(args ...interface{})  { h.logger.Log(LevelInfo, fmt.Sprint(args...)) }
func (h *Helper) Warn(args ...interface{})  { h.logger.Log(LevelWarn, fmt.Sprint(args...)) }
func (h *Helper) Error(args ...interface{}) { h.logger.Log(LevelError, fmt.Sprint(args...)) }

func (h *Helper) Debugf(format string, args ...interface{}) {
	h.logger.Log(LevelDebug, fmt.Sprintf(format, args...))
}
func (h *Helper) Infof(format string, args ...interface{}) {
	h.logger.Log(LevelInfo, fmt.Sprintf(format, args...))
}
func (h *Helper) Warnf(format string, args ...interface{}) {
	h.logger.Log(LevelWarn, fmt.Sprintf(format, args...))
}
func (h *Helper) Errorf(format string, args ...interface{}) {
	h.logger.Log(LevelError, fmt.Sprintf(format, args...))
}

// defaultHelper is used by the package-level convenience functions, mainly
// from cmd/pescan where there is no Module instance handy.
var defaultHelper = NewHelper(NewFilter(NewStdLogger(os.Stderr), FilterLevel(LevelWarn)))

func Errorf(format string, args ...interface{}) { defaultHelper.Errorf(format, args...) }
func Warnf(format string, args ...interface{})  { defaultHelper.Warnf(format, args...) }
func Infof(format string, args ...interface{})  { defaultHelper.Infof(format, args...) }
func Debugf(format string, args ...interface{}) { defaultHelper.Debugf(format, args...) }
