// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog is the console log. Everything goes through one slog
// logger so the CLI can pick text or JSON output.
package conlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

var (
	logger    atomic.Pointer[slog.Logger]
	developer atomic.Pointer[func() bool]

	outMu sync.Mutex
	out   io.Writer = os.Stdout
)

func init() {
	logger.Store(slog.Default())
}

// SetLogger replaces the logger. A nil logger restores slog.Default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	logger.Store(l)
}

// Logger returns the current logger, for packages that log with attributes.
func Logger() *slog.Logger {
	return logger.Load()
}

// SetDeveloper installs the check DPrintf uses, usually the developer cvar.
func SetDeveloper(f func() bool) {
	developer.Store(&f)
}

func Printf(format string, v ...interface{}) {
	Logger().Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...interface{}) {
	Logger().Warn(fmt.Sprintf(format, v...))
}

// DPrintf only prints in developer mode.
func DPrintf(format string, v ...interface{}) {
	f := developer.Load()
	if f == nil || !(*f)() {
		return
	}
	Logger().Debug(fmt.Sprintf(format, v...))
}

// SetOutput sets where SafePrintf writes. Nil restores stdout.
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// SafePrintf writes plain console text, without log decoration. Used for
// listings meant to be read by the user.
func SafePrintf(format string, v ...interface{}) {
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintf(out, format, v...)
}
