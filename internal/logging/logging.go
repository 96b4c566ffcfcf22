package logging

import (
	"io"
	"strings"

	"github.com/go-pkgz/lgr"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
)

// ParseLevel accepts debug and info. Anything else falls back to info
// since lgr only filters debug and trace records.
func ParseLevel(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), LevelDebug) {
		return LevelDebug
	}
	return LevelInfo
}

// Setup configures the global lgr logger and returns it.
func Setup(level string, out io.Writer) lgr.L {
	opts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.Out(out), lgr.Err(out)}
	if level == LevelDebug {
		opts = append(opts, lgr.Debug, lgr.CallerFunc)
	}
	lgr.Setup(opts...)
	return lgr.Default()
}
