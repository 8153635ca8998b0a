//go:build go1.21

// Package slog bridges log/slog into the store's Logger facade. The
// facade carries no context, so records are logged against
// context.Background.
package slog

import (
	"context"
	stdslog "log/slog"

	"github.com/unkn0wn-root/fallcache"
)

var _ fallcache.Logger = Logger{}

type Logger struct{ L *stdslog.Logger }

func (s Logger) Debug(msg string, f fallcache.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f fallcache.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f fallcache.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f fallcache.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) log(lvl stdslog.Level, msg string, f fallcache.Fields) {
	if len(f) == 0 {
		s.L.LogAttrs(context.Background(), lvl, msg)
		return
	}
	attrs := make([]stdslog.Attr, 0, len(f))
	for k, v := range f {
		attrs = append(attrs, stdslog.Any(k, v))
	}
	s.L.LogAttrs(context.Background(), lvl, msg, attrs...)
}
