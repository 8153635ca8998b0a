// Package zap bridges a *zap.Logger into the store's Logger facade.
package zap

import (
	"github.com/unkn0wn-root/fallcache"
	"go.uber.org/zap"
)

var _ fallcache.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

func (z ZapLogger) Debug(msg string, f fallcache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z ZapLogger) Info(msg string, f fallcache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z ZapLogger) Warn(msg string, f fallcache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z ZapLogger) Error(msg string, f fallcache.Fields) { z.L.Error(msg, fields(f)...) }

func fields(f fallcache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
