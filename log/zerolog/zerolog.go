package zerolog

import (
	"github.com/rs/zerolog"
	"github.com/unkn0wn-root/fallcache"
)

var _ fallcache.Logger = Logger{}

type Logger struct{ L zerolog.Logger }

func (z Logger) Debug(msg string, f fallcache.Fields) { z.L.Debug().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Info(msg string, f fallcache.Fields)  { z.L.Info().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Warn(msg string, f fallcache.Fields)  { z.L.Warn().Fields(map[string]any(f)).Msg(msg) }
func (z Logger) Error(msg string, f fallcache.Fields) { z.L.Error().Fields(map[string]any(f)).Msg(msg) }
