package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a config duration such as "15m", falling back to def.
// It runs before the component loggers exist, so it logs through the global one.
func ParseDuration(durationStr string, def time.Duration) time.Duration {
	if durationStr == "" {
		return def
	}
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return duration
}
