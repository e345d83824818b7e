package module

import (
	"time"

	"touchgrass/internal/platform/config"
)

// Options holds configuration settings for the events module
type Options struct {
	// WritesPerSec paces successive batch writes, 0 disables pacing
	WritesPerSec float64
	WriteBurst   int

	SaveTimeout time.Duration
	ListLimit   int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	ef := cfg.Prefix("CORE_EVENTS_")
	return Options{
		WritesPerSec: ef.MayFloat64("WRITES_PER_SEC", 10),
		WriteBurst:   ef.MayInt("WRITE_BURST", 1),
		SaveTimeout:  ef.MayDuration("SAVE_TIMEOUT", 10*time.Second),
		ListLimit:    ef.MayInt("LIST_LIMIT", 100),
	}
}
