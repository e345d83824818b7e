package module

import "touchgrass/internal/platform/config"

// Options holds configuration settings for the search module
type Options struct {
	Concurrency int
	HardLimit   int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	sf := cfg.Prefix("CORE_SEARCH_")
	return Options{
		Concurrency: sf.MayInt("INDEX_CONCURRENCY", 8),
		HardLimit:   sf.MayInt("HARD_LIMIT", 100),
	}
}
