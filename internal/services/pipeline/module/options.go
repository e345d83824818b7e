package module

import (
	"time"

	"touchgrass/internal/platform/config"
	"touchgrass/internal/services/pipeline/guardrails"
)

// Options holds configuration settings for the pipeline module
type Options struct {
	Timeouts guardrails.Timeouts

	// EnableLeases claims a per-source hourly lease before scheduled runs
	EnableLeases bool
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	pf := cfg.Prefix("CORE_PIPELINE_")
	return Options{
		Timeouts: guardrails.Timeouts{
			Batch:   pf.MayDuration("BATCH_TIMEOUT", 5*time.Minute),
			Persist: pf.MayDuration("PERSIST_TIMEOUT", 3*time.Minute),
			Index:   pf.MayDuration("INDEX_TIMEOUT", time.Minute),
		},
		EnableLeases: pf.MayBool("ENABLE_LEASES", false),
	}
}
