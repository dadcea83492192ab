package config

import (
	"math"
	"time"
)

// BatchConfig controls how the input items of a run are partitioned.
type BatchConfig struct {
	ItemsPerBatch int
	Interval      time.Duration
}

// BatchOptions are the user supplied batching settings. Size and Interval
// may hold any JSON, YAML or flag value; unusable values fall back to defaults.
type BatchOptions struct {
	Configured bool
	Size       any
	IntervalMs any
}

// ResolveBatch derives the effective batch configuration for itemCount items.
//
// When batching is not configured the whole input forms one batch and there
// is no delay. Otherwise the size is clamped to [1,1000] (default 50) and the
// interval to [0,60000] ms (default 0).
func ResolveBatch(opts BatchOptions, itemCount int) BatchConfig {
	if !opts.Configured {
		return BatchConfig{ItemsPerBatch: max(itemCount, 1)}
	}

	size := clampInt(opts.Size, DefaultItemsPerBatch, MinItemsPerBatch, MaxItemsPerBatch)
	interval := clampInt(opts.IntervalMs, DefaultBatchIntervalMs, MinBatchIntervalMs, MaxBatchIntervalMs)

	return BatchConfig{
		ItemsPerBatch: size,
		Interval:      millis(int64(interval)),
	}
}

func clampInt(v any, def, lo, hi int) int {
	f, ok := numberValue(v)
	if !ok {
		return def
	}
	f = math.Trunc(f)
	if f < float64(lo) {
		return lo
	}
	if f > float64(hi) {
		return hi
	}
	return int(f)
}
