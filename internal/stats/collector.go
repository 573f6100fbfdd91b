// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the coach.
const (
	// Oracle metrics.
	MetricOracleCalls   = "coach_oracle_calls_total"
	MetricOracleErrors  = "coach_oracle_errors_total"
	MetricOracleSeconds = "coach_oracle_seconds"

	// Live analysis metrics.
	MetricLiveAnalyses = "coach_live_analyses_total"
	MetricMoveCPL      = "coach_move_cpl"

	// Live cache metrics.
	MetricCacheHits   = "coach_cache_hits_total"
	MetricCacheMisses = "coach_cache_misses_total"
	MetricCacheSize   = "coach_cache_size"

	// Profile metrics.
	MetricProfilesBuilt  = "coach_profiles_built_total"
	MetricProfileGames   = "coach_profile_games_total"
	MetricGamesSkipped   = "coach_profile_games_skipped_total"
	MetricProfileSeconds = "coach_profile_build_seconds"
	MetricStoreHits      = "coach_store_cache_hits_total"
	MetricStoreMisses    = "coach_store_cache_misses_total"
)

// Help returns a description of a known metric, or the name itself.
func Help(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}

var help = map[string]string{
	MetricOracleCalls:    "Analysis requests sent to the evaluation engine.",
	MetricOracleErrors:   "Analysis requests that failed.",
	MetricOracleSeconds:  "Time spent waiting for the evaluation engine.",
	MetricLiveAnalyses:   "Live move analyses served.",
	MetricMoveCPL:        "Centipawn loss of analyzed moves.",
	MetricCacheHits:      "Live evaluation cache hits.",
	MetricCacheMisses:    "Live evaluation cache misses.",
	MetricCacheSize:      "Entries in the live evaluation cache.",
	MetricProfilesBuilt:  "Player profiles built from game history.",
	MetricProfileGames:   "Games analyzed while building profiles.",
	MetricGamesSkipped:   "Games skipped while building profiles.",
	MetricProfileSeconds: "Time spent building a player profile.",
	MetricStoreHits:      "Profile store read cache hits.",
	MetricStoreMisses:    "Profile store read cache misses.",
}

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
