package config

import "time"

// Swrfile represents the structure of the swr.yaml configuration file.
// Every field can be overridden by the environment variable named in its env
// tag, prefixed with SWR_.
type Swrfile struct {
	Version        string        `yaml:"version"`
	Platform       PlatformDTO   `yaml:"platform"        envPrefix:"SUPABASE_"`
	Cache          CacheDTO      `yaml:"cache"           envPrefix:"CACHE_"`
	Retry          RetryDTO      `yaml:"retry"           envPrefix:"RETRY_"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"   env:"FETCH_TIMEOUT"`
	DebounceWindow time.Duration `yaml:"debounce_window" env:"DEBOUNCE_WINDOW"`
	Log            LogDTO        `yaml:"log"             envPrefix:"LOG_"`
}

// PlatformDTO locates the hosted data platform.
type PlatformDTO struct {
	URL             string        `yaml:"url"              env:"URL"`
	APIKey          string        `yaml:"api_key"          env:"KEY"`
	Schema          string        `yaml:"schema"           env:"SCHEMA"`
	BreakerFailures uint32        `yaml:"breaker_failures" env:"BREAKER_FAILURES"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown" env:"BREAKER_COOLDOWN"`
}

// CacheDTO holds the freshness windows.
type CacheDTO struct {
	StaleAfter      time.Duration            `yaml:"stale_after"       env:"STALE_AFTER"`
	HardExpireAfter time.Duration            `yaml:"hard_expire_after" env:"HARD_EXPIRE_AFTER"`
	Prefixes        map[string]time.Duration `yaml:"prefixes"          env:"PREFIXES" envKeyValSeparator:"="`
}

// RetryDTO configures retries of failed fetches.
type RetryDTO struct {
	MaxRetries     *int          `yaml:"max_retries"     env:"MAX_RETRIES"`
	BaseDelay      time.Duration `yaml:"base_delay"      env:"BASE_DELAY"`
	Multiplier     float64       `yaml:"multiplier"      env:"MULTIPLIER"`
	MaxDelay       time.Duration `yaml:"max_delay"       env:"MAX_DELAY"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout" env:"ATTEMPT_TIMEOUT"`
}

// LogDTO configures log output.
type LogDTO struct {
	JSON bool `yaml:"json" env:"JSON"`
}
