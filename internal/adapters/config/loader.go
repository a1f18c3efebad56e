// Package config loads the query cache settings from swr.yaml and the environment.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"github.com/caarlos0/env/v11"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SWR_"

// Loader implements ports.ConfigLoader using a YAML file and environment overrides.
type Loader struct {
	Logger ports.Logger

	fs      FileSystem
	environ map[string]string
}

// Option configures a Loader.
type Option func(*Loader)

// WithFileSystem makes the loader read config files from fsys.
func WithFileSystem(fsys FileSystem) Option {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithEnvironment replaces the process environment used for overrides.
func WithEnvironment(environ map[string]string) Option {
	return func(l *Loader) {
		l.environ = environ
	}
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger, opts ...Option) *Loader {
	l := &Loader{Logger: logger, fs: NewOSFS()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load finds swr.yaml in dir or one of its parents, applies the SWR_ environment
// overrides on top of it and validates the result. Without a config file the
// defaults are used.
func (l *Loader) Load(dir string) (*domain.Settings, error) {
	file := toDTO(domain.DefaultSettings())

	configPath, err := l.findConfiguration(dir)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		l.Logger.Info(fmt.Sprintf("no %s found, using defaults", domain.ConfigFileName))
	} else if err := l.readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	if err := env.ParseWithOptions(&file, env.Options{
		Prefix:      EnvPrefix,
		Environment: l.environ,
	}); err != nil {
		return nil, zerr.Wrap(err, domain.ErrEnvParseFailed.Error())
	}

	settings := file.toSettings()
	if err := settings.Validate(); err != nil {
		if configPath != "" {
			return nil, zerr.With(err, "path", configPath)
		}
		return nil, err
	}

	return settings, nil
}

func (l *Loader) findConfiguration(dir string) (string, error) {
	currentDir, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "dir", dir)
	}

	for {
		candidate := domain.DefaultConfigPath(currentDir)
		if info, statErr := l.fs.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", nil
		}
		currentDir = parentDir
	}
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func (l *Loader) readAndUnmarshalYAML(configPath string, target *Swrfile) error {
	configFile, err := l.fs.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}

func toDTO(s *domain.Settings) Swrfile {
	maxRetries := s.Retry.MaxRetries
	prefixes := make(map[string]time.Duration, len(s.Cache.PrefixStaleAfter))
	for prefix, d := range s.Cache.PrefixStaleAfter {
		prefixes[prefix] = d
	}

	return Swrfile{
		Version: "1",
		Platform: PlatformDTO{
			URL:             s.Platform.URL,
			APIKey:          s.Platform.APIKey,
			Schema:          s.Platform.Schema,
			BreakerFailures: s.Platform.BreakerFailures,
			BreakerCooldown: s.Platform.BreakerCooldown,
		},
		Cache: CacheDTO{
			StaleAfter:      s.Cache.StaleAfter,
			HardExpireAfter: s.Cache.HardExpireAfter,
			Prefixes:        prefixes,
		},
		Retry: RetryDTO{
			MaxRetries:     &maxRetries,
			BaseDelay:      s.Retry.BaseDelay,
			Multiplier:     s.Retry.Multiplier,
			MaxDelay:       s.Retry.MaxDelay,
			AttemptTimeout: s.Retry.AttemptTimeout,
		},
		FetchTimeout:   s.FetchTimeout,
		DebounceWindow: s.DebounceWindow,
		Log:            LogDTO{JSON: s.LogJSON},
	}
}

func (f *Swrfile) toSettings() *domain.Settings {
	maxRetries := domain.DefaultMaxRetries
	if f.Retry.MaxRetries != nil {
		maxRetries = *f.Retry.MaxRetries
	}

	return &domain.Settings{
		Platform: domain.PlatformSettings{
			URL:             f.Platform.URL,
			APIKey:          f.Platform.APIKey,
			Schema:          f.Platform.Schema,
			BreakerFailures: f.Platform.BreakerFailures,
			BreakerCooldown: f.Platform.BreakerCooldown,
		},
		Cache: domain.CachePolicy{
			StaleAfter:       f.Cache.StaleAfter,
			HardExpireAfter:  f.Cache.HardExpireAfter,
			PrefixStaleAfter: f.Cache.Prefixes,
		},
		Retry: domain.RetryOptions{
			MaxRetries:     maxRetries,
			BaseDelay:      f.Retry.BaseDelay,
			Multiplier:     f.Retry.Multiplier,
			MaxDelay:       f.Retry.MaxDelay,
			AttemptTimeout: f.Retry.AttemptTimeout,
		},
		FetchTimeout:   f.FetchTimeout,
		DebounceWindow: f.DebounceWindow,
		LogJSON:        f.Log.JSON,
	}
}

// Marshal renders settings in the swr.yaml format.
func Marshal(s *domain.Settings) ([]byte, error) {
	file := toDTO(s)
	if file.Platform.APIKey != "" {
		file.Platform.APIKey = "********"
	}
	out, err := yaml.Marshal(&file)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to render settings")
	}
	return out, nil
}
