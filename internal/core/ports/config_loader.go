package ports

import "github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"

// ConfigLoader defines the interface for loading the cache configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from dir and applies environment overrides.
	// A missing config file yields the defaults.
	Load(dir string) (*domain.Settings, error)
}
