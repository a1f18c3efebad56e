package app

import (
	"context"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/config"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/logger"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/metrics"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/supabase"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/telemetry"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/engine/inflight"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/engine/memcache"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/engine/query"
	"github.com/grindlemire/graft"
)

const (
	// ExecutorNodeID is the unique identifier for the query executor Graft node.
	ExecutorNodeID graft.ID = "app.executor"
	// NodeID is the unique identifier for the application components Graft node.
	NodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App      *App
	Logger   ports.Logger
	Executor *query.Executor
	Settings *domain.Settings
}

// NewExecutor builds the cache, deduplicator and executor described by settings.
func NewExecutor(
	settings *domain.Settings,
	tracer ports.Tracer,
	log ports.Logger,
	m ports.CacheMetrics,
) *query.Executor {
	cache := memcache.New(settings.Cache.HardExpireAfter, memcache.WithMetrics(m))
	return query.NewExecutor(cache, inflight.New(), tracer, log, m, query.Config{
		Policy:       settings.Cache,
		Retry:        settings.Retry,
		FetchTimeout: settings.FetchTimeout,
	})
}

func init() {
	graft.Register(graft.Node[*query.Executor]{
		ID:        ExecutorNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, telemetry.TracerNodeID, logger.NodeID, metrics.NodeID},
		Run: func(ctx context.Context) (*query.Executor, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			collector, err := graft.Dep[*metrics.Collector](ctx)
			if err != nil {
				return nil, err
			}
			return NewExecutor(settings, tracer, log, collector), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			ExecutorNodeID,
			supabase.NodeID,
			config.SettingsNodeID,
			metrics.NodeID,
			telemetry.BridgeNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	exec, err := graft.Dep[*query.Executor](ctx)
	if err != nil {
		return nil, err
	}
	source, err := graft.Dep[ports.CatalogSource](ctx)
	if err != nil {
		return nil, err
	}
	settings, err := graft.Dep[*domain.Settings](ctx)
	if err != nil {
		return nil, err
	}
	collector, err := graft.Dep[*metrics.Collector](ctx)
	if err != nil {
		return nil, err
	}
	journal, err := graft.Dep[*telemetry.Bridge](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	if settings.LogJSON {
		if lg, ok := log.(interface{ SetJSON(bool) }); ok {
			lg.SetJSON(true)
		}
	}

	catalog := NewCatalog(exec, source, log)
	return &Components{
		App:      New(catalog, exec, collector, journal, settings, log),
		Logger:   log,
		Executor: exec,
		Settings: settings,
	}, nil
}
