package supabase

import (
	"context"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/config"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/logger"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the catalog source Graft node.
const NodeID graft.ID = "adapter.supabase"

func init() {
	graft.Register(graft.Node[ports.CatalogSource]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.CatalogSource, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			if settings.Platform.URL == "" {
				// Commands that never reach the platform still work.
				return Unconfigured{}, nil
			}
			source, err := New(settings.Platform, log)
			if err != nil {
				return nil, err
			}
			return source, nil
		},
	})
}
