package telemetry

import (
	"context"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"github.com/grindlemire/graft"
	"go.opentelemetry.io/otel"
)

const (
	// BridgeNodeID is the unique identifier for the fetch journal Graft node.
	BridgeNodeID graft.ID = "adapter.telemetry.bridge"
	// TracerNodeID is the unique identifier for the Telemetry adapter Graft node.
	TracerNodeID graft.ID = "adapter.telemetry"
)

func init() {
	graft.Register(graft.Node[*Bridge]{
		ID:        BridgeNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Bridge, error) {
			return NewBridge(DefaultJournalSize), nil
		},
	})

	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{BridgeNodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			bridge, err := graft.Dep[*Bridge](ctx)
			if err != nil {
				return nil, err
			}
			otel.SetTracerProvider(NewProvider(bridge))
			return NewOTelTracer("swr"), nil
		},
	})
}
