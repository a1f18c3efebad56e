package logger

import (
	"context"
	"os"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"github.com/grindlemire/graft"
	"golang.org/x/term"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			lg := New().(*Logger)
			// Machine-readable logs when stderr is piped or collected.
			lg.SetJSON(!term.IsTerminal(int(os.Stderr.Fd())))
			return lg, nil
		},
	})
}
