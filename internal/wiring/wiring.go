// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/config"
	_ "github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/logger"
	_ "github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/metrics"
	_ "github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/supabase"
	_ "github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/telemetry"
	// Register app nodes.
	_ "github.com/FranckCharlemagne01/super-afri-finds/internal/app"
)
