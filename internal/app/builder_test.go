package app_test

import (
	"context"
	"os"
	"testing"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/app"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	_ "github.com/FranckCharlemagne01/super-afri-finds/internal/wiring" // Register providers
	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/require"
)

func TestAppWiring(t *testing.T) {
	// Use a temporary directory for the test
	cwd, err := os.Getwd()
	require.NoError(t, err)

	defer func() {
		errChdir := os.Chdir(cwd)
		require.NoError(t, errChdir)
	}()

	tmpDir := t.TempDir()
	err = os.Chdir(tmpDir)
	require.NoError(t, err)

	// Verify that the application graph can be constructed
	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)
	require.NotNil(t, components)
	require.NotNil(t, components.App)
	require.NotNil(t, components.Logger)
	require.NotNil(t, components.Executor)
	require.Equal(t, domain.DefaultSettings(), components.Settings)

	// Without a platform every query fails without retrying.
	r := components.App.Catalog().Product(context.Background(), "p1")
	require.ErrorIs(t, r.Err, domain.ErrMissingPlatformURL)
	require.Equal(t, domain.StateErrorEmpty, r.State)
}
