package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
	"github.com/MrSnakeDoc/wirelink/internal/logger"
	"github.com/MrSnakeDoc/wirelink/internal/sources/worlds"
)

func TestWorldsReloader_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worlds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("worlds:\n  - minecraft:overworld\n"), 0o644))

	catalog, err := worlds.Open(path)
	require.NoError(t, err)
	wr := NewWorldsReloader(path, catalog, logger.Nop(), time.Hour, nil)

	added, err := wr.Reload()
	require.NoError(t, err)
	assert.Zero(t, added)

	require.NoError(t, os.WriteFile(path, []byte("worlds:\n  - minecraft:overworld\n  - custom:mines\n"), 0o644))
	added, err = wr.Reload()
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.True(t, catalog.Known(domain.WorldRef{Namespace: "custom", Name: "mines"}))

	// a broken file keeps what we have
	require.NoError(t, os.WriteFile(path, []byte("worlds: [nope"), 0o644))
	_, err = wr.Reload()
	assert.Error(t, err)
	assert.Equal(t, 2, catalog.Len())
}

func TestWorldsReloader_ManualTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worlds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("worlds:\n  - minecraft:overworld\n"), 0o644))

	catalog, err := worlds.Open(path)
	require.NoError(t, err)
	trigger := make(chan struct{}, 1)
	wr := NewWorldsReloader(path, catalog, logger.Nop(), time.Hour, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, wr.Start(ctx))
	defer wr.Stop()

	require.NoError(t, os.WriteFile(path, []byte("worlds:\n  - custom:mines\n"), 0o644))
	trigger <- struct{}{}

	assert.Eventually(t, func() bool {
		return catalog.Known(domain.WorldRef{Namespace: "custom", Name: "mines"})
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorldsReloader_InvalidInterval(t *testing.T) {
	wr := NewWorldsReloader("unused", worlds.Default(), logger.Nop(), 0, nil)
	assert.Error(t, wr.Start(context.Background()))
}
