package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/wirelink/internal/logger"
	"github.com/MrSnakeDoc/wirelink/internal/sources/worlds"
)

// WorldsReloader re-reads the worlds file periodically and on demand,
// adding new entries to the live catalog.
type WorldsReloader struct {
	loader        *worlds.Loader
	catalog       *worlds.Catalog
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger <-chan struct{}
}

// NewWorldsReloader creates a reloader for worldsFile. manualTrigger may
// be nil.
func NewWorldsReloader(
	worldsFile string,
	catalog *worlds.Catalog,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *WorldsReloader {
	return &WorldsReloader{
		loader:        worlds.NewLoader(worldsFile),
		catalog:       catalog,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload. The catalog was loaded at startup,
// so the first read happens after one interval.
func (wr *WorldsReloader) Start(ctx context.Context) error {
	if wr.interval <= 0 {
		return fmt.Errorf("invalid reload interval %s", wr.interval)
	}

	ticker := time.NewTicker(wr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				wr.reloadLogged()
			case <-wr.manualTrigger:
				wr.logger.Info("manual worlds reload triggered")
				wr.reloadLogged()
			case <-wr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (wr *WorldsReloader) Stop() {
	close(wr.stopCh)
}

// Reload reads the file and merges it into the catalog. A broken file
// leaves the catalog untouched.
func (wr *WorldsReloader) Reload() (int, error) {
	fresh, err := wr.loader.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to reload worlds: %w", err)
	}
	return wr.catalog.Merge(fresh), nil
}

func (wr *WorldsReloader) reloadLogged() {
	added, err := wr.Reload()
	if err != nil {
		wr.logger.Error("failed to reload worlds", logger.Error(err))
		return
	}
	if added > 0 {
		wr.logger.Info("worlds added", logger.Int("added", added), logger.Int("total", wr.catalog.Len()))
	}
}
