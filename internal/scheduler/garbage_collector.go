package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
	"github.com/MrSnakeDoc/wirelink/internal/logger"
)

const (
	// DefaultGCThreshold is the age after which a leftover temp file is removed
	DefaultGCThreshold = time.Hour
)

// TempStore is the part of the disk store the collector cleans.
type TempStore interface {
	StaleTemps(kind domain.Kind, cutoff time.Time) ([]string, error)
	RemoveTemp(kind domain.Kind, name string) error
}

// GarbageCollector removes temp files abandoned by interrupted writes
type GarbageCollector struct {
	store     TempStore
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(
	store TempStore,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *GarbageCollector {
	if threshold == 0 {
		threshold = DefaultGCThreshold
	}

	return &GarbageCollector{
		store:     store,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start runs a collection now and then every interval.
func (gc *GarbageCollector) Start(ctx context.Context) error {
	gc.Collect(ctx)

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gc.Collect(ctx)
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect removes temp files older than the threshold and returns how
// many were deleted.
func (gc *GarbageCollector) Collect(ctx context.Context) int {
	cutoff := gc.now().Add(-gc.threshold)
	deleted := 0

	for _, kind := range domain.Kinds {
		if ctx.Err() != nil {
			break
		}
		names, err := gc.store.StaleTemps(kind, cutoff)
		if err != nil {
			gc.logger.Warn("failed to list temp files",
				logger.String("kind", string(kind)),
				logger.Error(err))
			continue
		}
		for _, name := range names {
			if err := gc.store.RemoveTemp(kind, name); err != nil {
				gc.logger.Warn("failed to remove temp file",
					logger.String("kind", string(kind)),
					logger.String("file", name),
					logger.Error(err))
				continue
			}
			deleted++
		}
	}

	if deleted > 0 {
		gc.logger.Info("garbage collection completed", logger.Int("temp_files_deleted", deleted))
	} else {
		gc.logger.Debug("no temp files to garbage collect")
	}
	return deleted
}
