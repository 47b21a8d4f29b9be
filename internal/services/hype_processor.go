package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/giftwell/backend/domain"
	"github.com/giftwell/backend/internal/infrastructure/buffer"
	"github.com/giftwell/backend/repository"
	"github.com/giftwell/backend/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// HypeProcessor replays deferred hype increments against the item store once
// it is reachable again, publishing the resulting events so live viewers
// still hear about the counts they missed.
type HypeProcessor struct {
	store   *buffer.Store
	monitor ConnectionHealth
	items   repository.ItemRepository
	events  usecase.EventPublisher
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
}

func NewHypeProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	items repository.ItemRepository,
	events usecase.EventPublisher,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *HypeProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	hp := &HypeProcessor{
		store:   store,
		monitor: monitor,
		items:   items,
		events:  events,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = hp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := hp.Drain(ctx); err != nil {
			hp.logger.Error("hype buffer drain failed", zap.Error(err))
		}
	})
	_, _ = hp.cron.AddFunc("@hourly", func() {
		if err := hp.store.Cleanup(time.Now().Add(-cfg.Retention)); err != nil {
			hp.logger.Warn("hype buffer cleanup failed", zap.Error(err))
		}
	})

	return hp
}

// Start launches the cron scheduler.
func (hp *HypeProcessor) Start() {
	if hp == nil || hp.cron == nil {
		return
	}
	hp.cron.Start()
	hp.logger.Info("hype processor started")
}

// Stop gracefully stops the scheduler.
func (hp *HypeProcessor) Stop(ctx context.Context) {
	if hp == nil || hp.cron == nil {
		return
	}
	stopCtx := hp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	hp.logger.Info("hype processor stopped")
}

// Drain replays buffered increments synchronously.
func (hp *HypeProcessor) Drain(ctx context.Context) error {
	if hp == nil || hp.store == nil {
		return nil
	}
	if hp.monitor != nil && !hp.monitor.IsOnline() {
		hp.logger.Debug("skipping hype drain (offline)")
		return nil
	}

	incs, err := hp.store.GetBatch(hp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, inc := range incs {
		count, err := hp.items.IncrementHype(ctx, inc.ItemID)
		if err != nil {
			// The item can be gone by the time the buffer drains;
			// nothing left to apply then.
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				_ = hp.store.Remove(inc)
				continue
			}

			hp.logger.Error("failed to replay hype increment",
				zap.String("item_id", inc.ItemID),
				zap.Error(err))

			inc.Retries++
			if inc.Retries >= hp.cfg.MaxRetries {
				hp.logger.Warn("dropping hype increment (max retries reached)",
					zap.String("item_id", inc.ItemID))
				_ = hp.store.Remove(inc)
				continue
			}

			if err := hp.store.Remove(inc); err != nil {
				hp.logger.Warn("failed to remove hype increment", zap.Error(err))
			}
			if err := hp.store.Requeue(inc); err != nil {
				hp.logger.Error("failed to requeue hype increment", zap.Error(err))
			}
			continue
		}

		if hp.events != nil {
			hp.events.Publish(inc.WishlistID, domain.NewHypeEvent(inc.WishlistID, inc.ItemID, count))
		}

		if err := hp.store.Remove(inc); err != nil {
			hp.logger.Warn("failed to purge replayed hype increment", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of buffered increments.
func (hp *HypeProcessor) Size() int {
	if hp == nil || hp.store == nil {
		return 0
	}
	size, err := hp.store.Size()
	if err != nil {
		return 0
	}
	return size
}
