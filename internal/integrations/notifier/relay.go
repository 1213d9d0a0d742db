package notifier

import (
	"context"
	"strconv"
	"time"
)

const (
	defaultPollInterval = time.Second
	defaultBatchSize    = 100
)

// RelayConfig параметры реле
type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// Relay переносит события из outbox в брокер
// Событие отмечается опубликованным только после успешной отправки (at-least-once)
type Relay struct {
	repo      OutboxRepository
	txManager TransactionManager
	publisher Publisher
	metrics   MetricsCollector
	logger    Logger
	cfg       RelayConfig
	now       func() time.Time
}

func NewRelay(
	repo OutboxRepository,
	txManager TransactionManager,
	publisher Publisher,
	metrics MetricsCollector,
	logger Logger,
	cfg RelayConfig,
) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Relay{
		repo:      repo,
		txManager: txManager,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Run публикует пачки событий по таймеру до отмены ctx
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("OutboxRelay: started (interval=%s, batch=%d)", r.cfg.PollInterval, r.cfg.BatchSize)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("OutboxRelay: stopped")
			return nil
		case <-ticker.C:
			if _, err := r.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
				r.metrics.IncPublishFailure()
				r.logger.Error("OutboxRelay: publish failed, will retry: %v", err)
			}
		}
	}
}

// ProcessBatch публикует одну пачку и возвращает количество опубликованных событий
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	published := 0

	err := r.txManager.Do(ctx, func(txCtx context.Context) error {
		events, err := r.repo.FetchUnpublished(txCtx, r.cfg.BatchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		msgs := make([]Message, 0, len(events))
		ids := make([]int64, 0, len(events))
		for _, e := range events {
			msgs = append(msgs, Message{
				Topic: e.EventType,
				Key:   []byte(strconv.FormatInt(e.AggregateID, 10)),
				Value: e.Payload,
				Headers: map[string]string{
					"event_id":   e.EventID,
					"event_type": e.EventType,
				},
			})
			ids = append(ids, e.ID)
		}

		if err := r.publisher.Publish(txCtx, msgs...); err != nil {
			return err
		}

		if err := r.repo.MarkPublished(txCtx, ids, r.now()); err != nil {
			return err
		}

		for _, e := range events {
			r.metrics.IncPublished(e.EventType)
		}
		published = len(events)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return published, nil
}
