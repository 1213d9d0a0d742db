package memory

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// HistoryRepository in-memory аналог history.Repository
type HistoryRepository struct {
	s *Store
}

func (r *HistoryRepository) Append(ctx context.Context, entry *domain.BookingHistoryEntry) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	r.s.data.historySeq++
	entry.ID = r.s.data.historySeq
	entry.CreatedAt = r.s.now()
	r.s.data.history = append(r.s.data.history, *entry)
	return nil
}

func (r *HistoryRepository) ListByBooking(ctx context.Context, bookingID int64) ([]*domain.BookingHistoryEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res := make([]*domain.BookingHistoryEntry, 0)
	for _, e := range r.s.data.history {
		if e.BookingID == bookingID {
			e := e
			res = append(res, &e)
		}
	}
	return res, nil
}

// OutboxRepository in-memory аналог outbox.Repository
type OutboxRepository struct {
	s *Store
}

func (r *OutboxRepository) Add(ctx context.Context, event *domain.OutboxEvent) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	r.s.data.outboxSeq++
	event.ID = r.s.data.outboxSeq
	event.CreatedAt = r.s.now()
	r.s.data.outbox = append(r.s.data.outbox, *event)
	return nil
}

func (r *OutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res := make([]*domain.OutboxEvent, 0)
	for _, e := range r.s.data.outbox {
		if len(res) >= limit {
			break
		}
		if e.PublishedAt == nil {
			e := e
			res = append(res, &e)
		}
	}
	return res, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []int64, publishedAt time.Time) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	marked := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		marked[id] = struct{}{}
	}
	for i := range r.s.data.outbox {
		if _, ok := marked[r.s.data.outbox[i].ID]; ok {
			at := publishedAt
			r.s.data.outbox[i].PublishedAt = &at
		}
	}
	return nil
}

// StatsRepository in-memory аналог stats.Repository
type StatsRepository struct {
	s *Store
}

func (r *StatsRepository) ApplyCompletion(ctx context.Context, providerID int64, completedAt time.Time) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	st := r.s.data.providerStats[providerID]
	st.CompletedCount++
	at := completedAt
	st.LastCompletedAt = &at
	r.s.data.providerStats[providerID] = st
	return nil
}

func (r *StatsRepository) ApplyCancellation(ctx context.Context, providerID int64) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	st := r.s.data.providerStats[providerID]
	st.CancelledCount++
	r.s.data.providerStats[providerID] = st
	return nil
}

func (r *StatsRepository) ApplyNoShow(ctx context.Context, clientID, providerID int64) error {
	unlock := r.s.lockWrite(ctx)
	defer unlock()

	rel, ok := r.s.data.clientReliability[clientID]
	if !ok {
		rel.ReliabilityScore = 100
	}
	rel.NoShowCount++
	rel.ReliabilityScore -= noShowPenalty
	if rel.ReliabilityScore < 0 {
		rel.ReliabilityScore = 0
	}
	r.s.data.clientReliability[clientID] = rel

	st := r.s.data.providerStats[providerID]
	st.NoShowCount++
	r.s.data.providerStats[providerID] = st
	return nil
}

const noShowPenalty = 10
