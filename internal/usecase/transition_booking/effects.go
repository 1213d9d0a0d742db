package transition_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/lifecycle"
)

// applyStatus записывает новый статус и отметки времени перехода
func applyStatus(b *domain.Booking, to domain.BookingStatus, actor domain.Actor, reason *string, now time.Time) {
	b.Status = to
	switch to {
	case domain.StatusConfirmed:
		b.ConfirmedAt = &now
	case domain.StatusInProgress:
		b.StartedAt = &now
	case domain.StatusCompleted:
		b.CompletedAt = &now
	case domain.StatusCancelled, domain.StatusNoShow:
		role := actor.Role
		b.CancelledAt = &now
		b.CancelledBy = &role
		b.CancellationReason = reason
	}
}

// applyEffects выполняет эффекты, которые живут в этой же БД, и кладёт каждый эффект в outbox
// Внешние эффекты (платежи, календарь, отзывы) исполняют потребители outbox
func (uc *UseCase) applyEffects(ctx context.Context, b *domain.Booking, res *lifecycle.Result, payload []byte, now time.Time) error {
	if res.To == domain.StatusCancelled {
		if err := uc.statsRepo.ApplyCancellation(ctx, b.ProviderID); err != nil {
			return fmt.Errorf("%w: failed to update provider stats: %w", ErrInternal, err)
		}
	}

	for _, effect := range res.Effects {
		switch effect {
		case lifecycle.EffectUpdateProviderStats:
			if err := uc.statsRepo.ApplyCompletion(ctx, b.ProviderID, now); err != nil {
				return fmt.Errorf("%w: failed to update provider stats: %w", ErrInternal, err)
			}
		case lifecycle.EffectApplyReliabilityPenalty:
			if err := uc.statsRepo.ApplyNoShow(ctx, b.ClientID, b.ProviderID); err != nil {
				return fmt.Errorf("%w: failed to apply reliability penalty: %w", ErrInternal, err)
			}
		}

		if err := uc.addEvent(ctx, b.ID, domain.EventEffectPrefix+string(effect), payload); err != nil {
			return err
		}
	}

	return nil
}

func (uc *UseCase) addEvent(ctx context.Context, bookingID int64, eventType string, payload []byte) error {
	if err := uc.outboxRepo.Add(ctx, &domain.OutboxEvent{
		EventID:     uuid.NewString(),
		AggregateID: bookingID,
		EventType:   eventType,
		Payload:     payload,
	}); err != nil {
		return fmt.Errorf("%w: failed to add outbox event %s: %w", ErrInternal, eventType, err)
	}
	return nil
}

func encodePayload(p domain.BookingEventPayload) ([]byte, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode event: %v", ErrInternal, err)
	}
	return payload, nil
}
