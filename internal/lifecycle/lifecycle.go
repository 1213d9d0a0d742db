// Package lifecycle holds the booking state machine: which status changes are legal,
// who may trigger them and which side-effect commands each change emits.
// The package is pure; effects are executed by the caller.
package lifecycle

import (
	"fmt"
	"sort"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// Effect side-effect command emitted by a transition
type Effect string

const (
	EffectCapturePayment          Effect = "capture_payment"
	EffectAddToCalendar           Effect = "add_to_calendar"
	EffectReleaseSlot             Effect = "release_slot"
	EffectRefundPayment           Effect = "refund_payment"
	EffectRemoveFromCalendar      Effect = "remove_from_calendar"
	EffectRecordStart             Effect = "record_start"
	EffectCompletePayment         Effect = "complete_payment"
	EffectEnableReview            Effect = "enable_review"
	EffectUpdateProviderStats     Effect = "update_provider_stats"
	EffectApplyReliabilityPenalty Effect = "apply_reliability_penalty"
	EffectRetainPayment           Effect = "retain_payment"
)

type rule struct {
	actors  []domain.ActorRole
	effects []Effect
}

var (
	byParties  = []domain.ActorRole{domain.RoleClient, domain.RoleProvider}
	byProvider = []domain.ActorRole{domain.RoleProvider}

	noShow = rule{
		actors:  byProvider,
		effects: []Effect{EffectReleaseSlot, EffectApplyReliabilityPenalty, EffectRetainPayment},
	}
)

// transitions таблица переходов; admin может выполнить любой легальный переход
var transitions = map[domain.BookingStatus]map[domain.BookingStatus]rule{
	domain.StatusPending: {
		domain.StatusConfirmed: {actors: byProvider, effects: []Effect{EffectCapturePayment, EffectAddToCalendar}},
		domain.StatusCancelled: {actors: byParties, effects: []Effect{EffectReleaseSlot, EffectRefundPayment}},
		domain.StatusNoShow:    noShow,
	},
	domain.StatusConfirmed: {
		domain.StatusCancelled:  {actors: byParties, effects: []Effect{EffectReleaseSlot, EffectRefundPayment, EffectRemoveFromCalendar}},
		domain.StatusInProgress: {actors: byProvider, effects: []Effect{EffectRecordStart}},
		domain.StatusNoShow:     noShow,
	},
	domain.StatusInProgress: {
		domain.StatusCompleted: {actors: byProvider, effects: []Effect{EffectCompletePayment, EffectEnableReview, EffectUpdateProviderStats}},
	},
	domain.StatusCompleted: {},
	domain.StatusCancelled: {},
	domain.StatusNoShow:    {},
}

// Result outcome of a legal transition
type Result struct {
	From    domain.BookingStatus
	To      domain.BookingStatus
	Effects []Effect
}

// Transition validates from -> to for the given actor role and returns the effects to run.
// Unknown or illegal pairs fail with domain.ErrInvalidTransition,
// a legal pair requested by the wrong role fails with domain.ErrActorNotAllowed.
func Transition(from, to domain.BookingStatus, role domain.ActorRole) (*Result, error) {
	r, ok := transitions[from][to]
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}

	if !allowed(r, role) {
		return nil, fmt.Errorf("%w: %s cannot move booking %s -> %s", domain.ErrActorNotAllowed, role, from, to)
	}

	effects := make([]Effect, len(r.effects))
	copy(effects, r.effects)

	return &Result{From: from, To: to, Effects: effects}, nil
}

// CanTransition returns true if from -> to is in the table, regardless of actor
func CanTransition(from, to domain.BookingStatus) bool {
	_, ok := transitions[from][to]
	return ok
}

// AllowedTargets returns statuses the role may move a booking to from the given status
func AllowedTargets(from domain.BookingStatus, role domain.ActorRole) []domain.BookingStatus {
	targets := make([]domain.BookingStatus, 0)
	for to, r := range transitions[from] {
		if allowed(r, role) {
			targets = append(targets, to)
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets
}

func allowed(r rule, role domain.ActorRole) bool {
	if role == domain.RoleAdmin {
		return true
	}
	for _, a := range r.actors {
		if a == role {
			return true
		}
	}
	return false
}
