package domain

import "time"

const (
	// FreeCancellationNotice cancelling at least this long before start costs nothing
	FreeCancellationNotice = 24 * time.Hour
	// LateCancellationNotice cancelling closer than this to start doubles the fee
	LateCancellationNotice = 4 * time.Hour

	baseCancellationFeePercent = 20.0
	providerFeeMultiplier      = 1.5
)

// CancellationFee returns the fee charged for cancelling b at now.
// Provider cancellations cost one and a half times more, admin cancellations are free.
func CancellationFee(b *Booking, role ActorRole, now time.Time) float64 {
	if b.ServicePrice <= 0 || role == RoleAdmin {
		return 0
	}

	notice := b.StartAt.Sub(now)
	if notice >= FreeCancellationNotice {
		return 0
	}

	percent := baseCancellationFeePercent
	if notice < LateCancellationNotice {
		percent *= 2
	}
	if role == RoleProvider {
		percent *= providerFeeMultiplier
	}
	if percent > 100 {
		percent = 100
	}

	return b.ServicePrice * percent / 100
}
