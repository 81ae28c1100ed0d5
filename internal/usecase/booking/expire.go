package booking

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/events"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

const (
	expireBatch  = 100
	ExpireReason = "payment_window_expired"
)

type ExpirePending struct {
	Deps
}

func NewExpirePending(d Deps) *ExpirePending {
	return &ExpirePending{Deps: d}
}

// Execute cancels pending appointments whose payment window has elapsed
// without a successful payment. It returns how many were cancelled.
func (uc *ExpirePending) Execute(ctx context.Context) (int, error) {
	now := uc.Clock.Now()
	cutoff := now.Add(-uc.PaymentWindow)

	stale, err := uc.Appointments.ListStalePending(ctx, cutoff, expireBatch)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		changed := false
		ap, err := uc.Appointments.Mutate(ctx, stale[i].ID, func(ap *models.Appointment) (bool, error) {
			// re-checked under lock: a capture may have landed since the scan
			if ap.Status != string(domain.StatusPending) ||
				ap.PaymentStatus == string(domain.PaymentSuccessful) ||
				!ap.CreatedAt.Before(cutoff) {
				return false, nil
			}
			if err := domain.Cancel(ap, SystemActor, ExpireReason, now); err != nil {
				return false, err
			}
			changed = true
			return true, nil
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			uc.Log.Error("expire appointment failed",
				zap.String("appointment_id", stale[i].ID),
				zap.Error(err),
			)
			continue
		}
		if !changed {
			continue
		}

		expired++
		uc.record(SystemActor, "appointment.expired", ap, nil)
		uc.publish(ctx, events.AppointmentCancelled, ap)
	}

	if expired > 0 {
		uc.Metrics.RecordExpired(expired)
		uc.Log.Info("expired pending appointments", zap.Int("count", expired))
	}
	return expired, nil
}
