package payment

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/events"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// Settler is the single state-merge path shared by verify, webhook and
// refund. Side effects run only after a committed change.
type Settler struct {
	Deps
}

func NewSettler(d Deps) *Settler {
	return &Settler{Deps: d}
}

func (s *Settler) Apply(
	ctx context.Context,
	ref domain.Ref,
	ev *domain.Event,
	sig signal,
	actorID string,
) (*models.Payment, *models.Appointment, outcome, error) {

	var out outcome
	now := s.Clock.Now()

	p, ap, err := s.Payments.Settle(ctx, ref, ev, func(p *models.Payment, ap *models.Appointment) (bool, error) {
		out = merge(p, ap, sig, now)
		return out.persist(), nil
	})
	if err != nil {
		return nil, nil, outcome{}, err
	}

	s.report(ctx, p, ap, out, sig, actorID)
	return p, ap, out, nil
}

func (s *Settler) report(
	ctx context.Context,
	p *models.Payment,
	ap *models.Appointment,
	out outcome,
	sig signal,
	actorID string,
) {
	fields := []zap.Field{
		zap.String("payment_id", p.ID),
		zap.String("appointment_id", ap.ID),
		zap.String("from", string(out.from)),
		zap.String("signal", string(sig.status)),
		zap.String("source", sig.source),
	}

	if out.conflict {
		s.Metrics.RecordConflict(string(out.from), string(sig.status))
		if out.absorbed {
			s.Log.Error("payment signal conflicts with refund, ignored", fields...)
		} else {
			s.Log.Error("irreconcilable payment conflict, applying later signal", fields...)
		}
	}

	if !out.changed {
		return
	}

	if out.refundUnpaid {
		s.Log.Warn("refund recorded for a payment never captured", fields...)
	}
	if out.amountMismatch {
		s.Log.Warn("captured amount differs from payment total",
			append(fields, zap.Int64("expected", p.Amount.Total))...)
	}
	if out.staleOrder {
		s.Log.Warn("payment captured on a superseded order",
			append(fields, zap.String("current_order_id", p.GatewayOrderID))...)
	}
	if out.refundRequired {
		s.Log.Error("refund_required: payment captured for a cancelled appointment", fields...)
	}

	s.Metrics.RecordSettled(string(out.to), sig.source)

	if actorID == "" {
		actorID = "gateway"
	}
	s.Audit.Dispatch(audit.Event{
		SalonID:  p.SalonID,
		ActorID:  actorID,
		Action:   "payment." + string(out.to),
		Entity:   "payment",
		EntityID: p.ID,
		Metadata: map[string]any{
			"from":     string(out.from),
			"source":   sig.source,
			"conflict": out.conflict,
		},
		At: p.UpdatedAt,
	})

	switch out.to {
	case domain.StatusSuccessful:
		s.publish(ctx, events.PaymentSucceeded, ap)
	case domain.StatusFailed:
		s.publish(ctx, events.PaymentFailed, ap)
	case domain.StatusRefunded:
		s.publish(ctx, events.PaymentRefunded, ap)
	}
	if out.confirmed {
		s.publish(ctx, events.AppointmentConfirmed, ap)
	}
}

func (s *Settler) publish(ctx context.Context, typ string, ap *models.Appointment) {
	if err := s.Events.Publish(ctx, events.FromAppointment(typ, ap, s.Clock.Now())); err != nil {
		s.Log.Warn("publish event failed",
			zap.String("type", typ),
			zap.String("appointment_id", ap.ID),
			zap.Error(err),
		)
	}
}
