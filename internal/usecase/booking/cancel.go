package booking

import (
	"context"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/events"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type CancelBookingInput struct {
	AppointmentID string
	ActorID       string
	Reason        string
}

type CancelBooking struct {
	Deps
}

func NewCancelBooking(d Deps) *CancelBooking {
	return &CancelBooking{Deps: d}
}

func (uc *CancelBooking) Execute(
	ctx context.Context,
	in CancelBookingInput,
) (*models.Appointment, error) {

	ap, err := uc.loadAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	if ap.UserID != in.ActorID {
		ok, err := uc.canManage(ctx, in.ActorID, ap)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, httperr.Forbidden("not_allowed", "Only the customer or the salon owner can cancel.")
		}
	}

	now := uc.Clock.Now()
	ap, err = uc.Appointments.Mutate(ctx, in.AppointmentID, func(ap *models.Appointment) (bool, error) {
		if err := domain.Cancel(ap, in.ActorID, in.Reason, now); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	uc.record(in.ActorID, "appointment.cancelled", ap, map[string]any{"reason": in.Reason})
	uc.publish(ctx, events.AppointmentCancelled, ap)

	return ap, nil
}
