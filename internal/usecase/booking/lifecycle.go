package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/events"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// salonTransition applies a salon-side transition (start, complete) after
// checking the actor manages the appointment's salon.
func (d Deps) salonTransition(
	ctx context.Context,
	appointmentID string,
	actorID string,
	apply func(ap *models.Appointment, now time.Time) error,
	action string,
	eventType string,
) (*models.Appointment, error) {

	ap, err := d.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	ok, err := d.canManage(ctx, actorID, ap)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.Forbidden("not_allowed", "Only the salon owner can update this appointment.")
	}

	now := d.Clock.Now()
	ap, err = d.Appointments.Mutate(ctx, appointmentID, func(ap *models.Appointment) (bool, error) {
		if err := apply(ap, now); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	d.record(actorID, action, ap, nil)
	d.publish(ctx, eventType, ap)
	return ap, nil
}

type StartAppointment struct {
	Deps
}

func NewStartAppointment(d Deps) *StartAppointment {
	return &StartAppointment{Deps: d}
}

func (uc *StartAppointment) Execute(ctx context.Context, appointmentID, actorID string) (*models.Appointment, error) {
	return uc.salonTransition(ctx, appointmentID, actorID,
		domain.Start, "appointment.started", events.AppointmentStarted)
}

type CompleteAppointment struct {
	Deps
}

func NewCompleteAppointment(d Deps) *CompleteAppointment {
	return &CompleteAppointment{Deps: d}
}

func (uc *CompleteAppointment) Execute(ctx context.Context, appointmentID, actorID string) (*models.Appointment, error) {
	return uc.salonTransition(ctx, appointmentID, actorID,
		domain.Complete, "appointment.completed", events.AppointmentCompleted)
}
