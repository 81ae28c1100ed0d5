package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type GetAppointment struct {
	Deps
}

func NewGetAppointment(d Deps) *GetAppointment {
	return &GetAppointment{Deps: d}
}

func (uc *GetAppointment) Execute(ctx context.Context, appointmentID, actorID string) (*models.Appointment, error) {
	ap, err := uc.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if ap.UserID == actorID {
		return ap, nil
	}

	ok, err := uc.canManage(ctx, actorID, ap)
	if err != nil {
		return nil, err
	}
	if !ok {
		// same answer as a missing row, so ids cannot be guessed
		return nil, httperr.NotFound("appointment_not_found", "")
	}
	return ap, nil
}

// maxListRange bounds a single listing query.
const maxListRange = 366 * 24 * time.Hour

type ListMyAppointmentsInput struct {
	UserID string
	From   time.Time
	To     time.Time
}

type ListMyAppointments struct {
	Deps
}

func NewListMyAppointments(d Deps) *ListMyAppointments {
	return &ListMyAppointments{Deps: d}
}

// Execute lists the customer's appointments scheduled in [From, To). A zero
// bound defaults to one month back / three months ahead.
func (uc *ListMyAppointments) Execute(ctx context.Context, in ListMyAppointmentsInput) ([]models.Appointment, error) {
	now := uc.Clock.Now()

	from, to := in.From, in.To
	if from.IsZero() {
		from = now.AddDate(0, -1, 0)
	}
	if to.IsZero() {
		to = now.AddDate(0, 3, 0)
	}
	if !to.After(from) {
		return nil, httperr.Validation("invalid_period", "to must be after from.")
	}
	if to.Sub(from) > maxListRange {
		return nil, httperr.Validation("period_too_long", "Period must be at most one year.")
	}

	return uc.Appointments.ListForUser(ctx, in.UserID, from.UTC(), to.UTC())
}
