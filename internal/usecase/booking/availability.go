package booking

import (
	"context"
	"errors"
	"time"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/catalog"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
)

type AvailabilityInput struct {
	SalonID         string
	BarberID        string
	Start           time.Time
	DurationMinutes int
}

type AvailabilityOutput struct {
	Available bool
	Start     time.Time
	End       time.Time
}

type GetAvailability struct {
	Deps
	slots *domain.SlotChecker
}

func NewGetAvailability(d Deps) *GetAvailability {
	return &GetAvailability{
		Deps:  d,
		slots: domain.NewSlotChecker(d.Appointments),
	}
}

func (uc *GetAvailability) Execute(ctx context.Context, in AvailabilityInput) (*AvailabilityOutput, error) {
	if in.DurationMinutes < domain.MinDurationMinutes {
		return nil, httperr.Validation("invalid_duration", "")
	}

	salon, err := uc.Salons.GetSalon(ctx, in.SalonID)
	if err != nil {
		if errors.Is(err, catalog.ErrSalonNotFound) {
			return nil, httperr.NotFound("salon_not_found", "")
		}
		return nil, err
	}

	q := domain.SlotQuery{
		SalonID:         salon.ID,
		BarberID:        in.BarberID,
		Start:           in.Start.UTC(),
		DurationMinutes: in.DurationMinutes,
	}

	out := &AvailabilityOutput{Start: q.Start, End: q.End()}
	if !salon.IsActive || !q.Start.After(uc.Clock.Now()) {
		return out, nil
	}

	out.Available, err = uc.slots.IsAvailable(ctx, q)
	if err != nil {
		return nil, err
	}
	return out, nil
}
