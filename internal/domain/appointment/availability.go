package appointment

import (
	"context"
	"time"
)

// MinDurationMinutes is the shortest bookable slot.
const MinDurationMinutes = 15

type SlotQuery struct {
	SalonID              string
	BarberID             string
	Start                time.Time
	DurationMinutes      int
	ExcludeAppointmentID string
}

func (q SlotQuery) End() time.Time {
	return q.Start.Add(time.Duration(q.DurationMinutes) * time.Minute)
}

// Overlaps is the half-open interval test: back-to-back slots do not
// overlap, containment and identical ranges do.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// SharesBarber reports whether two bookings compete for the same chair. An
// empty barber is a salon-wide booking and competes with every barber.
func SharesBarber(a, b string) bool {
	return a == "" || b == "" || a == b
}

type SlotChecker struct {
	repo Repository
}

func NewSlotChecker(repo Repository) *SlotChecker {
	return &SlotChecker{repo: repo}
}

// IsAvailable reports whether no active appointment of the salon that shares
// the requested barber overlaps the requested window.
func (c *SlotChecker) IsAvailable(ctx context.Context, q SlotQuery) (bool, error) {
	end := q.End()

	candidates, err := c.repo.ListActiveOverlapping(ctx, q.SalonID, q.BarberID, q.Start, end)
	if err != nil {
		return false, err
	}

	for i := range candidates {
		ap := &candidates[i]
		if ap.ID == q.ExcludeAppointmentID {
			continue
		}
		if !SharesBarber(q.BarberID, ap.BarberID) {
			continue
		}
		if !Status(ap.Status).IsActive() {
			continue
		}
		apStart, apEnd := Window(ap)
		if Overlaps(apStart, apEnd, q.Start, end) {
			return false, nil
		}
	}

	return true, nil
}
