package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	cases := []struct {
		name                   string
		aStart, aEnd, bS, bEnd int
		want                   bool
	}{
		{"identical", 0, 60, 0, 60, true},
		{"contained", 0, 60, 15, 30, true},
		{"containing", 15, 30, 0, 60, true},
		{"overlap left", 0, 60, -30, 30, true},
		{"overlap right", 0, 60, 30, 90, true},
		{"back to back after", 0, 60, 60, 90, false},
		{"back to back before", 0, 60, -30, 0, false},
		{"disjoint", 0, 30, 120, 150, false},
	}

	for _, tc := range cases {
		got := Overlaps(at(tc.aStart), at(tc.aEnd), at(tc.bS), at(tc.bEnd))
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		// symmetric
		if rev := Overlaps(at(tc.bS), at(tc.bEnd), at(tc.aStart), at(tc.aEnd)); rev != got {
			t.Errorf("%s: not symmetric", tc.name)
		}
	}
}

type listOnlyRepo struct {
	Repository
	rows []models.Appointment
}

func (r listOnlyRepo) ListActiveOverlapping(
	_ context.Context, salonID, barberID string, _, _ time.Time,
) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range r.rows {
		if ap.SalonID != salonID {
			continue
		}
		if !SharesBarber(barberID, ap.BarberID) {
			continue
		}
		out = append(out, ap)
	}
	return out, nil
}

func TestSlotChecker_IsAvailable(t *testing.T) {
	base := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)

	repo := listOnlyRepo{rows: []models.Appointment{
		{ID: "a1", SalonID: "s1", BarberID: "b1", ScheduledAt: base, DurationMinutes: 60, Status: string(StatusConfirmed)},
		{ID: "a2", SalonID: "s1", BarberID: "b2", ScheduledAt: base.Add(2 * time.Hour), DurationMinutes: 30, Status: string(StatusCancelled)},
		{ID: "a3", SalonID: "s1", ScheduledAt: base.Add(4 * time.Hour), DurationMinutes: 30, Status: string(StatusPending)},
	}}
	checker := NewSlotChecker(repo)
	ctx := context.Background()

	cases := []struct {
		name string
		q    SlotQuery
		want bool
	}{
		{"same barber overlapping", SlotQuery{SalonID: "s1", BarberID: "b1", Start: base.Add(30 * time.Minute), DurationMinutes: 30}, false},
		{"same barber back to back", SlotQuery{SalonID: "s1", BarberID: "b1", Start: base.Add(time.Hour), DurationMinutes: 30}, true},
		{"other barber", SlotQuery{SalonID: "s1", BarberID: "b2", Start: base, DurationMinutes: 60}, true},
		{"any barber sees salon-wide", SlotQuery{SalonID: "s1", Start: base, DurationMinutes: 15}, false},
		{"barber blocked by salon-wide", SlotQuery{SalonID: "s1", BarberID: "b2", Start: base.Add(4 * time.Hour), DurationMinutes: 30}, false},
		{"salon-wide blocked by barber", SlotQuery{SalonID: "s1", Start: base.Add(30 * time.Minute), DurationMinutes: 30}, false},
		{"cancelled does not block", SlotQuery{SalonID: "s1", BarberID: "b2", Start: base.Add(2 * time.Hour), DurationMinutes: 30}, true},
		{"excluding itself", SlotQuery{SalonID: "s1", BarberID: "b1", Start: base, DurationMinutes: 60, ExcludeAppointmentID: "a1"}, true},
		{"other salon", SlotQuery{SalonID: "s2", BarberID: "b1", Start: base, DurationMinutes: 60}, true},
	}

	for _, tc := range cases {
		got, err := checker.IsAvailable(ctx, tc.q)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
