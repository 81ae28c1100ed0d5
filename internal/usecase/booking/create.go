package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/catalog"
	"github.com/BruksfildServices01/salon-booking/internal/events"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	UserID   string
	SalonID  string
	BarberID string

	ServiceIDs []string

	ScheduledAt  time.Time
	LocationType string
	Address      string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	Deps
	slots *domain.SlotChecker
}

func NewCreateBooking(d Deps) *CreateBooking {
	return &CreateBooking{
		Deps:  d,
		slots: domain.NewSlotChecker(d.Appointments),
	}
}

// normalizeServiceIDs returns the ids sorted and de-duplicated.
func normalizeServiceIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Input shape
	// --------------------------------------------------
	serviceIDs := normalizeServiceIDs(in.ServiceIDs)
	if len(serviceIDs) == 0 {
		return nil, httperr.Validation("services_required", "At least one service is required.")
	}
	if !domain.IsValidLocation(in.LocationType) {
		return nil, httperr.Validation("invalid_location_type", "Location must be salon or home.")
	}
	if in.LocationType == domain.LocationHome && in.Address == "" {
		return nil, httperr.Validation("address_required", "Home appointments need an address.")
	}

	// --------------------------------------------------
	// 2. Customer
	// --------------------------------------------------
	user, err := uc.Users.GetUser(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, catalog.ErrUserNotFound) {
			return nil, httperr.NotFound("user_not_found", "")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, httperr.Forbidden("user_inactive", "")
	}

	// --------------------------------------------------
	// 3. Salon and services
	// --------------------------------------------------
	salon, err := uc.Salons.GetSalon(ctx, in.SalonID)
	if err != nil {
		if errors.Is(err, catalog.ErrSalonNotFound) {
			return nil, httperr.NotFound("salon_not_found", "")
		}
		return nil, err
	}
	if !salon.IsActive {
		return nil, httperr.Validation("salon_inactive", "Salon is not taking bookings.")
	}

	var (
		prices   = make([]int64, 0, len(serviceIDs))
		duration int
	)
	for _, id := range serviceIDs {
		svc, ok := salon.Service(id)
		if !ok || !svc.IsActive {
			return nil, httperr.Validation("invalid_service", "Service "+id+" is not offered by this salon.")
		}
		prices = append(prices, svc.Price)
		duration += svc.DurationMin
	}

	if duration < domain.MinDurationMinutes {
		return nil, httperr.Validation("invalid_duration", "")
	}

	// --------------------------------------------------
	// 4. Time
	// --------------------------------------------------
	now := uc.Clock.Now()
	start := in.ScheduledAt.UTC()
	if !start.After(now) {
		return nil, httperr.Validation("scheduled_in_past", "Appointment must be in the future.")
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	pricing := uc.Pricing.Compute(prices, in.LocationType)

	ap := &models.Appointment{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		SalonID:         salon.ID,
		BarberID:        in.BarberID,
		ServiceIDs:      serviceIDs,
		ScheduledAt:     start,
		EndsAt:          end,
		DurationMinutes: duration,
		Location: models.Location{
			Type:    in.LocationType,
			Address: in.Address,
		},
		Pricing:       pricing,
		Currency:      uc.Currency,
		Status:        string(domain.InitialStatus()),
		PaymentStatus: string(domain.PaymentInitiated),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// --------------------------------------------------
	// 5. Check and insert under the salon lock
	// --------------------------------------------------
	if err := uc.reserve(ctx, ap); err != nil {
		if httperr.IsBusiness(err, "slot_unavailable") {
			uc.Metrics.RecordBooking("conflict")
		}
		return nil, err
	}

	uc.Metrics.RecordBooking("created")
	uc.record(ap.UserID, "appointment.created", ap, map[string]any{
		"scheduled_at": ap.ScheduledAt,
		"total":        ap.Pricing.Total,
	})
	uc.publish(ctx, events.AppointmentCreated, ap)

	uc.Log.Info("appointment created",
		zap.String("appointment_id", ap.ID),
		zap.String("salon_id", ap.SalonID),
		zap.Time("scheduled_at", ap.ScheduledAt),
	)

	return ap, nil
}

func (uc *CreateBooking) reserve(ctx context.Context, ap *models.Appointment) error {
	lockCtx, cancel := context.WithTimeout(ctx, uc.LockTimeout)
	defer cancel()

	unlock, err := uc.Locker.Lock(lockCtx, "booking:"+ap.SalonID)
	if err != nil {
		if errors.Is(err, cache.ErrLockTimeout) {
			return httperr.Conflict("booking_busy", "Too many bookings for this salon right now, try again.")
		}
		return err
	}
	defer unlock()

	ok, err := uc.slots.IsAvailable(ctx, domain.SlotQuery{
		SalonID:         ap.SalonID,
		BarberID:        ap.BarberID,
		Start:           ap.ScheduledAt,
		DurationMinutes: ap.DurationMinutes,
	})
	if err != nil {
		return err
	}
	if !ok {
		return httperr.Conflict("slot_unavailable", "")
	}

	// the store constraint still rejects a racing insert from a holder whose
	// lock expired
	return uc.Appointments.Create(ctx, ap)
}
