package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type AppointmentGormRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewAppointmentGormRepository(db *gorm.DB, timeout time.Duration) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db, timeout: timeout}
}

// --------------------------------------------------
// Create / conflict
// --------------------------------------------------

// Create relies on the appointments_no_overlap exclusion constraint to
// reject a racing double booking at commit time.
func (r *AppointmentGormRepository) Create(
	ctx context.Context,
	ap *models.Appointment,
) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).Create(ap).Error
	if httperr.IsExclusionConflict(err) {
		return httperr.Conflict("slot_unavailable", "Time slot is no longer available.")
	}
	return err
}

func (r *AppointmentGormRepository) ListActiveOverlapping(
	ctx context.Context,
	salonID string,
	barberID string,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	q := r.db.WithContext(ctx).
		Where(
			"salon_id = ? AND status IN ? AND scheduled_at < ? AND ends_at > ?",
			salonID,
			domain.ActiveStatusStrings(),
			end,
			start,
		)

	// salon-wide bookings (no barber) block every barber
	if barberID != "" {
		q = q.Where("barber_id = ? OR barber_id = ''", barberID)
	}

	var apps []models.Appointment
	if err := q.Order("scheduled_at ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Read
// --------------------------------------------------

func (r *AppointmentGormRepository) GetByID(
	ctx context.Context,
	id string,
) (*models.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var ap models.Appointment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ap).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) ListForUser(
	ctx context.Context,
	userID string,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var apps []models.Appointment
	err := r.db.WithContext(ctx).
		Where(
			"user_id = ? AND scheduled_at >= ? AND scheduled_at < ?",
			userID,
			start,
			end,
		).
		Order("scheduled_at ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// State change
// --------------------------------------------------

func (r *AppointmentGormRepository) Mutate(
	ctx context.Context,
	id string,
	fn domain.MutateFunc,
) (*models.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var out models.Appointment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ap models.Appointment
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&ap).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		changed, err := fn(&ap)
		if err != nil {
			return err
		}

		if changed {
			if err := tx.Save(&ap).Error; err != nil {
				return err
			}
		}

		out = ap
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &out, nil
}

// --------------------------------------------------
// Expiry
// --------------------------------------------------

func (r *AppointmentGormRepository) ListStalePending(
	ctx context.Context,
	createdBefore time.Time,
	limit int,
) ([]models.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var apps []models.Appointment
	err := r.db.WithContext(ctx).
		Where(
			"status = ? AND payment_status <> ? AND created_at < ?",
			string(domain.StatusPending),
			string(domain.PaymentSuccessful),
			createdBefore,
		).
		Order("created_at ASC").
		Limit(limit).
		Find(&apps).Error

	if err != nil {
		return nil, err
	}
	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
