package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

var (
	ErrNotFound = errors.New("appointment not found")
	// ErrNotPending is returned when a payment is attached to an
	// appointment that left pending while the order was being created.
	ErrNotPending = errors.New("appointment is not pending")
)

// MutateFunc edits a row loaded under lock. Returning changed=false skips
// the write.
type MutateFunc func(ap *models.Appointment) (changed bool, err error)

type Repository interface {
	// -------- Create / conflict --------
	// Create must reject a row whose window overlaps an active appointment
	// of the same salon and barber with a Conflict("slot_unavailable").
	Create(
		ctx context.Context,
		ap *models.Appointment,
	) error

	ListActiveOverlapping(
		ctx context.Context,
		salonID string,
		barberID string,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// -------- Read --------
	GetByID(
		ctx context.Context,
		id string,
	) (*models.Appointment, error)

	ListForUser(
		ctx context.Context,
		userID string,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// -------- State change --------
	Mutate(
		ctx context.Context,
		id string,
		fn MutateFunc,
	) (*models.Appointment, error)

	// -------- Expiry --------
	ListStalePending(
		ctx context.Context,
		createdBefore time.Time,
		limit int,
	) ([]models.Appointment, error)
}
