package payment

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

var (
	ErrNotFound = errors.New("payment not found")
	// ErrEventProcessed means the webhook dedup key was already recorded.
	ErrEventProcessed = errors.New("webhook event already processed")
)

// Ref selects the payment row to settle. Exactly one field is used, in
// the order ID, OrderID, GatewayPaymentID.
type Ref struct {
	ID               string
	OrderID          string
	GatewayPaymentID string
}

// Event is recorded in the dedup ledger in the same transaction as the
// state change.
type Event struct {
	Key              string
	Name             string
	GatewayPaymentID string
}

// SettleFunc mutates both rows loaded under lock. changed=false skips the
// writes (and the ledger entry is still committed).
type SettleFunc func(p *models.Payment, ap *models.Appointment) (changed bool, err error)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	GetByAppointment(ctx context.Context, appointmentID string) (*models.Payment, error)

	// SaveInitiated inserts the payment or replaces the appointment's
	// previous attempt, and links it on the appointment, in one
	// transaction. guard sees the locked previous attempt (nil if none)
	// and may veto the replacement.
	SaveInitiated(ctx context.Context, p *models.Payment, guard func(existing *models.Payment) error) error

	// Settle locks the payment and its appointment, records ev when it has
	// a key (returning ErrEventProcessed on a duplicate), runs fn and
	// persists both rows if fn reports a change.
	Settle(ctx context.Context, ref Ref, ev *Event, fn SettleFunc) (*models.Payment, *models.Appointment, error)
}
