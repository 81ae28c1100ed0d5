package events

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// Routing keys on the topic exchange.
const (
	AppointmentCreated   = "appointment.created"
	AppointmentConfirmed = "appointment.confirmed"
	AppointmentCancelled = "appointment.cancelled"
	AppointmentStarted   = "appointment.started"
	AppointmentCompleted = "appointment.completed"
	PaymentSucceeded     = "payment.succeeded"
	PaymentFailed        = "payment.failed"
	PaymentRefunded      = "payment.refunded"
)

type Envelope struct {
	Type          string    `json:"type"`
	AppointmentID string    `json:"appointment_id"`
	PaymentID     string    `json:"payment_id,omitempty"`
	SalonID       string    `json:"salon_id"`
	UserID        string    `json:"user_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Envelope) error
}

// Noop drops events; used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Envelope) error { return nil }

func FromAppointment(typ string, ap *models.Appointment, at time.Time) Envelope {
	return Envelope{
		Type:          typ,
		AppointmentID: ap.ID,
		PaymentID:     ap.PaymentID,
		SalonID:       ap.SalonID,
		UserID:        ap.UserID,
		Status:        ap.Status,
		PaymentStatus: ap.PaymentStatus,
		OccurredAt:    at,
	}
}
