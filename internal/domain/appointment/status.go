package appointment

import (
	"fmt"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus mirrors the latest terminal signal of the appointment's
// payment.
type PaymentStatus string

const (
	PaymentInitiated  PaymentStatus = "initiated"
	PaymentSuccessful PaymentStatus = "successful"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// ActiveStatuses hold a slot on the calendar.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed, StatusInProgress}

func ActiveStatusStrings() []string {
	out := make([]string, len(ActiveStatuses))
	for i, s := range ActiveStatuses {
		out[i] = string(s)
	}
	return out
}

func (s Status) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ===============================
// Transitions
// ===============================

var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransition returns a StateError unless from→to is a listed edge.
func CanTransition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return httperr.State(
		"invalid_transition",
		fmt.Sprintf("Appointment cannot move from %s to %s.", from, to),
	)
}

func InitialStatus() Status {
	return StatusPending
}
