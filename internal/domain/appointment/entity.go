package appointment

import (
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func transition(ap *models.Appointment, to Status, now time.Time) error {
	if err := CanTransition(Status(ap.Status), to); err != nil {
		return err
	}
	ap.Status = string(to)
	ap.UpdatedAt = now
	return nil
}

func Confirm(ap *models.Appointment, now time.Time) error {
	return transition(ap, StatusConfirmed, now)
}

func Start(ap *models.Appointment, now time.Time) error {
	if err := transition(ap, StatusInProgress, now); err != nil {
		return err
	}
	ap.StartedAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := transition(ap, StatusCompleted, now); err != nil {
		return err
	}
	ap.CompletedAt = &now
	return nil
}

func Cancel(ap *models.Appointment, actorID, reason string, now time.Time) error {
	if err := transition(ap, StatusCancelled, now); err != nil {
		return err
	}
	ap.CancelledAt = &now
	ap.CancelledBy = actorID
	ap.CancelReason = reason
	return nil
}

// Window returns the half-open slot [scheduledAt, scheduledAt+duration).
func Window(ap *models.Appointment) (time.Time, time.Time) {
	start := ap.ScheduledAt
	return start, start.Add(time.Duration(ap.DurationMinutes) * time.Minute)
}
