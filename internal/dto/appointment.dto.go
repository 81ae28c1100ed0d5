package dto

import (
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/money"
)

// Money fields leave the API as decimal strings ("11.55").
type PricingDTO struct {
	Services       string `json:"services"`
	HomeServiceFee string `json:"home_service_fee"`
	PlatformFee    string `json:"platform_fee"`
	Total          string `json:"total"`
	Currency       string `json:"currency"`
}

type LocationDTO struct {
	Type    string `json:"type"`
	Address string `json:"address,omitempty"`
}

type AppointmentDTO struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	SalonID         string      `json:"salon_id"`
	BarberID        string      `json:"barber_id,omitempty"`
	ServiceIDs      []string    `json:"service_ids"`
	ScheduledAt     time.Time   `json:"scheduled_at"`
	EndsAt          time.Time   `json:"ends_at"`
	DurationMinutes int         `json:"duration_minutes"`
	Location        LocationDTO `json:"location"`
	Pricing         PricingDTO  `json:"pricing"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	PaymentID       string      `json:"payment_id,omitempty"`

	CancelledBy  string     `json:"cancelled_by,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func Appointment(ap *models.Appointment) AppointmentDTO {
	return AppointmentDTO{
		ID:              ap.ID,
		UserID:          ap.UserID,
		SalonID:         ap.SalonID,
		BarberID:        ap.BarberID,
		ServiceIDs:      ap.ServiceIDs,
		ScheduledAt:     ap.ScheduledAt,
		EndsAt:          ap.EndsAt,
		DurationMinutes: ap.DurationMinutes,
		Location: LocationDTO{
			Type:    ap.Location.Type,
			Address: ap.Location.Address,
		},
		Pricing: PricingDTO{
			Services:       money.Format(ap.Pricing.Services),
			HomeServiceFee: money.Format(ap.Pricing.HomeServiceFee),
			PlatformFee:    money.Format(ap.Pricing.PlatformFee),
			Total:          money.Format(ap.Pricing.Total),
			Currency:       ap.Currency,
		},
		Status:        ap.Status,
		PaymentStatus: ap.PaymentStatus,
		PaymentID:     ap.PaymentID,
		CancelledBy:   ap.CancelledBy,
		CancelReason:  ap.CancelReason,
		CancelledAt:   ap.CancelledAt,
		StartedAt:     ap.StartedAt,
		CompletedAt:   ap.CompletedAt,
		CreatedAt:     ap.CreatedAt,
		UpdatedAt:     ap.UpdatedAt,
	}
}

func Appointments(aps []models.Appointment) []AppointmentDTO {
	out := make([]AppointmentDTO, 0, len(aps))
	for i := range aps {
		out = append(out, Appointment(&aps[i]))
	}
	return out
}

type AvailabilityDTO struct {
	SalonID   string    `json:"salon_id"`
	BarberID  string    `json:"barber_id,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}
