package models

import "time"

type Location struct {
	Type    string `gorm:"size:10;not null" json:"type"`
	Address string `gorm:"size:255" json:"address,omitempty"`
}

// Pricing amounts are minor currency units.
type Pricing struct {
	Services       int64 `json:"services"`
	HomeServiceFee int64 `json:"home_service_fee"`
	PlatformFee    int64 `json:"platform_fee"`
	Total          int64 `json:"total"`
}

type Appointment struct {
	ID string `gorm:"size:36;primaryKey" json:"id"`

	UserID   string `gorm:"size:36;not null;index" json:"user_id"`
	SalonID  string `gorm:"size:36;not null;index:idx_appointments_window,priority:1" json:"salon_id"`
	BarberID string `gorm:"size:36;not null;default:''" json:"barber_id,omitempty"`

	ServiceIDs []string `gorm:"serializer:json;type:jsonb" json:"service_ids"`

	ScheduledAt     time.Time `gorm:"not null;index:idx_appointments_window,priority:2" json:"scheduled_at"`
	EndsAt          time.Time `gorm:"not null;index:idx_appointments_window,priority:3" json:"ends_at"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`

	Location Location `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Pricing  Pricing  `gorm:"embedded;embeddedPrefix:pricing_" json:"pricing"`
	Currency string   `gorm:"size:3;not null" json:"currency"`

	Status        string `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaymentStatus string `gorm:"size:20;not null;default:'initiated'" json:"payment_status"`
	PaymentID     string `gorm:"size:36" json:"payment_id,omitempty"`

	CancelledBy  string     `gorm:"size:36" json:"cancelled_by,omitempty"`
	CancelReason string     `gorm:"size:255" json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
