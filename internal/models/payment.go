package models

import "time"

type PaymentAmount struct {
	Services       int64 `json:"services"`
	HomeServiceFee int64 `json:"home_service_fee"`
	PlatformFee    int64 `json:"platform_fee"`
	Tax            int64 `json:"tax"`
	Total          int64 `json:"total"`
}

type Refund struct {
	Amount          int64      `json:"amount"`
	Reason          string     `gorm:"size:255" json:"reason,omitempty"`
	RefundedAt      *time.Time `json:"refunded_at,omitempty"`
	RefundedBy      string     `gorm:"size:36" json:"refunded_by,omitempty"`
	GatewayRefundID string     `gorm:"size:100" json:"gateway_refund_id,omitempty"`
}

type Payment struct {
	ID            string `gorm:"size:36;primaryKey" json:"id"`
	AppointmentID string `gorm:"size:36;not null;uniqueIndex" json:"appointment_id"`
	UserID        string `gorm:"size:36;not null;index" json:"user_id"`
	SalonID       string `gorm:"size:36;not null;index" json:"salon_id"`

	Amount   PaymentAmount `gorm:"embedded;embeddedPrefix:amount_" json:"amount"`
	Currency string        `gorm:"size:3;not null" json:"currency"`
	Method   string        `gorm:"size:30" json:"method"`
	Status   string        `gorm:"size:20;not null;default:'initiated';index" json:"status"`

	Gateway          string `gorm:"size:30;not null" json:"gateway"`
	GatewayOrderID   string `gorm:"size:100;uniqueIndex" json:"gateway_order_id"`
	GatewayPaymentID string `gorm:"size:100;index" json:"gateway_payment_id,omitempty"`
	GatewaySignature string `gorm:"size:255" json:"-"`
	FailureReason    string `gorm:"size:255" json:"failure_reason,omitempty"`

	Refund   Refund         `gorm:"embedded;embeddedPrefix:refund_" json:"refund"`
	Metadata map[string]any `gorm:"serializer:json;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentOrder remembers every gateway order opened for a payment, so a
// capture on a superseded checkout still finds its payment.
type PaymentOrder struct {
	OrderID       string    `gorm:"size:100;primaryKey"`
	PaymentID     string    `gorm:"size:36;not null;index"`
	AppointmentID string    `gorm:"size:36;not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

// WebhookEvent is the durable dedup ledger for gateway notifications.
type WebhookEvent struct {
	Key              string    `gorm:"size:150;primaryKey"`
	Event            string    `gorm:"size:50;index"`
	GatewayPaymentID string    `gorm:"size:100"`
	ProcessedAt      time.Time `gorm:"not null"`
}
