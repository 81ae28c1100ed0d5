package dto

import (
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/money"
)

type PaymentAmountDTO struct {
	Services       string `json:"services"`
	HomeServiceFee string `json:"home_service_fee"`
	PlatformFee    string `json:"platform_fee"`
	Tax            string `json:"tax"`
	Total          string `json:"total"`
}

type RefundDTO struct {
	Amount          string     `json:"amount"`
	Reason          string     `json:"reason,omitempty"`
	RefundedAt      *time.Time `json:"refunded_at,omitempty"`
	RefundedBy      string     `json:"refunded_by,omitempty"`
	GatewayRefundID string     `json:"gateway_refund_id,omitempty"`
}

type PaymentDTO struct {
	ID               string           `json:"id"`
	AppointmentID    string           `json:"appointment_id"`
	Amount           PaymentAmountDTO `json:"amount"`
	Currency         string           `json:"currency"`
	Method           string           `json:"method"`
	Status           string           `json:"status"`
	Gateway          string           `json:"gateway"`
	GatewayOrderID   string           `json:"gateway_order_id"`
	GatewayPaymentID string           `json:"gateway_payment_id,omitempty"`
	FailureReason    string           `json:"failure_reason,omitempty"`
	Refund           *RefundDTO       `json:"refund,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func Payment(p *models.Payment) PaymentDTO {
	out := PaymentDTO{
		ID:            p.ID,
		AppointmentID: p.AppointmentID,
		Amount: PaymentAmountDTO{
			Services:       money.Format(p.Amount.Services),
			HomeServiceFee: money.Format(p.Amount.HomeServiceFee),
			PlatformFee:    money.Format(p.Amount.PlatformFee),
			Tax:            money.Format(p.Amount.Tax),
			Total:          money.Format(p.Amount.Total),
		},
		Currency:         p.Currency,
		Method:           p.Method,
		Status:           p.Status,
		Gateway:          p.Gateway,
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		FailureReason:    p.FailureReason,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}

	if p.Refund.Amount > 0 {
		out.Refund = &RefundDTO{
			Amount:          money.Format(p.Refund.Amount),
			Reason:          p.Refund.Reason,
			RefundedAt:      p.Refund.RefundedAt,
			RefundedBy:      p.Refund.RefundedBy,
			GatewayRefundID: p.Refund.GatewayRefundID,
		}
	}
	return out
}

type InitiatePaymentDTO struct {
	Payment        PaymentDTO `json:"payment"`
	GatewayOrderID string     `json:"gateway_order_id"`
	Amount         string     `json:"amount"`
	AmountMinor    int64      `json:"amount_minor"`
	Currency       string     `json:"currency"`
	CheckoutURL    string     `json:"checkout_url,omitempty"`
}
