package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	apdomain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

const DefaultMethod = "card"

type InitiateInput struct {
	AppointmentID string
	ActorID       string
	Method        string
}

type InitiateOutput struct {
	Payment        *models.Payment
	GatewayOrderID string
	Amount         int64
	Currency       string
	CheckoutURL    string
}

type InitiatePayment struct {
	Deps
}

func NewInitiatePayment(d Deps) *InitiatePayment {
	return &InitiatePayment{Deps: d}
}

// guardExisting rejects a new attempt when the appointment already has a
// settled payment.
func guardExisting(existing *models.Payment) error {
	if existing == nil {
		return nil
	}
	switch domain.Status(existing.Status) {
	case domain.StatusSuccessful:
		return httperr.Conflict("payment_already_successful", "This appointment is already paid.")
	case domain.StatusRefunded:
		return httperr.State("payment_refunded", "This appointment's payment was refunded.")
	}
	return nil
}

func (uc *InitiatePayment) Execute(ctx context.Context, in InitiateInput) (*InitiateOutput, error) {
	ap, err := uc.Appointments.GetByID(ctx, in.AppointmentID)
	if err != nil {
		if errors.Is(err, apdomain.ErrNotFound) {
			return nil, httperr.NotFound("appointment_not_found", "")
		}
		return nil, err
	}

	if ap.UserID != in.ActorID {
		return nil, httperr.Forbidden("not_appointment_owner", "Only the customer can pay for this appointment.")
	}
	if ap.Status != string(apdomain.StatusPending) {
		return nil, httperr.State("appointment_not_pending", "Only pending appointments can be paid.")
	}

	existing, err := uc.Payments.GetByAppointment(ctx, ap.ID)
	switch {
	case err == nil:
		if err := guardExisting(existing); err != nil {
			return nil, err
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	method := in.Method
	if method == "" {
		method = DefaultMethod
	}

	order, err := uc.Gateway.CreateOrder(ctx, domain.OrderRequest{
		AmountMinor: ap.Pricing.Total,
		Currency:    ap.Currency,
		Receipt:     ap.ID,
		Notes: map[string]string{
			"appointment_id": ap.ID,
			"salon_id":       ap.SalonID,
			"user_id":        ap.UserID,
		},
	})
	if err != nil {
		return nil, err
	}

	now := uc.Clock.Now()
	p := &models.Payment{
		ID:            uuid.NewString(),
		AppointmentID: ap.ID,
		UserID:        ap.UserID,
		SalonID:       ap.SalonID,
		Amount: models.PaymentAmount{
			Services:       ap.Pricing.Services,
			HomeServiceFee: ap.Pricing.HomeServiceFee,
			PlatformFee:    ap.Pricing.PlatformFee,
			Total:          ap.Pricing.Total,
		},
		Currency:       ap.Currency,
		Method:         method,
		Status:         string(domain.StatusInitiated),
		Gateway:        uc.Gateway.Name(),
		GatewayOrderID: order.ID,
		Metadata:       map[string]any{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if order.CheckoutURL != "" {
		p.Metadata["checkout_url"] = order.CheckoutURL
	}
	if existing != nil {
		p.Metadata["previous_order_id"] = existing.GatewayOrderID
	}

	if err := uc.Payments.SaveInitiated(ctx, p, guardExisting); err != nil {
		if errors.Is(err, apdomain.ErrNotPending) {
			return nil, httperr.State("appointment_not_pending", "Only pending appointments can be paid.")
		}
		return nil, err
	}

	uc.Audit.Dispatch(audit.Event{
		SalonID:  p.SalonID,
		ActorID:  in.ActorID,
		Action:   "payment.initiated",
		Entity:   "payment",
		EntityID: p.ID,
		Metadata: map[string]any{"order_id": order.ID, "total": p.Amount.Total},
		At:       now,
	})
	uc.Log.Info("payment initiated",
		zap.String("payment_id", p.ID),
		zap.String("appointment_id", ap.ID),
		zap.String("order_id", order.ID),
	)

	return &InitiateOutput{
		Payment:        p,
		GatewayOrderID: order.ID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		CheckoutURL:    order.CheckoutURL,
	}, nil
}
