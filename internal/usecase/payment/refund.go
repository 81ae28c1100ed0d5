package payment

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/salon-booking/internal/domain/catalog"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type RefundInput struct {
	PaymentID string
	ActorID   string
	Reason    string
	// Amount nil refunds the full total.
	Amount *int64
}

type RefundPayment struct {
	Deps
	settler *Settler
}

func NewRefundPayment(d Deps, settler *Settler) *RefundPayment {
	return &RefundPayment{Deps: d, settler: settler}
}

func (uc *RefundPayment) Execute(ctx context.Context, in RefundInput) (*models.Payment, error) {
	p, err := uc.Payments.GetByID(ctx, in.PaymentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperr.NotFound("payment_not_found", "")
		}
		return nil, err
	}

	ok, err := uc.Authz.Authorize(ctx, in.ActorID, catalog.ActionPaymentRefund, catalog.Resource{
		Kind:    "payment",
		ID:      p.ID,
		SalonID: p.SalonID,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.Forbidden("refund_not_allowed", "")
	}

	if domain.Status(p.Status) != domain.StatusSuccessful {
		return nil, httperr.State("payment_not_refundable", "Only successful payments can be refunded.")
	}
	if p.GatewayPaymentID == "" {
		return nil, httperr.State("payment_not_captured", "")
	}

	amount := p.Amount.Total
	if in.Amount != nil {
		amount = *in.Amount
	}
	if amount <= 0 || amount > p.Amount.Total {
		return nil, httperr.Validation("invalid_refund_amount", "Refund must be positive and at most the amount paid.")
	}

	res, err := uc.Gateway.Refund(ctx, p.GatewayPaymentID, &amount)
	if err != nil {
		return nil, err
	}

	now := uc.Clock.Now()
	paymentID := p.ID
	// own ledger key: a gateway notification for the same refund may land
	// first and must not make this call fail after the money moved
	p, _, _, err = uc.settler.Apply(ctx, domain.Ref{ID: paymentID}, &domain.Event{
		Key:              refundEventKey(res.ID),
		Name:             domain.EventRefundCreated,
		GatewayPaymentID: p.GatewayPaymentID,
	}, signal{
		status: domain.StatusRefunded,
		source: sourceRefund,
		refund: &models.Refund{
			Amount:          amount,
			Reason:          in.Reason,
			RefundedAt:      &now,
			RefundedBy:      in.ActorID,
			GatewayRefundID: res.ID,
		},
	}, in.ActorID)
	if errors.Is(err, domain.ErrEventProcessed) {
		// same gateway refund already recorded by an earlier call
		return uc.Payments.GetByID(ctx, paymentID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func refundEventKey(gatewayRefundID string) string {
	return "refund.local:" + gatewayRefundID
}
