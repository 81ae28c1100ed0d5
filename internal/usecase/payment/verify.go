package payment

import (
	"context"
	"errors"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

const ReasonSignatureMismatch = "signature_mismatch"

type VerifyInput struct {
	OrderID   string
	PaymentID string
	Signature string
}

type VerifyPayment struct {
	Deps
	settler *Settler
}

func NewVerifyPayment(d Deps, settler *Settler) *VerifyPayment {
	return &VerifyPayment{Deps: d, settler: settler}
}

func (uc *VerifyPayment) Execute(ctx context.Context, in VerifyInput) (*models.Payment, error) {
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return nil, httperr.Validation("invalid_verification", "order_id, payment_id and signature are required.")
	}

	ref := domain.Ref{OrderID: in.OrderID}

	if !uc.Gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		_, _, _, err := uc.settler.Apply(ctx, ref, nil, signal{
			status:            domain.StatusFailed,
			source:            sourceVerify,
			failureReason:     ReasonSignatureMismatch,
			onlyFromInitiated: true,
		}, "")
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, httperr.Signature("payment_verification_failed", "Payment could not be verified.")
	}

	p, _, _, err := uc.settler.Apply(ctx, ref, nil, signal{
		status:           domain.StatusSuccessful,
		source:           sourceVerify,
		gatewayPaymentID: in.PaymentID,
		orderID:          in.OrderID,
		signature:        in.Signature,
	}, "")
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperr.NotFound("payment_not_found", "")
		}
		return nil, err
	}
	return p, nil
}
