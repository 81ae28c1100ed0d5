package payment

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// WebhookPayload is the gateway notification body.
type WebhookPayload struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity RefundEntity `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

type PaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type RefundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
}

// DedupKey is the gateway event id, or "<event>:<entity id>" when the
// gateway sent none.
func (w *WebhookPayload) DedupKey() string {
	if w.ID != "" {
		return w.ID
	}
	if w.Event == domain.EventRefundCreated {
		return w.Event + ":" + w.Payload.Refund.Entity.ID
	}
	return w.Event + ":" + w.Payload.Payment.Entity.ID
}

type HandleWebhook struct {
	Deps
	settler *Settler
}

func NewHandleWebhook(d Deps, settler *Settler) *HandleWebhook {
	return &HandleWebhook{Deps: d, settler: settler}
}

func (uc *HandleWebhook) Execute(ctx context.Context, raw []byte, signature string) error {
	if !uc.Gateway.VerifyWebhookSignature(raw, signature) {
		uc.Metrics.RecordWebhook("invalid_signature")
		return httperr.Signature("payment_verification_failed", "Invalid webhook signature.")
	}

	var wh WebhookPayload
	if err := json.Unmarshal(raw, &wh); err != nil || wh.Event == "" {
		uc.Metrics.RecordWebhook("invalid_payload")
		return httperr.Validation("invalid_payload", "Malformed webhook body.")
	}

	log := uc.Log.With(zap.String("event", wh.Event), zap.String("event_id", wh.ID))

	ref, sig, ok := route(&wh)
	if !ok {
		uc.Metrics.RecordWebhook("ignored")
		log.Info("ignoring unhandled webhook event")
		return nil
	}

	key := wh.DedupKey()
	cacheKey := "webhook:" + key

	seen, err := uc.Dedup.Exists(ctx, cacheKey)
	if err != nil {
		log.Warn("dedup lookup failed", zap.Error(err))
	}
	if seen {
		uc.Metrics.RecordWebhook("duplicate")
		log.Debug("webhook already processed")
		return nil
	}

	if err := uc.Archive.Store(ctx, key, raw); err != nil {
		log.Warn("archive webhook failed", zap.Error(err))
	}

	_, _, _, err = uc.settler.Apply(ctx, ref, &domain.Event{
		Key:              key,
		Name:             wh.Event,
		GatewayPaymentID: sig.gatewayPaymentID,
	}, sig, "")

	switch {
	case errors.Is(err, domain.ErrEventProcessed):
		uc.Metrics.RecordWebhook("duplicate")
	case errors.Is(err, domain.ErrNotFound):
		// nothing to settle; acknowledged so the gateway stops retrying
		uc.Metrics.RecordWebhook("unmatched")
		log.Error("webhook matches no payment",
			zap.String("order_id", ref.OrderID),
			zap.String("gateway_payment_id", ref.GatewayPaymentID),
		)
		return nil
	case err != nil:
		uc.Metrics.RecordWebhook("error")
		return err
	default:
		uc.Metrics.RecordWebhook("processed")
	}

	if _, err := uc.Dedup.SetNX(ctx, cacheKey, wh.Event, uc.DedupTTL); err != nil {
		log.Warn("dedup mark failed", zap.Error(err))
	}
	return nil
}

// route maps a webhook to the payment it concerns and the signal it carries.
func route(wh *WebhookPayload) (domain.Ref, signal, bool) {
	pay := wh.Payload.Payment.Entity

	switch wh.Event {
	case domain.EventCaptured:
		return domain.Ref{OrderID: pay.OrderID, GatewayPaymentID: pay.ID}, signal{
			status:           domain.StatusSuccessful,
			source:           sourceWebhook,
			gatewayPaymentID: pay.ID,
			orderID:          pay.OrderID,
			amount:           pay.Amount,
		}, true

	case domain.EventFailed:
		reason := pay.ErrorCode
		if pay.ErrorDescription != "" {
			reason = pay.ErrorCode + ": " + pay.ErrorDescription
		}
		if reason == "" {
			reason = "gateway_failed"
		}
		return domain.Ref{OrderID: pay.OrderID, GatewayPaymentID: pay.ID}, signal{
			status:           domain.StatusFailed,
			source:           sourceWebhook,
			gatewayPaymentID: pay.ID,
			failureReason:    reason,
		}, true

	case domain.EventRefundCreated:
		rf := wh.Payload.Refund.Entity
		gatewayPaymentID := rf.PaymentID
		if gatewayPaymentID == "" {
			gatewayPaymentID = pay.ID
		}
		return domain.Ref{GatewayPaymentID: gatewayPaymentID}, signal{
			status:           domain.StatusRefunded,
			source:           sourceWebhook,
			gatewayPaymentID: gatewayPaymentID,
			refund: &models.Refund{
				Amount:          rf.Amount,
				Reason:          "gateway_refund",
				GatewayRefundID: rf.ID,
			},
		}, true
	}

	return domain.Ref{}, signal{}, false
}
