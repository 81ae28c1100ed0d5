package payment

import (
	"time"

	apdomain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// Signal sources.
const (
	sourceVerify  = "verify"
	sourceWebhook = "webhook"
	sourceRefund  = "refund"
)

// signal is one gateway report about a payment, from either channel.
type signal struct {
	status domain.Status
	source string

	gatewayPaymentID string
	// orderID is the gateway order the signal names, when it names one
	orderID       string
	signature     string
	failureReason string
	// amount captured, when the gateway reports it
	amount int64
	refund *models.Refund

	// onlyFromInitiated limits the signal to payments still awaiting an
	// outcome (unsigned failures must not flip a settled payment).
	onlyFromInitiated bool
}

type outcome struct {
	changed bool
	from    domain.Status
	to      domain.Status

	// conflict is set for contradictory terminal signals.
	conflict bool
	// absorbed means a refunded payment swallowed a later signal.
	absorbed bool
	// confirmed is set when this signal moved the appointment to confirmed.
	confirmed      bool
	refundRequired bool
	amountMismatch bool
	refundUnpaid   bool
	// staleOrder means the capture came in on a superseded checkout.
	staleOrder bool
	// enriched means a repeated refund filled in who refunded and why; the
	// row is saved but no side effects fire.
	enriched bool
}

// persist reports whether the rows need saving.
func (o outcome) persist() bool {
	return o.changed || o.enriched
}

// merge applies s to the payment and its appointment. Both rows are locked
// by the caller; the same function serves verify, webhook and refund.
func merge(p *models.Payment, ap *models.Appointment, s signal, now time.Time) outcome {
	cur := domain.Status(p.Status)
	out := outcome{from: cur, to: cur}

	switch {
	case cur == s.status:
		// same outcome again
		if cur == domain.StatusRefunded {
			out.enriched = enrichRefund(p, s.refund, now)
		}
		return out

	case s.onlyFromInitiated && cur != domain.StatusInitiated:
		return out

	case cur == domain.StatusRefunded:
		out.absorbed = true
		out.conflict = true
		return out

	case s.status == domain.StatusRefunded:
		out.refundUnpaid = cur != domain.StatusSuccessful

	case cur == domain.StatusFailed && s.status == domain.StatusSuccessful,
		cur == domain.StatusSuccessful && s.status == domain.StatusFailed:
		out.conflict = true
		recordConflict(p, cur, s, now)
	}

	out.changed = true
	out.to = s.status

	p.Status = string(s.status)
	p.UpdatedAt = now
	if s.gatewayPaymentID != "" {
		p.GatewayPaymentID = s.gatewayPaymentID
	}
	if s.signature != "" {
		p.GatewaySignature = s.signature
	}

	switch s.status {
	case domain.StatusSuccessful:
		p.FailureReason = ""
		if s.amount > 0 && s.amount != p.Amount.Total {
			out.amountMismatch = true
			setMeta(p, "captured_amount", s.amount)
		}
		if s.orderID != "" && s.orderID != p.GatewayOrderID {
			out.staleOrder = true
			setMeta(p, "captured_order_id", s.orderID)
		}
	case domain.StatusFailed:
		p.FailureReason = s.failureReason
	case domain.StatusRefunded:
		if s.refund != nil {
			p.Refund = *s.refund
		}
		if p.Refund.Amount == 0 {
			p.Refund.Amount = p.Amount.Total
		}
		if p.Refund.RefundedAt == nil {
			p.Refund.RefundedAt = &now
		}
	}

	ap.PaymentStatus = string(s.status)
	ap.UpdatedAt = now

	if s.status == domain.StatusSuccessful {
		switch apdomain.Status(ap.Status) {
		case apdomain.StatusPending:
			// pending -> confirmed is always legal
			_ = apdomain.Confirm(ap, now)
			out.confirmed = true
		case apdomain.StatusCancelled:
			out.refundRequired = true
			setMeta(p, "refund_required", true)
		}
	}

	return out
}

// enrichRefund copies the operator details of a refund onto a record that a
// gateway notification created first.
func enrichRefund(p *models.Payment, r *models.Refund, now time.Time) bool {
	if r == nil || r.RefundedBy == "" || p.Refund.RefundedBy != "" {
		return false
	}
	p.Refund.RefundedBy = r.RefundedBy
	if r.Reason != "" {
		p.Refund.Reason = r.Reason
	}
	if p.Refund.GatewayRefundID == "" {
		p.Refund.GatewayRefundID = r.GatewayRefundID
	}
	if p.Refund.Amount == 0 {
		p.Refund.Amount = r.Amount
	}
	p.UpdatedAt = now
	return true
}

func setMeta(p *models.Payment, key string, v any) {
	if p.Metadata == nil {
		p.Metadata = make(map[string]any)
	}
	p.Metadata[key] = v
}

func recordConflict(p *models.Payment, from domain.Status, s signal, now time.Time) {
	list, _ := p.Metadata["conflicts"].([]any)
	list = append(list, map[string]any{
		"from":   string(from),
		"to":     string(s.status),
		"source": s.source,
		"at":     now.Format(time.RFC3339),
	})
	setMeta(p, "conflicts", list)
}
