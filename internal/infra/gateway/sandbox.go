package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
)

// Sandbox is a deterministic in-process gateway for local runs and tests.
// Orders are accepted immediately; signatures use the shared secret, so a
// client can produce valid callbacks with Signer.
type Sandbox struct {
	Signer

	mu       sync.Mutex
	orders   map[string]payment.Order
	receipts map[string]string
	refunds  map[string]int64

	// FailNext makes the next call return a gateway error.
	FailNext bool
	// FreshOrders opens a new order on every call, the way hosted checkout
	// providers create a new preference per attempt.
	FreshOrders bool
}

func NewSandbox(secret string) *Sandbox {
	return &Sandbox{
		Signer:   NewSigner(secret),
		orders:   make(map[string]payment.Order),
		receipts: make(map[string]string),
		refunds:  make(map[string]int64),
	}
}

func (s *Sandbox) Name() string { return "sandbox" }

func (s *Sandbox) fail() error {
	if s.FailNext {
		s.FailNext = false
		return httperr.Gateway("gateway_unavailable", ErrCircuitOpen)
	}
	return nil
}

func (s *Sandbox) CreateOrder(ctx context.Context, req payment.OrderRequest) (*payment.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, httperr.Gateway("gateway_unavailable", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail(); err != nil {
		return nil, err
	}

	// same receipt and amount: hand back the same order
	if id, ok := s.receipts[req.Receipt]; ok && req.Receipt != "" && !s.FreshOrders {
		if o := s.orders[id]; o.Amount == req.AmountMinor && o.Currency == req.Currency {
			return &o, nil
		}
	}

	o := payment.Order{
		ID:          "order_" + uuid.NewString(),
		Amount:      req.AmountMinor,
		Currency:    req.Currency,
		CheckoutURL: "",
	}
	s.orders[o.ID] = o
	if req.Receipt != "" {
		s.receipts[req.Receipt] = o.ID
	}
	return &o, nil
}

func (s *Sandbox) Refund(ctx context.Context, gatewayPaymentID string, amountMinor *int64) (*payment.RefundResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, httperr.Gateway("gateway_unavailable", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail(); err != nil {
		return nil, err
	}

	var amount int64
	if amountMinor != nil {
		amount = *amountMinor
	}
	s.refunds[gatewayPaymentID] += amount

	return &payment.RefundResult{
		ID:     "rfnd_" + uuid.NewString(),
		Amount: amount,
	}, nil
}

// Refunded reports the sum refunded for a gateway payment id.
func (s *Sandbox) Refunded(gatewayPaymentID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refunds[gatewayPaymentID]
}

var _ payment.Gateway = (*Sandbox)(nil)
