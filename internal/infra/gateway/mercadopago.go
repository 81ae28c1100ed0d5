package gateway

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/mercadopago/sdk-go/pkg/refund"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/money"
)

// MercadoPago creates checkout preferences and refunds through the Mercado
// Pago SDK. Callback and webhook signatures are checked with the shared
// secret configured on the notification endpoint.
type MercadoPago struct {
	Signer

	preferences preference.Client
	refunds     refund.Client
	breaker     *Breaker
	timeout     time.Duration
	log         *zap.Logger
}

func NewMercadoPago(
	accessToken string,
	webhookSecret string,
	timeout time.Duration,
	breaker *Breaker,
	log *zap.Logger,
) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &MercadoPago{
		Signer:      NewSigner(webhookSecret),
		preferences: preference.NewClient(cfg),
		refunds:     refund.NewClient(cfg),
		breaker:     breaker,
		timeout:     timeout,
		log:         log,
	}, nil
}

func (m *MercadoPago) Name() string { return "mercadopago" }

func (m *MercadoPago) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.breaker.Execute(func() error { return fn(ctx) })
	if err != nil {
		m.log.Warn("gateway call failed",
			zap.String("gateway", m.Name()),
			zap.String("op", op),
			zap.Error(err),
		)
		return httperr.Gateway("gateway_unavailable", err)
	}
	return nil
}

func (m *MercadoPago) CreateOrder(ctx context.Context, req payment.OrderRequest) (*payment.Order, error) {
	metadata := make(map[string]any, len(req.Notes))
	for k, v := range req.Notes {
		metadata[k] = v
	}

	request := preference.Request{
		ExternalReference: req.Receipt,
		Metadata:          metadata,
		Items: []preference.ItemRequest{
			{
				ID:         req.Receipt,
				Title:      "Appointment " + req.Receipt,
				Quantity:   1,
				UnitPrice:  money.ToDecimal(req.AmountMinor),
				CurrencyID: req.Currency,
			},
		},
	}

	var resp *preference.Response
	err := m.call(ctx, "create_order", func(ctx context.Context) error {
		var err error
		resp, err = m.preferences.Create(ctx, request)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &payment.Order{
		ID:          resp.ID,
		Amount:      req.AmountMinor,
		Currency:    req.Currency,
		CheckoutURL: resp.InitPoint,
	}, nil
}

func (m *MercadoPago) Refund(ctx context.Context, gatewayPaymentID string, amountMinor *int64) (*payment.RefundResult, error) {
	paymentID, err := strconv.Atoi(gatewayPaymentID)
	if err != nil {
		return nil, httperr.Validation("invalid_gateway_payment_id", "")
	}

	var resp *refund.Response
	err = m.call(ctx, "refund", func(ctx context.Context) error {
		var err error
		if amountMinor == nil {
			resp, err = m.refunds.Create(ctx, paymentID)
		} else {
			resp, err = m.refunds.CreatePartialRefund(ctx, paymentID, money.ToDecimal(*amountMinor))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	amount := int64(0)
	if amountMinor != nil {
		amount = *amountMinor
	}
	if resp.Amount > 0 {
		if parsed, perr := money.Parse(strconv.FormatFloat(resp.Amount, 'f', 2, 64)); perr == nil {
			amount = parsed
		}
	}

	return &payment.RefundResult{
		ID:     strconv.Itoa(resp.ID),
		Amount: amount,
	}, nil
}

var _ payment.Gateway = (*MercadoPago)(nil)
