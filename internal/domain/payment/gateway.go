package payment

import "context"

type OrderRequest struct {
	AmountMinor int64
	Currency    string
	// Receipt is the appointment id; the gateway dedupes retries on it.
	Receipt string
	Notes   map[string]string
}

type Order struct {
	ID       string
	Amount   int64
	Currency string
	// CheckoutURL is where the customer pays, when the provider has one.
	CheckoutURL string
}

type RefundResult struct {
	ID     string
	Amount int64
}

// Gateway is the boundary to the payment provider. Implementations return
// httperr Gateway errors for transport failures and timeouts.
type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(rawBody []byte, signature string) bool
	// Refund with amountMinor nil refunds the full captured amount.
	Refund(ctx context.Context, gatewayPaymentID string, amountMinor *int64) (*RefundResult, error)
}
