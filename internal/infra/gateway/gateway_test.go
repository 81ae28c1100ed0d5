package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/clock"
	"github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
)

func TestSigner(t *testing.T) {
	s := NewSigner("whsec")

	sig := s.CheckoutSignature("order_1", "pay_1")
	if !s.VerifySignature("order_1", "pay_1", sig) {
		t.Fatal("own signature rejected")
	}
	if s.VerifySignature("order_1", "pay_2", sig) {
		t.Fatal("signature accepted for another payment")
	}
	if NewSigner("other").VerifySignature("order_1", "pay_1", sig) {
		t.Fatal("signature accepted under another secret")
	}

	body := []byte(`{"id":"evt_1"}`)
	bodySig := s.BodySignature(body)
	if !s.VerifyWebhookSignature(body, bodySig) {
		t.Fatal("webhook signature rejected")
	}
	if s.VerifyWebhookSignature([]byte(`{"id":"evt_2"}`), bodySig) {
		t.Fatal("tampered body accepted")
	}
	if NewSigner("").VerifyWebhookSignature(body, NewSigner("").BodySignature(body)) {
		t.Fatal("empty secret must never verify")
	}
}

func TestBreaker(t *testing.T) {
	clk := clock.NewFixed(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	b := NewBreaker(2, time.Minute, clk)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if err := b.Execute(func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("state %v, want open", b.State())
	}

	called := false
	if err := b.Execute(func() error { called = true; return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("want ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Fatal("fn ran while open")
	}

	clk.Advance(2 * time.Minute)
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("half-open call: %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("state %v, want closed", b.State())
	}
}

func TestSandbox_OrderReuseAndFailure(t *testing.T) {
	sb := NewSandbox("whsec")
	ctx := context.Background()

	req := payment.OrderRequest{AmountMinor: 1155, Currency: "BRL", Receipt: "ap-1"}
	o1, err := sb.CreateOrder(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	o2, err := sb.CreateOrder(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if o1.ID != o2.ID {
		t.Fatalf("retry with same receipt made a new order: %s vs %s", o1.ID, o2.ID)
	}

	sb.FailNext = true
	if _, err := sb.CreateOrder(ctx, req); !httperr.IsKind(err, httperr.KindGateway) {
		t.Fatalf("want gateway error, got %v", err)
	}

	amount := int64(500)
	res, err := sb.Refund(ctx, "pay_1", &amount)
	if err != nil || res.Amount != 500 || sb.Refunded("pay_1") != 500 {
		t.Fatalf("refund: %+v %v", res, err)
	}
}
