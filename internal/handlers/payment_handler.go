package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-booking/internal/dto"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/money"
	ucPayment "github.com/BruksfildServices01/salon-booking/internal/usecase/payment"
)

type PaymentHandler struct {
	initiate *ucPayment.InitiatePayment
	verify   *ucPayment.VerifyPayment
	refund   *ucPayment.RefundPayment
	log      *zap.Logger
}

func NewPaymentHandler(
	initiate *ucPayment.InitiatePayment,
	verify *ucPayment.VerifyPayment,
	refund *ucPayment.RefundPayment,
	log *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		initiate: initiate,
		verify:   verify,
		refund:   refund,
		log:      log,
	}
}

type InitiatePaymentRequest struct {
	Method string `json:"method"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type RefundPaymentRequest struct {
	Reason string `json:"reason"`
	// Amount is a decimal string; empty refunds the full total.
	Amount string `json:"amount"`
}

func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req InitiatePaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "invalid_request", "Invalid request body.")
			return
		}
	}

	out, err := h.initiate.Execute(c.Request.Context(), ucPayment.InitiateInput{
		AppointmentID: c.Param("id"),
		ActorID:       middleware.ActorID(c),
		Method:        req.Method,
	})
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.Created(c, dto.InitiatePaymentDTO{
		Payment:        dto.Payment(out.Payment),
		GatewayOrderID: out.GatewayOrderID,
		Amount:         money.Format(out.Amount),
		AmountMinor:    out.Amount,
		Currency:       out.Currency,
		CheckoutURL:    out.CheckoutURL,
	})
}

func (h *PaymentHandler) Verify(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "order_id, payment_id and signature are required.")
		return
	}

	p, err := h.verify.Execute(c.Request.Context(), ucPayment.VerifyInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.OK(c, dto.Payment(p))
}

func (h *PaymentHandler) Refund(c *gin.Context) {
	var req RefundPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "invalid_request", "Invalid request body.")
			return
		}
	}

	in := ucPayment.RefundInput{
		PaymentID: c.Param("id"),
		ActorID:   middleware.ActorID(c),
		Reason:    req.Reason,
	}
	if req.Amount != "" {
		amount, err := money.Parse(req.Amount)
		if err != nil {
			httperr.BadRequest(c, "invalid_refund_amount", "amount must be a decimal like 10.50.")
			return
		}
		in.Amount = &amount
	}

	p, err := h.refund.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	httpresp.OK(c, dto.Payment(p))
}
