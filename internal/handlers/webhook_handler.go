package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	ucPayment "github.com/BruksfildServices01/salon-booking/internal/usecase/payment"
)

const SignatureHeader = "X-Webhook-Signature"

// maxWebhookBody bounds the raw body read before signature checking.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	handle *ucPayment.HandleWebhook
	log    *zap.Logger
}

func NewWebhookHandler(handle *ucPayment.HandleWebhook, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{handle: handle, log: log}
}

// Payments verifies the signature over the exact bytes received, so the body
// is read raw and never re-encoded.
func (h *WebhookHandler) Payments(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)

	raw, err := c.GetRawData()
	if err != nil {
		httperr.BadRequest(c, "invalid_payload", "Could not read body.")
		return
	}

	if err := h.handle.Execute(c.Request.Context(), raw, c.GetHeader(SignatureHeader)); err != nil {
		httperr.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
