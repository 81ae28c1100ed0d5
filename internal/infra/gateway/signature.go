package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer computes the HMAC-SHA256 signatures shared by the checkout
// callback and the webhook channel.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) Signer {
	return Signer{secret: []byte(secret)}
}

func (s Signer) sum(data []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// CheckoutSignature signs "orderID|paymentID".
func (s Signer) CheckoutSignature(orderID, paymentID string) string {
	return s.sum([]byte(orderID + "|" + paymentID))
}

func (s Signer) BodySignature(raw []byte) string {
	return s.sum(raw)
}

func (s Signer) VerifySignature(orderID, paymentID, signature string) bool {
	if len(s.secret) == 0 || signature == "" {
		return false
	}
	return hmac.Equal([]byte(s.CheckoutSignature(orderID, paymentID)), []byte(signature))
}

func (s Signer) VerifyWebhookSignature(raw []byte, signature string) bool {
	if len(s.secret) == 0 || signature == "" {
		return false
	}
	return hmac.Equal([]byte(s.BodySignature(raw)), []byte(signature))
}
