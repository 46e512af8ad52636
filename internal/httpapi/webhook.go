package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// headerPaymentSignature carries the provider's HMAC-SHA256 hex digest of
// the raw request body.
const headerPaymentSignature = "X-Payment-Signature"

type webhookPayload struct {
	OrderID string `json:"orderId"`
}

// handlePaymentWebhook settles a pending charge order. The signature is
// verified over the exact bytes the signer produced, before any parsing,
// with a constant-time compare.
func (handler *httpHandler) handlePaymentWebhook(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidPayload, "unreadable body"))
		return
	}
	signature := ctx.GetHeader(headerPaymentSignature)
	if !verifySignature(body, signature, handler.cfg.WebhookSecret) {
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidSignature, "invalid signature"))
		return
	}
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.OrderID == "" {
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidPayload, "expected JSON body"))
		return
	}
	if _, err := handler.service.SettleChargeOrder(ctx.Request.Context(), payload.OrderID); err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Payment processed"})
}

func verifySignature(body []byte, signature string, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, provided)
}
