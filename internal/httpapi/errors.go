package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/knowshare/walletd/pkg/wallet"
	"go.uber.org/zap"
)

const (
	codeUnauthorized     = "unauthorized"
	codeForbidden        = "forbidden"
	codeNotFound         = "not_found"
	codeInsufficientCoin = "insufficient_coin"
	codeSelfTransfer     = "self_transfer"
	codePlaceHeld        = "place_held"
	codeInvalidHold      = "invalid_hold"
	codeQuestUnavailable = "quest_unavailable"
	codeInvalidOrder     = "invalid_order"
	codeSuggestionOpen   = "suggestion_open"
	codeInvalidSignature = "invalid_signature"
	codeInvalidPayload   = "invalid_payload"
	codeInternal         = "internal_error"
)

// errorResponse is the uniform error envelope used by every endpoint.
func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

func abortWithError(ctx *gin.Context, status int, code string, message string) {
	ctx.AbortWithStatusJSON(status, errorResponse(code, message))
}

// respondDomainError maps a wallet domain error onto the envelope. Internal
// failures are reported without their underlying message.
func (handler *httpHandler) respondDomainError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, wallet.ErrInsufficientFunds):
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInsufficientCoin, "not enough coin"))
	case errors.Is(err, wallet.ErrSelfTransfer):
		ctx.JSON(http.StatusBadRequest, errorResponse(codeSelfTransfer, "cannot transfer to yourself"))
	case errors.Is(err, wallet.ErrNotAuthor):
		ctx.JSON(http.StatusForbidden, errorResponse(codeForbidden, "not allowed"))
	case errors.Is(err, wallet.ErrUnknownArticle), errors.Is(err, wallet.ErrArticleNotPremium):
		ctx.JSON(http.StatusNotFound, errorResponse(codeNotFound, "not premium article"))
	case errors.Is(err, wallet.ErrPlaceHeld):
		ctx.JSON(http.StatusConflict, errorResponse(codePlaceHeld, "place already held"))
	case errors.Is(err, wallet.ErrHoldUnavailable):
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidHold, "invalid or expired hold"))
	case errors.Is(err, wallet.ErrQuestUnavailable), errors.Is(err, wallet.ErrUnknownQuest):
		ctx.JSON(http.StatusBadRequest, errorResponse(codeQuestUnavailable, "quest not available or already completed"))
	case errors.Is(err, wallet.ErrUnknownOrder), errors.Is(err, wallet.ErrOrderSettled):
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidOrder, "invalid order"))
	case errors.Is(err, wallet.ErrSuggestionOpen):
		ctx.JSON(http.StatusConflict, errorResponse(codeSuggestionOpen, "open suggestion already exists"))
	case errors.Is(err, wallet.ErrUnknownSuggestion):
		ctx.JSON(http.StatusNotFound, errorResponse(codeNotFound, "suggestion not found"))
	case errors.Is(err, wallet.ErrInvalidUserID),
		errors.Is(err, wallet.ErrInvalidArticleID),
		errors.Is(err, wallet.ErrInvalidPlaceID),
		errors.Is(err, wallet.ErrInvalidHoldID),
		errors.Is(err, wallet.ErrInvalidQuestID),
		errors.Is(err, wallet.ErrInvalidOrderID),
		errors.Is(err, wallet.ErrInvalidSuggestionID),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, wallet.ErrInvalidContent),
		errors.Is(err, wallet.ErrInvalidMetadataJSON):
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidPayload, "invalid request"))
	default:
		handler.logger.Error("request failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse(codeInternal, "internal error"))
	}
}
