package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/knowshare/walletd/pkg/suggestion"
	"github.com/knowshare/walletd/pkg/wallet"
)

type transferRequest struct {
	ToUserID string `json:"toId" binding:"required"`
	Amount   int64  `json:"amount" binding:"required"`
}

type chargeRequest struct {
	Amount   int64  `json:"amount" binding:"required"`
	Provider string `json:"provider"`
}

type premiumRequest struct {
	Price int64 `json:"price"`
}

type reviewRequest struct {
	Title   string `json:"title"`
	Content string `json:"content" binding:"required"`
}

type questRequest struct {
	QuestID string `json:"questId" binding:"required"`
}

type suggestionRequest struct {
	Content string `json:"content" binding:"required"`
}

type suggestionReviewRequest struct {
	Action string `json:"action" binding:"required"`
}

func (handler *httpHandler) handleWallet(ctx *gin.Context) {
	userID := authedUserID(ctx)
	balance, err := handler.service.Balance(ctx.Request.Context(), userID)
	if err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	entries, err := handler.service.History(ctx.Request.Context(), userID, handler.cfg.HistoryLimit)
	if err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	payload := make([]entryPayload, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, mapEntry(entry))
	}
	ctx.JSON(http.StatusOK, gin.H{
		"balance": gin.H{"coins": balance},
		"entries": payload,
	})
}

func (handler *httpHandler) handleCharge(ctx *gin.Context) {
	var request chargeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidPayload, "expected JSON body"))
		return
	}
	order, err := handler.service.CreateChargeOrder(ctx.Request.Context(), authedUserID(ctx), request.Amount, request.Provider)
	if err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"orderId": order.OrderID})
}

func (handler *httpHandler) handleTransfer(ctx *gin.Context) {
	var request transferRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidPayload, "expected JSON body"))
		return
	}
	if err := handler.service.Transfer(ctx.Request.Context(), authedUserID(ctx), request.ToUserID, request.Amount); err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Transfer completed"})
}

func (handler *httpHandler) handlePremiumUpgrade(ctx *gin.Context) {
	var request premiumRequest
	if err := ctx.ShouldBindJSON(&request); err != nil && ctx.Request.ContentLength > 0 {
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidPayload, "expected JSON body"))
		return
	}
	if err := handler.service.UpgradePremium(ctx.Request.Context(), authedUserID(ctx), ctx.Param("id"), request.Price); err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Article upgraded to premium"})
}

func (handler *httpHandler) handleUnlock(ctx *gin.Context) {
	authorShare, err := handler.service.UnlockArticle(ctx.Request.Context(), authedUserID(ctx), ctx.Param("id"))
	if err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Article unlocked", "authorShare": authorShare})
}

func (handler *httpHandler) handleCreateHold(ctx *gin.Context) {
	hold, err := handler.service.CreateHold(ctx.Request.Context(), authedUserID(ctx), ctx.Param("id"))
	if err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"hold": mapHold(hold)})
}

func (handler *httpHandler) handleSubmitHold(ctx *gin.Context) {
	var request reviewRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidPayload, "expected JSON body"))
		return
	}
	review, err := handler.service.SubmitHold(ctx.Request.Context(), authedUserID(ctx), ctx.Param("hid"), wallet.ReviewDraft{
		Title:   request.Title,
		Content: request.Content,
	})
	if err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"review": mapArticle(review)})
}

func (handler *httpHandler) handleCancelHold(ctx *gin.Context) {
	if err := handler.service.CancelHold(ctx.Request.Context(), authedUserID(ctx), ctx.Param("hid")); err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Hold cancelled"})
}

func (handler *httpHandler) handleListQuests(ctx *gin.Context) {
	quests, err := handler.service.ListQuests(ctx.Request.Context())
	if err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	payload := make([]questPayload, 0, len(quests))
	for _, quest := range quests {
		payload = append(payload, mapQuest(quest))
	}
	ctx.JSON(http.StatusOK, gin.H{"quests": payload})
}

func (handler *httpHandler) handleQuestProgress(ctx *gin.Context) {
	progress, err := handler.service.QuestProgress(ctx.Request.Context(), authedUserID(ctx))
	if err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	payload := make([]progressPayload, 0, len(progress))
	for _, row := range progress {
		payload = append(payload, mapProgress(row))
	}
	ctx.JSON(http.StatusOK, gin.H{"progress": payload})
}

func (handler *httpHandler) handleCompleteQuest(ctx *gin.Context) {
	var request questRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidPayload, "expected JSON body"))
		return
	}
	reward, err := handler.service.CompleteQuest(ctx.Request.Context(), authedUserID(ctx), request.QuestID)
	if err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Quest completed", "reward": reward})
}

func (handler *httpHandler) handleSubmitSuggestion(ctx *gin.Context) {
	var request suggestionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidPayload, "expected JSON body"))
		return
	}
	record, err := handler.service.SubmitSuggestion(ctx.Request.Context(), authedUserID(ctx), ctx.Param("id"), request.Content)
	if err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"suggestion": mapSuggestion(record)})
}

func (handler *httpHandler) handleReviewSuggestion(ctx *gin.Context) {
	var request suggestionReviewRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidPayload, "expected JSON body"))
		return
	}
	action, err := suggestion.ParseAction(request.Action)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(codeInvalidPayload, "unknown action"))
		return
	}
	state, err := handler.service.ReviewSuggestion(ctx.Request.Context(), authedUserID(ctx), ctx.Param("sid"), action)
	if err != nil {
		handler.respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"state": state.String()})
}

type entryPayload struct {
	EntryID        string `json:"entry_id"`
	Type           string `json:"type"`
	Amount         int64  `json:"amount"`
	Ref            string `json:"ref"`
	CreatedUnixUTC int64  `json:"created_unix_utc"`
}

type holdPayload struct {
	HoldID         string `json:"hold_id"`
	PlaceID        string `json:"place_id"`
	StartedUnixUTC int64  `json:"started_unix_utc"`
	ExpiresUnixUTC int64  `json:"expires_unix_utc"`
}

type articlePayload struct {
	ArticleID string `json:"article_id"`
	AuthorID  string `json:"author_id"`
	PlaceID   string `json:"place_id,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

type questPayload struct {
	QuestID string `json:"quest_id"`
	Order   int    `json:"order"`
	Title   string `json:"title"`
	Reward  int64  `json:"reward"`
}

type progressPayload struct {
	QuestID          string `json:"quest_id"`
	Completed        bool   `json:"completed"`
	CompletedUnixUTC int64  `json:"completed_unix_utc,omitempty"`
}

type suggestionPayload struct {
	SuggestionID string `json:"suggestion_id"`
	ArticleID    string `json:"article_id"`
	State        string `json:"state"`
}

func mapEntry(entry wallet.Entry) entryPayload {
	return entryPayload{
		EntryID:        entry.EntryID,
		Type:           string(entry.Type),
		Amount:         entry.Amount,
		Ref:            string(entry.Ref),
		CreatedUnixUTC: entry.CreatedUnixUTC,
	}
}

func mapHold(hold wallet.Hold) holdPayload {
	return holdPayload{
		HoldID:         hold.HoldID,
		PlaceID:        hold.PlaceID,
		StartedUnixUTC: hold.StartedUnixUTC,
		ExpiresUnixUTC: hold.ExpiresUnixUTC,
	}
}

func mapArticle(article wallet.Article) articlePayload {
	return articlePayload{
		ArticleID: article.ArticleID,
		AuthorID:  article.AuthorID,
		PlaceID:   article.PlaceID,
		Title:     article.Title,
		Content:   article.Content,
	}
}

func mapQuest(quest wallet.Quest) questPayload {
	return questPayload{
		QuestID: quest.QuestID,
		Order:   quest.Order,
		Title:   quest.Title,
		Reward:  quest.Reward,
	}
}

func mapProgress(progress wallet.QuestProgress) progressPayload {
	return progressPayload{
		QuestID:          progress.QuestID,
		Completed:        progress.Completed,
		CompletedUnixUTC: progress.CompletedUnixUTC,
	}
}

func mapSuggestion(record wallet.Suggestion) suggestionPayload {
	return suggestionPayload{
		SuggestionID: record.SuggestionID,
		ArticleID:    record.ArticleID,
		State:        record.State.String(),
	}
}
