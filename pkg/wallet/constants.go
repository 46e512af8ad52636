package wallet

const (
	// PremiumUpgradeFee is the flat coin cost for converting an article to
	// premium. Independent from the listing price the author sets.
	PremiumUpgradeFee int64 = 150
	// HoldDeposit is the refundable coin deposit for reserving a place.
	HoldDeposit int64 = 50
	// SuggestionFee is the coin cost of filing an edit suggestion.
	SuggestionFee int64 = 10

	// royaltyPercent is the author's share of every unlock, floored.
	royaltyPercent int64 = 20

	// holdWindowSeconds is how long a hold blocks a place (72 hours).
	holdWindowSeconds int64 = 72 * 60 * 60

	operationGrant            = "grant"
	operationTransfer         = "transfer"
	operationUpgradePremium   = "upgrade_premium"
	operationUnlockArticle    = "unlock_article"
	operationCreateHold       = "create_hold"
	operationSubmitHold       = "submit_hold"
	operationCancelHold       = "cancel_hold"
	operationCompleteQuest    = "complete_quest"
	operationCreateOrder      = "create_order"
	operationSettleOrder      = "settle_order"
	operationSubmitSuggestion = "submit_suggestion"
	operationReviewSuggestion = "review_suggestion"

	operationStatusOK    = "ok"
	operationStatusError = "error"
)
