package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/knowshare/walletd/pkg/suggestion"
)

// EntryType is the sign of a ledger movement.
type EntryType string

const (
	EntryDebit  EntryType = "debit"
	EntryCredit EntryType = "credit"
)

// Ref is the reason code recorded on every ledger entry.
type Ref string

const (
	RefWalletCharge   Ref = "wallet_charge"
	RefWalletTransfer Ref = "wallet_transfer"
	RefPremiumArticle Ref = "premium_article"
	RefUnlockArticle  Ref = "unlock_article"
	RefPremiumRoyalty Ref = "premium_royalty"
	RefHoldPlace      Ref = "hold_place"
	RefHoldRefund     Ref = "hold_refund"
	RefQuestReward    Ref = "quest_reward"
	RefSuggestion     Ref = "suggestion"
)

// Entry is a single immutable line in the coin ledger.
type Entry struct {
	EntryID        string
	UserID         string
	Type           EntryType
	Amount         int64
	Ref            Ref
	MetadataJSON   string
	CreatedUnixUTC int64
}

// Article is the unit of premium content gated by the unlock flow.
type Article struct {
	ArticleID string
	AuthorID  string
	PlaceID   string
	Title     string
	Content   string
	IsPremium bool
	Price     int64
}

// Unlock is a permanent access grant to a premium article.
type Unlock struct {
	UnlockID        string
	ArticleID       string
	UserID          string
	UnlockedUnixUTC int64
}

// Hold is a time-boxed reservation of a place paid with a refundable deposit.
// ReleasedUnixUTC of zero means the hold has not been released.
type Hold struct {
	HoldID          string
	UserID          string
	PlaceID         string
	StartedUnixUTC  int64
	ExpiresUnixUTC  int64
	ReleasedUnixUTC int64
}

// Active reports whether the hold still blocks the place at the given time.
func (hold Hold) Active(atUnixUTC int64) bool {
	return hold.ReleasedUnixUTC == 0 && hold.ExpiresUnixUTC > atUnixUTC
}

// Quest is a one-time completable task with a fixed coin reward.
type Quest struct {
	QuestID string
	Order   int
	Title   string
	Reward  int64
}

// QuestProgress tracks a user's completion of a quest.
type QuestProgress struct {
	UserID           string
	QuestID          string
	Completed        bool
	CompletedUnixUTC int64
}

// OrderStatus is the lifecycle of a wallet charge order.
type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderSuccess OrderStatus = "success"
)

// PaymentOrder is a pending top-up awaiting webhook settlement.
type PaymentOrder struct {
	OrderID        string
	UserID         string
	Amount         int64
	Provider       string
	Status         OrderStatus
	CreatedUnixUTC int64
}

// ReviewDraft is the user-supplied content of a hold-linked review.
type ReviewDraft struct {
	Title   string
	Content string
}

// Suggestion is a proposed edit to an article, tracked through review states.
type Suggestion struct {
	SuggestionID   string
	ArticleID      string
	UserID         string
	Content        string
	State          suggestion.State
	CreatedUnixUTC int64
}

// Store is the persistence contract used by Service. Implementations must
// run the callback passed to WithTx inside a single database transaction.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error

	InsertEntry(ctx context.Context, entry Entry) error
	SumBalance(ctx context.Context, userID string) (int64, error)
	ListEntries(ctx context.Context, userID string, limit int) ([]Entry, error)

	GetArticle(ctx context.Context, articleID string) (Article, error)
	InsertArticle(ctx context.Context, article Article) (Article, error)
	SetArticlePremium(ctx context.Context, articleID string, price int64) error
	InsertUnlock(ctx context.Context, unlock Unlock) error

	InsertHold(ctx context.Context, hold Hold) (Hold, error)
	GetHold(ctx context.Context, holdID string) (Hold, error)
	ReleaseExpiredHolds(ctx context.Context, placeID string, nowUnixUTC int64) error
	HasActiveHold(ctx context.Context, placeID string, nowUnixUTC int64) (bool, error)
	ReleaseHold(ctx context.Context, holdID string, nowUnixUTC int64) (bool, error)

	ListQuests(ctx context.Context) ([]Quest, error)
	GetQuest(ctx context.Context, questID string) (Quest, error)
	ListQuestProgress(ctx context.Context, userID string) ([]QuestProgress, error)
	GetQuestProgress(ctx context.Context, userID string, questID string) (QuestProgress, error)
	MarkQuestCompleted(ctx context.Context, userID string, questID string, nowUnixUTC int64) (bool, error)

	InsertPaymentOrder(ctx context.Context, order PaymentOrder) (PaymentOrder, error)
	GetPaymentOrder(ctx context.Context, orderID string) (PaymentOrder, error)
	SettlePaymentOrder(ctx context.Context, orderID string) (bool, error)

	HasOpenSuggestion(ctx context.Context, articleID string, userID string) (bool, error)
	InsertSuggestion(ctx context.Context, record Suggestion) (Suggestion, error)
	GetSuggestion(ctx context.Context, suggestionID string) (Suggestion, error)
	UpdateSuggestionState(ctx context.Context, suggestionID string, from, to suggestion.State) error
}

func validateID(raw string, invalid error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty value", invalid)
	}
	return trimmed, nil
}

func validateAmount(raw int64) (int64, error) {
	if raw <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return raw, nil
}

func normalizeMetadata(raw string) (string, error) {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		normalized = "{}"
	}
	if !json.Valid([]byte(normalized)) {
		return "", fmt.Errorf("%w: must be valid json", ErrInvalidMetadataJSON)
	}
	return normalized, nil
}

func metadataFor(pairs map[string]string) string {
	if len(pairs) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(pairs)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
