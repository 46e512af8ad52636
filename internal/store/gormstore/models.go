package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LedgerEntry mirrors the ledger_entries table. Rows are append-only.
type LedgerEntry struct {
	EntryID   string         `gorm:"type:uuid;primaryKey"`
	UserID    string         `gorm:"not null;index:idx_ledger_user_created,priority:1"`
	Type      string         `gorm:"not null"`
	Amount    int64          `gorm:"not null"`
	Ref       string         `gorm:"not null"`
	Metadata  datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null;index:idx_ledger_user_created,priority:2"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

func (entry *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	return nil
}

// Article mirrors the articles table.
type Article struct {
	ArticleID string    `gorm:"type:uuid;primaryKey"`
	AuthorID  string    `gorm:"not null;index"`
	PlaceID   *string   `gorm:"index"`
	Title     string    `gorm:""`
	Content   string    `gorm:""`
	IsPremium bool      `gorm:"not null;default:false"`
	Price     int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Article) TableName() string { return "articles" }

func (article *Article) BeforeCreate(tx *gorm.DB) error {
	if article.ArticleID == "" {
		article.ArticleID = uuid.NewString()
	}
	return nil
}

// ArticleUnlock mirrors the article_unlocks table. No uniqueness over
// (article_id, user_id): repeat unlocks append repeat rows.
type ArticleUnlock struct {
	UnlockID   string    `gorm:"type:uuid;primaryKey"`
	ArticleID  string    `gorm:"not null;index:idx_unlocks_article_user,priority:1"`
	UserID     string    `gorm:"not null;index:idx_unlocks_article_user,priority:2"`
	UnlockedAt time.Time `gorm:"not null"`
}

func (ArticleUnlock) TableName() string { return "article_unlocks" }

func (unlock *ArticleUnlock) BeforeCreate(tx *gorm.DB) error {
	if unlock.UnlockID == "" {
		unlock.UnlockID = uuid.NewString()
	}
	return nil
}

// Hold mirrors the holds table. The partial unique index over place_id keeps
// at most one unreleased hold per place; expired holds are released in the
// same transaction that checks the invariant, so the index stays truthful.
type Hold struct {
	HoldID     string     `gorm:"type:uuid;primaryKey"`
	UserID     string     `gorm:"not null;index"`
	PlaceID    string     `gorm:"not null;index:uniq_holds_active_place,unique,where:released_at IS NULL"`
	StartedAt  time.Time  `gorm:"not null"`
	ExpiresAt  time.Time  `gorm:"not null"`
	ReleasedAt *time.Time `gorm:""`
}

func (Hold) TableName() string { return "holds" }

func (hold *Hold) BeforeCreate(tx *gorm.DB) error {
	if hold.HoldID == "" {
		hold.HoldID = uuid.NewString()
	}
	return nil
}

// Quest mirrors the quests table.
type Quest struct {
	QuestID   string `gorm:"type:uuid;primaryKey"`
	SortOrder int    `gorm:"not null;index"`
	Title     string `gorm:""`
	Reward    int64  `gorm:"not null;default:0"`
}

func (Quest) TableName() string { return "quests" }

func (quest *Quest) BeforeCreate(tx *gorm.DB) error {
	if quest.QuestID == "" {
		quest.QuestID = uuid.NewString()
	}
	return nil
}

// QuestProgress mirrors the quest_progress table, unique per (user, quest).
type QuestProgress struct {
	UserID      string     `gorm:"primaryKey"`
	QuestID     string     `gorm:"primaryKey"`
	Completed   bool       `gorm:"not null;default:false"`
	CompletedAt *time.Time `gorm:""`
}

func (QuestProgress) TableName() string { return "quest_progress" }

// PaymentOrder mirrors the payment_orders table.
type PaymentOrder struct {
	OrderID   string    `gorm:"type:uuid;primaryKey"`
	UserID    string    `gorm:"not null;index"`
	Amount    int64     `gorm:"not null"`
	Provider  string    `gorm:""`
	Status    string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (PaymentOrder) TableName() string { return "payment_orders" }

func (order *PaymentOrder) BeforeCreate(tx *gorm.DB) error {
	if order.OrderID == "" {
		order.OrderID = uuid.NewString()
	}
	return nil
}

// Suggestion mirrors the suggestions table.
type Suggestion struct {
	SuggestionID string    `gorm:"type:uuid;primaryKey"`
	ArticleID    string    `gorm:"not null;index:idx_suggestions_article_user,priority:1"`
	UserID       string    `gorm:"not null;index:idx_suggestions_article_user,priority:2"`
	Content      string    `gorm:""`
	State        string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (Suggestion) TableName() string { return "suggestions" }

func (record *Suggestion) BeforeCreate(tx *gorm.DB) error {
	if record.SuggestionID == "" {
		record.SuggestionID = uuid.NewString()
	}
	return nil
}
