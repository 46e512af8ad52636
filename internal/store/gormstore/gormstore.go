package gormstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/knowshare/walletd/pkg/suggestion"
	"github.com/knowshare/walletd/pkg/wallet"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	constraintActivePlaceHold  = "uniq_holds_active_place"
	defaultMetadataJSON        = "{}"
	pgUniqueViolationCode      = "23505"
	pgSerializationFailureCode = "40001"
	sqliteUniqueViolationCode  = 2067
	transactionAttempts        = 3
	errorOperationStore        = "store"
	errorSubjectArticle        = "article"
	errorSubjectBalance        = "balance"
	errorSubjectEntry          = "entry"
	errorSubjectHold           = "hold"
	errorSubjectOrder          = "order"
	errorSubjectQuest          = "quest"
	errorSubjectSuggestion     = "suggestion"
	errorSubjectUnlock         = "unlock"
	errorCodeCreate            = "create"
	errorCodeDuplicate         = "duplicate"
	errorCodeGet               = "get"
	errorCodeInsert            = "insert"
	errorCodeInvalid           = "invalid"
	errorCodeList              = "list"
	errorCodeRelease           = "release"
	errorCodeSettle            = "settle"
	errorCodeSum               = "sum"
	errorCodeUpdate            = "update"
)

// Store implements wallet.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the schema for every owned table.
func (store *Store) Migrate() error {
	return store.db.AutoMigrate(
		&LedgerEntry{},
		&Article{},
		&ArticleUnlock{},
		&Hold{},
		&Quest{},
		&QuestProgress{},
		&PaymentOrder{},
		&Suggestion{},
	)
}

// WithTx executes fn within a serializable transaction, so a balance read
// and the writes that depend on it cannot interleave with a concurrent
// commit. Postgres gets the isolation level explicitly and a retry on
// serialization failure; sqlite transactions are serializable already.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore wallet.Store) error) error {
	var options []*sql.TxOptions
	if store.db.Dialector.Name() == "postgres" {
		options = append(options, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}
	var err error
	for attempt := 0; attempt < transactionAttempts; attempt++ {
		err = store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
			return fn(ctx, &Store{db: transaction})
		}, options...)
		if !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

func (store *Store) InsertEntry(ctx context.Context, entry wallet.Entry) error {
	createdAt := time.Now().UTC()
	if entry.CreatedUnixUTC != 0 {
		createdAt = time.Unix(entry.CreatedUnixUTC, 0).UTC()
	}
	row := LedgerEntry{
		EntryID:   entry.EntryID,
		UserID:    entry.UserID,
		Type:      string(entry.Type),
		Amount:    entry.Amount,
		Ref:       string(entry.Ref),
		Metadata:  datatypesJSON(entry.MetadataJSON),
		CreatedAt: createdAt,
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return wrapStoreError(errorSubjectEntry, errorCodeInsert, err)
	}
	return nil
}

func (store *Store) SumBalance(ctx context.Context, userID string) (int64, error) {
	var sum sqlSum
	err := store.db.WithContext(ctx).
		Model(&LedgerEntry{}).
		Select("coalesce(sum(case when type = 'credit' then amount else -amount end),0) as total").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	if err != nil {
		return 0, wrapStoreError(errorSubjectBalance, errorCodeSum, err)
	}
	return sum.Total, nil
}

func (store *Store) ListEntries(ctx context.Context, userID string, limit int) ([]wallet.Entry, error) {
	var rows []LedgerEntry
	err := store.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectEntry, errorCodeList, err)
	}
	entries := make([]wallet.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, wallet.Entry{
			EntryID:        row.EntryID,
			UserID:         row.UserID,
			Type:           wallet.EntryType(row.Type),
			Amount:         row.Amount,
			Ref:            wallet.Ref(row.Ref),
			MetadataJSON:   string(row.Metadata),
			CreatedUnixUTC: row.CreatedAt.Unix(),
		})
	}
	return entries, nil
}

func (store *Store) GetArticle(ctx context.Context, articleID string) (wallet.Article, error) {
	var row Article
	err := store.db.WithContext(ctx).Where("article_id = ?", articleID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wallet.Article{}, wrapStoreError(errorSubjectArticle, errorCodeGet, wallet.ErrUnknownArticle)
		}
		return wallet.Article{}, wrapStoreError(errorSubjectArticle, errorCodeGet, err)
	}
	return mapArticle(row), nil
}

func (store *Store) InsertArticle(ctx context.Context, article wallet.Article) (wallet.Article, error) {
	row := Article{
		ArticleID: article.ArticleID,
		AuthorID:  article.AuthorID,
		PlaceID:   optionalString(article.PlaceID),
		Title:     article.Title,
		Content:   article.Content,
		IsPremium: article.IsPremium,
		Price:     article.Price,
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return wallet.Article{}, wrapStoreError(errorSubjectArticle, errorCodeCreate, err)
	}
	return mapArticle(row), nil
}

func (store *Store) SetArticlePremium(ctx context.Context, articleID string, price int64) error {
	result := store.db.WithContext(ctx).
		Model(&Article{}).
		Where("article_id = ?", articleID).
		Updates(map[string]interface{}{"is_premium": true, "price": price})
	if result.Error != nil {
		return wrapStoreError(errorSubjectArticle, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectArticle, errorCodeUpdate, wallet.ErrUnknownArticle)
	}
	return nil
}

func (store *Store) InsertUnlock(ctx context.Context, unlock wallet.Unlock) error {
	row := ArticleUnlock{
		ArticleID:  unlock.ArticleID,
		UserID:     unlock.UserID,
		UnlockedAt: time.Unix(unlock.UnlockedUnixUTC, 0).UTC(),
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return wrapStoreError(errorSubjectUnlock, errorCodeInsert, err)
	}
	return nil
}

func (store *Store) InsertHold(ctx context.Context, hold wallet.Hold) (wallet.Hold, error) {
	row := Hold{
		UserID:    hold.UserID,
		PlaceID:   hold.PlaceID,
		StartedAt: time.Unix(hold.StartedUnixUTC, 0).UTC(),
		ExpiresAt: time.Unix(hold.ExpiresUnixUTC, 0).UTC(),
	}
	err := store.db.WithContext(ctx).Create(&row).Error
	if isUniqueViolation(err, constraintActivePlaceHold) {
		return wallet.Hold{}, wrapStoreError(errorSubjectHold, errorCodeDuplicate, wallet.ErrPlaceHeld)
	}
	if err != nil {
		return wallet.Hold{}, wrapStoreError(errorSubjectHold, errorCodeCreate, err)
	}
	return mapHold(row), nil
}

func (store *Store) GetHold(ctx context.Context, holdID string) (wallet.Hold, error) {
	var row Hold
	err := store.db.WithContext(ctx).Where("hold_id = ?", holdID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wallet.Hold{}, wrapStoreError(errorSubjectHold, errorCodeGet, wallet.ErrHoldUnavailable)
		}
		return wallet.Hold{}, wrapStoreError(errorSubjectHold, errorCodeGet, err)
	}
	return mapHold(row), nil
}

func (store *Store) ReleaseExpiredHolds(ctx context.Context, placeID string, nowUnixUTC int64) error {
	at := time.Unix(nowUnixUTC, 0).UTC()
	err := store.db.WithContext(ctx).
		Model(&Hold{}).
		Where("place_id = ? AND released_at IS NULL AND expires_at <= ?", placeID, at).
		Update("released_at", at).Error
	if err != nil {
		return wrapStoreError(errorSubjectHold, errorCodeRelease, err)
	}
	return nil
}

func (store *Store) HasActiveHold(ctx context.Context, placeID string, nowUnixUTC int64) (bool, error) {
	at := time.Unix(nowUnixUTC, 0).UTC()
	var count int64
	err := store.db.WithContext(ctx).
		Model(&Hold{}).
		Where("place_id = ? AND released_at IS NULL AND expires_at > ?", placeID, at).
		Count(&count).Error
	if err != nil {
		return false, wrapStoreError(errorSubjectHold, errorCodeGet, err)
	}
	return count > 0, nil
}

func (store *Store) ReleaseHold(ctx context.Context, holdID string, nowUnixUTC int64) (bool, error) {
	at := time.Unix(nowUnixUTC, 0).UTC()
	result := store.db.WithContext(ctx).
		Model(&Hold{}).
		Where("hold_id = ? AND released_at IS NULL", holdID).
		Update("released_at", at)
	if result.Error != nil {
		return false, wrapStoreError(errorSubjectHold, errorCodeRelease, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (store *Store) ListQuests(ctx context.Context) ([]wallet.Quest, error) {
	var rows []Quest
	err := store.db.WithContext(ctx).Order("sort_order ASC").Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectQuest, errorCodeList, err)
	}
	quests := make([]wallet.Quest, 0, len(rows))
	for _, row := range rows {
		quests = append(quests, mapQuest(row))
	}
	return quests, nil
}

func (store *Store) GetQuest(ctx context.Context, questID string) (wallet.Quest, error) {
	var row Quest
	err := store.db.WithContext(ctx).Where("quest_id = ?", questID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wallet.Quest{}, wrapStoreError(errorSubjectQuest, errorCodeGet, wallet.ErrUnknownQuest)
		}
		return wallet.Quest{}, wrapStoreError(errorSubjectQuest, errorCodeGet, err)
	}
	return mapQuest(row), nil
}

func (store *Store) ListQuestProgress(ctx context.Context, userID string) ([]wallet.QuestProgress, error) {
	var rows []QuestProgress
	err := store.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectQuest, errorCodeList, err)
	}
	progress := make([]wallet.QuestProgress, 0, len(rows))
	for _, row := range rows {
		progress = append(progress, mapQuestProgress(row))
	}
	return progress, nil
}

func (store *Store) GetQuestProgress(ctx context.Context, userID string, questID string) (wallet.QuestProgress, error) {
	var row QuestProgress
	err := store.db.WithContext(ctx).Where("user_id = ? AND quest_id = ?", userID, questID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wallet.QuestProgress{}, wrapStoreError(errorSubjectQuest, errorCodeGet, wallet.ErrQuestUnavailable)
		}
		return wallet.QuestProgress{}, wrapStoreError(errorSubjectQuest, errorCodeGet, err)
	}
	return mapQuestProgress(row), nil
}

// MarkQuestCompleted flips the incomplete progress row. The returned flag is
// the rows-affected count, false when another request already completed it.
func (store *Store) MarkQuestCompleted(ctx context.Context, userID string, questID string, nowUnixUTC int64) (bool, error) {
	at := time.Unix(nowUnixUTC, 0).UTC()
	result := store.db.WithContext(ctx).
		Model(&QuestProgress{}).
		Where("user_id = ? AND quest_id = ? AND completed = ?", userID, questID, false).
		Updates(map[string]interface{}{"completed": true, "completed_at": at})
	if result.Error != nil {
		return false, wrapStoreError(errorSubjectQuest, errorCodeUpdate, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (store *Store) InsertPaymentOrder(ctx context.Context, order wallet.PaymentOrder) (wallet.PaymentOrder, error) {
	row := PaymentOrder{
		UserID:   order.UserID,
		Amount:   order.Amount,
		Provider: order.Provider,
		Status:   string(order.Status),
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return wallet.PaymentOrder{}, wrapStoreError(errorSubjectOrder, errorCodeCreate, err)
	}
	return mapPaymentOrder(row), nil
}

func (store *Store) GetPaymentOrder(ctx context.Context, orderID string) (wallet.PaymentOrder, error) {
	var row PaymentOrder
	err := store.db.WithContext(ctx).Where("order_id = ?", orderID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wallet.PaymentOrder{}, wrapStoreError(errorSubjectOrder, errorCodeGet, wallet.ErrUnknownOrder)
		}
		return wallet.PaymentOrder{}, wrapStoreError(errorSubjectOrder, errorCodeGet, err)
	}
	return mapPaymentOrder(row), nil
}

func (store *Store) SettlePaymentOrder(ctx context.Context, orderID string) (bool, error) {
	result := store.db.WithContext(ctx).
		Model(&PaymentOrder{}).
		Where("order_id = ? AND status = ?", orderID, string(wallet.OrderPending)).
		Update("status", string(wallet.OrderSuccess))
	if result.Error != nil {
		return false, wrapStoreError(errorSubjectOrder, errorCodeSettle, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (store *Store) HasOpenSuggestion(ctx context.Context, articleID string, userID string) (bool, error) {
	var count int64
	err := store.db.WithContext(ctx).
		Model(&Suggestion{}).
		Where("article_id = ? AND user_id = ? AND state IN ?", articleID, userID,
			[]string{suggestion.StatePending.String(), suggestion.StateAppeal.String()}).
		Count(&count).Error
	if err != nil {
		return false, wrapStoreError(errorSubjectSuggestion, errorCodeGet, err)
	}
	return count > 0, nil
}

func (store *Store) InsertSuggestion(ctx context.Context, record wallet.Suggestion) (wallet.Suggestion, error) {
	row := Suggestion{
		ArticleID: record.ArticleID,
		UserID:    record.UserID,
		Content:   record.Content,
		State:     record.State.String(),
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return wallet.Suggestion{}, wrapStoreError(errorSubjectSuggestion, errorCodeCreate, err)
	}
	return mapSuggestion(row)
}

func (store *Store) GetSuggestion(ctx context.Context, suggestionID string) (wallet.Suggestion, error) {
	var row Suggestion
	err := store.db.WithContext(ctx).Where("suggestion_id = ?", suggestionID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wallet.Suggestion{}, wrapStoreError(errorSubjectSuggestion, errorCodeGet, wallet.ErrUnknownSuggestion)
		}
		return wallet.Suggestion{}, wrapStoreError(errorSubjectSuggestion, errorCodeGet, err)
	}
	return mapSuggestion(row)
}

func (store *Store) UpdateSuggestionState(ctx context.Context, suggestionID string, from, to suggestion.State) error {
	result := store.db.WithContext(ctx).
		Model(&Suggestion{}).
		Where("suggestion_id = ? AND state = ?", suggestionID, from.String()).
		Update("state", to.String())
	if result.Error != nil {
		return wrapStoreError(errorSubjectSuggestion, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectSuggestion, errorCodeUpdate, wallet.ErrUnknownSuggestion)
	}
	return nil
}

func wrapStoreError(subject string, code string, err error) error {
	return wallet.WrapError(errorOperationStore, subject, code, err)
}

type sqlSum struct {
	Total int64
}

func mapArticle(row Article) wallet.Article {
	placeID := ""
	if row.PlaceID != nil {
		placeID = *row.PlaceID
	}
	return wallet.Article{
		ArticleID: row.ArticleID,
		AuthorID:  row.AuthorID,
		PlaceID:   placeID,
		Title:     row.Title,
		Content:   row.Content,
		IsPremium: row.IsPremium,
		Price:     row.Price,
	}
}

func mapHold(row Hold) wallet.Hold {
	return wallet.Hold{
		HoldID:          row.HoldID,
		UserID:          row.UserID,
		PlaceID:         row.PlaceID,
		StartedUnixUTC:  row.StartedAt.Unix(),
		ExpiresUnixUTC:  row.ExpiresAt.Unix(),
		ReleasedUnixUTC: timeOrZero(row.ReleasedAt),
	}
}

func mapQuest(row Quest) wallet.Quest {
	return wallet.Quest{
		QuestID: row.QuestID,
		Order:   row.SortOrder,
		Title:   row.Title,
		Reward:  row.Reward,
	}
}

func mapQuestProgress(row QuestProgress) wallet.QuestProgress {
	return wallet.QuestProgress{
		UserID:           row.UserID,
		QuestID:          row.QuestID,
		Completed:        row.Completed,
		CompletedUnixUTC: timeOrZero(row.CompletedAt),
	}
}

func mapPaymentOrder(row PaymentOrder) wallet.PaymentOrder {
	return wallet.PaymentOrder{
		OrderID:        row.OrderID,
		UserID:         row.UserID,
		Amount:         row.Amount,
		Provider:       row.Provider,
		Status:         wallet.OrderStatus(row.Status),
		CreatedUnixUTC: row.CreatedAt.Unix(),
	}
}

func mapSuggestion(row Suggestion) (wallet.Suggestion, error) {
	state, err := suggestion.ParseState(row.State)
	if err != nil {
		return wallet.Suggestion{}, wrapStoreError(errorSubjectSuggestion, errorCodeInvalid, err)
	}
	return wallet.Suggestion{
		SuggestionID:   row.SuggestionID,
		ArticleID:      row.ArticleID,
		UserID:         row.UserID,
		Content:        row.Content,
		State:          state,
		CreatedUnixUTC: row.CreatedAt.Unix(),
	}, nil
}

func timeOrZero(value *time.Time) int64 {
	if value == nil {
		return 0
	}
	return value.Unix()
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func datatypesJSON(raw string) datatypes.JSON {
	if raw == "" {
		return datatypes.JSON([]byte(defaultMetadataJSON))
	}
	return datatypes.JSON([]byte(raw))
}

func isUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode && pgErr.ConstraintName == constraint
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqliteUniqueViolationCode
	}
	return false
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgSerializationFailureCode
}
