package wallet

import (
	"context"
	"errors"
	"fmt"
)

// UpgradePremium converts the caller's own article to premium for a flat fee.
// The listing price is independent of the fee; a zero price yields a
// premium-but-free article, which is allowed.
func (service *Service) UpgradePremium(ctx context.Context, userID string, articleID string, price int64) error {
	userID, err := validateID(userID, ErrInvalidUserID)
	if err != nil {
		return err
	}
	articleID, err = validateID(articleID, ErrInvalidArticleID)
	if err != nil {
		return err
	}
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidAmount)
	}
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		article, err := transactionStore.GetArticle(ctx, articleID)
		if err != nil {
			if errors.Is(err, ErrUnknownArticle) {
				// A missing article answers the same as a foreign one.
				return ErrNotAuthor
			}
			return err
		}
		if article.AuthorID != userID {
			return ErrNotAuthor
		}
		metadata := metadataFor(map[string]string{"article_id": articleID})
		if err := service.debitChecked(ctx, transactionStore, userID, PremiumUpgradeFee, RefPremiumArticle, metadata); err != nil {
			return err
		}
		return transactionStore.SetArticlePremium(ctx, articleID, price)
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationUpgradePremium,
		UserID:    userID,
		Amount:    PremiumUpgradeFee,
		Ref:       RefPremiumArticle,
		Error:     operationError,
	})
	return operationError
}

// UnlockArticle purchases access to a premium article: the buyer pays the
// listing price, the author receives a floored 20% royalty, and a grant
// record is written. Repeat unlocks by the same user are repeat purchases.
func (service *Service) UnlockArticle(ctx context.Context, userID string, articleID string) (int64, error) {
	userID, err := validateID(userID, ErrInvalidUserID)
	if err != nil {
		return 0, err
	}
	articleID, err = validateID(articleID, ErrInvalidArticleID)
	if err != nil {
		return 0, err
	}
	var authorShare int64
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		article, err := transactionStore.GetArticle(ctx, articleID)
		if err != nil {
			return err
		}
		if !article.IsPremium {
			return ErrArticleNotPremium
		}
		nowUnixUTC := service.nowFn()
		metadata := metadataFor(map[string]string{"article_id": articleID})
		if article.Price > 0 {
			if err := service.debitChecked(ctx, transactionStore, userID, article.Price, RefUnlockArticle, metadata); err != nil {
				return err
			}
		}
		authorShare = article.Price * royaltyPercent / 100
		if authorShare > 0 {
			if err := transactionStore.InsertEntry(ctx, Entry{
				UserID:         article.AuthorID,
				Type:           EntryCredit,
				Amount:         authorShare,
				Ref:            RefPremiumRoyalty,
				MetadataJSON:   metadata,
				CreatedUnixUTC: nowUnixUTC,
			}); err != nil {
				return err
			}
		}
		return transactionStore.InsertUnlock(ctx, Unlock{
			ArticleID:       articleID,
			UserID:          userID,
			UnlockedUnixUTC: nowUnixUTC,
		})
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationUnlockArticle,
		UserID:    userID,
		Amount:    authorShare,
		Ref:       RefUnlockArticle,
		Error:     operationError,
	})
	if operationError != nil {
		return 0, operationError
	}
	return authorShare, nil
}
