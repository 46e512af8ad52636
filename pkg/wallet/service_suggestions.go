package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/knowshare/walletd/pkg/suggestion"
)

// SubmitSuggestion files a paid edit suggestion against an article. A user
// may keep at most one open (pending or appealed) suggestion per article.
func (service *Service) SubmitSuggestion(ctx context.Context, userID string, articleID string, content string) (Suggestion, error) {
	userID, err := validateID(userID, ErrInvalidUserID)
	if err != nil {
		return Suggestion{}, err
	}
	articleID, err = validateID(articleID, ErrInvalidArticleID)
	if err != nil {
		return Suggestion{}, err
	}
	if strings.TrimSpace(content) == "" {
		return Suggestion{}, fmt.Errorf("%w: suggestion content is required", ErrInvalidContent)
	}
	var created Suggestion
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if _, err := transactionStore.GetArticle(ctx, articleID); err != nil {
			return err
		}
		open, err := transactionStore.HasOpenSuggestion(ctx, articleID, userID)
		if err != nil {
			return err
		}
		if open {
			return ErrSuggestionOpen
		}
		metadata := metadataFor(map[string]string{"article_id": articleID})
		if err := service.debitChecked(ctx, transactionStore, userID, SuggestionFee, RefSuggestion, metadata); err != nil {
			return err
		}
		created, err = transactionStore.InsertSuggestion(ctx, Suggestion{
			ArticleID:      articleID,
			UserID:         userID,
			Content:        content,
			State:          suggestion.StatePending,
			CreatedUnixUTC: service.nowFn(),
		})
		return err
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationSubmitSuggestion,
		UserID:    userID,
		Amount:    SuggestionFee,
		Ref:       RefSuggestion,
		Error:     operationError,
	})
	if operationError != nil {
		return Suggestion{}, operationError
	}
	return created, nil
}

// ReviewSuggestion applies a moderation action on behalf of the article's
// author. Actions that are not valid for the current state are silent no-ops
// and return the unchanged state, mirroring the review state machine.
func (service *Service) ReviewSuggestion(ctx context.Context, reviewerID string, suggestionID string, action suggestion.Action) (suggestion.State, error) {
	reviewerID, err := validateID(reviewerID, ErrInvalidUserID)
	if err != nil {
		return "", err
	}
	suggestionID, err = validateID(suggestionID, ErrInvalidSuggestionID)
	if err != nil {
		return "", err
	}
	var resulting suggestion.State
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		record, err := transactionStore.GetSuggestion(ctx, suggestionID)
		if err != nil {
			return err
		}
		article, err := transactionStore.GetArticle(ctx, record.ArticleID)
		if err != nil {
			return err
		}
		if article.AuthorID != reviewerID {
			return ErrNotAuthor
		}
		resulting = suggestion.Next(record.State, action)
		if resulting == record.State {
			return nil
		}
		return transactionStore.UpdateSuggestionState(ctx, suggestionID, record.State, resulting)
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationReviewSuggestion,
		UserID:    reviewerID,
		Error:     operationError,
	})
	if operationError != nil {
		return "", operationError
	}
	return resulting, nil
}
