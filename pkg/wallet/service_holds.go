package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// CreateHold reserves a place for the caller by taking the coin deposit.
// At most one active hold may exist per place: expired holds are swept
// inside the same transaction before the existence check, and the store's
// partial unique index rejects a concurrent insert that slipped past it.
func (service *Service) CreateHold(ctx context.Context, userID string, placeID string) (Hold, error) {
	userID, err := validateID(userID, ErrInvalidUserID)
	if err != nil {
		return Hold{}, err
	}
	placeID, err = validateID(placeID, ErrInvalidPlaceID)
	if err != nil {
		return Hold{}, err
	}
	var created Hold
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		nowUnixUTC := service.nowFn()
		if err := transactionStore.ReleaseExpiredHolds(ctx, placeID, nowUnixUTC); err != nil {
			return err
		}
		metadata := metadataFor(map[string]string{"place_id": placeID})
		if err := service.debitChecked(ctx, transactionStore, userID, HoldDeposit, RefHoldPlace, metadata); err != nil {
			return err
		}
		held, err := transactionStore.HasActiveHold(ctx, placeID, nowUnixUTC)
		if err != nil {
			return err
		}
		if held {
			return ErrPlaceHeld
		}
		created, err = transactionStore.InsertHold(ctx, Hold{
			UserID:         userID,
			PlaceID:        placeID,
			StartedUnixUTC: nowUnixUTC,
			ExpiresUnixUTC: nowUnixUTC + holdWindowSeconds,
		})
		return err
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationCreateHold,
		UserID:    userID,
		Amount:    HoldDeposit,
		Ref:       RefHoldPlace,
		Error:     operationError,
	})
	if operationError != nil {
		return Hold{}, operationError
	}
	return created, nil
}

// SubmitHold turns an active hold into a published review of the place and
// refunds the deposit, so a completed hold cycle is net zero cost.
func (service *Service) SubmitHold(ctx context.Context, userID string, holdID string, draft ReviewDraft) (Article, error) {
	userID, err := validateID(userID, ErrInvalidUserID)
	if err != nil {
		return Article{}, err
	}
	holdID, err = validateID(holdID, ErrInvalidHoldID)
	if err != nil {
		return Article{}, err
	}
	if strings.TrimSpace(draft.Content) == "" {
		return Article{}, fmt.Errorf("%w: review content is required", ErrInvalidContent)
	}
	var review Article
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		hold, err := service.ownedActiveHold(ctx, transactionStore, userID, holdID)
		if err != nil {
			return err
		}
		review, err = transactionStore.InsertArticle(ctx, Article{
			AuthorID: userID,
			PlaceID:  hold.PlaceID,
			Title:    draft.Title,
			Content:  draft.Content,
		})
		if err != nil {
			return err
		}
		return service.releaseWithRefund(ctx, transactionStore, hold)
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationSubmitHold,
		UserID:    userID,
		Amount:    HoldDeposit,
		Ref:       RefHoldRefund,
		Error:     operationError,
	})
	if operationError != nil {
		return Article{}, operationError
	}
	return review, nil
}

// CancelHold voluntarily releases the caller's active hold and refunds the
// deposit. The hold must not already be expired or released.
func (service *Service) CancelHold(ctx context.Context, userID string, holdID string) error {
	userID, err := validateID(userID, ErrInvalidUserID)
	if err != nil {
		return err
	}
	holdID, err = validateID(holdID, ErrInvalidHoldID)
	if err != nil {
		return err
	}
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		hold, err := service.ownedActiveHold(ctx, transactionStore, userID, holdID)
		if err != nil {
			return err
		}
		return service.releaseWithRefund(ctx, transactionStore, hold)
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationCancelHold,
		UserID:    userID,
		Amount:    HoldDeposit,
		Ref:       RefHoldRefund,
		Error:     operationError,
	})
	return operationError
}

func (service *Service) ownedActiveHold(ctx context.Context, transactionStore Store, userID string, holdID string) (Hold, error) {
	hold, err := transactionStore.GetHold(ctx, holdID)
	if err != nil {
		if errors.Is(err, ErrHoldUnavailable) {
			return Hold{}, ErrHoldUnavailable
		}
		return Hold{}, err
	}
	if hold.UserID != userID || !hold.Active(service.nowFn()) {
		return Hold{}, ErrHoldUnavailable
	}
	return hold, nil
}

// releaseWithRefund releases the hold through a conditional update and only
// credits the deposit back when this call actually flipped the row, so a
// racing double submit cannot refund twice.
func (service *Service) releaseWithRefund(ctx context.Context, transactionStore Store, hold Hold) error {
	released, err := transactionStore.ReleaseHold(ctx, hold.HoldID, service.nowFn())
	if err != nil {
		return err
	}
	if !released {
		return ErrHoldUnavailable
	}
	return transactionStore.InsertEntry(ctx, Entry{
		UserID:         hold.UserID,
		Type:           EntryCredit,
		Amount:         HoldDeposit,
		Ref:            RefHoldRefund,
		MetadataJSON:   metadataFor(map[string]string{"place_id": hold.PlaceID, "hold_id": hold.HoldID}),
		CreatedUnixUTC: service.nowFn(),
	})
}
