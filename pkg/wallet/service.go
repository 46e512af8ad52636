package wallet

import (
	"context"
	"fmt"
)

// Service contains the coin wallet domain logic over a Store.
//
// Every balance-affecting operation runs its check-then-write sequence
// inside a single Store.WithTx callback so that concurrent requests against
// the same user or place cannot both act on a stale read.
type Service struct {
	store  Store
	nowFn  func() int64
	logger OperationLogger
}

// NewService wires a Service.
func NewService(store Store, now func() int64, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{store: store, nowFn: now}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// Balance returns sum(credits) minus sum(debits) for the user, zero when the
// user has no entries.
func (service *Service) Balance(ctx context.Context, userID string) (int64, error) {
	userID, err := validateID(userID, ErrInvalidUserID)
	if err != nil {
		return 0, err
	}
	return service.store.SumBalance(ctx, userID)
}

// History lists the user's most recent ledger entries, newest first.
func (service *Service) History(ctx context.Context, userID string, limit int) ([]Entry, error) {
	userID, err := validateID(userID, ErrInvalidUserID)
	if err != nil {
		return nil, err
	}
	return service.store.ListEntries(ctx, userID, limit)
}

// Grant appends a credit entry for the user.
func (service *Service) Grant(ctx context.Context, userID string, amount int64, ref Ref, metadataJSON string) error {
	userID, err := validateID(userID, ErrInvalidUserID)
	if err != nil {
		return err
	}
	amount, err = validateAmount(amount)
	if err != nil {
		return err
	}
	metadata, err := normalizeMetadata(metadataJSON)
	if err != nil {
		return err
	}
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		return transactionStore.InsertEntry(ctx, Entry{
			UserID:         userID,
			Type:           EntryCredit,
			Amount:         amount,
			Ref:            ref,
			MetadataJSON:   metadata,
			CreatedUnixUTC: service.nowFn(),
		})
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationGrant,
		UserID:    userID,
		Amount:    amount,
		Ref:       ref,
		Error:     operationError,
	})
	return operationError
}

// Transfer moves coins between two users as a debit/credit pair.
func (service *Service) Transfer(ctx context.Context, fromUserID string, toUserID string, amount int64) error {
	fromUserID, err := validateID(fromUserID, ErrInvalidUserID)
	if err != nil {
		return err
	}
	toUserID, err = validateID(toUserID, ErrInvalidUserID)
	if err != nil {
		return err
	}
	if fromUserID == toUserID {
		return ErrSelfTransfer
	}
	amount, err = validateAmount(amount)
	if err != nil {
		return err
	}
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		balance, err := transactionStore.SumBalance(ctx, fromUserID)
		if err != nil {
			return err
		}
		if balance < amount {
			return ErrInsufficientFunds
		}
		nowUnixUTC := service.nowFn()
		metadata := metadataFor(map[string]string{"to": toUserID})
		if err := transactionStore.InsertEntry(ctx, Entry{
			UserID:         fromUserID,
			Type:           EntryDebit,
			Amount:         amount,
			Ref:            RefWalletTransfer,
			MetadataJSON:   metadata,
			CreatedUnixUTC: nowUnixUTC,
		}); err != nil {
			return err
		}
		return transactionStore.InsertEntry(ctx, Entry{
			UserID:         toUserID,
			Type:           EntryCredit,
			Amount:         amount,
			Ref:            RefWalletTransfer,
			MetadataJSON:   metadataFor(map[string]string{"from": fromUserID}),
			CreatedUnixUTC: nowUnixUTC,
		})
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationTransfer,
		UserID:    fromUserID,
		Amount:    amount,
		Ref:       RefWalletTransfer,
		Error:     operationError,
	})
	return operationError
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}

// debitChecked verifies the user's balance inside the current transaction and
// appends a debit entry. Callers must already be inside WithTx.
func (service *Service) debitChecked(ctx context.Context, transactionStore Store, userID string, amount int64, ref Ref, metadataJSON string) error {
	balance, err := transactionStore.SumBalance(ctx, userID)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientFunds
	}
	return transactionStore.InsertEntry(ctx, Entry{
		UserID:         userID,
		Type:           EntryDebit,
		Amount:         amount,
		Ref:            ref,
		MetadataJSON:   metadataJSON,
		CreatedUnixUTC: service.nowFn(),
	})
}
