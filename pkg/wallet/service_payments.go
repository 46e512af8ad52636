package wallet

import (
	"context"
)

// CreateChargeOrder opens a pending top-up order. Coins are only credited
// when the payment provider's webhook settles the order.
func (service *Service) CreateChargeOrder(ctx context.Context, userID string, amount int64, provider string) (PaymentOrder, error) {
	userID, err := validateID(userID, ErrInvalidUserID)
	if err != nil {
		return PaymentOrder{}, err
	}
	amount, err = validateAmount(amount)
	if err != nil {
		return PaymentOrder{}, err
	}
	order, operationError := service.store.InsertPaymentOrder(ctx, PaymentOrder{
		UserID:         userID,
		Amount:         amount,
		Provider:       provider,
		Status:         OrderPending,
		CreatedUnixUTC: service.nowFn(),
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationCreateOrder,
		UserID:    userID,
		Amount:    amount,
		Ref:       RefWalletCharge,
		Error:     operationError,
	})
	if operationError != nil {
		return PaymentOrder{}, operationError
	}
	return order, nil
}

// SettleChargeOrder credits a pending order's amount to its owner and marks
// the order settled. Settlement is a conditional update on the pending row;
// the credit is only written when this call flipped the status, so a
// replayed webhook cannot credit twice.
func (service *Service) SettleChargeOrder(ctx context.Context, orderID string) (PaymentOrder, error) {
	orderID, err := validateID(orderID, ErrInvalidOrderID)
	if err != nil {
		return PaymentOrder{}, err
	}
	var order PaymentOrder
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		var err error
		order, err = transactionStore.GetPaymentOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != OrderPending {
			return ErrOrderSettled
		}
		settled, err := transactionStore.SettlePaymentOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !settled {
			return ErrOrderSettled
		}
		return transactionStore.InsertEntry(ctx, Entry{
			UserID:         order.UserID,
			Type:           EntryCredit,
			Amount:         order.Amount,
			Ref:            RefWalletCharge,
			MetadataJSON:   metadataFor(map[string]string{"order_id": orderID}),
			CreatedUnixUTC: service.nowFn(),
		})
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationSettleOrder,
		UserID:    order.UserID,
		Amount:    order.Amount,
		Ref:       RefWalletCharge,
		Error:     operationError,
	})
	if operationError != nil {
		return PaymentOrder{}, operationError
	}
	order.Status = OrderSuccess
	return order, nil
}
