package wallet

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the wallet service.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSelfTransfer      = errors.New("transfer to self")
	ErrUnknownArticle    = errors.New("unknown article")
	ErrArticleNotPremium = errors.New("article not premium")
	ErrNotAuthor         = errors.New("caller is not the author")
	ErrPlaceHeld         = errors.New("place already held")
	ErrHoldUnavailable   = errors.New("hold invalid or expired")
	ErrUnknownQuest      = errors.New("unknown quest")
	ErrQuestUnavailable  = errors.New("quest not available or already completed")
	ErrUnknownOrder      = errors.New("unknown payment order")
	ErrOrderSettled      = errors.New("payment order not pending")
	ErrSuggestionOpen    = errors.New("open suggestion already exists")
	ErrUnknownSuggestion = errors.New("unknown suggestion")

	ErrInvalidUserID        = errors.New("invalid user id")
	ErrInvalidArticleID     = errors.New("invalid article id")
	ErrInvalidPlaceID       = errors.New("invalid place id")
	ErrInvalidHoldID        = errors.New("invalid hold id")
	ErrInvalidQuestID       = errors.New("invalid quest id")
	ErrInvalidOrderID       = errors.New("invalid order id")
	ErrInvalidSuggestionID  = errors.New("invalid suggestion id")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidContent       = errors.New("invalid content")
	ErrInvalidMetadataJSON  = errors.New("invalid metadata json")
	ErrInvalidServiceConfig = errors.New("invalid service config")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
