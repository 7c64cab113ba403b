package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// Workflow error taxonomy. Handlers map these to HTTP status codes;
// anything inside a transaction that returns one of these has already
// been rolled back with no partial effect.
var (
	ErrorInsufficientStock  = errors.New("insufficient stock")
	ErrorAlreadyProcessed   = errors.New("already processed")
	ErrorPaymentExceedsDebt = errors.New("payment exceeds outstanding debt")
	ErrorValidation         = errors.New("validation failed")
)
