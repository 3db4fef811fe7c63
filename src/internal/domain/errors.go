package domain

import "errors"

var ErrInvalidArgument = errors.New("Invalid argument")
var ErrInvalidAmount = errors.New("Invalid amount: must be a positive number")
var ErrInvalidType = errors.New(`Invalid type: must be either "credit" or "debit"`)
var ErrCorruptRecord = errors.New("Invalid balance data")
var ErrInsufficientBalance = errors.New("Insufficient balance")
var ErrRecordNotFound = errors.New("Record not found")
var ErrTransactionFailed = errors.New("Transaction failed")

// Store-level precondition failures. The coordinator inspects these to tell
// which operation aborted an atomic unit.
var ErrBalanceConditionFailed = errors.New("Balance condition failed")
var ErrIdempotencyKeyExists = errors.New("Idempotency key already exists")
