package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidIntake     = errors.New("invalid certificate intake")
	ErrDuplicateID       = errors.New("duplicate certificate id")
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	ErrRenderFailed      = errors.New("artifact render failed")
	ErrConfirmRequired   = errors.New("confirmation required")
)
