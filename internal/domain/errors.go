package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrSessionFinalized = errors.New("verification session finalized")
	ErrStepNotCurrent   = errors.New("step is not the current step")
	ErrStepRequired     = errors.New("required step cannot be skipped")
	ErrStepDisabled     = errors.New("step is not enabled for this exam")
	ErrNoSigningKey     = errors.New("signing key not configured")
)
