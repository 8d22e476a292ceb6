package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupportedBank matches any *UnsupportedBankError with errors.Is.
var ErrUnsupportedBank = errors.New("unsupported bank")

// UnsupportedBankError is returned when a bank code has no registry profile.
// It is the only hard failure of link generation.
type UnsupportedBankError struct {
	Code string
}

func (e *UnsupportedBankError) Error() string {
	return fmt.Sprintf("unsupported bank code: %s", e.Code)
}

func (e *UnsupportedBankError) Is(target error) bool {
	return target == ErrUnsupportedBank
}

// MalformedInputWarning describes input that did not parse cleanly but still
// produced output.
type MalformedInputWarning struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (w MalformedInputWarning) String() string {
	return w.Field + ": " + w.Reason
}
