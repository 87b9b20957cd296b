package report

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrNotFound              = errors.New("gene report not found")
	ErrDuplicateRegistration = errors.New("duplicate gene report")
	ErrConfiguration         = errors.New("inconsistent guideline configuration")
)

// NotFoundError is returned when looking up a gene that no guideline relates to.
type NotFoundError struct {
	Gene string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no gene report for %s", e.Gene)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DuplicateRegistrationError is returned when a gene is registered twice.
type DuplicateRegistrationError struct {
	Gene string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("gene report for %s already registered", e.Gene)
}

func (e *DuplicateRegistrationError) Unwrap() error { return ErrDuplicateRegistration }

// ConfigurationError means the guideline library and the gene reports
// disagree. It aborts the whole matching pass.
type ConfigurationError struct {
	Guideline string
	Gene      string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("guideline %s, gene %s: %s", e.Guideline, e.Gene, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }
