package entity

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidAddress is returned when an address does not match the
	// chain's 0x-prefixed 40-hex-digit syntax.
	ErrInvalidAddress = errors.New("invalid wallet address")

	// ErrInvalidPeriod is returned for an unknown chart period.
	ErrInvalidPeriod = errors.New("invalid chart period")
)

// ConfigurationError marks a required credential or endpoint that is missing
// or still holds a placeholder value. Fatal to the call that needed it.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is not configured", e.Field)
}

// NewConfigurationError builds a ConfigurationError for the named field.
func NewConfigurationError(field string) error {
	return &ConfigurationError{Field: field}
}

// AggregationError wraps an unexpected failure inside the balance
// aggregation path, preserving the original cause.
type AggregationError struct {
	Cause error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("portfolio aggregation failed: %v", e.Cause)
}

func (e *AggregationError) Unwrap() error {
	return e.Cause
}
