package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

type DatabaseError struct {
	Operation string
	Err       error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Operation, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource   string
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Identifier)
}

// CampaignNotFound builds the NotFoundError returned by the campaign store.
func CampaignNotFound(id string) error {
	return &NotFoundError{Resource: "campaign", Identifier: id}
}

type EthereumError struct {
	Operation string
	Err       error
}

func (e *EthereumError) Error() string {
	return fmt.Sprintf("ethereum error during %s: %v", e.Operation, e.Err)
}

func (e *EthereumError) Unwrap() error { return e.Err }

type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s - %v", e.StatusCode, e.Message, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

type WebSocketError struct {
	Operation string
	Err       error
}

func (e *WebSocketError) Error() string {
	return fmt.Sprintf("WebSocket error during %s: %v", e.Operation, e.Err)
}

func (e *WebSocketError) Unwrap() error { return e.Err }

// TransientProviderError is a network or timeout failure of an external
// collaborator. The scheduler retries on the next tick.
type TransientProviderError struct {
	Provider string
	Err      error
}

func (e *TransientProviderError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Provider, e.Err)
}

func (e *TransientProviderError) Unwrap() error { return e.Err }

// InvalidConfigurationError marks a campaign that cannot be processed until an
// operator fixes it (unparseable bounty, missing signing key, unknown token).
type InvalidConfigurationError struct {
	CampaignID string
	Reason     string
	Err        error
}

func (e *InvalidConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration for campaign %s: %s: %v", e.CampaignID, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid configuration for campaign %s: %s", e.CampaignID, e.Reason)
}

func (e *InvalidConfigurationError) Unwrap() error { return e.Err }

// ScoringUnavailableError is returned when the quality collaborator fails.
type ScoringUnavailableError struct {
	Err error
}

func (e *ScoringUnavailableError) Error() string {
	return fmt.Sprintf("scoring unavailable: %v", e.Err)
}

func (e *ScoringUnavailableError) Unwrap() error { return e.Err }

// PayoutRejectedError means the execution collaborator did not confirm the payout.
type PayoutRejectedError struct {
	CampaignID string
	Reason     string
}

func (e *PayoutRejectedError) Error() string {
	return fmt.Sprintf("payout rejected for campaign %s: %s", e.CampaignID, e.Reason)
}

// IsCampaignNotFound reports whether err is a missing campaign.
func IsCampaignNotFound(err error) bool {
	var nf *NotFoundError
	return stderrors.As(err, &nf) && nf.Resource == "campaign"
}

// IsTransient reports whether err should be retried on the next tick.
func IsTransient(err error) bool {
	var tp *TransientProviderError
	if stderrors.As(err, &tp) {
		return true
	}
	return stderrors.Is(err, context.DeadlineExceeded)
}

// Transient wraps err as a TransientProviderError unless it already is one.
func Transient(provider string, err error) error {
	if err == nil {
		return nil
	}
	var tp *TransientProviderError
	if stderrors.As(err, &tp) {
		return err
	}
	return &TransientProviderError{Provider: provider, Err: err}
}

// AsInvalidConfiguration extracts an InvalidConfigurationError from err's chain.
func AsInvalidConfiguration(err error) (*InvalidConfigurationError, bool) {
	var ic *InvalidConfigurationError
	if stderrors.As(err, &ic) {
		return ic, true
	}
	return nil, false
}
