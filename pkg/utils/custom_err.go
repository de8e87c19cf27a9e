package utils

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Controllers translate these into
// HTTP responses in HandleServiceError; services never write status codes.
var (
	ErrDatabaseError    = errors.New("database error")
	ErrStoreUnavailable = errors.New("billing store unavailable")
	ErrProvisioning     = errors.New("failed to provision billing records")
	ErrPlanNotFound     = errors.New("subscription plan not found")
	ErrRecordNotFound   = errors.New("record not found")
	ErrNoActivePaidSub  = errors.New("no active paid subscription")
	ErrNotConfigured    = errors.New("feature is not configured on the server")
)

// Authentication failures carry a class so the frontend can distinguish
// "fix your request" from "log in again" from "try again later".
var (
	ErrTokenMalformed      = errors.New("malformed bearer token")
	ErrSessionInvalid      = errors.New("session rejected by identity provider")
	ErrIdentityUnavailable = errors.New("identity provider unreachable")
)

// ErrWebhookSignature marks an event that could not be attributed to the
// payment provider. The only webhook error class that gets a non-2xx ack.
var ErrWebhookSignature = errors.New("webhook signature verification failed")

// QuotaExceededError is an expected control-flow outcome, not a fault.
// Limit and Usage are the exact values the denial decision was made on.
type QuotaExceededError struct {
	Feature string
	Limit   int64
	Usage   int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly limit reached for %s (%d of %d used)", e.Feature, e.Usage, e.Limit)
}

// WebhookProcessingError wraps an internal fault while applying a payment
// event. The webhook endpoint still acks these; they exist so the reconciler
// can log them with the event context attached.
type WebhookProcessingError struct {
	EventType string
	Err       error
}

func (e *WebhookProcessingError) Error() string {
	return fmt.Sprintf("webhook %s: %v", e.EventType, e.Err)
}

func (e *WebhookProcessingError) Unwrap() error { return e.Err }
