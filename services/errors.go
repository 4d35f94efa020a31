package services

import "errors"

// Failure taxonomy surfaced to the request layer. Validation failures
// are never retried; storage failures may be retried by the caller
// with backoff.
var (
	ErrBusinessNotFound     = errors.New("business not found")
	ErrNotInitialized       = errors.New("chatbot not initialized")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrEmptyMessage         = errors.New("message content is empty")
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrEmailInUse           = errors.New("email already in use")
)
