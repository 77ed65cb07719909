// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// ErrAccessDenied is returned when the actor is neither the owner of an
// entity nor holds the required capability. It is deliberately distinct
// from not-found so callers can answer 403 instead of 404.
var ErrAccessDenied = errors.New("access denied")

// ErrNoRecipients signals a dispatch against a campaign with an empty
// subscriber set. No transport call is made in that case.
var ErrNoRecipients = errors.New("campaign has no recipients")

// NotFoundError identifies a missing entity by type and id.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

func NewNotFound(entity string, id int) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError rejects a request before anything is persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// BlockReason enumerates why a dispatch request was refused by the
// campaign lifecycle guard.
type BlockReason string

const (
	BlockedUnauthorized    BlockReason = "unauthorized"
	BlockedWindowExpired   BlockReason = "window_expired"
	BlockedDisabled        BlockReason = "disabled"
	BlockedAlreadyFinished BlockReason = "already_finished"
)

type BlockedError struct {
	Reason BlockReason
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("dispatch blocked: %s", e.Reason)
}

func NewBlocked(reason BlockReason) error {
	return &BlockedError{Reason: reason}
}

// BlockedReason extracts the guard's reason, or "" if err is not a
// lifecycle block.
func BlockedReason(err error) BlockReason {
	var b *BlockedError
	if errors.As(err, &b) {
		return b.Reason
	}
	return ""
}
