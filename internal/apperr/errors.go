package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors shared across services. Controllers and middleware map them
// to HTTP status codes with errors.Is; services never talk HTTP.
var (
	ErrNotAuthorized      = errors.New("not a member of this chat")
	ErrAlreadyMember      = errors.New("user is already a member of this chat")
	ErrNotFound           = errors.New("resource not found")
	ErrUserExists         = errors.New("user with this username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrInactiveUser       = errors.New("user account is disabled")
	ErrPasswordMismatch   = errors.New("passwords do not match")

	// Delivery errors. ErrRecipientOffline and ErrChannelClosed are expected
	// races during fan-out and must never surface to the sender.
	ErrRecipientOffline = errors.New("recipient has no live connection")
	ErrChannelClosed    = errors.New("live channel closed by peer")
)

// DeliveryFailure records one recipient that could not be reached during
// fan-out for a reason other than being offline or a close race.
type DeliveryFailure struct {
	UserID uuid.UUID
	Err    error
}

// PartialDeliveryError is returned by the fan-out engine when one or more
// pushes failed with a real transport error. The message itself is persisted
// and all remaining recipients were still attempted.
type PartialDeliveryError struct {
	Failures []DeliveryFailure
}

func (e *PartialDeliveryError) Error() string {
	ids := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		ids[i] = f.UserID.String()
	}
	return fmt.Sprintf("delivery failed for %d recipient(s): %s", len(e.Failures), strings.Join(ids, ", "))
}

func (e *PartialDeliveryError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}
