package adoptions

import (
	"errors"
	"strings"
	"time"
)

// Status is the application lifecycle state. A closed set: anything arriving
// over the wire goes through ParseStatus, so a typo'd or case-mangled status
// can never reach storage.
type Status string

const (
	StatusReview    Status = "REVIEW"
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
	StatusAdopted   Status = "ADOPTED"
)

var ErrInvalidStatus = errors.New("invalid status value")

// ParseStatus normalizes and validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusReview, StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusAdopted:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Application is one adoption request: at most one non-cancelled row per
// (user, pet) pair. Cancelled rows are reactivated in place, never duplicated.
type Application struct {
	ID     string
	UserID string
	PetID  string

	Message string
	Status  Status

	// CurrentStep is the admin-maintained 1-4 progress marker shown on the
	// review console.
	CurrentStep int

	CreatedAtUtc time.Time
}

// Active is any application that has not been cancelled.
func (a Application) Active() bool {
	return a.Status != StatusCancelled
}

// StatusToStep maps a status to the 1-4 progress ordinal used by the
// applicant-facing progress bar: REVIEW=1, PENDING=2, APPROVED=3, ADOPTED=4.
// Everything else (rejected, cancelled) renders at step 1.
func StatusToStep(s Status) int {
	switch s {
	case StatusPending:
		return 2
	case StatusApproved:
		return 3
	case StatusAdopted:
		return 4
	default:
		return 1
	}
}

// ClampStep keeps the persisted progress marker inside [1,4].
func ClampStep(step int) int {
	if step < 1 {
		return 1
	}
	if step > 4 {
		return 4
	}
	return step
}
