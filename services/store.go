package services

import (
	"context"
	"time"

	"github.com/the-y0gi/Go-Apply-sub000/models"
)

// ApplicationRepo is the persistence contract for applications. Every write
// that touches progress or status is conditional: the implementation must
// report, via its bool result, whether the guarded update actually happened.
type ApplicationRepo interface {
	Insert(ctx context.Context, app *models.Application) error
	Get(ctx context.Context, id string) (*models.Application, error)
	ListByUser(ctx context.Context, userID string) ([]models.Application, error)
	HasIntake(ctx context.Context, userID, universityID, programID string, season models.IntakeSeason, year int) (bool, error)

	// UpdateProgress writes the full progress set only if the stored row
	// still carries the given version.
	UpdateProgress(ctx context.Context, id string, version int64, p models.Progress) (bool, error)

	// TransitionStatus moves from -> to only if the row is still in from.
	TransitionStatus(ctx context.Context, id string, from, to models.ApplicationStatus, submittedAt *time.Time) (bool, error)

	// SetPaymentStatus updates the mirrored payment status column.
	SetPaymentStatus(ctx context.Context, id, status string) error

	// DeleteDraft removes the application only while it is still a draft.
	DeleteDraft(ctx context.Context, id string) (bool, error)
}

// PaymentRepo is the persistence contract for payment records. MarkPaid and
// MarkRefunded are single-statement compare-and-swaps; read-then-write here
// would reopen the double-callback race.
type PaymentRepo interface {
	Insert(ctx context.Context, rec *models.PaymentRecord) error
	GetByID(ctx context.Context, id string) (*models.PaymentRecord, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.PaymentRecord, error)
	FindOutstanding(ctx context.Context, applicationID string) (*models.PaymentRecord, error)
	HasPaid(ctx context.Context, applicationID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.PaymentRecord, error)

	MarkAttempted(ctx context.Context, orderID string) error
	MarkPaid(ctx context.Context, orderID, gatewayPaymentID string, paidAt time.Time, method, details string) (bool, error)
	MarkFailed(ctx context.Context, orderID string) error
	UpdateMethodMetadata(ctx context.Context, orderID, method, details string) error
	MarkRefunded(ctx context.Context, id string, amount int64, reason string, at time.Time) (bool, error)
}

// ProfileSource is the read-only profile collaborator used to gate
// application creation.
type ProfileSource interface {
	GetByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
}

// CatalogSource is the read-only program catalog, consulted once per
// application at creation time.
type CatalogSource interface {
	GetProgram(ctx context.Context, programID string) (*models.Program, error)
}

// DocumentSource lists the document types a user has uploaded for an
// application.
type DocumentSource interface {
	ListTypes(ctx context.Context, userID, applicationID string) ([]string, error)
}

// Notifier is the fire-and-forget notification sink. Implementations must
// never fail the caller; a lost notification never rolls back a committed
// state transition.
type Notifier interface {
	Notify(userID, category, title, message, relatedID string)
}
