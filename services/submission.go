package services

import (
	"context"
	"time"

	"github.com/the-y0gi/Go-Apply-sub000/logger"
	"github.com/the-y0gi/Go-Apply-sub000/models"
)

// SubmissionEvaluator decides whether an application has passed every gate
// and, if so, performs the draft -> submitted transition. It is safe to call
// speculatively after any progress update: unmet gates and non-draft states
// are plain no-ops.
type SubmissionEvaluator struct {
	apps     ApplicationRepo
	notifier Notifier
}

func NewSubmissionEvaluator(apps ApplicationRepo, notifier Notifier) *SubmissionEvaluator {
	return &SubmissionEvaluator{apps: apps, notifier: notifier}
}

// Evaluate submits the application iff all four gates are true and the
// status is still draft. The conditional transition means two concurrent
// evaluations produce exactly one submission and one notification.
func (e *SubmissionEvaluator) Evaluate(ctx context.Context, applicationID string) (*models.Application, error) {
	app, err := e.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusDraft || !app.Progress.Complete() {
		return app, nil
	}

	now := time.Now()
	ok, err := e.apps.TransitionStatus(ctx, applicationID, models.StatusDraft, models.StatusSubmitted, &now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another caller submitted first.
		return e.apps.Get(ctx, applicationID)
	}

	logger.Log.Info().Str("application_id", applicationID).Msg("application submitted")
	e.notifier.Notify(app.UserID, "application", "Application submitted",
		"All requirements are complete and your application has been submitted.", applicationID)

	app.Status = models.StatusSubmitted
	app.SubmittedAt = &now
	return app, nil
}
