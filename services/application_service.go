package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/the-y0gi/Go-Apply-sub000/common"
	"github.com/the-y0gi/Go-Apply-sub000/logger"
	"github.com/the-y0gi/Go-Apply-sub000/models"
)

// mergeRetries bounds the optimistic-concurrency retry loop. Conflicts only
// happen when two writers hit the same application at once, so a handful of
// attempts is plenty.
const mergeRetries = 5

type Intake struct {
	Season models.IntakeSeason `json:"season"`
	Year   int                 `json:"year"`
}

type ApplicationService struct {
	apps     ApplicationRepo
	profiles ProfileSource
	catalog  CatalogSource
	notifier Notifier
}

func NewApplicationService(apps ApplicationRepo, profiles ProfileSource, catalog CatalogSource, notifier Notifier) *ApplicationService {
	return &ApplicationService{apps: apps, profiles: profiles, catalog: catalog, notifier: notifier}
}

// Create opens a draft application. The profile must be complete, the intake
// slots free, and the program's fee/deadline/document requirements are
// snapshotted onto the row so later catalog edits cannot change it.
func (s *ApplicationService) Create(ctx context.Context, userID, universityID, programID string, intakes []Intake) (*models.Application, error) {
	if len(intakes) == 0 {
		return nil, common.New(common.CodeValidation, "at least one intake is required")
	}
	for _, in := range intakes {
		if in.Season != models.SeasonFall && in.Season != models.SeasonSpring {
			return nil, common.New(common.CodeValidation, "intake season must be fall or spring")
		}
		if in.Year < time.Now().Year() {
			return nil, common.New(common.CodeValidation, "intake year is in the past")
		}
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.New(common.CodeValidation, "student profile is required")
		}
		return nil, err
	}
	if missing := missingProfileFields(profile); len(missing) > 0 {
		return nil, common.New(common.CodeValidation, "profile is incomplete: "+strings.Join(missing, ", "))
	}

	program, err := s.catalog.GetProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	if program.UniversityID != universityID {
		return nil, common.New(common.CodeValidation, "program does not belong to this university")
	}

	for _, in := range intakes {
		exists, err := s.apps.HasIntake(ctx, userID, universityID, programID, in.Season, in.Year)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, common.New(common.CodeConflict,
				fmt.Sprintf("application already exists for %s %d", in.Season, in.Year))
		}
	}

	app := &models.Application{
		ID:           uuid.NewString(),
		UserID:       userID,
		UniversityID: universityID,
		ProgramID:    programID,
		Status:       models.StatusDraft,
		// Personal and academic info are snapshotted from the already
		// validated profile, so those two gates open immediately.
		Progress: models.Progress{
			PersonalInfo: true,
			AcademicInfo: true,
		},
		PaymentStatus:     "pending",
		ApplicationFee:    program.ApplicationFee,
		FeeCurrency:       program.FeeCurrency,
		Deadline:          program.ApplicationDeadline,
		RequiredDocuments: program.DocumentsRequired,
	}
	for _, in := range intakes {
		app.Intakes = append(app.Intakes, models.ApplicationIntake{
			ApplicationID: app.ID,
			UserID:        userID,
			UniversityID:  universityID,
			ProgramID:     programID,
			Season:        in.Season,
			Year:          in.Year,
		})
	}

	if err := s.apps.Insert(ctx, app); err != nil {
		return nil, err
	}

	s.notifier.Notify(userID, "application", "Application created",
		fmt.Sprintf("Your draft application for %s has been created.", program.Name), app.ID)
	return app, nil
}

// MergeProgress unions the given flags into the stored progress. Flags the
// caller did not set stay untouched, and a set flag is never unset here;
// two concurrent callers converge on the union of their writes.
func (s *ApplicationService) MergeProgress(ctx context.Context, applicationID string, set models.Progress) (*models.Application, error) {
	for attempt := 0; attempt < mergeRetries; attempt++ {
		app, err := s.apps.Get(ctx, applicationID)
		if err != nil {
			return nil, err
		}

		next := app.Progress.Union(set)
		if next == app.Progress {
			return app, nil
		}

		ok, err := s.apps.UpdateProgress(ctx, applicationID, app.Version, next)
		if err != nil {
			return nil, err
		}
		if ok {
			app.Progress = next
			app.Version++
			return app, nil
		}
		// Version moved under us; reread and retry.
	}
	return nil, common.New(common.CodeConflict, "application is being updated concurrently")
}

// OverrideProgress is the administrative escape hatch: it replaces the
// progress set outright and may unset flags, which the student-facing flow
// never does.
func (s *ApplicationService) OverrideProgress(ctx context.Context, applicationID string, p models.Progress) (*models.Application, error) {
	for attempt := 0; attempt < mergeRetries; attempt++ {
		app, err := s.apps.Get(ctx, applicationID)
		if err != nil {
			return nil, err
		}
		ok, err := s.apps.UpdateProgress(ctx, applicationID, app.Version, p)
		if err != nil {
			return nil, err
		}
		if ok {
			logger.Log.Info().
				Str("application_id", applicationID).
				Interface("progress", p).
				Msg("progress overridden by admin")
			app.Progress = p
			app.Version++
			return app, nil
		}
	}
	return nil, common.New(common.CodeConflict, "application is being updated concurrently")
}

// allowedTransitions encodes the status machine. Accepted and rejected are
// terminal.
var allowedTransitions = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.StatusDraft:       {models.StatusSubmitted},
	models.StatusSubmitted:   {models.StatusUnderReview},
	models.StatusUnderReview: {models.StatusAccepted, models.StatusRejected},
}

func isAllowedTransition(from, to models.ApplicationStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionStatus guards against stale client views: the move only happens
// if the edge is legal and the application is still in the expected source
// status.
func (s *ApplicationService) TransitionStatus(ctx context.Context, applicationID string, from, to models.ApplicationStatus) (*models.Application, error) {
	if !isAllowedTransition(from, to) {
		return nil, common.New(common.CodeInvalidState,
			fmt.Sprintf("cannot move an application from %s to %s", from, to))
	}

	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != from {
		return nil, common.New(common.CodeInvalidState,
			fmt.Sprintf("application is %s, expected %s", app.Status, from))
	}

	var submittedAt *time.Time
	if to == models.StatusSubmitted {
		now := time.Now()
		submittedAt = &now
	}
	ok, err := s.apps.TransitionStatus(ctx, applicationID, from, to, submittedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.New(common.CodeInvalidState,
			fmt.Sprintf("application left %s before the transition committed", from))
	}

	app.Status = to
	app.SubmittedAt = submittedAt
	return app, nil
}

// Delete removes a draft. Submitted applications are immutable to deletion.
func (s *ApplicationService) Delete(ctx context.Context, applicationID, userID string) error {
	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.UserID != userID {
		return common.New(common.CodeNotFound, "application not found")
	}
	if app.Status != models.StatusDraft {
		return common.New(common.CodeInvalidState, "only draft applications can be deleted")
	}
	ok, err := s.apps.DeleteDraft(ctx, applicationID)
	if err != nil {
		return err
	}
	if !ok {
		return common.New(common.CodeInvalidState, "application is no longer a draft")
	}
	return nil
}

func (s *ApplicationService) Get(ctx context.Context, applicationID, userID string) (*models.Application, error) {
	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, common.New(common.CodeNotFound, "application not found")
	}
	return app, nil
}

func (s *ApplicationService) ListByUser(ctx context.Context, userID string) ([]models.Application, error) {
	return s.apps.ListByUser(ctx, userID)
}

func missingProfileFields(p *models.StudentProfile) []string {
	var missing []string
	if len(p.EducationHistory) == 0 {
		missing = append(missing, "education history")
	}
	if p.Nationality == "" {
		missing = append(missing, "nationality")
	}
	if p.DateOfBirth == nil {
		missing = append(missing, "date of birth")
	}
	if len(p.Languages) == 0 {
		missing = append(missing, "languages")
	}
	return missing
}
