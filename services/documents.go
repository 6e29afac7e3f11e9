package services

import (
	"context"
	"sort"
	"strings"

	"github.com/the-y0gi/Go-Apply-sub000/common"
	"github.com/the-y0gi/Go-Apply-sub000/models"
)

type DocumentRequirementView struct {
	Required []string `json:"required"`
	Uploaded []string `json:"uploaded"`
	Missing  []string `json:"missing"`
}

// ResolveDocumentRequirements computes which required document types are
// still missing. Pure set arithmetic: missing = required − uploaded.
func ResolveDocumentRequirements(required, uploaded []string) DocumentRequirementView {
	requiredSet := dedupe(required)
	uploadedSet := dedupe(uploaded)

	have := make(map[string]bool, len(uploadedSet))
	for _, t := range uploadedSet {
		have[t] = true
	}

	missing := make([]string, 0, len(requiredSet))
	for _, t := range requiredSet {
		if !have[t] {
			missing = append(missing, t)
		}
	}

	return DocumentRequirementView{
		Required: requiredSet,
		Uploaded: uploadedSet,
		Missing:  missing,
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// DocumentService answers the requirement view for an application and gates
// the documents flag on it.
type DocumentService struct {
	apps      *ApplicationService
	docs      DocumentSource
	evaluator *SubmissionEvaluator
}

func NewDocumentService(apps *ApplicationService, docs DocumentSource, evaluator *SubmissionEvaluator) *DocumentService {
	return &DocumentService{apps: apps, docs: docs, evaluator: evaluator}
}

// Status resolves required/uploaded/missing for the application, against the
// document requirements snapshotted at creation time.
func (s *DocumentService) Status(ctx context.Context, userID, applicationID string) (*DocumentRequirementView, error) {
	app, err := s.apps.Get(ctx, applicationID, userID)
	if err != nil {
		return nil, err
	}
	uploaded, err := s.docs.ListTypes(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	view := ResolveDocumentRequirements(app.RequiredDocuments, uploaded)
	return &view, nil
}

// Complete sets the documents gate, but only once nothing is missing, then
// lets the submission evaluator run speculatively.
func (s *DocumentService) Complete(ctx context.Context, userID, applicationID string) (*models.Application, error) {
	view, err := s.Status(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	if len(view.Missing) > 0 {
		return nil, common.New(common.CodeValidation,
			"documents still missing: "+strings.Join(view.Missing, ", "))
	}

	app, err := s.apps.MergeProgress(ctx, applicationID, models.Progress{Documents: true})
	if err != nil {
		return nil, err
	}
	if evaluated, err := s.evaluator.Evaluate(ctx, applicationID); err == nil && evaluated != nil {
		return evaluated, nil
	}
	return app, nil
}
