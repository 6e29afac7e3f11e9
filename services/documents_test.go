package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-y0gi/Go-Apply-sub000/common"
	"github.com/the-y0gi/Go-Apply-sub000/models"
)

func TestResolveDocumentRequirements(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		uploaded []string
		want     DocumentRequirementView
	}{
		{
			name:     "one missing",
			required: []string{"transcript", "sop"},
			uploaded: []string{"transcript"},
			want: DocumentRequirementView{
				Required: []string{"sop", "transcript"},
				Uploaded: []string{"transcript"},
				Missing:  []string{"sop"},
			},
		},
		{
			name:     "all satisfied",
			required: []string{"transcript", "sop"},
			uploaded: []string{"sop", "transcript"},
			want: DocumentRequirementView{
				Required: []string{"sop", "transcript"},
				Uploaded: []string{"sop", "transcript"},
				Missing:  []string{},
			},
		},
		{
			name:     "nothing required",
			required: nil,
			uploaded: []string{"transcript"},
			want: DocumentRequirementView{
				Required: []string{},
				Uploaded: []string{"transcript"},
				Missing:  []string{},
			},
		},
		{
			name:     "nothing uploaded",
			required: []string{"transcript"},
			uploaded: nil,
			want: DocumentRequirementView{
				Required: []string{"transcript"},
				Uploaded: []string{},
				Missing:  []string{"transcript"},
			},
		},
		{
			name:     "duplicates and extras ignored",
			required: []string{"transcript", "transcript", "sop"},
			uploaded: []string{"transcript", "transcript", "passport"},
			want: DocumentRequirementView{
				Required: []string{"sop", "transcript"},
				Uploaded: []string{"passport", "transcript"},
				Missing:  []string{"sop"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDocumentRequirements(tt.required, tt.uploaded)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocumentComplete_BlockedWhileMissing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	app, err := f.createApplication(ctx)
	require.NoError(t, err)

	f.docs.types[app.ID] = []string{"transcript"}

	_, err = f.docSvc.Complete(ctx, "user-1", app.ID)
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeValidation))

	stored, err := f.apps.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.False(t, stored.Progress.Documents)
}

func TestDocumentComplete_SetsGate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	app, err := f.createApplication(ctx)
	require.NoError(t, err)

	f.docs.types[app.ID] = []string{"transcript", "sop"}

	updated, err := f.docSvc.Complete(ctx, "user-1", app.ID)
	require.NoError(t, err)
	assert.True(t, updated.Progress.Documents)
	// Payment gate is still open, so no submission yet.
	assert.Equal(t, models.StatusDraft, updated.Status)
}
