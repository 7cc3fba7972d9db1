package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/fieldform-sh/fieldform/domain"
	"github.com/fieldform-sh/fieldform/store/memory"
	"github.com/stretchr/testify/require"
)

func TestLatestFormSubmissionTieBreaksOnID(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	now := time.Now()

	first, err := s.CreateFormSubmission(ctx, domain.FormSubmission{StudyID: "s1", ParticipantID: "p1", SubmittedAt: now})
	require.NoError(t, err)
	second, err := s.CreateFormSubmission(ctx, domain.FormSubmission{StudyID: "s1", ParticipantID: "p1", SubmittedAt: now})
	require.NoError(t, err)
	require.Greater(t, second.ID, first.ID)

	latest, err := s.LatestFormSubmission(ctx, "s1", "p1")
	require.NoError(t, err)
	require.Equal(t, second.ID, latest.ID)
}

func TestLatestFormSubmissionNotFound(t *testing.T) {
	s := memory.New()
	_, err := s.LatestFormSubmission(context.Background(), "s1", "nobody")
	require.Error(t, err)
}

func TestListFormFieldsOrdersByOrderIndex(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	_, _ = s.CreateFormField(ctx, domain.FormField{FormTemplateID: 1, Key: "b", OrderIndex: 2})
	_, _ = s.CreateFormField(ctx, domain.FormField{FormTemplateID: 1, Key: "a", OrderIndex: 1})

	fields, err := s.ListFormFields(ctx, 1)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	require.Equal(t, "a", fields[0].Key)
	require.Equal(t, "b", fields[1].Key)
}

func TestOnlyPublishedComputeDefinitionsReturned(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	_, _ = s.CreateComputeDefinition(ctx, domain.ComputeDefinition{StudyID: "s1", Key: "a", Status: domain.StatusPublished})
	_, _ = s.CreateComputeDefinition(ctx, domain.ComputeDefinition{StudyID: "s1", Key: "b", Status: domain.StatusDraft})

	defs, err := s.ListPublishedComputeDefinitions(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "a", defs[0].Key)
}

func TestCreateComputeDefinitionRejectsDuplicatePublishedKey(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	_, err := s.CreateComputeDefinition(ctx, domain.ComputeDefinition{StudyID: "s1", Key: "dup", Status: domain.StatusPublished})
	require.NoError(t, err)

	_, err = s.CreateComputeDefinition(ctx, domain.ComputeDefinition{StudyID: "s1", Key: "dup", Status: domain.StatusPublished})
	require.Error(t, err)

	// a draft with the same key is unaffected.
	_, err = s.CreateComputeDefinition(ctx, domain.ComputeDefinition{StudyID: "s1", Key: "dup", Status: domain.StatusDraft})
	require.NoError(t, err)
}

func TestCreateComputedValueDedupesRepeatOfLastRow(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	first, err := s.CreateComputedValue(ctx, domain.ComputedValue{SubmissionID: 1, Key: "sleep_duration", Value: 480})
	require.NoError(t, err)

	repeat, err := s.CreateComputedValue(ctx, domain.ComputedValue{SubmissionID: 1, Key: "sleep_duration", Value: 480})
	require.NoError(t, err)
	require.Equal(t, first.ID, repeat.ID)

	changed, err := s.CreateComputedValue(ctx, domain.ComputedValue{SubmissionID: 1, Key: "sleep_duration", Value: 500})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, changed.ID)

	values, err := s.ListComputedValues(ctx, 1)
	require.NoError(t, err)
	require.Len(t, values, 2)
}

func TestGetFormTemplateScopesToStudy(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	created, err := s.CreateFormTemplate(ctx, domain.FormTemplate{StudyID: "s1", Name: "intake"})
	require.NoError(t, err)

	_, err = s.GetFormTemplate(ctx, "s2", created.ID)
	require.Error(t, err)

	got, err := s.GetFormTemplate(ctx, "s1", created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}
