package assemble_test

import (
	"context"
	"testing"
	"time"

	"github.com/fieldform-sh/fieldform/assemble"
	"github.com/fieldform-sh/fieldform/domain"
	"github.com/fieldform-sh/fieldform/store/memory"
	"github.com/stretchr/testify/require"
)

func TestResultNotFoundForUnknownParticipant(t *testing.T) {
	a := assemble.New(memory.New(), time.Minute, 8)
	_, err := a.Result(context.Background(), "s1", "nobody")
	require.Error(t, err)
}

func TestResultJoinsLatestSubmission(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	older, err := s.CreateFormSubmission(ctx, domain.FormSubmission{
		StudyID: "s1", ParticipantID: "p1", Answers: map[string]any{"age": float64(20)}, SubmittedAt: time.Now(),
	})
	require.NoError(t, err)
	_, err = s.CreateComputedValue(ctx, domain.ComputedValue{SubmissionID: older.ID, Key: "stale", Value: true})
	require.NoError(t, err)

	latest, err := s.CreateFormSubmission(ctx, domain.FormSubmission{
		StudyID: "s1", ParticipantID: "p1", Answers: map[string]any{"age": float64(24)}, SubmittedAt: time.Now(),
	})
	require.NoError(t, err)
	_, err = s.CreateComputedValue(ctx, domain.ComputedValue{SubmissionID: latest.ID, Key: "sleep_duration", Value: 480})
	require.NoError(t, err)
	_, err = s.CreateRuleEvaluation(ctx, domain.RuleEvaluation{SubmissionID: latest.ID, RuleSetID: 1, Result: true})
	require.NoError(t, err)
	_, err = s.CreateParticipantAssignment(ctx, domain.ParticipantAssignment{
		StudyID: "s1", ParticipantID: "p1", GroupKey: "cohort", GroupValue: "young-adult", AssignedAt: time.Now(),
	})
	require.NoError(t, err)
	_, err = s.CreateSchedulePlan(ctx, domain.SchedulePlan{
		StudyID: "s1", ParticipantID: "p1",
		Plan: map[string]any{"plans": []any{map[string]any{"visit": "baseline"}}},
	})
	require.NoError(t, err)

	a := assemble.New(s, time.Minute, 8)
	env, err := a.Result(ctx, "s1", "p1")
	require.NoError(t, err)

	require.Equal(t, latest.ID, env.Submission.ID)
	require.Equal(t, 480, env.Computed["sleep_duration"])
	require.NotContains(t, env.Computed, "stale")
	require.Len(t, env.RuleEvaluations, 1)
	require.Len(t, env.Assignments, 1)
	require.NotNil(t, env.SchedulePlan)
	require.Len(t, env.SchedulePlan.Plans, 1)
}

func TestResultIsCachedUntilInvalidated(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	_, err := s.CreateFormSubmission(ctx, domain.FormSubmission{StudyID: "s1", ParticipantID: "p1", SubmittedAt: time.Now()})
	require.NoError(t, err)

	a := assemble.New(s, time.Minute, 8)
	first, err := a.Result(ctx, "s1", "p1")
	require.NoError(t, err)

	second, err := s.CreateFormSubmission(ctx, domain.FormSubmission{StudyID: "s1", ParticipantID: "p1", SubmittedAt: time.Now()})
	require.NoError(t, err)

	cached, err := a.Result(ctx, "s1", "p1")
	require.NoError(t, err)
	require.Equal(t, first.Submission.ID, cached.Submission.ID)

	a.Invalidate("s1", "p1")
	fresh, err := a.Result(ctx, "s1", "p1")
	require.NoError(t, err)
	require.Equal(t, second.ID, fresh.Submission.ID)
}
