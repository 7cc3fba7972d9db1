package intake_test

import (
	"context"
	"testing"
	"time"

	"github.com/fieldform-sh/fieldform/domain"
	"github.com/fieldform-sh/fieldform/intake"
	"github.com/fieldform-sh/fieldform/store/memory"
	"github.com/stretchr/testify/require"
)

type noopAudit struct{ logs []domain.AuditLog }

func (n *noopAudit) Emit(ctx context.Context, l domain.AuditLog) { n.logs = append(n.logs, l) }

func seedSleepStudy(t *testing.T, s *memory.Store) domain.FormTemplate {
	t.Helper()
	ctx := context.Background()

	tpl, err := s.CreateFormTemplate(ctx, domain.FormTemplate{StudyID: "sleep", Name: "intake", Status: domain.FormTemplatePublish})
	require.NoError(t, err)

	fields := []domain.FormField{
		{FormTemplateID: tpl.ID, Key: "age", Type: domain.FieldNumber, Required: true,
			Validation: map[string]any{"min": float64(18)}, OrderIndex: 1},
		{FormTemplateID: tpl.ID, Key: "sleep_start", Type: domain.FieldTime, Required: true, OrderIndex: 2},
		{FormTemplateID: tpl.ID, Key: "sleep_end", Type: domain.FieldTime, Required: true, OrderIndex: 3},
	}
	for _, f := range fields {
		_, err := s.CreateFormField(ctx, f)
		require.NoError(t, err)
	}

	_, err = s.CreateComputeDefinition(ctx, domain.ComputeDefinition{
		StudyID: "sleep", Key: "sleep_duration", Status: domain.StatusPublished,
		Definition: map[string]any{
			"func": "duration",
			"args": []any{
				map[string]any{"var": "answers.sleep_start"},
				map[string]any{"var": "answers.sleep_end"},
			},
		},
	})
	require.NoError(t, err)

	_, err = s.CreateRuleSet(ctx, domain.RuleSet{
		StudyID: "sleep", RuleType: domain.RuleEligibility, Name: "adult", Status: domain.StatusPublished,
		Expression: map[string]any{
			"op": ">=", "left": map[string]any{"var": "answers.age"}, "right": map[string]any{"value": float64(18)},
		},
	})
	require.NoError(t, err)

	_, err = s.CreateRuleSet(ctx, domain.RuleSet{
		StudyID: "sleep", RuleType: domain.RuleGroupAssignment, Name: "cohort", Status: domain.StatusPublished,
		Expression: map[string]any{
			"when": map[string]any{
				"op": "between", "left": map[string]any{"var": "answers.age"},
				"min": map[string]any{"value": float64(18)}, "max": map[string]any{"value": float64(30)},
			},
			"assignment": map[string]any{"key": "cohort", "value": "young-adult"},
		},
	})
	require.NoError(t, err)

	_, err = s.CreateRuleSet(ctx, domain.RuleSet{
		StudyID: "sleep", RuleType: domain.RuleScheduling, Name: "baseline_visit", Status: domain.StatusPublished,
		Expression: map[string]any{
			"when": map[string]any{
				"op": ">=", "left": map[string]any{"var": "answers.age"}, "right": map[string]any{"value": float64(18)},
			},
			"plan": map[string]any{"visit": "baseline", "offset_days": float64(7)},
		},
	})
	require.NoError(t, err)

	return tpl
}

// S1 — sleep pipeline, happy path.
func TestSubmitSleepPipelineHappyPath(t *testing.T) {
	s := memory.New()
	tpl := seedSleepStudy(t, s)
	fixedNow := time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)

	audit := &noopAudit{}
	orch := &intake.Orchestrator{Store: s, Audit: audit, Clock: func() time.Time { return fixedNow }}

	env, err := orch.Submit(context.Background(), "sleep", "p1", intake.SubmitPayload{
		FormTemplateID: tpl.ID,
		Answers: map[string]any{
			"age":         float64(24),
			"sleep_start": "22:00",
			"sleep_end":   "06:00",
		},
	})
	require.NoError(t, err)

	require.Equal(t, 480, env.Computed["sleep_duration"])
	require.Len(t, env.RuleEvaluations, 3)
	for _, re := range env.RuleEvaluations {
		require.True(t, re.Result)
	}
	require.Equal(t, []intake.AssignmentView{{GroupKey: "cohort", GroupValue: "young-adult"}}, env.Assignments)
	require.NotNil(t, env.SchedulePlan)
	require.Len(t, env.SchedulePlan.Plans, 1)
	plan := env.SchedulePlan.Plans[0].(map[string]any)
	require.Equal(t, "baseline", plan["visit"])
	require.Equal(t, float64(7), plan["offset_days"])

	require.Len(t, audit.logs, 1)
	require.Equal(t, "intake_submitted", audit.logs[0].Action)
}

// S5 — validation failure: no submission row, no audit record.
func TestSubmitValidationFailureWritesNothing(t *testing.T) {
	s := memory.New()
	tpl := seedSleepStudy(t, s)
	audit := &noopAudit{}
	orch := &intake.Orchestrator{Store: s, Audit: audit}

	_, err := orch.Submit(context.Background(), "sleep", "p2", intake.SubmitPayload{
		FormTemplateID: tpl.ID,
		Answers:        map[string]any{"age": float64(15), "sleep_start": "22:00", "sleep_end": "06:00"},
	})
	require.Error(t, err)

	_, lookupErr := s.LatestFormSubmission(context.Background(), "sleep", "p2")
	require.Error(t, lookupErr)
	require.Empty(t, audit.logs)
}

// S6 — compute cycle fails the whole compute phase, no ComputedValue rows.
func TestSubmitComputeCycleFails(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	tpl, err := s.CreateFormTemplate(ctx, domain.FormTemplate{StudyID: "cyc", Name: "intake"})
	require.NoError(t, err)
	_, err = s.CreateComputeDefinition(ctx, domain.ComputeDefinition{
		StudyID: "cyc", Key: "a", Status: domain.StatusPublished,
		Definition: map[string]any{"op": "add", "args": []any{
			map[string]any{"var": "computed.b"}, map[string]any{"value": float64(1)},
		}},
	})
	require.NoError(t, err)
	_, err = s.CreateComputeDefinition(ctx, domain.ComputeDefinition{
		StudyID: "cyc", Key: "b", Status: domain.StatusPublished,
		Definition: map[string]any{"op": "add", "args": []any{
			map[string]any{"var": "computed.a"}, map[string]any{"value": float64(1)},
		}},
	})
	require.NoError(t, err)

	orch := &intake.Orchestrator{Store: s}
	sub, err := orch.Submit(ctx, "cyc", "p1", intake.SubmitPayload{FormTemplateID: tpl.ID, Answers: map[string]any{}})
	require.Error(t, err)
	require.Empty(t, sub.Computed)

	submitted, lookupErr := s.LatestFormSubmission(ctx, "cyc", "p1")
	require.NoError(t, lookupErr)
	values, err := s.ListComputedValues(ctx, submitted.ID)
	require.NoError(t, err)
	require.Empty(t, values)
}
