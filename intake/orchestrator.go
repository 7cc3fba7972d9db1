// Copyright 2026 The Fieldform Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package intake implements C5, the intake orchestrator (spec.md
// §4.5): it validates a participant's answers against a form
// template, persists the submission, runs the compute graph, then
// evaluates every published rule set for the study and persists the
// resulting evaluations, group assignments, and schedule plan.
package intake

import (
	"context"
	"log/slog"
	"time"

	"github.com/binaek/gocoll/collection"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fieldform-sh/fieldform/compute"
	"github.com/fieldform-sh/fieldform/domain"
	"github.com/fieldform-sh/fieldform/expr"
	fieldotel "github.com/fieldform-sh/fieldform/otel"
	"github.com/fieldform-sh/fieldform/pathresolve"
	"github.com/fieldform-sh/fieldform/store"
	"github.com/fieldform-sh/fieldform/validate"
	"github.com/fieldform-sh/fieldform/xerr"
)

// Clock is injected so tests can pin "now".
type Clock func() time.Time

// AuditSink is the subset of internal/audit.Emitter the orchestrator
// needs — kept narrow so tests can stub it without pulling in the
// worker pool.
type AuditSink interface {
	Emit(ctx context.Context, l domain.AuditLog)
}

// Orchestrator wires the store and the C2/C3/C4 evaluators together
// into the pipeline described by spec.md §4.5.
type Orchestrator struct {
	Store   store.Store
	Audit   AuditSink
	Clock   Clock
	Log     *slog.Logger
	Metrics *fieldotel.IntakeMetrics
	Tracer  trace.Tracer

	// InvalidateResult, if set, is called after a successful submit so
	// a cached C6 result for (studyID, participantID) does not go stale.
	InvalidateResult func(studyID, participantID string)
}

// Submit runs the full intake pipeline for one participant answer set.
func (o *Orchestrator) Submit(ctx context.Context, studyID, participantID string, payload SubmitPayload) (Envelope, error) {
	ctx, span := o.tracer().Start(ctx, "intake.Submit")
	defer span.End()

	start := time.Now()
	if o.Metrics != nil {
		o.Metrics.ActiveIntakes.Add(ctx, 1)
		defer o.Metrics.ActiveIntakes.Add(ctx, -1)
	}
	outcome := "error"
	defer func() {
		if o.Metrics != nil {
			elapsedMS := float64(time.Since(start)) / float64(time.Millisecond)
			o.Metrics.IntakeDuration.Record(ctx, elapsedMS)
			o.Metrics.IntakeCount.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		}
		o.logger().Info("intake submit finished",
			"study_id", studyID, "participant_id", participantID, "outcome", outcome)
	}()

	tpl, err := o.Store.GetFormTemplate(ctx, studyID, payload.FormTemplateID)
	if err != nil {
		return Envelope{}, err
	}

	fields, err := o.Store.ListFormFields(ctx, tpl.ID)
	if err != nil {
		return Envelope{}, err
	}

	if issues := validate.Answers(fields, payload.Answers); len(issues) > 0 {
		outcome = "validation_failed"
		return Envelope{}, xerr.ErrValidationFailed(issues)
	}

	now := o.clock()()

	submission, err := o.Store.CreateFormSubmission(ctx, domain.FormSubmission{
		StudyID:        studyID,
		ParticipantID:  participantID,
		FormTemplateID: tpl.ID,
		Answers:        payload.Answers,
		SubmittedAt:    now,
	})
	if err != nil {
		return Envelope{}, err
	}

	metadata := map[string]any{
		"study_id":         studyID,
		"participant_id":   participantID,
		"form_template_id": tpl.ID,
		"submission_id":    submission.ID,
		"submitted_at":     now,
	}
	for k, v := range payload.Metadata {
		metadata[k] = v
	}

	computedValues, computeDefs, err := o.runCompute(ctx, studyID, payload.Answers, metadata)
	if err != nil {
		return Envelope{}, err
	}
	for _, d := range computeDefs {
		if _, err := o.Store.CreateComputedValue(ctx, domain.ComputedValue{
			SubmissionID: submission.ID,
			Key:          d.Key,
			Value:        computedValues[d.Key],
			ComputedAt:   now,
		}); err != nil {
			return Envelope{}, err
		}
	}

	evalScope := pathresolve.Scope{
		"answers":  payload.Answers,
		"computed": computedValues,
		"metadata": metadata,
	}

	ruleSets, err := o.Store.ListPublishedRuleSets(ctx, studyID)
	if err != nil {
		return Envelope{}, err
	}

	var ruleEvals []RuleEvalView
	var assignments []AssignmentView
	var schedulePlans []any

	for _, rs := range ruleSets {
		predicate := resolvePredicate(rs)
		predExpr, err := buildPredicateExpr(predicate)
		if err != nil {
			return Envelope{}, xerr.ErrInvalidPayload("rule set %d has an unparseable predicate: %v", rs.ID, err)
		}
		matched := expr.Evaluate(predExpr, evalScope)

		detail := map[string]any{
			"rule_set_id": rs.ID,
			"rule_type":   rs.RuleType,
			"name":        rs.Name,
			"matched":     matched,
		}

		if matched && rs.RuleType == domain.RuleGroupAssignment {
			if a, ok := resolveAssignment(rs.Expression); ok {
				detail["assignment"] = map[string]any{"key": a.Key, "value": a.Value}
				if _, err := o.Store.CreateParticipantAssignment(ctx, domain.ParticipantAssignment{
					ParticipantID: participantID,
					StudyID:       studyID,
					GroupKey:      a.Key,
					GroupValue:    a.Value,
					AssignedAt:    now,
				}); err != nil {
					return Envelope{}, err
				}
				assignments = append(assignments, AssignmentView{GroupKey: a.Key, GroupValue: a.Value})
			}
		}

		if matched && rs.RuleType == domain.RuleScheduling {
			plan := resolvePlan(rs.Expression)
			detail["plan"] = plan
			schedulePlans = append(schedulePlans, plan)
		}

		created, err := o.Store.CreateRuleEvaluation(ctx, domain.RuleEvaluation{
			SubmissionID: submission.ID,
			RuleSetID:    rs.ID,
			Result:       matched,
			Detail:       detail,
			EvaluatedAt:  now,
		})
		if err != nil {
			return Envelope{}, err
		}
		ruleEvals = append(ruleEvals, RuleEvalView{RuleSetID: created.RuleSetID, Result: created.Result, Detail: created.Detail})
	}

	var planEnvelope *SchedulePlan
	if len(schedulePlans) > 0 {
		planEnvelope = &SchedulePlan{Plans: schedulePlans}
		if _, err := o.Store.CreateSchedulePlan(ctx, domain.SchedulePlan{
			ParticipantID: participantID,
			StudyID:       studyID,
			Plan:          map[string]any{"plans": schedulePlans},
			CreatedAt:     now,
		}); err != nil {
			return Envelope{}, err
		}
	}

	if o.Audit != nil {
		o.Audit.Emit(ctx, domain.AuditLog{
			StudyID:       &studyID,
			ParticipantID: &participantID,
			Action:        "intake_submitted",
			EntityType:    "form_submission",
			Detail: map[string]any{
				"form_template_id": tpl.ID,
				"computed_keys": collection.Map(
					collection.From(computeDefs...),
					func(d compute.Definition) string { return d.Key },
				).Elements(),
				"rule_count":       len(ruleSets),
			},
			CreatedAt: now,
		})
	}

	if o.InvalidateResult != nil {
		o.InvalidateResult(studyID, participantID)
	}

	outcome = "ok"
	return Envelope{
		Submission: SubmissionView{
			ID:             submission.ID,
			StudyID:        submission.StudyID,
			ParticipantID:  submission.ParticipantID,
			FormTemplateID: submission.FormTemplateID,
			SubmittedAt:    submission.SubmittedAt.Format(time.RFC3339),
		},
		Answers:         payload.Answers,
		Computed:        computedValues,
		RuleEvaluations: ruleEvals,
		Assignments:     assignments,
		SchedulePlan:    planEnvelope,
	}, nil
}

func (o *Orchestrator) runCompute(ctx context.Context, studyID string, answers, metadata map[string]any) (map[string]any, []compute.Definition, error) {
	raw, err := o.Store.ListPublishedComputeDefinitions(ctx, studyID)
	if err != nil {
		return nil, nil, err
	}

	defs := make([]compute.Definition, 0, len(raw))
	for _, d := range raw {
		e, err := compute.FromMap(d.Definition)
		if err != nil {
			return nil, nil, xerr.ErrInvalidPayload("compute definition %q is unparseable: %v", d.Key, err)
		}
		defs = append(defs, compute.Definition{Key: d.Key, Expr: e})
	}

	engine := compute.NewEngine(defs)
	scope := pathresolve.Scope{
		"answers":  answers,
		"computed": map[string]any{},
		"metadata": metadata,
	}
	values, err := engine.Resolve(scope)
	if err != nil {
		return nil, nil, err
	}
	return values, defs, nil
}

func (o *Orchestrator) clock() Clock {
	if o.Clock != nil {
		return o.Clock
	}
	return time.Now
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.Default()
}

func (o *Orchestrator) tracer() trace.Tracer {
	if o.Tracer != nil {
		return o.Tracer
	}
	return otel.Tracer("fieldform/intake")
}
