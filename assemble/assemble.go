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

// Package assemble implements C6, the result assembler (spec.md
// §4.6): given (study_id, participant_id), it finds the most recent
// submission and joins it with its computed values, rule evaluations,
// assignments, and schedule plan into the same envelope shape the
// orchestrator (C5) returns.
package assemble

import (
	"context"
	"errors"
	"time"

	"github.com/binaek/perch"

	"github.com/fieldform-sh/fieldform/intake"
	"github.com/fieldform-sh/fieldform/store"
	"github.com/fieldform-sh/fieldform/xerr"
)

// Assembler fronts store lookups with a bounded TTL cache so a result
// polled repeatedly by a client does not re-run every join each time.
type Assembler struct {
	Store store.Store
	TTL   time.Duration
	cache *perch.Perch[intake.Envelope]
}

// New builds an Assembler with a cache of the given capacity (number
// of distinct (study, participant) results held at once).
func New(s store.Store, ttl time.Duration, cacheCapacity int) *Assembler {
	if cacheCapacity <= 0 {
		cacheCapacity = 1
	}
	return &Assembler{Store: s, TTL: ttl, cache: perch.New[intake.Envelope](cacheCapacity)}
}

// Result returns the latest submission's envelope for (studyID,
// participantID), serving from cache when fresh.
func (a *Assembler) Result(ctx context.Context, studyID, participantID string) (intake.Envelope, error) {
	key := cacheKey(studyID, participantID)
	return a.cache.Get(ctx, key, a.TTL, func(ctx context.Context, _ string) (intake.Envelope, error) {
		return a.load(ctx, studyID, participantID)
	})
}

// Invalidate evicts a cached result so the next Result call reloads
// from the store — called by the orchestrator after a new submission.
func (a *Assembler) Invalidate(studyID, participantID string) {
	a.cache.Delete(cacheKey(studyID, participantID))
}

func cacheKey(studyID, participantID string) string {
	return studyID + "\x00" + participantID
}

func (a *Assembler) load(ctx context.Context, studyID, participantID string) (intake.Envelope, error) {
	submission, err := a.Store.LatestFormSubmission(ctx, studyID, participantID)
	if err != nil {
		return intake.Envelope{}, err
	}

	computedRows, err := a.Store.ListComputedValues(ctx, submission.ID)
	if err != nil {
		return intake.Envelope{}, err
	}
	computed := make(map[string]any, len(computedRows))
	for _, c := range computedRows {
		computed[c.Key] = c.Value
	}

	evalRows, err := a.Store.ListRuleEvaluations(ctx, submission.ID)
	if err != nil {
		return intake.Envelope{}, err
	}
	ruleEvals := make([]intake.RuleEvalView, 0, len(evalRows))
	for _, e := range evalRows {
		ruleEvals = append(ruleEvals, intake.RuleEvalView{RuleSetID: e.RuleSetID, Result: e.Result, Detail: e.Detail})
	}

	assignmentRows, err := a.Store.ListParticipantAssignments(ctx, studyID, participantID)
	if err != nil {
		return intake.Envelope{}, err
	}
	assignments := make([]intake.AssignmentView, 0, len(assignmentRows))
	for _, row := range assignmentRows {
		assignments = append(assignments, intake.AssignmentView{GroupKey: row.GroupKey, GroupValue: row.GroupValue})
	}

	var planEnvelope *intake.SchedulePlan
	plan, err := a.Store.LatestSchedulePlan(ctx, studyID, participantID)
	switch {
	case err == nil:
		if plans, ok := plan.Plan["plans"].([]any); ok {
			planEnvelope = &intake.SchedulePlan{Plans: plans}
		}
	case isNotFound(err):
		// no schedule plan for this participant: leave planEnvelope nil
	default:
		return intake.Envelope{}, err
	}

	return intake.Envelope{
		Submission: intake.SubmissionView{
			ID:             submission.ID,
			StudyID:        submission.StudyID,
			ParticipantID:  submission.ParticipantID,
			FormTemplateID: submission.FormTemplateID,
			SubmittedAt:    submission.SubmittedAt.Format(time.RFC3339),
		},
		Answers:         submission.Answers,
		Computed:        computed,
		RuleEvaluations: ruleEvals,
		Assignments:     assignments,
		SchedulePlan:    planEnvelope,
	}, nil
}

func isNotFound(err error) bool {
	var notFound xerr.NotFoundError
	return errors.As(err, &notFound)
}
