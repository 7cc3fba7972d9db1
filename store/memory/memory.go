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

// Package memory is the in-process store.Store implementation: one
// sync.RWMutex guarding a set of slices/maps and monotonic integer
// ids, in the shape of the teacher's index.Index.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/fieldform-sh/fieldform/domain"
	"github.com/fieldform-sh/fieldform/store"
	"github.com/fieldform-sh/fieldform/xerr"
)

var _ store.Store = (*Store)(nil)

// Store is an in-memory, mutex-guarded store.Store. The zero value is
// not usable; construct with New.
type Store struct {
	lock *sync.RWMutex

	nextID int64

	formTemplates []domain.FormTemplate
	formFields    []domain.FormField
	formLogic     []domain.FormLogic
	computeDefs   []domain.ComputeDefinition
	ruleSets      []domain.RuleSet
	submissions   []domain.FormSubmission
	computedVals  []domain.ComputedValue
	ruleEvals     []domain.RuleEvaluation
	assignments   []domain.ParticipantAssignment
	schedulePlans []domain.SchedulePlan
	auditLogs     []domain.AuditLog
}

func New() *Store {
	return &Store{lock: &sync.RWMutex{}}
}

func (s *Store) allocID() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateFormTemplate(ctx context.Context, t domain.FormTemplate) (domain.FormTemplate, error) {
	if err := ctx.Err(); err != nil {
		return domain.FormTemplate{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	t.ID = s.allocID()
	s.formTemplates = append(s.formTemplates, t)
	return t, nil
}

func (s *Store) GetFormTemplate(ctx context.Context, studyID string, id int64) (domain.FormTemplate, error) {
	if err := ctx.Err(); err != nil {
		return domain.FormTemplate{}, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, t := range s.formTemplates {
		if t.ID == id && t.StudyID == studyID {
			return t, nil
		}
	}
	return domain.FormTemplate{}, xerr.ErrTemplateNotFound(id)
}

func (s *Store) CreateFormField(ctx context.Context, f domain.FormField) (domain.FormField, error) {
	if err := ctx.Err(); err != nil {
		return domain.FormField{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	f.ID = s.allocID()
	s.formFields = append(s.formFields, f)
	return f, nil
}

func (s *Store) ListFormFields(ctx context.Context, formTemplateID int64) ([]domain.FormField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	var out []domain.FormField
	for _, f := range s.formFields {
		if f.FormTemplateID == formTemplateID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *Store) CreateFormLogic(ctx context.Context, l domain.FormLogic) (domain.FormLogic, error) {
	if err := ctx.Err(); err != nil {
		return domain.FormLogic{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	l.ID = s.allocID()
	s.formLogic = append(s.formLogic, l)
	return l, nil
}

func (s *Store) ListFormLogic(ctx context.Context, formTemplateID int64) ([]domain.FormLogic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	var out []domain.FormLogic
	for _, l := range s.formLogic {
		if l.FormTemplateID == formTemplateID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

// CreateComputeDefinition rejects a second published definition for
// the same (study_id, key): two simultaneously published compute
// definitions sharing a key would make a compute scope's value for
// that key ambiguous.
func (s *Store) CreateComputeDefinition(ctx context.Context, d domain.ComputeDefinition) (domain.ComputeDefinition, error) {
	if err := ctx.Err(); err != nil {
		return domain.ComputeDefinition{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if d.Status == domain.StatusPublished {
		for _, existing := range s.computeDefs {
			if existing.StudyID == d.StudyID && existing.Key == d.Key && existing.Status == domain.StatusPublished {
				return domain.ComputeDefinition{}, xerr.ErrInvalidPayload(
					"a published compute definition with key %q already exists for study %q", d.Key, d.StudyID)
			}
		}
	}

	d.ID = s.allocID()
	s.computeDefs = append(s.computeDefs, d)
	return d, nil
}

func (s *Store) ListPublishedComputeDefinitions(ctx context.Context, studyID string) ([]domain.ComputeDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	var out []domain.ComputeDefinition
	for _, d := range s.computeDefs {
		if d.StudyID == studyID && d.Status == domain.StatusPublished {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) CreateRuleSet(ctx context.Context, r domain.RuleSet) (domain.RuleSet, error) {
	if err := ctx.Err(); err != nil {
		return domain.RuleSet{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	r.ID = s.allocID()
	s.ruleSets = append(s.ruleSets, r)
	return r, nil
}

func (s *Store) ListPublishedRuleSets(ctx context.Context, studyID string) ([]domain.RuleSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	var out []domain.RuleSet
	for _, r := range s.ruleSets {
		if r.StudyID == studyID && r.Status == domain.StatusPublished {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ListRuleSets(ctx context.Context, studyID string) ([]domain.RuleSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	var out []domain.RuleSet
	for _, r := range s.ruleSets {
		if r.StudyID == studyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) CreateFormSubmission(ctx context.Context, sub domain.FormSubmission) (domain.FormSubmission, error) {
	if err := ctx.Err(); err != nil {
		return domain.FormSubmission{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	sub.ID = s.allocID()
	s.submissions = append(s.submissions, sub)
	return sub, nil
}

// LatestFormSubmission returns the submission for (studyID,
// participantID) with the highest id — the tie-break rule spec.md
// §4.6 specifies for "most recent".
func (s *Store) LatestFormSubmission(ctx context.Context, studyID, participantID string) (domain.FormSubmission, error) {
	if err := ctx.Err(); err != nil {
		return domain.FormSubmission{}, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	var best *domain.FormSubmission
	for i := range s.submissions {
		sub := &s.submissions[i]
		if sub.StudyID != studyID || sub.ParticipantID != participantID {
			continue
		}
		if best == nil || sub.ID > best.ID {
			best = sub
		}
	}
	if best == nil {
		return domain.FormSubmission{}, xerr.ErrNotFound("no submission for study %q participant %q", studyID, participantID)
	}
	return *best, nil
}

// CreateComputedValue guards against inserting a byte-for-byte
// duplicate of the last row written for (submissionID, key): the
// orchestrator's compute step never legitimately recomputes the same
// key twice within one submission, so a repeat is a caller retry
// rather than a new fact and is returned unchanged instead of
// appended again.
func (s *Store) CreateComputedValue(ctx context.Context, v domain.ComputedValue) (domain.ComputedValue, error) {
	if err := ctx.Err(); err != nil {
		return domain.ComputedValue{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	newHash, err := hashstructure.Hash(v.Value, hashstructure.FormatV2, nil)
	if err == nil {
		for i := len(s.computedVals) - 1; i >= 0; i-- {
			existing := s.computedVals[i]
			if existing.SubmissionID != v.SubmissionID {
				continue
			}
			if existing.Key != v.Key {
				continue
			}
			if existingHash, err := hashstructure.Hash(existing.Value, hashstructure.FormatV2, nil); err == nil && existingHash == newHash {
				return existing, nil
			}
			break
		}
	}

	v.ID = s.allocID()
	s.computedVals = append(s.computedVals, v)
	return v, nil
}

func (s *Store) ListComputedValues(ctx context.Context, submissionID int64) ([]domain.ComputedValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	var out []domain.ComputedValue
	for _, v := range s.computedVals {
		if v.SubmissionID == submissionID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateRuleEvaluation(ctx context.Context, e domain.RuleEvaluation) (domain.RuleEvaluation, error) {
	if err := ctx.Err(); err != nil {
		return domain.RuleEvaluation{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	e.ID = s.allocID()
	s.ruleEvals = append(s.ruleEvals, e)
	return e, nil
}

func (s *Store) ListRuleEvaluations(ctx context.Context, submissionID int64) ([]domain.RuleEvaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	var out []domain.RuleEvaluation
	for _, e := range s.ruleEvals {
		if e.SubmissionID == submissionID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateParticipantAssignment(ctx context.Context, a domain.ParticipantAssignment) (domain.ParticipantAssignment, error) {
	if err := ctx.Err(); err != nil {
		return domain.ParticipantAssignment{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	a.ID = s.allocID()
	s.assignments = append(s.assignments, a)
	return a, nil
}

func (s *Store) ListParticipantAssignments(ctx context.Context, studyID, participantID string) ([]domain.ParticipantAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	var out []domain.ParticipantAssignment
	for _, a := range s.assignments {
		if a.StudyID == studyID && a.ParticipantID == participantID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedAt.After(out[j].AssignedAt) })
	return out, nil
}

func (s *Store) CreateSchedulePlan(ctx context.Context, p domain.SchedulePlan) (domain.SchedulePlan, error) {
	if err := ctx.Err(); err != nil {
		return domain.SchedulePlan{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	p.ID = s.allocID()
	s.schedulePlans = append(s.schedulePlans, p)
	return p, nil
}

func (s *Store) LatestSchedulePlan(ctx context.Context, studyID, participantID string) (domain.SchedulePlan, error) {
	if err := ctx.Err(); err != nil {
		return domain.SchedulePlan{}, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	var best *domain.SchedulePlan
	for i := range s.schedulePlans {
		p := &s.schedulePlans[i]
		if p.StudyID != studyID || p.ParticipantID != participantID {
			continue
		}
		if best == nil || p.ID > best.ID {
			best = p
		}
	}
	if best == nil {
		return domain.SchedulePlan{}, xerr.ErrNotFound("no schedule plan for study %q participant %q", studyID, participantID)
	}
	return *best, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, l domain.AuditLog) (domain.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return domain.AuditLog{}, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	l.ID = s.allocID()
	s.auditLogs = append(s.auditLogs, l)
	return l, nil
}
