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

// Package store defines the persistence boundary over the ten tables
// described in spec.md §3/§6. Two implementations exist: store/memory
// (in-process, used by tests and `fieldform serve --store-driver memory`)
// and store/sql (database/sql over MySQL or an embedded Dolt database).
package store

import (
	"context"

	"github.com/fieldform-sh/fieldform/domain"
)

// Store is the full persistence surface the orchestrator (C5), the
// result assembler (C6), and the admin HTTP handlers depend on.
type Store interface {
	CreateFormTemplate(ctx context.Context, t domain.FormTemplate) (domain.FormTemplate, error)
	GetFormTemplate(ctx context.Context, studyID string, id int64) (domain.FormTemplate, error)

	CreateFormField(ctx context.Context, f domain.FormField) (domain.FormField, error)
	ListFormFields(ctx context.Context, formTemplateID int64) ([]domain.FormField, error)

	CreateFormLogic(ctx context.Context, l domain.FormLogic) (domain.FormLogic, error)
	ListFormLogic(ctx context.Context, formTemplateID int64) ([]domain.FormLogic, error)

	CreateComputeDefinition(ctx context.Context, d domain.ComputeDefinition) (domain.ComputeDefinition, error)
	ListPublishedComputeDefinitions(ctx context.Context, studyID string) ([]domain.ComputeDefinition, error)

	CreateRuleSet(ctx context.Context, r domain.RuleSet) (domain.RuleSet, error)
	ListPublishedRuleSets(ctx context.Context, studyID string) ([]domain.RuleSet, error)
	ListRuleSets(ctx context.Context, studyID string) ([]domain.RuleSet, error)

	CreateFormSubmission(ctx context.Context, s domain.FormSubmission) (domain.FormSubmission, error)
	LatestFormSubmission(ctx context.Context, studyID, participantID string) (domain.FormSubmission, error)

	CreateComputedValue(ctx context.Context, v domain.ComputedValue) (domain.ComputedValue, error)
	ListComputedValues(ctx context.Context, submissionID int64) ([]domain.ComputedValue, error)

	CreateRuleEvaluation(ctx context.Context, e domain.RuleEvaluation) (domain.RuleEvaluation, error)
	ListRuleEvaluations(ctx context.Context, submissionID int64) ([]domain.RuleEvaluation, error)

	CreateParticipantAssignment(ctx context.Context, a domain.ParticipantAssignment) (domain.ParticipantAssignment, error)
	ListParticipantAssignments(ctx context.Context, studyID, participantID string) ([]domain.ParticipantAssignment, error)

	CreateSchedulePlan(ctx context.Context, p domain.SchedulePlan) (domain.SchedulePlan, error)
	LatestSchedulePlan(ctx context.Context, studyID, participantID string) (domain.SchedulePlan, error)

	CreateAuditLog(ctx context.Context, l domain.AuditLog) (domain.AuditLog, error)
}
