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

// Package domain holds the entity types shared by the store and the
// evaluation pipeline. Every type here maps onto one table described
// in spec.md §3 and §6; the package owns no behavior beyond small
// constructors and enum validation.
package domain

import "time"

// FormTemplateStatus is the lifecycle state of a FormTemplate.
type FormTemplateStatus string

const (
	FormTemplateDraft    FormTemplateStatus = "draft"
	FormTemplatePublish  FormTemplateStatus = "published"
	FormTemplateArchived FormTemplateStatus = "archived"
)

// FieldType enumerates the answer types the validator understands.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldBoolean     FieldType = "boolean"
	FieldDate        FieldType = "date"
	FieldTime        FieldType = "time"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multi_select"
)

// RuleType enumerates the three kinds of RuleSet.
type RuleType string

const (
	RuleEligibility     RuleType = "eligibility"
	RuleGroupAssignment RuleType = "group_assignment"
	RuleScheduling      RuleType = "scheduling"
)

// DefinitionStatus applies to ComputeDefinition and RuleSet rows;
// only "published" rows are consumed during intake (spec.md §3).
type DefinitionStatus string

const (
	StatusDraft     DefinitionStatus = "draft"
	StatusPublished DefinitionStatus = "published"
	StatusArchived  DefinitionStatus = "archived"
)

type FormTemplate struct {
	ID        int64              `json:"id"`
	StudyID   string             `json:"study_id"`
	Name      string             `json:"name"`
	Version   int                `json:"version"`
	Status    FormTemplateStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

type FormField struct {
	ID             int64     `json:"id"`
	FormTemplateID int64     `json:"form_template_id"`
	Key            string    `json:"key"`
	Label          string    `json:"label"`
	Type           FieldType `json:"type"`
	Required       bool      `json:"required"`
	Options        []string  `json:"options,omitempty"`
	Validation     map[string]any `json:"validation,omitempty"`
	OrderIndex     int       `json:"order_index"`
}

type FormLogic struct {
	ID             int64          `json:"id"`
	FormTemplateID int64          `json:"form_template_id"`
	Logic          map[string]any `json:"logic"`
	OrderIndex     int            `json:"order_index"`
}

type ComputeDefinition struct {
	ID        int64            `json:"id"`
	StudyID   string           `json:"study_id"`
	Key       string           `json:"key"`
	Type      string           `json:"type"`
	Definition map[string]any  `json:"definition"`
	Version   int              `json:"version"`
	Status    DefinitionStatus `json:"status"`
}

type RuleSet struct {
	ID         int64            `json:"id"`
	StudyID    string           `json:"study_id"`
	RuleType   RuleType         `json:"rule_type"`
	Name       string           `json:"name"`
	Version    int              `json:"version"`
	Status     DefinitionStatus `json:"status"`
	Expression map[string]any   `json:"expression"`
	CreatedAt  time.Time        `json:"created_at"`
}

type FormSubmission struct {
	ID             int64          `json:"id"`
	StudyID        string         `json:"study_id"`
	ParticipantID  string         `json:"participant_id"`
	FormTemplateID int64          `json:"form_template_id"`
	Answers        map[string]any `json:"answers"`
	SubmittedAt    time.Time      `json:"submitted_at"`
}

type ComputedValue struct {
	ID           int64     `json:"id"`
	SubmissionID int64     `json:"submission_id"`
	Key          string    `json:"key"`
	Value        any       `json:"value"`
	ComputedAt   time.Time `json:"computed_at"`
}

type RuleEvaluation struct {
	ID           int64          `json:"id"`
	SubmissionID int64          `json:"submission_id"`
	RuleSetID    int64          `json:"rule_set_id"`
	Result       bool           `json:"result_bool"`
	Detail       map[string]any `json:"result_detail"`
	EvaluatedAt  time.Time      `json:"evaluated_at"`
}

type ParticipantAssignment struct {
	ID            int64     `json:"id"`
	ParticipantID string    `json:"participant_id"`
	StudyID       string    `json:"study_id"`
	GroupKey      string    `json:"group_key"`
	GroupValue    string    `json:"group_value"`
	AssignedAt    time.Time `json:"assigned_at"`
}

type SchedulePlan struct {
	ID            int64          `json:"id"`
	ParticipantID string         `json:"participant_id"`
	StudyID       string         `json:"study_id"`
	Plan          map[string]any `json:"plan"`
	CreatedAt     time.Time      `json:"created_at"`
}

type AuditLog struct {
	ID            int64          `json:"id"`
	StudyID       *string        `json:"study_id,omitempty"`
	ParticipantID *string        `json:"participant_id,omitempty"`
	Action        string         `json:"action"`
	EntityType    string         `json:"entity_type"`
	EntityID      *string        `json:"entity_id,omitempty"`
	Detail        map[string]any `json:"detail,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ValidFieldType reports whether t is one of the enumerated field types.
func ValidFieldType(t FieldType) bool {
	switch t {
	case FieldText, FieldNumber, FieldBoolean, FieldDate, FieldTime, FieldSelect, FieldMultiSelect:
		return true
	default:
		return false
	}
}

// ValidRuleType reports whether t is one of the enumerated rule types.
func ValidRuleType(t RuleType) bool {
	switch t {
	case RuleEligibility, RuleGroupAssignment, RuleScheduling:
		return true
	default:
		return false
	}
}
