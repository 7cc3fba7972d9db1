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

package intake

// SubmitPayload is the decoded body of an intake-submit request.
type SubmitPayload struct {
	FormTemplateID int64          `json:"form_template_id"`
	Answers        map[string]any `json:"answers"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Envelope is the response shape shared by intake-submit (§4.5) and
// intake-result (§4.6).
type Envelope struct {
	Submission      SubmissionView   `json:"submission"`
	Answers         map[string]any   `json:"answers"`
	Computed        map[string]any   `json:"computed"`
	RuleEvaluations []RuleEvalView   `json:"rule_evaluations"`
	Assignments     []AssignmentView `json:"assignments"`
	SchedulePlan    *SchedulePlan    `json:"schedule_plan"`
}

// SubmissionView is the subset of FormSubmission the envelope exposes.
type SubmissionView struct {
	ID             int64  `json:"id"`
	StudyID        string `json:"study_id"`
	ParticipantID  string `json:"participant_id"`
	FormTemplateID int64  `json:"form_template_id"`
	SubmittedAt    string `json:"submitted_at"`
}

// RuleEvalView is one evaluated rule set's outcome.
type RuleEvalView struct {
	RuleSetID int64          `json:"rule_set_id"`
	Result    bool           `json:"result"`
	Detail    map[string]any `json:"detail"`
}

// AssignmentView is one group assignment produced by a matched
// group_assignment rule.
type AssignmentView struct {
	GroupKey   string `json:"group_key"`
	GroupValue string `json:"group_value"`
}

// SchedulePlan wraps the plans produced by matched scheduling rules.
type SchedulePlan struct {
	Plans []any `json:"plans"`
}
