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

package sqlstore

// schema is the table layout for both backends: MySQL and Dolt both
// speak the MySQL wire protocol and accept the same DDL, including the
// JSON column type used for every opaque payload column (spec.md §6
// "opaque JSON columns").
var schema = []string{
	`CREATE TABLE IF NOT EXISTS form_templates (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		study_id VARCHAR(191) NOT NULL,
		name VARCHAR(255) NOT NULL,
		version INT NOT NULL DEFAULT 1,
		status VARCHAR(32) NOT NULL,
		created_at DATETIME NOT NULL,
		INDEX idx_form_templates_study (study_id)
	)`,
	`CREATE TABLE IF NOT EXISTS form_fields (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		form_template_id BIGINT NOT NULL,
		field_key VARCHAR(191) NOT NULL,
		label VARCHAR(255),
		field_type VARCHAR(32) NOT NULL,
		required BOOLEAN NOT NULL DEFAULT FALSE,
		options JSON,
		validation JSON,
		order_index INT NOT NULL DEFAULT 0,
		INDEX idx_form_fields_template (form_template_id)
	)`,
	`CREATE TABLE IF NOT EXISTS form_logic (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		form_template_id BIGINT NOT NULL,
		logic JSON NOT NULL,
		order_index INT NOT NULL DEFAULT 0,
		INDEX idx_form_logic_template (form_template_id)
	)`,
	`CREATE TABLE IF NOT EXISTS compute_definitions (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		study_id VARCHAR(191) NOT NULL,
		definition_key VARCHAR(191) NOT NULL,
		definition_type VARCHAR(64),
		definition JSON NOT NULL,
		version INT NOT NULL DEFAULT 1,
		status VARCHAR(32) NOT NULL,
		INDEX idx_compute_definitions_lookup (study_id, definition_key, status)
	)`,
	`CREATE TABLE IF NOT EXISTS rule_sets (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		study_id VARCHAR(191) NOT NULL,
		rule_type VARCHAR(32) NOT NULL,
		name VARCHAR(255) NOT NULL,
		version INT NOT NULL DEFAULT 1,
		status VARCHAR(32) NOT NULL,
		expression JSON NOT NULL,
		created_at DATETIME NOT NULL,
		INDEX idx_rule_sets_lookup (study_id, status)
	)`,
	`CREATE TABLE IF NOT EXISTS form_submissions (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		study_id VARCHAR(191) NOT NULL,
		participant_id VARCHAR(191) NOT NULL,
		form_template_id BIGINT NOT NULL,
		answers JSON NOT NULL,
		submitted_at DATETIME NOT NULL,
		INDEX idx_form_submissions_study (study_id),
		INDEX idx_form_submissions_latest (study_id, participant_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS computed_values (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		submission_id BIGINT NOT NULL,
		value_key VARCHAR(191) NOT NULL,
		value JSON,
		computed_at DATETIME NOT NULL,
		INDEX idx_computed_values_submission (submission_id)
	)`,
	`CREATE TABLE IF NOT EXISTS rule_evaluations (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		submission_id BIGINT NOT NULL,
		rule_set_id BIGINT NOT NULL,
		result_bool BOOLEAN NOT NULL,
		result_detail JSON,
		evaluated_at DATETIME NOT NULL,
		INDEX idx_rule_evaluations_submission (submission_id)
	)`,
	`CREATE TABLE IF NOT EXISTS participant_assignments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		participant_id VARCHAR(191) NOT NULL,
		study_id VARCHAR(191) NOT NULL,
		group_key VARCHAR(191) NOT NULL,
		group_value VARCHAR(255) NOT NULL,
		assigned_at DATETIME NOT NULL,
		INDEX idx_participant_assignments_lookup (participant_id, study_id)
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_plans (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		participant_id VARCHAR(191) NOT NULL,
		study_id VARCHAR(191) NOT NULL,
		plan JSON NOT NULL,
		created_at DATETIME NOT NULL,
		INDEX idx_schedule_plans_lookup (participant_id, study_id)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		study_id VARCHAR(191),
		participant_id VARCHAR(191),
		action VARCHAR(191) NOT NULL,
		entity_type VARCHAR(191) NOT NULL,
		entity_id VARCHAR(191),
		detail JSON,
		created_at DATETIME NOT NULL,
		INDEX idx_audit_logs_study (study_id)
	)`,
}
