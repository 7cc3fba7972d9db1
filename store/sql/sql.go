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

// Package sqlstore is the database/sql-backed store.Store
// implementation (spec.md §6 "Persistence layer"). It targets either
// the MySQL wire protocol (github.com/go-sql-driver/mysql) or an
// embedded Dolt database (github.com/dolthub/driver, registered under
// the driver name "dolt"), mirroring the dual-backend store selection
// the steveyegge-beads project offers for its own issue store.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/dolthub/driver"
	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"github.com/fieldform-sh/fieldform/domain"
	"github.com/fieldform-sh/fieldform/store"
	"github.com/fieldform-sh/fieldform/xerr"
)

var _ store.Store = (*Store)(nil)

// Driver names the backend an Open call should connect with.
type Driver string

const (
	DriverMySQL Driver = "mysql"
	DriverDolt  Driver = "dolt"
)

// Store is a database/sql-backed store.Store. Construct with Open.
type Store struct {
	db *sql.DB
}

// Open connects to driver with dsn, runs the table migrations (each
// CREATE TABLE IF NOT EXISTS is idempotent, safe to run on every
// start), and returns a ready Store.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	switch driver {
	case DriverMySQL, DriverDolt:
	default:
		return nil, xerr.ErrInvalidPayload("unknown store driver %q: want %q or %q", driver, DriverMySQL, DriverDolt)
	}

	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s store", driver)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "ping %s store", driver)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "run migration")
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func marshalJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalJSONMap(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decode JSON column")
	}
	return out, nil
}

func unmarshalJSONStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decode JSON column")
	}
	return out, nil
}

func unmarshalJSONAny(raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decode JSON column")
	}
	return out, nil
}

// --- form_templates ---

func (s *Store) CreateFormTemplate(ctx context.Context, t domain.FormTemplate) (domain.FormTemplate, error) {
	if t.Version == 0 {
		t.Version = 1
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO form_templates (study_id, name, version, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.StudyID, t.Name, t.Version, t.Status, t.CreatedAt)
	if err != nil {
		return domain.FormTemplate{}, errors.Wrap(err, "insert form_template")
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return domain.FormTemplate{}, errors.Wrap(err, "read inserted form_template id")
	}
	return t, nil
}

func (s *Store) GetFormTemplate(ctx context.Context, studyID string, id int64) (domain.FormTemplate, error) {
	var t domain.FormTemplate
	row := s.db.QueryRowContext(ctx,
		`SELECT id, study_id, name, version, status, created_at FROM form_templates WHERE id = ? AND study_id = ?`,
		id, studyID)
	if err := row.Scan(&t.ID, &t.StudyID, &t.Name, &t.Version, &t.Status, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.FormTemplate{}, xerr.ErrTemplateNotFound(id)
		}
		return domain.FormTemplate{}, errors.Wrap(err, "query form_template")
	}
	return t, nil
}

// --- form_fields ---

func (s *Store) CreateFormField(ctx context.Context, f domain.FormField) (domain.FormField, error) {
	options, err := marshalJSON(f.Options)
	if err != nil {
		return domain.FormField{}, errors.Wrap(err, "encode form_field options")
	}
	validation, err := marshalJSON(f.Validation)
	if err != nil {
		return domain.FormField{}, errors.Wrap(err, "encode form_field validation")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO form_fields (form_template_id, field_key, label, field_type, required, options, validation, order_index)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.FormTemplateID, f.Key, f.Label, f.Type, f.Required, options, validation, f.OrderIndex)
	if err != nil {
		return domain.FormField{}, errors.Wrap(err, "insert form_field")
	}
	f.ID, err = res.LastInsertId()
	if err != nil {
		return domain.FormField{}, errors.Wrap(err, "read inserted form_field id")
	}
	return f, nil
}

func (s *Store) ListFormFields(ctx context.Context, formTemplateID int64) ([]domain.FormField, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, form_template_id, field_key, label, field_type, required, options, validation, order_index
		 FROM form_fields WHERE form_template_id = ? ORDER BY order_index ASC`, formTemplateID)
	if err != nil {
		return nil, errors.Wrap(err, "query form_fields")
	}
	defer rows.Close()

	var out []domain.FormField
	for rows.Next() {
		var f domain.FormField
		var options, validation []byte
		if err := rows.Scan(&f.ID, &f.FormTemplateID, &f.Key, &f.Label, &f.Type, &f.Required, &options, &validation, &f.OrderIndex); err != nil {
			return nil, errors.Wrap(err, "scan form_field")
		}
		if f.Options, err = unmarshalJSONStrings(options); err != nil {
			return nil, err
		}
		if f.Validation, err = unmarshalJSONMap(validation); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// --- form_logic ---

func (s *Store) CreateFormLogic(ctx context.Context, l domain.FormLogic) (domain.FormLogic, error) {
	logic, err := marshalJSON(l.Logic)
	if err != nil {
		return domain.FormLogic{}, errors.Wrap(err, "encode form_logic")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO form_logic (form_template_id, logic, order_index) VALUES (?, ?, ?)`,
		l.FormTemplateID, logic, l.OrderIndex)
	if err != nil {
		return domain.FormLogic{}, errors.Wrap(err, "insert form_logic")
	}
	l.ID, err = res.LastInsertId()
	if err != nil {
		return domain.FormLogic{}, errors.Wrap(err, "read inserted form_logic id")
	}
	return l, nil
}

func (s *Store) ListFormLogic(ctx context.Context, formTemplateID int64) ([]domain.FormLogic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, form_template_id, logic, order_index FROM form_logic WHERE form_template_id = ? ORDER BY order_index ASC`,
		formTemplateID)
	if err != nil {
		return nil, errors.Wrap(err, "query form_logic")
	}
	defer rows.Close()

	var out []domain.FormLogic
	for rows.Next() {
		var l domain.FormLogic
		var logic []byte
		if err := rows.Scan(&l.ID, &l.FormTemplateID, &logic, &l.OrderIndex); err != nil {
			return nil, errors.Wrap(err, "scan form_logic")
		}
		if l.Logic, err = unmarshalJSONMap(logic); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// --- compute_definitions ---

// CreateComputeDefinition rejects a second published definition for
// the same (study_id, key) — same rule store/memory enforces, see
// spec.md §9 "Compute-definition key uniqueness".
func (s *Store) CreateComputeDefinition(ctx context.Context, d domain.ComputeDefinition) (domain.ComputeDefinition, error) {
	definition, err := marshalJSON(d.Definition)
	if err != nil {
		return domain.ComputeDefinition{}, errors.Wrap(err, "encode compute_definition")
	}
	if d.Status == domain.StatusPublished {
		var existing int
		row := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM compute_definitions WHERE study_id = ? AND definition_key = ? AND status = ?`,
			d.StudyID, d.Key, domain.StatusPublished)
		if err := row.Scan(&existing); err != nil {
			return domain.ComputeDefinition{}, errors.Wrap(err, "check compute_definition uniqueness")
		}
		if existing > 0 {
			return domain.ComputeDefinition{}, xerr.ErrInvalidPayload(
				"a published compute definition with key %q already exists for study %q", d.Key, d.StudyID)
		}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO compute_definitions (study_id, definition_key, definition_type, definition, version, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.StudyID, d.Key, d.Type, definition, d.Version, d.Status)
	if err != nil {
		return domain.ComputeDefinition{}, errors.Wrap(err, "insert compute_definition")
	}
	d.ID, err = res.LastInsertId()
	if err != nil {
		return domain.ComputeDefinition{}, errors.Wrap(err, "read inserted compute_definition id")
	}
	return d, nil
}

func (s *Store) ListPublishedComputeDefinitions(ctx context.Context, studyID string) ([]domain.ComputeDefinition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, study_id, definition_key, definition_type, definition, version, status
		 FROM compute_definitions WHERE study_id = ? AND status = ?`, studyID, domain.StatusPublished)
	if err != nil {
		return nil, errors.Wrap(err, "query compute_definitions")
	}
	defer rows.Close()

	var out []domain.ComputeDefinition
	for rows.Next() {
		var d domain.ComputeDefinition
		var definition []byte
		if err := rows.Scan(&d.ID, &d.StudyID, &d.Key, &d.Type, &definition, &d.Version, &d.Status); err != nil {
			return nil, errors.Wrap(err, "scan compute_definition")
		}
		if d.Definition, err = unmarshalJSONMap(definition); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// --- rule_sets ---

func (s *Store) CreateRuleSet(ctx context.Context, r domain.RuleSet) (domain.RuleSet, error) {
	expression, err := marshalJSON(r.Expression)
	if err != nil {
		return domain.RuleSet{}, errors.Wrap(err, "encode rule_set expression")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rule_sets (study_id, rule_type, name, version, status, expression, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.StudyID, r.RuleType, r.Name, r.Version, r.Status, expression, r.CreatedAt)
	if err != nil {
		return domain.RuleSet{}, errors.Wrap(err, "insert rule_set")
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return domain.RuleSet{}, errors.Wrap(err, "read inserted rule_set id")
	}
	return r, nil
}

func (s *Store) queryRuleSets(ctx context.Context, query string, args ...any) ([]domain.RuleSet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query rule_sets")
	}
	defer rows.Close()

	var out []domain.RuleSet
	for rows.Next() {
		var r domain.RuleSet
		var expression []byte
		if err := rows.Scan(&r.ID, &r.StudyID, &r.RuleType, &r.Name, &r.Version, &r.Status, &expression, &r.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan rule_set")
		}
		if r.Expression, err = unmarshalJSONMap(expression); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListPublishedRuleSets(ctx context.Context, studyID string) ([]domain.RuleSet, error) {
	return s.queryRuleSets(ctx,
		`SELECT id, study_id, rule_type, name, version, status, expression, created_at
		 FROM rule_sets WHERE study_id = ? AND status = ?`, studyID, domain.StatusPublished)
}

func (s *Store) ListRuleSets(ctx context.Context, studyID string) ([]domain.RuleSet, error) {
	return s.queryRuleSets(ctx,
		`SELECT id, study_id, rule_type, name, version, status, expression, created_at
		 FROM rule_sets WHERE study_id = ?`, studyID)
}

// --- form_submissions ---

func (s *Store) CreateFormSubmission(ctx context.Context, sub domain.FormSubmission) (domain.FormSubmission, error) {
	answers, err := marshalJSON(sub.Answers)
	if err != nil {
		return domain.FormSubmission{}, errors.Wrap(err, "encode form_submission answers")
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO form_submissions (study_id, participant_id, form_template_id, answers, submitted_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sub.StudyID, sub.ParticipantID, sub.FormTemplateID, answers, sub.SubmittedAt)
	if err != nil {
		return domain.FormSubmission{}, errors.Wrap(err, "insert form_submission")
	}
	sub.ID, err = res.LastInsertId()
	if err != nil {
		return domain.FormSubmission{}, errors.Wrap(err, "read inserted form_submission id")
	}
	return sub, nil
}

func (s *Store) LatestFormSubmission(ctx context.Context, studyID, participantID string) (domain.FormSubmission, error) {
	var sub domain.FormSubmission
	var answers []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT id, study_id, participant_id, form_template_id, answers, submitted_at
		 FROM form_submissions WHERE study_id = ? AND participant_id = ? ORDER BY id DESC LIMIT 1`,
		studyID, participantID)
	if err := row.Scan(&sub.ID, &sub.StudyID, &sub.ParticipantID, &sub.FormTemplateID, &answers, &sub.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.FormSubmission{}, xerr.ErrNotFound("no submission for study %q participant %q", studyID, participantID)
		}
		return domain.FormSubmission{}, errors.Wrap(err, "query form_submission")
	}
	var err error
	if sub.Answers, err = unmarshalJSONMap(answers); err != nil {
		return domain.FormSubmission{}, err
	}
	return sub, nil
}

// --- computed_values ---

// CreateComputedValue dedupes a repeat of the last row written for
// (submission_id, value_key) the same way store/memory does, so both
// backends give a retried compute step the same idempotent result.
func (s *Store) CreateComputedValue(ctx context.Context, v domain.ComputedValue) (domain.ComputedValue, error) {
	value, err := marshalJSON(v.Value)
	if err != nil {
		return domain.ComputedValue{}, errors.Wrap(err, "encode computed_value")
	}

	var existing domain.ComputedValue
	var existingValue []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT id, submission_id, value_key, value, computed_at FROM computed_values
		 WHERE submission_id = ? AND value_key = ? ORDER BY id DESC LIMIT 1`, v.SubmissionID, v.Key)
	switch scanErr := row.Scan(&existing.ID, &existing.SubmissionID, &existing.Key, &existingValue, &existing.ComputedAt); {
	case scanErr == nil && string(existingValue) == string(value):
		return existing, nil
	case scanErr != nil && !errors.Is(scanErr, sql.ErrNoRows):
		return domain.ComputedValue{}, errors.Wrap(scanErr, "check computed_value dedup")
	}

	if v.ComputedAt.IsZero() {
		v.ComputedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO computed_values (submission_id, value_key, value, computed_at) VALUES (?, ?, ?, ?)`,
		v.SubmissionID, v.Key, value, v.ComputedAt)
	if err != nil {
		return domain.ComputedValue{}, errors.Wrap(err, "insert computed_value")
	}
	v.ID, err = res.LastInsertId()
	if err != nil {
		return domain.ComputedValue{}, errors.Wrap(err, "read inserted computed_value id")
	}
	return v, nil
}

func (s *Store) ListComputedValues(ctx context.Context, submissionID int64) ([]domain.ComputedValue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, submission_id, value_key, value, computed_at FROM computed_values
		 WHERE submission_id = ? ORDER BY id ASC`, submissionID)
	if err != nil {
		return nil, errors.Wrap(err, "query computed_values")
	}
	defer rows.Close()

	var out []domain.ComputedValue
	for rows.Next() {
		var v domain.ComputedValue
		var value []byte
		if err := rows.Scan(&v.ID, &v.SubmissionID, &v.Key, &value, &v.ComputedAt); err != nil {
			return nil, errors.Wrap(err, "scan computed_value")
		}
		if v.Value, err = unmarshalJSONAny(value); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// --- rule_evaluations ---

func (s *Store) CreateRuleEvaluation(ctx context.Context, e domain.RuleEvaluation) (domain.RuleEvaluation, error) {
	detail, err := marshalJSON(e.Detail)
	if err != nil {
		return domain.RuleEvaluation{}, errors.Wrap(err, "encode rule_evaluation detail")
	}
	if e.EvaluatedAt.IsZero() {
		e.EvaluatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rule_evaluations (submission_id, rule_set_id, result_bool, result_detail, evaluated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.SubmissionID, e.RuleSetID, e.Result, detail, e.EvaluatedAt)
	if err != nil {
		return domain.RuleEvaluation{}, errors.Wrap(err, "insert rule_evaluation")
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return domain.RuleEvaluation{}, errors.Wrap(err, "read inserted rule_evaluation id")
	}
	return e, nil
}

func (s *Store) ListRuleEvaluations(ctx context.Context, submissionID int64) ([]domain.RuleEvaluation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, submission_id, rule_set_id, result_bool, result_detail, evaluated_at FROM rule_evaluations
		 WHERE submission_id = ? ORDER BY id ASC`, submissionID)
	if err != nil {
		return nil, errors.Wrap(err, "query rule_evaluations")
	}
	defer rows.Close()

	var out []domain.RuleEvaluation
	for rows.Next() {
		var e domain.RuleEvaluation
		var detail []byte
		if err := rows.Scan(&e.ID, &e.SubmissionID, &e.RuleSetID, &e.Result, &detail, &e.EvaluatedAt); err != nil {
			return nil, errors.Wrap(err, "scan rule_evaluation")
		}
		if e.Detail, err = unmarshalJSONMap(detail); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- participant_assignments ---

func (s *Store) CreateParticipantAssignment(ctx context.Context, a domain.ParticipantAssignment) (domain.ParticipantAssignment, error) {
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO participant_assignments (participant_id, study_id, group_key, group_value, assigned_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ParticipantID, a.StudyID, a.GroupKey, a.GroupValue, a.AssignedAt)
	if err != nil {
		return domain.ParticipantAssignment{}, errors.Wrap(err, "insert participant_assignment")
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return domain.ParticipantAssignment{}, errors.Wrap(err, "read inserted participant_assignment id")
	}
	return a, nil
}

func (s *Store) ListParticipantAssignments(ctx context.Context, studyID, participantID string) ([]domain.ParticipantAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, participant_id, study_id, group_key, group_value, assigned_at FROM participant_assignments
		 WHERE study_id = ? AND participant_id = ? ORDER BY assigned_at DESC`, studyID, participantID)
	if err != nil {
		return nil, errors.Wrap(err, "query participant_assignments")
	}
	defer rows.Close()

	var out []domain.ParticipantAssignment
	for rows.Next() {
		var a domain.ParticipantAssignment
		if err := rows.Scan(&a.ID, &a.ParticipantID, &a.StudyID, &a.GroupKey, &a.GroupValue, &a.AssignedAt); err != nil {
			return nil, errors.Wrap(err, "scan participant_assignment")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// --- schedule_plans ---

func (s *Store) CreateSchedulePlan(ctx context.Context, p domain.SchedulePlan) (domain.SchedulePlan, error) {
	plan, err := marshalJSON(p.Plan)
	if err != nil {
		return domain.SchedulePlan{}, errors.Wrap(err, "encode schedule_plan")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule_plans (participant_id, study_id, plan, created_at) VALUES (?, ?, ?, ?)`,
		p.ParticipantID, p.StudyID, plan, p.CreatedAt)
	if err != nil {
		return domain.SchedulePlan{}, errors.Wrap(err, "insert schedule_plan")
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return domain.SchedulePlan{}, errors.Wrap(err, "read inserted schedule_plan id")
	}
	return p, nil
}

func (s *Store) LatestSchedulePlan(ctx context.Context, studyID, participantID string) (domain.SchedulePlan, error) {
	var p domain.SchedulePlan
	var plan []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT id, participant_id, study_id, plan, created_at FROM schedule_plans
		 WHERE study_id = ? AND participant_id = ? ORDER BY id DESC LIMIT 1`, studyID, participantID)
	if err := row.Scan(&p.ID, &p.ParticipantID, &p.StudyID, &plan, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SchedulePlan{}, xerr.ErrNotFound("no schedule plan for study %q participant %q", studyID, participantID)
		}
		return domain.SchedulePlan{}, errors.Wrap(err, "query schedule_plan")
	}
	var err error
	if p.Plan, err = unmarshalJSONMap(plan); err != nil {
		return domain.SchedulePlan{}, err
	}
	return p, nil
}

// --- audit_logs ---

func (s *Store) CreateAuditLog(ctx context.Context, l domain.AuditLog) (domain.AuditLog, error) {
	detail, err := marshalJSON(l.Detail)
	if err != nil {
		return domain.AuditLog{}, errors.Wrap(err, "encode audit_log detail")
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (study_id, participant_id, action, entity_type, entity_id, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.StudyID, l.ParticipantID, l.Action, l.EntityType, l.EntityID, detail, l.CreatedAt)
	if err != nil {
		return domain.AuditLog{}, errors.Wrap(err, "insert audit_log")
	}
	l.ID, err = res.LastInsertId()
	if err != nil {
		return domain.AuditLog{}, errors.Wrap(err, "read inserted audit_log id")
	}
	return l, nil
}
