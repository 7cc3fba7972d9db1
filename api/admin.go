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

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fatih/structs"

	"github.com/fieldform-sh/fieldform/domain"
	"github.com/fieldform-sh/fieldform/xerr"
)

// These admin endpoints are, per spec.md's own scoping note, trivial
// insert wrappers: they check structural shape (required fields,
// enum membership) and delegate persistence to store.Store — no
// business logic of their own.

type createFormTemplateRequest struct {
	Name    string                    `json:"name"`
	Version int                       `json:"version"`
	Status  domain.FormTemplateStatus `json:"status"`
}

func (s *Server) handleCreateFormTemplate(w http.ResponseWriter, r *http.Request) {
	study := r.PathValue("study")
	var req createFormTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.Name == "" {
		WriteError(w, r, xerr.ErrInvalidPayload("name is required"))
		return
	}
	if req.Version == 0 {
		req.Version = 1
	}
	if req.Status == "" {
		req.Status = domain.FormTemplateDraft
	}

	created, err := s.Store.CreateFormTemplate(r.Context(), domain.FormTemplate{
		StudyID: study, Name: req.Name, Version: req.Version, Status: req.Status,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	s.auditAdmin(r, study, "form_template_created", "form_template", strconv.FormatInt(created.ID, 10), created)
	writeJSON(w, http.StatusCreated, map[string]any{"form_template": created})
}

func (s *Server) handleGetFormTemplate(w http.ResponseWriter, r *http.Request) {
	study := r.PathValue("study")
	id, err := strconv.ParseInt(r.PathValue("form_id"), 10, 64)
	if err != nil {
		WriteError(w, r, xerr.ErrInvalidPayload("form_id must be an integer"))
		return
	}
	tpl, err := s.Store.GetFormTemplate(r.Context(), study, id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"form_template": tpl})
}

type createFormFieldRequest struct {
	Key        string           `json:"key"`
	Label      string           `json:"label"`
	Type       domain.FieldType `json:"type"`
	Required   bool             `json:"required"`
	Options    []string         `json:"options"`
	Validation map[string]any   `json:"validation"`
	OrderIndex int              `json:"order_index"`
}

func (s *Server) handleCreateFormField(w http.ResponseWriter, r *http.Request) {
	study := r.PathValue("study")
	formID, err := strconv.ParseInt(r.PathValue("form_id"), 10, 64)
	if err != nil {
		WriteError(w, r, xerr.ErrInvalidPayload("form_id must be an integer"))
		return
	}
	var req createFormFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.Key == "" {
		WriteError(w, r, xerr.ErrInvalidPayload("key is required"))
		return
	}
	if !domain.ValidFieldType(req.Type) {
		WriteError(w, r, xerr.ErrInvalidPayload("unknown field type %q", req.Type))
		return
	}

	created, err := s.Store.CreateFormField(r.Context(), domain.FormField{
		FormTemplateID: formID, Key: req.Key, Label: req.Label, Type: req.Type,
		Required: req.Required, Options: req.Options, Validation: req.Validation, OrderIndex: req.OrderIndex,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	s.auditAdmin(r, study, "form_field_created", "form_field", strconv.FormatInt(created.ID, 10), created)
	writeJSON(w, http.StatusCreated, map[string]any{"form_field": created})
}

type createFormLogicRequest struct {
	Logic      map[string]any `json:"logic"`
	OrderIndex int            `json:"order_index"`
}

func (s *Server) handleCreateFormLogic(w http.ResponseWriter, r *http.Request) {
	study := r.PathValue("study")
	formID, err := strconv.ParseInt(r.PathValue("form_id"), 10, 64)
	if err != nil {
		WriteError(w, r, xerr.ErrInvalidPayload("form_id must be an integer"))
		return
	}
	var req createFormLogicRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.Logic == nil {
		WriteError(w, r, xerr.ErrInvalidPayload("logic is required"))
		return
	}

	created, err := s.Store.CreateFormLogic(r.Context(), domain.FormLogic{
		FormTemplateID: formID, Logic: req.Logic, OrderIndex: req.OrderIndex,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	s.auditAdmin(r, study, "form_logic_created", "form_logic", strconv.FormatInt(created.ID, 10), created)
	writeJSON(w, http.StatusCreated, map[string]any{"form_logic": created})
}

type createComputeDefinitionRequest struct {
	Key        string                  `json:"key"`
	Type       string                  `json:"type"`
	Definition map[string]any          `json:"definition"`
	Version    int                     `json:"version"`
	Status     domain.DefinitionStatus `json:"status"`
}

func (s *Server) handleCreateComputeDefinition(w http.ResponseWriter, r *http.Request) {
	study := r.PathValue("study")
	var req createComputeDefinitionRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.Key == "" {
		WriteError(w, r, xerr.ErrInvalidPayload("key is required"))
		return
	}
	if req.Definition == nil {
		WriteError(w, r, xerr.ErrInvalidPayload("definition is required"))
		return
	}
	if req.Version == 0 {
		req.Version = 1
	}
	if req.Status == "" {
		req.Status = domain.StatusDraft
	}

	created, err := s.Store.CreateComputeDefinition(r.Context(), domain.ComputeDefinition{
		StudyID: study, Key: req.Key, Type: req.Type, Definition: req.Definition,
		Version: req.Version, Status: req.Status,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	s.auditAdmin(r, study, "compute_definition_created", "compute_definition", strconv.FormatInt(created.ID, 10), created)
	writeJSON(w, http.StatusCreated, map[string]any{"compute_definition": created})
}

type createRuleSetRequest struct {
	RuleType   domain.RuleType         `json:"rule_type"`
	Name       string                  `json:"name"`
	Version    int                     `json:"version"`
	Status     domain.DefinitionStatus `json:"status"`
	Expression map[string]any          `json:"expression"`
}

func (s *Server) handleCreateRuleSet(w http.ResponseWriter, r *http.Request) {
	study := r.PathValue("study")
	var req createRuleSetRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if !domain.ValidRuleType(req.RuleType) {
		WriteError(w, r, xerr.ErrInvalidPayload("unknown rule_type %q", req.RuleType))
		return
	}
	if req.Name == "" {
		WriteError(w, r, xerr.ErrInvalidPayload("name is required"))
		return
	}
	if req.Expression == nil {
		WriteError(w, r, xerr.ErrInvalidPayload("expression is required"))
		return
	}
	if req.Version == 0 {
		req.Version = 1
	}
	if req.Status == "" {
		req.Status = domain.StatusDraft
	}

	created, err := s.Store.CreateRuleSet(r.Context(), domain.RuleSet{
		StudyID: study, RuleType: req.RuleType, Name: req.Name,
		Version: req.Version, Status: req.Status, Expression: req.Expression,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	s.auditAdmin(r, study, "rule_set_created", "rule_set", strconv.FormatInt(created.ID, 10), created)
	writeJSON(w, http.StatusCreated, map[string]any{"rule_set": created})
}

func (s *Server) handleListRuleSets(w http.ResponseWriter, r *http.Request) {
	study := r.PathValue("study")
	ruleSets, err := s.Store.ListRuleSets(r.Context(), study)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rule_sets": ruleSets})
}

// auditAdmin emits a best-effort audit record for an admin write,
// flattening the created entity into a map with fatih/structs the
// same way the teacher bridges a typed result into its scripting
// runtime's object model (runtime/modules.go's structs.Map usage).
func (s *Server) auditAdmin(r *http.Request, study, action, entityType, entityID string, entity any) {
	if s.Audit == nil {
		return
	}
	id := entityID
	s.Audit.Emit(r.Context(), domain.AuditLog{
		StudyID:    &study,
		Action:     action,
		EntityType: entityType,
		EntityID:   &id,
		Detail:     structs.Map(entity),
	})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return xerr.ErrInvalidPayload("request body is not valid JSON: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
