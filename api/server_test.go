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

package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldform-sh/fieldform/api"
	"github.com/fieldform-sh/fieldform/assemble"
	"github.com/fieldform-sh/fieldform/domain"
	"github.com/fieldform-sh/fieldform/intake"
	"github.com/fieldform-sh/fieldform/store/memory"
)

func domainFormTemplate(study string) domain.FormTemplate {
	return domain.FormTemplate{StudyID: study, Name: "intake", Version: 1, Status: domain.FormTemplateDraft}
}

func domainFormField(formTemplateID int64, key string) domain.FormField {
	return domain.FormField{FormTemplateID: formTemplateID, Key: key, Label: key, Type: domain.FieldNumber, Required: true}
}

func newTestServer() (*api.Server, *memory.Store) {
	s := memory.New()
	orch := &intake.Orchestrator{Store: s, Clock: func() time.Time { return time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC) }}
	asm := assemble.New(s, time.Minute, 8)
	return &api.Server{Store: s, Orchestrator: orch, Assembler: asm}, s
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndGetFormTemplate(t *testing.T) {
	srv, _ := newTestServer()

	body, _ := json.Marshal(map[string]any{"name": "intake"})
	req := httptest.NewRequest(http.MethodPost, "/api/studies/s1/forms", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["form_template"]["id"].(float64)

	getReq := httptest.NewRequest(http.MethodGet, "/api/studies/s1/forms/1", nil)
	_ = id
	getRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(getRec, getReq)
	require.Equal(t, http.StatusOK, getRec.Code)
}

func TestCreateFormTemplateRejectsMissingName(t *testing.T) {
	srv, _ := newTestServer()
	body, _ := json.Marshal(map[string]any{})
	req := httptest.NewRequest(http.MethodPost, "/api/studies/s1/forms", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestIntakeSubmitAndResultEndToEnd(t *testing.T) {
	srv, s := newTestServer()
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	tpl, err := s.CreateFormTemplate(ctx, domainFormTemplate("sleep"))
	require.NoError(t, err)
	_, err = s.CreateFormField(ctx, domainFormField(tpl.ID, "age"))
	require.NoError(t, err)

	submitBody, _ := json.Marshal(map[string]any{
		"form_template_id": tpl.ID,
		"answers":          map[string]any{"age": float64(24)},
	})
	submitReq := httptest.NewRequest(http.MethodPost, "/api/studies/sleep/participants/p1/intake-submit", bytes.NewReader(submitBody))
	submitRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(submitRec, submitReq)
	require.Equal(t, http.StatusCreated, submitRec.Code)
	require.Equal(t, "*", submitRec.Header().Get("Access-Control-Allow-Origin"))

	resultReq := httptest.NewRequest(http.MethodGet, "/api/studies/sleep/participants/p1/intake-result", nil)
	resultRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(resultRec, resultReq)
	require.Equal(t, http.StatusOK, resultRec.Code)
}
