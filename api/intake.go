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
	"net/http"

	"github.com/fieldform-sh/fieldform/intake"
	"github.com/fieldform-sh/fieldform/xerr"
)

// setCORS mirrors the teacher's handleDecision: the intake endpoints
// are the ones a browser-based admin UI calls directly, so they carry
// permissive CORS headers; the admin CRUD endpoints do not.
func setCORS(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func (s *Server) handleIntakeSubmit(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "POST")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	study := r.PathValue("study")
	participant := r.PathValue("pid")

	var payload intake.SubmitPayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}
	if payload.FormTemplateID == 0 {
		WriteError(w, r, xerr.ErrInvalidPayload("form_template_id is required"))
		return
	}

	env, err := s.Orchestrator.Submit(r.Context(), study, participant, payload)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, env)
}

func (s *Server) handleIntakeResult(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "GET")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	study := r.PathValue("study")
	participant := r.PathValue("pid")

	env, err := s.Assembler.Result(r.Context(), study, participant)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}
