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
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fieldform-sh/fieldform/api/middleware"
	"github.com/fieldform-sh/fieldform/xerr"
)

// WriteError type-switches err to the xerr kind it carries and writes
// the matching ProblemDetails body, generalizing the teacher's
// writeErrorResponse helper to every kind this module raises (spec.md
// §7).
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, title := classify(err)

	ext := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if middleware.HasRequestIDInRequest(r) {
		ext["request_id"] = middleware.GetRequestIDFromRequest(r)
	}

	var validation xerr.ValidationFailedError
	if errors.As(err, &validation) {
		ext["errors"] = validation.Issues
	}

	pd := NewProblemDetails(
		fmt.Sprintf("https://fieldform.sh/problems/%d", status),
		title, err.Error(), r.URL.Path, status, ext)

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(pd)
}

func classify(err error) (int, string) {
	var invalidPayload xerr.InvalidPayloadError
	if errors.As(err, &invalidPayload) {
		return http.StatusBadRequest, "Invalid Payload"
	}
	var validation xerr.ValidationFailedError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, "Validation Failed"
	}
	var templateNotFound xerr.TemplateNotFoundError
	if errors.As(err, &templateNotFound) {
		return http.StatusNotFound, "Form Template Not Found"
	}
	var notFound xerr.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, "Not Found"
	}
	var cycle xerr.ComputeCycleError
	if errors.As(err, &cycle) {
		return http.StatusBadRequest, "Compute Cycle Detected"
	}
	var unavailable xerr.StoreUnavailableError
	if errors.As(err, &unavailable) {
		return http.StatusServiceUnavailable, "Store Unavailable"
	}
	return http.StatusInternalServerError, "Internal Server Error"
}
