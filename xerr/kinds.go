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

// Package xerr holds the error kinds surfaced by the intake engine
// (spec.md §7). Each kind is a distinct struct so callers can
// type-switch on it rather than match on message text.
package xerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Issue is a single field-level validation failure (C4).
type Issue struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// InvalidPayloadError is a structural violation of a request body.
type InvalidPayloadError struct{ Reason string }

func (e InvalidPayloadError) Error() string { return "invalid payload: " + e.Reason }

func ErrInvalidPayload(format string, args ...any) error {
	return errors.WithStack(InvalidPayloadError{Reason: fmt.Sprintf(format, args...)})
}

// ValidationFailedError carries the field issues collected by C4.
type ValidationFailedError struct{ Issues []Issue }

func (e ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed: %d issue(s)", len(e.Issues))
}

func ErrValidationFailed(issues []Issue) error {
	return errors.WithStack(ValidationFailedError{Issues: issues})
}

// TemplateNotFoundError is raised when intake-submit names a template
// that does not exist (or is not in the study's scope).
type TemplateNotFoundError struct{ FormTemplateID int64 }

func (e TemplateNotFoundError) Error() string {
	return fmt.Sprintf("form template not found: %d", e.FormTemplateID)
}

func ErrTemplateNotFound(id int64) error {
	return errors.WithStack(TemplateNotFoundError{FormTemplateID: id})
}

// NotFoundError is raised when an assembled result has nothing to assemble.
type NotFoundError struct{ Reason string }

func (e NotFoundError) Error() string { return "not found: " + e.Reason }

func ErrNotFound(format string, args ...any) error {
	return errors.WithStack(NotFoundError{Reason: fmt.Sprintf(format, args...)})
}

// ComputeCycleError names the compute definition key at which a
// dependency cycle was detected (C3).
type ComputeCycleError struct {
	Key  string
	Path []string
}

func (e ComputeCycleError) Error() string {
	return fmt.Sprintf("compute cycle detected at %q (path: %v)", e.Key, e.Path)
}

func ErrComputeCycle(key string, path []string) error {
	return errors.WithStack(ComputeCycleError{Key: key, Path: path})
}

// StoreUnavailableError is returned when the backing store has not
// been configured or cannot be reached.
type StoreUnavailableError struct{ Reason string }

func (e StoreUnavailableError) Error() string { return "store unavailable: " + e.Reason }

func ErrStoreUnavailable(format string, args ...any) error {
	return errors.WithStack(StoreUnavailableError{Reason: fmt.Sprintf(format, args...)})
}
