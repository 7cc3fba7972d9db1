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

// Package validate implements C4, the answer validator (spec.md
// §4.4): it checks a raw {key → any} answer map against an ordered
// list of field definitions and reports every field-level issue it
// finds — it never short-circuits between fields.
package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fieldform-sh/fieldform/domain"
	"github.com/fieldform-sh/fieldform/xerr"
)

// Answers validates raw against fields, in field order, and returns
// every issue collected. A nil/empty slice means the answers are
// valid.
func Answers(fields []domain.FormField, raw map[string]any) []xerr.Issue {
	var issues []xerr.Issue
	for _, f := range fields {
		if issue, ok := validateField(f, raw); ok {
			issues = append(issues, issue)
		}
	}
	return issues
}

func validateField(f domain.FormField, raw map[string]any) (xerr.Issue, bool) {
	v, present := raw[f.Key]
	if isAbsent(v, present) {
		if f.Required {
			return xerr.Issue{Key: f.Key, Message: "Field is required"}, true
		}
		return xerr.Issue{}, false
	}

	if msg, ok := checkType(f, v); !ok {
		return xerr.Issue{Key: f.Key, Message: msg}, true
	}
	return xerr.Issue{}, false
}

func isAbsent(v any, present bool) bool {
	if !present || v == nil {
		return true
	}
	if s, ok := v.(string); ok && s == "" {
		return true
	}
	return false
}

var timePattern = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)

// checkType reports (message, false) on the first constraint failure
// for f's declared type, or ("", true) if v satisfies it.
func checkType(f domain.FormField, v any) (string, bool) {
	switch f.Type {
	case domain.FieldNumber:
		n, ok := coerceFiniteNumber(v)
		if !ok {
			return "Must be a number", false
		}
		if min, ok := numericConstraint(f.Validation, "min"); ok && n < min {
			return "Below minimum", false
		}
		if max, ok := numericConstraint(f.Validation, "max"); ok && n > max {
			return "Above maximum", false
		}
		return "", true

	case domain.FieldBoolean:
		if _, ok := v.(bool); !ok {
			return "Must be a boolean", false
		}
		return "", true

	case domain.FieldDate:
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return "Must be a date", false
		}
		if !parsesAsDate(s) {
			return "Must be a valid date", false
		}
		return "", true

	case domain.FieldTime:
		s, ok := v.(string)
		if !ok || !timePattern.MatchString(strings.TrimSpace(s)) {
			return "Must be a valid time", false
		}
		return "", true

	case domain.FieldSelect:
		s, ok := v.(string)
		if !ok {
			return "Must be one of the allowed options", false
		}
		if !contains(f.Options, s) {
			return "Must be one of the allowed options", false
		}
		return "", true

	case domain.FieldMultiSelect:
		seq, ok := asStringSequence(v)
		if !ok {
			return "Must be a list of allowed options", false
		}
		for _, s := range seq {
			if !contains(f.Options, s) {
				return "Must be a list of allowed options", false
			}
		}
		return "", true

	default: // text, and any unrecognized type, falls back to text rules
		s, ok := v.(string)
		if !ok {
			return "Must be text", false
		}
		if minLen, ok := intConstraint(f.Validation, "minLength"); ok && len(s) < minLen {
			return "Too short", false
		}
		if maxLen, ok := intConstraint(f.Validation, "maxLength"); ok && len(s) > maxLen {
			return "Too long", false
		}
		if pat, ok := stringConstraint(f.Validation, "pattern"); ok {
			if re, err := regexp.Compile(pat); err == nil && !re.MatchString(s) {
				return "Does not match the required pattern", false
			}
		}
		return "", true
	}
}

func coerceFiniteNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parsesAsDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}

func asStringSequence(v any) ([]string, bool) {
	seq, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, len(seq))
	for i, el := range seq {
		s, ok := el.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

func numericConstraint(validation map[string]any, key string) (float64, bool) {
	v, ok := validation[key]
	if !ok {
		return 0, false
	}
	return coerceFiniteNumber(v)
}

func intConstraint(validation map[string]any, key string) (int, bool) {
	f, ok := numericConstraint(validation, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func stringConstraint(validation map[string]any, key string) (string, bool) {
	v, ok := validation[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
