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

import (
	"fmt"

	"github.com/fieldform-sh/fieldform/domain"
	"github.com/fieldform-sh/fieldform/expr"
)

// resolvedAssignment is a matched group_assignment rule's {key, value}
// action payload, value already coerced to its stored string form.
type resolvedAssignment struct {
	Key   string
	Value string
}

// resolvePredicate extracts the predicate object for a RuleSet per
// its rule_type (spec.md §4.5, "Rule payload resolution").
func resolvePredicate(r domain.RuleSet) map[string]any {
	payload := r.Expression
	switch r.RuleType {
	case domain.RuleEligibility:
		if v := firstObject(payload, "expression", "criteria"); v != nil {
			return v
		}
		return payload
	default: // group_assignment, scheduling
		if v := firstObject(payload, "when", "expression", "criteria"); v != nil {
			return v
		}
		return payload
	}
}

// firstObject returns the first of keys present in m as a
// map[string]any, or nil if none are present/the right shape.
func firstObject(m map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if raw, ok := m[k]; ok {
			if obj, ok := raw.(map[string]any); ok {
				return obj
			}
		}
	}
	return nil
}

// resolveAssignment extracts the {key, value} action payload of a
// matched group_assignment rule, if any.
func resolveAssignment(payload map[string]any) (resolvedAssignment, bool) {
	if obj, ok := payload["assignment"].(map[string]any); ok {
		key, _ := obj["key"].(string)
		if key == "" {
			return resolvedAssignment{}, false
		}
		return resolvedAssignment{Key: key, Value: stringify(obj["value"])}, true
	}
	key, hasKey := payload["group_key"].(string)
	value, hasValue := payload["group_value"]
	if hasKey && hasValue && key != "" {
		return resolvedAssignment{Key: key, Value: stringify(value)}, true
	}
	return resolvedAssignment{}, false
}

// resolvePlan extracts the scheduling action payload of a matched
// scheduling rule.
func resolvePlan(payload map[string]any) any {
	if v, ok := payload["plan"]; ok {
		return v
	}
	if v, ok := payload["schedule"]; ok {
		return v
	}
	return payload
}

// stringify is the assignment-value coercion rule: always the string
// form of v, numbers normalized the way encoding/json decodes them
// (float64), never the verbatim typed value.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// buildPredicateExpr parses a predicate object into an evaluable tree.
func buildPredicateExpr(predicate map[string]any) (*expr.Expression, error) {
	return expr.FromMap(predicate)
}
