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

// Package pathresolve implements C1: mapping dotted variable paths
// (e.g. "answers.sleep.start") to values inside a submission's
// evaluation context (spec.md §4.1).
package pathresolve

import "strings"

// Scope is the evaluation context passed to Resolve: a map keyed by
// "answers", "computed", "metadata", each holding a nested
// string-keyed map.
type Scope map[string]any

// Resolve splits path on "." and walks nested string-keyed maps
// starting at scope[first segment]. Any missing intermediate, or any
// non-map container encountered while there are still segments left
// (arrays are never indexed — spec.md §4.1), yields (nil, false).
// Resolve never panics.
func Resolve(scope Scope, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")

	var cur any = map[string]any(scope)
	for _, seg := range segments {
		m, ok := asStringMap(cur)
		if !ok {
			return nil, false
		}
		v, exists := m[seg]
		if !exists {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// asStringMap normalizes the handful of map shapes we expect to see
// (map[string]any, Scope) into a plain map[string]any. Anything else,
// including slices, is reported as "not indexable".
func asStringMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Scope:
		return map[string]any(t), true
	default:
		return nil, false
	}
}
