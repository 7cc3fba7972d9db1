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

package expr

import (
	"reflect"
	"strings"

	"github.com/fieldform-sh/fieldform/pathresolve"
)

// Evaluate walks e against scope. It is total: unknown operators,
// missing operands, and incomparable values all settle to false
// rather than raising (spec.md §4.2, "Evaluator is total").
func Evaluate(e *Expression, scope pathresolve.Scope) bool {
	if e == nil {
		return true
	}

	if e.All != nil {
		for _, child := range e.All {
			if !Evaluate(child, scope) {
				return false
			}
		}
		return true
	}

	if e.Any != nil {
		for _, child := range e.Any {
			if Evaluate(child, scope) {
				return true
			}
		}
		return false
	}

	if e.Not != nil {
		return !Evaluate(e.Not, scope)
	}

	return evalLeaf(e, scope)
}

func evalLeaf(e *Expression, scope pathresolve.Scope) bool {
	switch e.Op {
	case OpExists:
		left := e.Left
		if left == nil {
			left = e.Value
		}
		v, ok := left.Resolve(scope)
		return ok && isPresent(v)

	case OpEquals:
		l, lok := e.Left.Resolve(scope)
		r, rok := e.Right.Resolve(scope)
		if !lok || !rok {
			return false
		}
		return valuesEqual(l, r)

	case OpNotEquals:
		l, lok := e.Left.Resolve(scope)
		r, rok := e.Right.Resolve(scope)
		if !lok || !rok {
			return false
		}
		return !valuesEqual(l, r)

	case OpGT, OpGTE, OpLT, OpLTE:
		l, lok := e.Left.Resolve(scope)
		r, rok := e.Right.Resolve(scope)
		if !lok || !rok {
			return false
		}
		cmp, ok := Compare(ToComparable(l), ToComparable(r))
		if !ok {
			return false
		}
		switch e.Op {
		case OpGT:
			return cmp > 0
		case OpGTE:
			return cmp >= 0
		case OpLT:
			return cmp < 0
		default:
			return cmp <= 0
		}

	case OpIn, OpNotIn:
		l, lok := e.Left.Resolve(scope)
		r, rok := e.Right.Resolve(scope)
		seq, isSeq := asSequence(r)
		member := false
		if lok && rok && isSeq {
			for _, item := range seq {
				if valuesEqual(l, item) {
					member = true
					break
				}
			}
		}
		if e.Op == OpIn {
			return member
		}
		return !member

	case OpBetween:
		l, lok := e.Left.Resolve(scope)
		minV, minOK := e.Min.Resolve(scope)
		maxV, maxOK := e.Max.Resolve(scope)
		if !lok || !minOK || !maxOK {
			return false
		}
		lc := ToComparable(l)
		minC := ToComparable(minV)
		maxC := ToComparable(maxV)
		cmpMin, ok1 := Compare(lc, minC)
		cmpMax, ok2 := Compare(lc, maxC)
		if !ok1 || !ok2 {
			return false
		}
		return cmpMin >= 0 && cmpMax <= 0

	default:
		return false
	}
}

// isPresent implements the "exists" presence predicate: not nil, not
// an empty trimmed string, not an empty sequence/map.
func isPresent(v any) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// valuesEqual is strict equality with only the minimal numeric
// normalization needed because Go represents every JSON-decoded
// number as float64 while programmatically built trees may use int —
// spec.md §4.2 "strict value equality... no coercion" is about
// cross-type coercion (string vs number), not Go's own numeric zoo.
func valuesEqual(a, b any) bool {
	if af, aok := numericValue(a); aok {
		if bf, bok := numericValue(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// asSequence normalizes []any (the shape produced both by
// encoding/json and by programmatically built trees) as the only
// "sequence" the in/not_in operators recognize.
func asSequence(v any) ([]any, bool) {
	seq, ok := v.([]any)
	return seq, ok
}
