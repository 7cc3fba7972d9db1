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

// Package expr implements C2, the boolean expression evaluator
// (spec.md §4.2): a pure, total function (Expression, Context) →
// bool, recursive over all/any/not plus a handful of leaf operators.
package expr

import "encoding/json"

// Operator is one of the leaf comparison/containment/range operators.
type Operator string

const (
	OpEquals    Operator = "=="
	OpNotEquals Operator = "!="
	OpGT        Operator = ">"
	OpGTE       Operator = ">="
	OpLT        Operator = "<"
	OpLTE       Operator = "<="
	OpIn        Operator = "in"
	OpNotIn     Operator = "not_in"
	OpBetween   Operator = "between"
	OpExists    Operator = "exists"
)

// Expression is the tree form from spec.md §4.2:
//
//	{ all: [Expression, …] }
//	{ any: [Expression, …] }
//	{ not: Expression }
//	{ op, left?, right?, value?, min?, max? }
//
// A single struct models all four shapes; exactly one of All/Any/Not/Op
// is populated per node (enforced by construction, not by the zero
// value — an empty Expression has no operator and evaluates to false).
type Expression struct {
	All []*Expression `json:"all,omitempty"`
	Any []*Expression `json:"any,omitempty"`
	Not *Expression   `json:"not,omitempty"`

	Op    Operator `json:"op,omitempty"`
	Left  *Operand `json:"left,omitempty"`
	Right *Operand `json:"right,omitempty"`
	Value *Operand `json:"value,omitempty"`
	Min   *Operand `json:"min,omitempty"`
	Max   *Operand `json:"max,omitempty"`
}

// Parse decodes an opaque JSON expression tree (as stored in
// RuleSet.expression or FormLogic.logic) into an *Expression.
func Parse(raw []byte) (*Expression, error) {
	var e Expression
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// FromMap decodes an expression already materialized as
// map[string]any (the shape it arrives in once a JSON column has been
// scanned generically) by round-tripping it through the JSON codec —
// the same approach the teacher's AST types use when re-parsing
// operand literals.
func FromMap(m map[string]any) (*Expression, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}
