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
	"encoding/json"

	"github.com/fieldform-sh/fieldform/pathresolve"
)

// Operand is the tagged union described in spec.md §4.2:
//
//	{ var: "<scope>.<path>" } | { value: <literal> } | <literal>
//
// It decodes from whichever of those three shapes appears in the
// stored expression JSON.
type Operand struct {
	isVar   bool
	varPath string
	literal any
}

// Resolve projects the operand to a concrete value against scope.
// A {var} operand that resolves to nothing returns (nil, false);
// a literal operand always resolves, returning (literal, true).
func (o *Operand) Resolve(scope pathresolve.Scope) (any, bool) {
	if o == nil {
		return nil, false
	}
	if o.isVar {
		return pathresolve.Resolve(scope, o.varPath)
	}
	return o.literal, true
}

func (o *Operand) UnmarshalJSON(data []byte) error {
	// try the object shapes first: {"var": "..."} or {"value": <lit>}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err == nil {
		if raw, ok := obj["var"]; ok {
			var path string
			if err := json.Unmarshal(raw, &path); err != nil {
				return err
			}
			o.isVar = true
			o.varPath = path
			return nil
		}
		if raw, ok := obj["value"]; ok {
			var lit any
			if err := json.Unmarshal(raw, &lit); err != nil {
				return err
			}
			o.literal = lit
			return nil
		}
	}

	// bare literal (string, number, bool, null, or even a raw map/array
	// used as a literal operand)
	var lit any
	if err := json.Unmarshal(data, &lit); err != nil {
		return err
	}
	o.literal = lit
	return nil
}

// NewVarOperand builds a {var} operand without going through JSON —
// used by tests and by callers constructing trees programmatically.
func NewVarOperand(path string) *Operand {
	return &Operand{isVar: true, varPath: path}
}

// NewLiteralOperand builds a {value}/bare-literal operand.
func NewLiteralOperand(v any) *Operand {
	return &Operand{literal: v}
}
