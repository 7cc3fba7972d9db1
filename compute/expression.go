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

// Package compute implements C3, the compute engine (spec.md §4.3):
// named compute definitions evaluated with lazy, memoised,
// cycle-detecting resolution, plus the typed time/date/arithmetic
// helper functions.
package compute

import "encoding/json"

// Function is one of the named unary/binary helpers a {func} node may
// invoke.
type Function string

const (
	FuncMidpoint      Function = "midpoint"
	FuncDuration      Function = "duration"
	FuncAddDays       Function = "add_days"
	FuncNormalizeTime Function = "normalize_time"
)

// Arith is one of the arithmetic operators a {op} node may invoke.
type Arith string

const (
	ArithAdd      Arith = "add"
	ArithSubtract Arith = "subtract"
	ArithMultiply Arith = "multiply"
	ArithDivide   Arith = "divide"
)

type exprKind int

const (
	kindLiteral exprKind = iota
	kindVar
	kindFunc
	kindArith
)

// Expression is the tagged union described in spec.md §4.3:
//
//	{ var: "<scope>.<path>" }
//	{ value: <literal> }
//	{ func: <Function>, args: [Expression, …] }
//	{ op:   <Arith>,    args: [Expression, …] }
//	<literal>
type Expression struct {
	kind    exprKind
	varPath string
	literal any
	fn      Function
	arith   Arith
	args    []*Expression
}

func NewVar(path string) *Expression          { return &Expression{kind: kindVar, varPath: path} }
func NewLiteral(v any) *Expression            { return &Expression{kind: kindLiteral, literal: v} }
func NewFunc(f Function, args ...*Expression) *Expression {
	return &Expression{kind: kindFunc, fn: f, args: args}
}
func NewArith(op Arith, args ...*Expression) *Expression {
	return &Expression{kind: kindArith, arith: op, args: args}
}

func (e *Expression) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err == nil && obj != nil {
		if raw, ok := obj["var"]; ok {
			var path string
			if err := json.Unmarshal(raw, &path); err != nil {
				return err
			}
			e.kind = kindVar
			e.varPath = path
			return nil
		}
		if raw, ok := obj["func"]; ok {
			var fn string
			if err := json.Unmarshal(raw, &fn); err != nil {
				return err
			}
			args, err := unmarshalArgs(obj["args"])
			if err != nil {
				return err
			}
			e.kind = kindFunc
			e.fn = Function(fn)
			e.args = args
			return nil
		}
		if raw, ok := obj["op"]; ok {
			var op string
			if err := json.Unmarshal(raw, &op); err != nil {
				return err
			}
			args, err := unmarshalArgs(obj["args"])
			if err != nil {
				return err
			}
			e.kind = kindArith
			e.arith = Arith(op)
			e.args = args
			return nil
		}
		if raw, ok := obj["value"]; ok {
			var lit any
			if err := json.Unmarshal(raw, &lit); err != nil {
				return err
			}
			e.kind = kindLiteral
			e.literal = lit
			return nil
		}
	}

	var lit any
	if err := json.Unmarshal(data, &lit); err != nil {
		return err
	}
	e.kind = kindLiteral
	e.literal = lit
	return nil
}

func unmarshalArgs(raw json.RawMessage) ([]*Expression, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var args []*Expression
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	return args, nil
}

// Definition is a single named compute definition (ComputeDefinition.key
// paired with its parsed expression tree).
type Definition struct {
	Key  string
	Expr *Expression
}

// ParseDefinition decodes a ComputeDefinition.Definition JSON column.
func ParseDefinition(key string, raw []byte) (Definition, error) {
	e, err := Parse(raw)
	if err != nil {
		return Definition{}, err
	}
	return Definition{Key: key, Expr: e}, nil
}

// Parse decodes a standalone compute expression tree.
func Parse(raw []byte) (*Expression, error) {
	var e Expression
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// FromMap mirrors expr.FromMap: round-trips a generically-scanned
// JSON column (map[string]any) through the tagged-union decoder.
func FromMap(m map[string]any) (*Expression, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}
