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

package compute

import (
	"strings"

	"github.com/fieldform-sh/fieldform/pathresolve"
	"github.com/fieldform-sh/fieldform/xerr"
)

// Engine resolves a set of named ComputeDefinitions against a
// submission's evaluation context (spec.md §4.3). Resolution is
// lazy, memoised per Engine instance, and detects cycles by keeping
// a "currently visiting" stack — the same push/detect-reentry/pop
// idiom the teacher's dag package uses for topological sort, applied
// here to a single on-demand key instead of the whole definition set.
type Engine struct {
	order []string
	defs  map[string]*Expression

	memo     map[string]any
	visiting []string
}

// NewEngine builds an Engine over defs, preserving their given order —
// the order in which ComputedValue rows are ultimately inserted
// (spec.md §4.5 step 6: "Preserve insertion order").
func NewEngine(defs []Definition) *Engine {
	e := &Engine{
		order: make([]string, 0, len(defs)),
		defs:  make(map[string]*Expression, len(defs)),
		memo:  make(map[string]any, len(defs)),
	}
	for _, d := range defs {
		e.order = append(e.order, d.Key)
		e.defs[d.Key] = d.Expr
	}
	return e
}

// Resolve evaluates every definition (in insertion order) against
// scope and returns the accumulated {key → value} map — the
// "computed" scope visible to rule evaluation (spec.md §4.3).
func (e *Engine) Resolve(scope pathresolve.Scope) (map[string]any, error) {
	out := make(map[string]any, len(e.order))
	for _, key := range e.order {
		v, err := e.resolveKey(key, scope)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// resolveKey returns the memoised value for key, computing it (and
// any keys it transitively depends on) on first access.
func (e *Engine) resolveKey(key string, scope pathresolve.Scope) (any, error) {
	if v, ok := e.memo[key]; ok {
		return v, nil
	}

	for _, v := range e.visiting {
		if v == key {
			path := append(append([]string{}, e.visiting...), key)
			return nil, xerr.ErrComputeCycle(key, path)
		}
	}

	def, ok := e.defs[key]
	if !ok {
		// referenced but not defined for this study: undefined, not an error
		return nil, nil
	}

	e.visiting = append(e.visiting, key)
	v, err := e.eval(def, scope)
	e.visiting = e.visiting[:len(e.visiting)-1]
	if err != nil {
		return nil, err
	}

	e.memo[key] = v
	return v, nil
}

// eval walks a single ComputeExpression node, recursing into
// "computed.<k>" var references via resolveKey so that cross-compute
// dependencies resolve on demand (spec.md §4.3).
func (e *Engine) eval(node *Expression, scope pathresolve.Scope) (any, error) {
	if node == nil {
		return nil, nil
	}

	switch node.kind {
	case kindLiteral:
		return node.literal, nil

	case kindVar:
		if v, ok := pathresolve.Resolve(scope, node.varPath); ok {
			return v, nil
		}
		if key, ok := strings.CutPrefix(node.varPath, "computed."); ok {
			return e.resolveKey(key, scope)
		}
		return nil, nil

	case kindFunc:
		args, err := e.evalArgs(node.args, scope)
		if err != nil {
			return nil, err
		}
		return evalFunc(node.fn, args), nil

	case kindArith:
		args, err := e.evalArgs(node.args, scope)
		if err != nil {
			return nil, err
		}
		return evalArith(node.arith, args), nil

	default:
		return nil, nil
	}
}

func (e *Engine) evalArgs(nodes []*Expression, scope pathresolve.Scope) ([]any, error) {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		v, err := e.eval(n, scope)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
