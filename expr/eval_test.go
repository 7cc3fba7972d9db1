package expr_test

import (
	"testing"

	"github.com/fieldform-sh/fieldform/expr"
	"github.com/fieldform-sh/fieldform/pathresolve"
	"github.com/stretchr/testify/require"
)

func scopeOf(answers, computed, metadata map[string]any) pathresolve.Scope {
	return pathresolve.Scope{"answers": answers, "computed": computed, "metadata": metadata}
}

func TestEmptyAllAndAny(t *testing.T) {
	require.True(t, expr.Evaluate(&expr.Expression{All: []*expr.Expression{}}, nil))
	require.False(t, expr.Evaluate(&expr.Expression{Any: []*expr.Expression{}}, nil))
}

func TestNotNegates(t *testing.T) {
	alwaysTrue := &expr.Expression{All: []*expr.Expression{}}
	require.False(t, expr.Evaluate(&expr.Expression{Not: alwaysTrue}, nil))
}

// S2 — logical composition.
func TestLogicalComposition(t *testing.T) {
	tree := &expr.Expression{
		All: []*expr.Expression{
			{Op: expr.OpGTE, Left: expr.NewVarOperand("answers.age"), Right: expr.NewLiteralOperand(float64(18))},
			{Op: expr.OpIn, Left: expr.NewVarOperand("answers.cohort"), Right: expr.NewLiteralOperand([]any{"A", "B"})},
			{Any: []*expr.Expression{
				{Op: expr.OpEquals, Left: expr.NewVarOperand("metadata.site"), Right: expr.NewLiteralOperand("main")},
				{Op: expr.OpGT, Left: expr.NewVarOperand("computed.score"), Right: expr.NewLiteralOperand(float64(15))},
			}},
		},
	}
	scope := scopeOf(
		map[string]any{"age": float64(25), "cohort": "A"},
		map[string]any{"score": float64(12)},
		map[string]any{"site": "main"},
	)
	require.True(t, expr.Evaluate(tree, scope))
}

// S3 — negation + between.
func TestNegationAndBetween(t *testing.T) {
	tree := &expr.Expression{Not: &expr.Expression{
		Op:  expr.OpBetween,
		Left: expr.NewVarOperand("computed.score"),
		Min:  expr.NewLiteralOperand(float64(8)),
		Max:  expr.NewLiteralOperand(float64(10)),
	}}
	scope := scopeOf(nil, map[string]any{"score": float64(7)}, nil)
	require.True(t, expr.Evaluate(tree, scope))
}

func TestExistsBackwardCompatValue(t *testing.T) {
	tree := &expr.Expression{Op: expr.OpExists, Value: expr.NewVarOperand("answers.name")}
	require.True(t, expr.Evaluate(tree, scopeOf(map[string]any{"name": "Ada"}, nil, nil)))
	require.False(t, expr.Evaluate(tree, scopeOf(map[string]any{"name": "  "}, nil, nil)))
	require.False(t, expr.Evaluate(tree, scopeOf(map[string]any{}, nil, nil)))
}

func TestInNotInNonSequenceRight(t *testing.T) {
	in := &expr.Expression{Op: expr.OpIn, Left: expr.NewLiteralOperand("x"), Right: expr.NewLiteralOperand("not-a-list")}
	notIn := &expr.Expression{Op: expr.OpNotIn, Left: expr.NewLiteralOperand("x"), Right: expr.NewLiteralOperand("not-a-list")}
	require.False(t, expr.Evaluate(in, nil))
	require.True(t, expr.Evaluate(notIn, nil))
}

func TestUnknownOperatorIsFalse(t *testing.T) {
	require.False(t, expr.Evaluate(&expr.Expression{Op: "frobnicate"}, nil))
}

func TestComparisonNullCoercionIsFalse(t *testing.T) {
	tree := &expr.Expression{Op: expr.OpGT, Left: expr.NewLiteralOperand(true), Right: expr.NewLiteralOperand(float64(1))}
	require.False(t, expr.Evaluate(tree, nil))
}

func TestParseFromJSON(t *testing.T) {
	raw := []byte(`{"all":[{"op":">=","left":{"var":"answers.age"},"right":{"value":18}}]}`)
	e, err := expr.Parse(raw)
	require.NoError(t, err)
	require.True(t, expr.Evaluate(e, scopeOf(map[string]any{"age": float64(20)}, nil, nil)))
	require.False(t, expr.Evaluate(e, scopeOf(map[string]any{"age": float64(10)}, nil, nil)))
}

func TestBareLiteralOperand(t *testing.T) {
	raw := []byte(`{"op":"==","left":{"var":"answers.x"},"right":"yes"}`)
	e, err := expr.Parse(raw)
	require.NoError(t, err)
	require.True(t, expr.Evaluate(e, scopeOf(map[string]any{"x": "yes"}, nil, nil)))
}
