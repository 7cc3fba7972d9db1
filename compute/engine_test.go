package compute_test

import (
	"testing"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/stretchr/testify/require"

	"github.com/fieldform-sh/fieldform/compute"
	"github.com/fieldform-sh/fieldform/pathresolve"
	"github.com/fieldform-sh/fieldform/xerr"
)

func baseScope() pathresolve.Scope {
	return pathresolve.Scope{
		"answers": map[string]any{
			"sleep_start": "22:00",
			"sleep_end":   "06:00",
		},
		"computed": map[string]any{},
		"metadata": map[string]any{},
	}
}

// S4 — compute graph.
func TestComputeGraph(t *testing.T) {
	defs := []compute.Definition{
		{Key: "sleep_duration", Expr: compute.NewFunc(compute.FuncDuration,
			compute.NewVar("answers.sleep_start"), compute.NewVar("answers.sleep_end"))},
		{Key: "sleep_midpoint", Expr: compute.NewFunc(compute.FuncMidpoint,
			compute.NewLiteral("22:00"), compute.NewLiteral("06:00"))},
		{Key: "sleep_midpoint_normalized", Expr: compute.NewFunc(compute.FuncNormalizeTime,
			compute.NewVar("computed.sleep_midpoint"))},
		{Key: "follow_up_date", Expr: compute.NewFunc(compute.FuncAddDays,
			compute.NewLiteral("2026-02-13"), compute.NewLiteral(float64(7)))},
		{Key: "double_duration", Expr: compute.NewArith(compute.ArithMultiply,
			compute.NewVar("computed.sleep_duration"), compute.NewLiteral(float64(2)))},
	}

	eng := compute.NewEngine(defs)
	out, err := eng.Resolve(baseScope())
	require.NoError(t, err)
	require.Equal(t, 480, out["sleep_duration"])
	require.Equal(t, "02:00", out["sleep_midpoint"])
	require.Equal(t, "02:00", out["sleep_midpoint_normalized"])
	require.Equal(t, "2026-02-20", out["follow_up_date"])
	require.Equal(t, 960.0, out["double_duration"])
}

// S6 — compute cycle.
func TestComputeCycle(t *testing.T) {
	defs := []compute.Definition{
		{Key: "a", Expr: compute.NewArith(compute.ArithAdd, compute.NewVar("computed.b"), compute.NewLiteral(float64(1)))},
		{Key: "b", Expr: compute.NewArith(compute.ArithAdd, compute.NewVar("computed.a"), compute.NewLiteral(float64(1)))},
	}
	eng := compute.NewEngine(defs)
	_, err := eng.Resolve(baseScope())
	require.Error(t, err)
	var cycleErr xerr.ComputeCycleError
	require.ErrorAs(t, err, &cycleErr)
}

// Invariant 3: compute is idempotent across independent runs on the
// same context.
func TestComputeIdempotent(t *testing.T) {
	defs := []compute.Definition{
		{Key: "sleep_duration", Expr: compute.NewFunc(compute.FuncDuration,
			compute.NewVar("answers.sleep_start"), compute.NewVar("answers.sleep_end"))},
	}
	out1, err := compute.NewEngine(defs).Resolve(baseScope())
	require.NoError(t, err)
	out2, err := compute.NewEngine(defs).Resolve(baseScope())
	require.NoError(t, err)
	require.Equal(t, out1, out2)

	h1, err := hashstructure.Hash(out1, hashstructure.FormatV2, nil)
	require.NoError(t, err)
	h2, err := hashstructure.Hash(out2, hashstructure.FormatV2, nil)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

// Invariant 4: duration(a,b) + duration(b,a) == 24*60 whenever a != b.
func TestDurationComplement(t *testing.T) {
	fwd := compute.NewEngine([]compute.Definition{
		{Key: "d", Expr: compute.NewFunc(compute.FuncDuration, compute.NewLiteral("22:00"), compute.NewLiteral("06:30"))},
	})
	rev := compute.NewEngine([]compute.Definition{
		{Key: "d", Expr: compute.NewFunc(compute.FuncDuration, compute.NewLiteral("06:30"), compute.NewLiteral("22:00"))},
	})
	outFwd, err := fwd.Resolve(baseScope())
	require.NoError(t, err)
	outRev, err := rev.Resolve(baseScope())
	require.NoError(t, err)
	require.Equal(t, 24*60, outFwd["d"].(int)+outRev["d"].(int))
}

// Invariant 5: normalize_time is idempotent.
func TestNormalizeTimeIdempotent(t *testing.T) {
	once := compute.NewEngine([]compute.Definition{
		{Key: "n", Expr: compute.NewFunc(compute.FuncNormalizeTime, compute.NewLiteral("9:05:30"))},
	})
	out, err := once.Resolve(baseScope())
	require.NoError(t, err)
	first := out["n"].(string)

	twice := compute.NewEngine([]compute.Definition{
		{Key: "n", Expr: compute.NewFunc(compute.FuncNormalizeTime, compute.NewLiteral(first))},
	})
	out2, err := twice.Resolve(baseScope())
	require.NoError(t, err)
	require.Equal(t, first, out2["n"])
}

func TestArithmeticFoldsFromHead(t *testing.T) {
	eng := compute.NewEngine([]compute.Definition{
		{Key: "sub", Expr: compute.NewArith(compute.ArithSubtract,
			compute.NewLiteral(float64(10)), compute.NewLiteral(float64(3)), compute.NewLiteral(float64(2)))},
		{Key: "div", Expr: compute.NewArith(compute.ArithDivide,
			compute.NewLiteral(float64(100)), compute.NewLiteral(float64(10)), compute.NewLiteral(float64(2)))},
	})
	out, err := eng.Resolve(baseScope())
	require.NoError(t, err)
	require.Equal(t, 5.0, out["sub"])
	require.Equal(t, 5.0, out["div"])
}

func TestArithmeticNullPropagation(t *testing.T) {
	eng := compute.NewEngine([]compute.Definition{
		{Key: "bad", Expr: compute.NewArith(compute.ArithAdd, compute.NewLiteral("not-a-number"), compute.NewLiteral(float64(1)))},
	})
	out, err := eng.Resolve(baseScope())
	require.NoError(t, err)
	require.Nil(t, out["bad"])
}

func TestJSONRoundTrip(t *testing.T) {
	raw := []byte(`{"func":"duration","args":[{"var":"answers.sleep_start"},{"var":"answers.sleep_end"}]}`)
	e, err := compute.Parse(raw)
	require.NoError(t, err)
	eng := compute.NewEngine([]compute.Definition{{Key: "d", Expr: e}})
	out, err := eng.Resolve(baseScope())
	require.NoError(t, err)
	require.Equal(t, 480, out["d"])
}
