package pathresolve_test

import (
	"testing"

	"github.com/fieldform-sh/fieldform/pathresolve"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	scope := pathresolve.Scope{
		"answers": map[string]any{
			"age": 24,
			"sleep": map[string]any{
				"start": "22:00",
			},
		},
		"computed": map[string]any{},
		"metadata": map[string]any{
			"study_id": "s1",
		},
	}

	v, ok := pathresolve.Resolve(scope, "answers.age")
	require.True(t, ok)
	require.Equal(t, 24, v)

	v, ok = pathresolve.Resolve(scope, "answers.sleep.start")
	require.True(t, ok)
	require.Equal(t, "22:00", v)

	_, ok = pathresolve.Resolve(scope, "answers.missing")
	require.False(t, ok)

	_, ok = pathresolve.Resolve(scope, "answers.sleep.start.extra")
	require.False(t, ok)

	_, ok = pathresolve.Resolve(scope, "nope.x")
	require.False(t, ok)

	_, ok = pathresolve.Resolve(scope, "")
	require.False(t, ok)
}

func TestResolveDoesNotIndexArrays(t *testing.T) {
	scope := pathresolve.Scope{
		"answers": map[string]any{
			"tags": []any{"a", "b"},
		},
	}
	_, ok := pathresolve.Resolve(scope, "answers.tags.0")
	require.False(t, ok)
}
