package validate_test

import (
	"testing"

	"github.com/fieldform-sh/fieldform/domain"
	"github.com/fieldform-sh/fieldform/validate"
	"github.com/stretchr/testify/require"
)

func TestRequiredFieldMissing(t *testing.T) {
	fields := []domain.FormField{{Key: "name", Type: domain.FieldText, Required: true}}
	issues := validate.Answers(fields, map[string]any{})
	require.Len(t, issues, 1)
	require.Equal(t, "name", issues[0].Key)
}

func TestOptionalFieldAbsentSkipped(t *testing.T) {
	fields := []domain.FormField{{Key: "nickname", Type: domain.FieldText, Required: false}}
	issues := validate.Answers(fields, map[string]any{"nickname": ""})
	require.Empty(t, issues)
}

func TestNumberConstraints(t *testing.T) {
	fields := []domain.FormField{{
		Key: "age", Type: domain.FieldNumber, Required: true,
		Validation: map[string]any{"min": float64(18), "max": float64(65)},
	}}
	require.Empty(t, validate.Answers(fields, map[string]any{"age": float64(30)}))
	require.Len(t, validate.Answers(fields, map[string]any{"age": float64(10)}), 1)
	require.Len(t, validate.Answers(fields, map[string]any{"age": float64(99)}), 1)
	require.Len(t, validate.Answers(fields, map[string]any{"age": "not-a-number"}), 1)
}

func TestBooleanStrict(t *testing.T) {
	fields := []domain.FormField{{Key: "consent", Type: domain.FieldBoolean, Required: true}}
	require.Empty(t, validate.Answers(fields, map[string]any{"consent": true}))
	require.Len(t, validate.Answers(fields, map[string]any{"consent": "true"}), 1)
}

func TestDateAndTime(t *testing.T) {
	fields := []domain.FormField{
		{Key: "dob", Type: domain.FieldDate, Required: true},
		{Key: "wake", Type: domain.FieldTime, Required: true},
	}
	require.Empty(t, validate.Answers(fields, map[string]any{"dob": "2026-01-02", "wake": "07:30"}))
	issues := validate.Answers(fields, map[string]any{"dob": "not-a-date", "wake": "7h30"})
	require.Len(t, issues, 2)
}

func TestSelectAndMultiSelect(t *testing.T) {
	fields := []domain.FormField{
		{Key: "color", Type: domain.FieldSelect, Options: []string{"red", "blue"}, Required: true},
		{Key: "tags", Type: domain.FieldMultiSelect, Options: []string{"a", "b", "c"}, Required: true},
	}
	require.Empty(t, validate.Answers(fields, map[string]any{
		"color": "blue", "tags": []any{"a", "c"},
	}))
	issues := validate.Answers(fields, map[string]any{
		"color": "green", "tags": []any{"a", "z"},
	})
	require.Len(t, issues, 2)
}

func TestTextConstraints(t *testing.T) {
	fields := []domain.FormField{{
		Key: "bio", Type: domain.FieldText, Required: true,
		Validation: map[string]any{"minLength": float64(2), "maxLength": float64(5), "pattern": "^[a-z]+$"},
	}}
	require.Empty(t, validate.Answers(fields, map[string]any{"bio": "abcd"}))
	require.Len(t, validate.Answers(fields, map[string]any{"bio": "a"}), 1)
	require.Len(t, validate.Answers(fields, map[string]any{"bio": "abcdefgh"}), 1)
	require.Len(t, validate.Answers(fields, map[string]any{"bio": "ABCD"}), 1)
}

func TestInvalidPatternIsIgnored(t *testing.T) {
	fields := []domain.FormField{{
		Key: "bio", Type: domain.FieldText, Required: true,
		Validation: map[string]any{"pattern": "(unclosed"},
	}}
	require.Empty(t, validate.Answers(fields, map[string]any{"bio": "anything"}))
}

func TestDoesNotShortCircuitBetweenFields(t *testing.T) {
	fields := []domain.FormField{
		{Key: "a", Type: domain.FieldText, Required: true},
		{Key: "b", Type: domain.FieldText, Required: true},
	}
	issues := validate.Answers(fields, map[string]any{})
	require.Len(t, issues, 2)
}
