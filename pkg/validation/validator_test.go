package validation_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/validation"
)

func TestRequiredEmail(t *testing.T) {
	t.Parallel()

	rules := validation.Rules{"email": "required|email"}

	tests := []struct {
		name     string
		value    any
		messages []string
	}{
		{name: "empty", value: "", messages: []string{"email is required"}},
		{name: "invalid", value: "not-an-email", messages: []string{"email is not a valid email address"}},
		{name: "valid", value: "a@b.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := validation.Validate(validation.Data{"email": tt.value}, rules, nil)
			if tt.messages == nil {
				require.NoError(t, err)
				assert.Equal(t, map[string]any{"email": tt.value}, data)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.messages, validation.ExtractFieldErrors(err).Get("email"))
		})
	}
}

func TestBetween(t *testing.T) {
	t.Parallel()

	rules := validation.Rules{"age": "between:18,65"}

	for _, v := range []any{18, "40", 65.0, int64(20)} {
		_, err := validation.Validate(validation.Data{"age": v}, rules, nil)
		assert.NoError(t, err, "value %v", v)
	}

	_, err := validation.Validate(validation.Data{"age": 70}, rules, nil)
	require.Error(t, err)
	assert.Equal(t, []string{"age is not between 18 and 65."}, validation.ExtractFieldErrors(err).Get("age"))

	_, err = validation.Validate(validation.Data{"age": "old"}, rules, nil)
	assert.True(t, validation.IsValidationError(err))
}

func TestFalsyValuesSkipOptionalRules(t *testing.T) {
	t.Parallel()

	rules := validation.Rules{"age": "between:18,65"}

	for _, v := range []any{0, "0", "", false, nil} {
		_, err := validation.Validate(validation.Data{"age": v}, rules, nil)
		assert.NoError(t, err, "value %#v", v)
	}
}

func TestStrictPresenceValidatesZeroValues(t *testing.T) {
	t.Parallel()

	v := validation.New(validation.WithStrictPresence())
	rules := validation.Rules{"age": "between:18,65"}

	_, err := v.Validate(validation.Data{"age": 0}, rules, nil)
	assert.True(t, validation.IsValidationError(err))

	_, err = v.Validate(validation.Data{"age": ""}, rules, nil)
	assert.NoError(t, err)
}

func TestUnknownRulesAreSkipped(t *testing.T) {
	t.Parallel()

	_, err := validation.Validate(validation.Data{"name": "x"}, validation.Rules{"name": "required|sometimes|exotic:1"}, nil)
	assert.NoError(t, err)
}

func TestMalformedRuleArguments(t *testing.T) {
	t.Parallel()

	_, err := validation.Validate(validation.Data{"n": 1}, validation.Rules{"n": "between:1"}, nil)
	require.ErrorIs(t, err, validation.ErrInvalidRule)
	assert.False(t, validation.IsValidationError(err))

	_, err = validation.Validate(validation.Data{"n": 1}, validation.Rules{"n": 42}, nil)
	assert.ErrorIs(t, err, validation.ErrInvalidRule)
}

func TestCustomMessages(t *testing.T) {
	t.Parallel()

	rules := validation.Rules{"email": "required", "name": "required"}
	_, err := validation.Validate(validation.Data{}, rules, validation.Messages{
		"email.required": "Give us your :attribute",
		"required":       "Missing :attribute",
	})

	fields := validation.ExtractFieldErrors(err)
	assert.Equal(t, []string{"Give us your email"}, fields.Get("email"))
	assert.Equal(t, []string{"Missing name"}, fields.Get("name"))
}

func TestRuleValuesAndExtend(t *testing.T) {
	t.Parallel()

	v := validation.New()
	v.Extend("uppercase", func([]string) (validation.Rule, error) {
		return validation.Func("uppercase", ":attribute must be uppercase", func(_ string, value any) bool {
			s, _ := value.(string)
			return s == strings.ToUpper(s)
		}), nil
	})
	noSpam := validation.Func("nospam", ":attribute looks like spam", func(_ string, value any) bool {
		return value != "buy now"
	})

	_, err := v.Validate(validation.Data{"code": "abc", "msg": "buy now"}, validation.Rules{
		"code": "uppercase",
		"msg":  []any{"required", noSpam},
	}, nil)

	fields := validation.ExtractFieldErrors(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "code", fields[0].Field)
	assert.Equal(t, "uppercase", fields[0].Rule)
	assert.Equal(t, "msg looks like spam", fields[1].Message)
	assert.True(t, v.HasRule("uppercase"))
}

func TestErrorsDoNotAccumulateAcrossCalls(t *testing.T) {
	t.Parallel()

	v := validation.New()
	rules := validation.Rules{"email": "required"}

	_, err := v.Validate(validation.Data{}, rules, nil)
	require.Error(t, err)

	_, err = v.Validate(validation.Data{"email": "a@b.com"}, rules, nil)
	assert.NoError(t, err)
}

func TestErrorJSONAndStatus(t *testing.T) {
	t.Parallel()

	_, err := validation.Validate(validation.Data{"email": "nope"}, validation.Rules{"email": "required|email"}, nil)

	var ve *validation.Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 422, ve.StatusCode())

	body, jerr := json.Marshal(ve)
	require.NoError(t, jerr)
	assert.JSONEq(t, `{"errors":{"email":["email is not a valid email address"]}}`, string(body))
	assert.Equal(t, "email is not a valid email address", ve.Bag().First("email"))
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	for _, v := range []any{nil, false, 0, 0.0, "", "0", []string{}, map[string]any{}} {
		assert.False(t, validation.Truthy(v), "%#v", v)
	}
	for _, v := range []any{true, 1, -2.5, "a", "00", []int{1}, struct{}{}} {
		assert.True(t, validation.Truthy(v), "%#v", v)
	}
}

func TestFieldErrorsRecordRules(t *testing.T) {
	t.Parallel()

	_, err := validation.Validate(validation.Data{"email": "nope"}, validation.Rules{"email": "required|email", "name": "required"}, nil)
	fields := validation.ExtractFieldErrors(err)
	require.Len(t, fields, 2)

	assert.Equal(t, validation.FieldError{Field: "email", Rule: "email", Message: fields[0].Message}, fields[0])
	assert.Equal(t, "name", fields[1].Field)
	assert.Equal(t, "required", fields[1].Rule)
	assert.True(t, fields.Has("email"))
	assert.False(t, fields.Has("missing"))
}
