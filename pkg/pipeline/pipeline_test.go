package pipeline_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/pipeline"
)

func tag(label string, trace *[]string) pipeline.Stage[string, string] {
	return func(payload string, next pipeline.Next[string, string]) (string, error) {
		*trace = append(*trace, label+":in")
		res, err := next(payload + label)
		*trace = append(*trace, label+":out")
		return res, err
	}
}

func TestStagesRunInOrder(t *testing.T) {
	t.Parallel()

	var trace []string
	res, err := pipeline.New[string, string]().
		Send("x").
		Through(tag("a", &trace), nil, tag("b", &trace)).
		Then(func(p string) (string, error) { return "<" + p + ">", nil })

	require.NoError(t, err)
	assert.Equal(t, "<xab>", res)
	assert.Equal(t, []string{"a:in", "b:in", "b:out", "a:out"}, trace)
}

func TestStageCanShortCircuit(t *testing.T) {
	t.Parallel()

	called := false
	deny := func(string, pipeline.Next[string, string]) (string, error) {
		return "", errors.New("denied")
	}

	_, err := pipeline.New[string, string]().
		Send("x").
		Through(deny).
		Then(func(string) (string, error) {
			called = true
			return "", nil
		})

	require.EqualError(t, err, "denied")
	assert.False(t, called)
}

func TestPipelineIsImmutable(t *testing.T) {
	t.Parallel()

	var trace []string
	base := pipeline.New[string, string]().Through(tag("a", &trace))
	_ = base.Through(tag("b", &trace))

	res, err := base.Send("p").ThenReturn(func(p string) string { return p })
	require.NoError(t, err)
	assert.Equal(t, "pa", res)
}

func TestThenWithoutStages(t *testing.T) {
	t.Parallel()

	res, err := pipeline.New[int, int]().Send(2).Then(func(p int) (int, error) { return p * 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 6, res)
}
