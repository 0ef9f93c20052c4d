package events_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/container"
	"github.com/BenRutlandWeb/atomic-framework/pkg/events"
	"github.com/BenRutlandWeb/atomic-framework/pkg/hooks"
)

type userRegistered struct {
	Email string
}

type upperListener struct{}

func (upperListener) Handle(s string) string { return strings.ToUpper(s) }

type auditSubscriber struct {
	seen *[]string
}

func (a auditSubscriber) Subscribe(d *events.Dispatcher) error {
	return d.ListenAll([]string{"login", "logout"}, func(user string) {
		*a.seen = append(*a.seen, user)
	})
}

func newDispatcher(opts ...events.Option) (*events.Dispatcher, *hooks.Table) {
	table := hooks.New()
	return events.NewDispatcher(table, opts...), table
}

func TestListenFiltersValue(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher()
	require.NoError(t, d.Listen("title", func(s string) string { return s + "!" }))
	require.NoError(t, d.Listen("title", upperListener{}, 5))

	assert.Equal(t, "HELLO!", d.Dispatch("title", "hello"))
}

func TestListenerArityLimitsArguments(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher()
	var gotA, gotB string
	require.NoError(t, d.Listen("pair", func(a string) { gotA = a }))
	require.NoError(t, d.Listen("pair", func(a, b string) { gotB = a + b }))

	result := d.Dispatch("pair", "x", "y")

	assert.Equal(t, "x", gotA)
	assert.Equal(t, "xy", gotB)
	assert.Equal(t, "x", result, "listeners without results leave the value unchanged")
}

func TestDispatchSpreadsSlicePayload(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher()
	var got []any
	require.NoError(t, d.Listen("spread", func(args ...any) any {
		got = args
		return nil
	}))

	d.Dispatch("spread", []any{1, "two", 3.0})

	assert.Equal(t, []any{1, "two", 3.0}, got)
}

func TestDispatchObjectEventUsesTypeName(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher()
	var got userRegistered
	require.NoError(t, d.Listen(events.TypeName(userRegistered{}), func(e userRegistered) {
		got = e
	}))

	d.Dispatch(&userRegistered{Email: "a@b.c"})
	assert.Empty(t, got.Email, "pointer events are passed as pointers and do not match a value listener")

	d.Dispatch(userRegistered{Email: "a@b.c"})
	assert.Equal(t, "a@b.c", got.Email)
}

func TestTypeName(t *testing.T) {
	t.Parallel()

	name := events.TypeName(&userRegistered{})
	assert.True(t, strings.HasSuffix(name, "/pkg/events_test.userRegistered"), name)
	assert.Equal(t, "string", events.TypeName("x"))
	assert.Equal(t, "<nil>", events.TypeName(nil))
}

func TestListenerErrorKeepsValue(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher()
	require.NoError(t, d.Listen("v", func(n int) (int, error) {
		return 0, errors.New("boom")
	}))

	assert.Equal(t, 7, d.Dispatch("v", 7))
}

func TestListenerConvertsNumbers(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher()
	require.NoError(t, d.Listen("n", func(n int64) int64 { return n * 2 }))

	assert.Equal(t, int64(8), d.Dispatch("n", 4))
}

func TestListenerTypeMismatchIsSkipped(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher()
	require.NoError(t, d.Listen("n", func(n int) int { return n + 1 }))

	assert.Equal(t, "text", d.Dispatch("n", "text"))
}

func TestListenRejectsInvalidListener(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher()
	assert.ErrorIs(t, d.Listen("x", 42), events.ErrInvalidListener)
	assert.ErrorIs(t, d.Listen("x", nil), events.ErrInvalidListener)
	assert.ErrorIs(t, d.Listen("x", "listener.name"), events.ErrNoResolver)
}

func TestListenResolvesNamedListener(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Instance("listeners.upper", upperListener{})
	d, _ := newDispatcher(events.WithResolver(c))

	require.NoError(t, d.Listen("title", "listeners.upper"))
	assert.Equal(t, "ABC", d.Dispatch("title", "abc"))
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	var seen []string
	c := container.New()
	c.Instance("audit", auditSubscriber{seen: &seen})
	d, _ := newDispatcher(events.WithResolver(c))

	require.NoError(t, d.Subscribe("audit"))
	d.Dispatch("login", "ann")
	d.Dispatch("logout", "bob")

	assert.Equal(t, []string{"ann", "bob"}, seen)
	assert.ErrorIs(t, d.Subscribe(struct{}{}), events.ErrInvalidSubscriber)
}

func TestForgetAndHasListeners(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher()
	assert.False(t, d.HasListeners("e"))

	require.NoError(t, d.Listen("e", func() {}))
	assert.True(t, d.HasListeners("e"))

	d.Forget("e")
	assert.False(t, d.HasListeners("e"))
}

func TestActionAndFilterWrappers(t *testing.T) {
	t.Parallel()

	d, table := newDispatcher()
	action := events.NewAction(d)
	filter := events.NewFilter(d)

	var ran bool
	require.NoError(t, action.Add("init", func() { ran = true }))
	action.Do("init")
	assert.True(t, ran)

	require.NoError(t, filter.Add("excerpt", func(s string, n int) string { return s[:n] }))
	assert.Equal(t, "hel", filter.Apply("excerpt", "hello", 3))

	filter.Remove("excerpt")
	action.Remove("init")
	assert.Empty(t, table.Names())
}
