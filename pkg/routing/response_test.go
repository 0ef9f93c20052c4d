package routing_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

type greeting struct{ name string }

func (g greeting) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, "<p>Hello "+g.name+"</p>")
	return err
}

func TestWriteResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		value       any
		status      int
		contentType string
		body        string
	}{
		{name: "nil", value: nil, status: http.StatusNoContent},
		{name: "string", value: "<b>hi</b>", status: 200, contentType: "text/html; charset=utf-8", body: "<b>hi</b>"},
		{name: "number", value: 42, status: 200, contentType: "text/plain; charset=utf-8", body: "42"},
		{name: "bool", value: true, status: 200, contentType: "text/plain; charset=utf-8", body: "true"},
		{name: "map", value: map[string]int{"a": 1}, status: 200, contentType: "application/json; charset=utf-8", body: `{"a":1}`},
		{name: "slice", value: []string{"x"}, status: 200, contentType: "application/json; charset=utf-8", body: `["x"]`},
		{name: "renderable", value: greeting{name: "Ann"}, status: 200, contentType: "text/html; charset=utf-8", body: "<p>Hello Ann</p>"},
		{name: "json status", value: routing.JSON(http.StatusCreated, "ok"), status: 201, contentType: "application/json; charset=utf-8", body: `"ok"`},
		{name: "no content", value: routing.NoContent(), status: 204},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			require.NoError(t, routing.WriteResponse(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.value))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, routing.WriteResponse(rec, httptest.NewRequest(http.MethodGet, "/", nil), routing.Redirect("/login")))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestResponseWriterTracksWrites(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := routing.NewResponseWriter(rec)
	assert.Same(t, rw, routing.NewResponseWriter(rw))

	hookRan := 0
	rw.OnBeforeWrite(func() { hookRan++ })
	assert.False(t, rw.Written())

	_, err := rw.Write([]byte("abc"))
	require.NoError(t, err)
	rw.WriteHeader(http.StatusTeapot)

	assert.True(t, rw.Written())
	assert.Equal(t, 1, hookRan)
	assert.Equal(t, http.StatusOK, rw.Status())
	assert.Equal(t, int64(3), rw.Size())
}
