package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
)

// Responder values write their own response.
type Responder interface {
	Respond(w http.ResponseWriter, r *http.Request) error
}

// Renderable values render to HTML. templ components satisfy it.
type Renderable interface {
	Render(ctx context.Context, w io.Writer) error
}

// WriteResponse writes an action result:
//   - Responder writes itself,
//   - Renderable is rendered as HTML,
//   - string and []byte are written raw,
//   - booleans and numbers are written as text,
//   - nil is 204 No Content,
//   - anything else is encoded as JSON.
func WriteResponse(w http.ResponseWriter, r *http.Request, v any) error {
	switch res := v.(type) {
	case nil:
		w.WriteHeader(http.StatusNoContent)
		return nil
	case Responder:
		return res.Respond(w, r)
	case Renderable:
		var buf bytes.Buffer
		if err := res.Render(r.Context(), &buf); err != nil {
			return err
		}
		return writeBody(w, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	case string:
		return writeBody(w, http.StatusOK, "text/html; charset=utf-8", []byte(res))
	case []byte:
		return writeBody(w, http.StatusOK, http.DetectContentType(res), res)
	case json.Marshaler:
		return writeJSON(w, http.StatusOK, res)
	case fmt.Stringer:
		return writeBody(w, http.StatusOK, "text/plain; charset=utf-8", []byte(res.String()))
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return writeBody(w, http.StatusOK, "text/plain; charset=utf-8", []byte(fmt.Sprint(v)))
	default:
		return writeJSON(w, http.StatusOK, v)
	}
}

func writeBody(w http.ResponseWriter, status int, contentType string, body []byte) error {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	_, err := w.Write(body)
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return writeBody(w, status, "application/json; charset=utf-8", body)
}

// Response is a body with an explicit status and headers.
type Response struct {
	Body    any
	Headers http.Header
	Status  int
}

// JSON responds with v encoded as JSON.
func JSON(status int, v any) Response {
	return Response{Status: status, Body: jsonBody{v}}
}

// Status responds with body and a status other than 200.
func Status(status int, body any) Response {
	return Response{Status: status, Body: body}
}

// NoContent responds with 204.
func NoContent() Response {
	return Response{Status: http.StatusNoContent}
}

type jsonBody struct{ v any }

func (j jsonBody) MarshalJSON() ([]byte, error) { return json.Marshal(j.v) }

func (res Response) Respond(w http.ResponseWriter, r *http.Request) error {
	for k, vs := range res.Headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	if res.Body == nil {
		w.WriteHeader(status)
		return nil
	}
	return WriteResponse(&statusWriter{ResponseWriter: w, status: status}, r, res.Body)
}

// statusWriter substitutes its status for the 200 WriteResponse uses.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	if code == http.StatusOK {
		code = s.status
	}
	s.ResponseWriter.WriteHeader(code)
}

// Redirect responds with a redirect to url; status defaults to 302.
func Redirect(url string, status ...int) Responder {
	code := http.StatusFound
	if len(status) > 0 {
		code = status[0]
	}
	return redirect{url: url, status: code}
}

type redirect struct {
	url    string
	status int
}

func (rd redirect) Respond(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, rd.url, rd.status)
	return nil
}
