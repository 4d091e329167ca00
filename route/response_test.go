package route

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseWrite(t *testing.T) {
	t.Run("serializes body as JSON by default", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewResponse(http.StatusOK, map[string]int{"count": 3}).Write(w)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"count":3}`, w.Body.String())
	})

	t.Run("zero status defaults to 200", func(t *testing.T) {
		w := httptest.NewRecorder()
		(&Response{Body: "ok"}).Write(w)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("nil body writes empty response", func(t *testing.T) {
		w := httptest.NewRecorder()
		NoContent(http.StatusNoContent).Write(w)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("raw response bypasses serialization", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewRawResponse(http.StatusOK, "text/plain", []byte("hello")).Write(w)

		assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
		assert.Equal(t, "hello", w.Body.String())
	})

	t.Run("custom headers are written", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewResponse(http.StatusOK, "ok").
			WithHeader("X-Custom", "value").
			Write(w)

		assert.Equal(t, "value", w.Header().Get("X-Custom"))
	})

	t.Run("content type override applies", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewResponse(http.StatusOK, "ok").
			WithContentType("application/vnd.api+json").
			Write(w)

		assert.Equal(t, "application/vnd.api+json", w.Header().Get("Content-Type"))
	})

	t.Run("unencodable body writes 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewResponse(http.StatusOK, func() {}).Write(w)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestError(t *testing.T) {
	t.Run("writes standard error body", func(t *testing.T) {
		w := httptest.NewRecorder()
		Error(http.StatusNotFound, "not found").Write(w)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
	})

	t.Run("includes field messages", func(t *testing.T) {
		w := httptest.NewRecorder()
		Error(http.StatusBadRequest, "validation failed",
			FieldMessage{Field: "email", Message: "must be valid"},
		).Write(w)

		assert.JSONEq(t, `{
			"error": "validation failed",
			"messages": [{"field": "email", "message": "must be valid"}]
		}`, w.Body.String())
	})
}

func TestResponseJSON(t *testing.T) {
	t.Run("writes JSON with the given status", func(t *testing.T) {
		w := httptest.NewRecorder()
		ResponseJSON(w, http.StatusCreated, map[string]string{"id": "1"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":"1"}`, w.Body.String())
	})
}
