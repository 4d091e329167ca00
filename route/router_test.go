package route

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates router with initialized route table", func(t *testing.T) {
		r := New()
		require.NotNil(t, r)
		assert.NotNil(t, r.routes)
	})
}

func TestRouterServeHTTP(t *testing.T) {
	t.Run("dispatches to matched handler", func(t *testing.T) {
		r := New()
		r.GET("/hello", func(_ *http.Request) *Response {
			return NewResponse(http.StatusOK, map[string]string{"msg": "world"})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/hello", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"msg":"world"}`, w.Body.String())
	})

	t.Run("returns 404 for unmatched path", func(t *testing.T) {
		r := New()
		r.GET("/hello", func(_ *http.Request) *Response {
			return NoContent(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/notfound", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("uses custom NotFoundHandler", func(t *testing.T) {
		r := New()
		r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "custom 404")
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/notfound", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "custom 404", w.Body.String())
	})

	t.Run("extracts positional params from capture groups", func(t *testing.T) {
		r := New()
		r.GET(`/users/(\d+)/posts/(\w+)`, func(req *http.Request) *Response {
			vars := Vars(req)
			return NewResponse(http.StatusOK, vars)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users/42/posts/hello", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"42","param1":"hello"}`, w.Body.String())
	})

	t.Run("sets CurrentRoute in request context", func(t *testing.T) {
		r := New()
		r.GET("/test", func(req *http.Request) *Response {
			rt := CurrentRoute(req)
			assert.NotNil(t, rt)
			assert.Equal(t, "/test", rt.Pattern())
			return NoContent(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("method not allowed returns 405 with Allow header", func(t *testing.T) {
		r := New()
		r.GET("/users", func(_ *http.Request) *Response {
			return NoContent(http.StatusOK)
		})
		r.DELETE("/users", func(_ *http.Request) *Response {
			return NoContent(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "DELETE, GET", w.Header().Get("Allow"))
	})

	t.Run("uses custom MethodNotAllowedHandler", func(t *testing.T) {
		r := New()
		r.GET("/users", func(_ *http.Request) *Response {
			return NoContent(http.StatusOK)
		})
		r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.NotEmpty(t, w.Header().Get("Allow"))
	})

	t.Run("nil handler response maps to 500", func(t *testing.T) {
		r := New()
		r.GET("/broken", func(_ *http.Request) *Response {
			return nil
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/broken", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("first matching route wins", func(t *testing.T) {
		r := New()
		r.GET(`/items/(\w+)`, func(_ *http.Request) *Response {
			return NewResponse(http.StatusOK, "first")
		})
		r.GET(`/items/special`, func(_ *http.Request) *Response {
			return NewResponse(http.StatusOK, "second")
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/items/special", nil)
		r.ServeHTTP(w, req)
		assert.JSONEq(t, `"first"`, w.Body.String())
	})

	t.Run("pattern matches full path only", func(t *testing.T) {
		r := New()
		r.GET("/users", func(_ *http.Request) *Response {
			return NoContent(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users/extra", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("broken pattern never matches", func(t *testing.T) {
		r := New()
		rt := r.GET(`/bad/(unclosed`, func(_ *http.Request) *Response {
			return NoContent(http.StatusOK)
		})
		require.Error(t, rt.Err())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/bad/(unclosed", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRouterHandle(t *testing.T) {
	t.Run("normalizes method to uppercase", func(t *testing.T) {
		r := New()
		r.Handle("get", "/test", Func(func(_ *http.Request) *Response {
			return NoContent(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("registers controller handlers", func(t *testing.T) {
		r := New()
		r.Handle(http.MethodGet, "/ctrl", Handler(&echoController{body: "hi"}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ctrl", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `"hi"`, w.Body.String())
	})

	t.Run("registers method handlers", func(t *testing.T) {
		r := New()
		r.Handle(http.MethodGet, "/method", Method(&echoController{body: "by-name"}, "Trigger"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/method", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `"by-name"`, w.Body.String())
	})
}

func TestRouterUse(t *testing.T) {
	t.Run("applies middleware in registration order", func(t *testing.T) {
		r := New()
		var order []string
		mw := func(name string) MiddlewareFunc {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, req)
				})
			}
		}
		r.Use(mw("first"), mw("second"))
		r.GET("/test", func(_ *http.Request) *Response {
			order = append(order, "handler")
			return NoContent(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, []string{"first", "second", "handler"}, order)
	})

	t.Run("middleware does not run for unmatched requests", func(t *testing.T) {
		r := New()
		called := false
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				called = true
				next.ServeHTTP(w, req)
			})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.False(t, called)
	})
}

func TestRouterRoutes(t *testing.T) {
	t.Run("returns registered routes keyed by method", func(t *testing.T) {
		r := New()
		r.GET("/a", func(_ *http.Request) *Response { return nil })
		r.GET("/b", func(_ *http.Request) *Response { return nil })
		r.POST("/a", func(_ *http.Request) *Response { return nil })

		routes := r.Routes()
		require.Len(t, routes[http.MethodGet], 2)
		require.Len(t, routes[http.MethodPost], 1)
		assert.Equal(t, "/a", routes[http.MethodGet][0].Pattern())
		assert.Equal(t, "/b", routes[http.MethodGet][1].Pattern())
	})
}

type echoController struct {
	body string
}

func (c *echoController) Trigger(_ *http.Request) *Response {
	return NewResponse(http.StatusOK, c.body)
}
