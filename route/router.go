package route

import (
	"net/http"
	"sort"
	"strings"
)

// Router registers regex routes per HTTP method and dispatches matching
// requests. It implements http.Handler:
//
//	r := route.New()
//	r.GET(`/users/(\d+)`, handler)
//	http.ListenAndServe(":8080", r)
type Router struct {
	// NotFoundHandler is called when no route matches.
	// If nil, a 404 response with the standard error body is written.
	NotFoundHandler http.Handler

	// MethodNotAllowedHandler is called when a route matches the path
	// but not the method. If nil, a default 405 handler is used.
	// Per RFC 7231 Section 6.5.5, the Allow header is always set before
	// this handler is invoked.
	MethodNotAllowedHandler http.Handler

	routes      map[string][]*Route
	middlewares []MiddlewareFunc
}

// New returns a new router instance.
func New() *Router {
	return &Router{
		routes: make(map[string][]*Route),
	}
}

// Handle registers a handler reference under the given method and regex
// pattern. Patterns are matched against the full request path, anchored at
// both ends. The returned route accepts documentation metadata via WithDoc.
func (r *Router) Handle(method, pattern string, h HandlerRef) *Route {
	method = strings.ToUpper(method)
	rt := newRoute(method, pattern, h)
	r.routes[method] = append(r.routes[method], rt)
	return rt
}

// GET registers an inline handler for GET requests.
func (r *Router) GET(pattern string, fn HandlerFunc) *Route {
	return r.Handle(http.MethodGet, pattern, Func(fn))
}

// POST registers an inline handler for POST requests.
func (r *Router) POST(pattern string, fn HandlerFunc) *Route {
	return r.Handle(http.MethodPost, pattern, Func(fn))
}

// PUT registers an inline handler for PUT requests.
func (r *Router) PUT(pattern string, fn HandlerFunc) *Route {
	return r.Handle(http.MethodPut, pattern, Func(fn))
}

// PATCH registers an inline handler for PATCH requests.
func (r *Router) PATCH(pattern string, fn HandlerFunc) *Route {
	return r.Handle(http.MethodPatch, pattern, Func(fn))
}

// DELETE registers an inline handler for DELETE requests.
func (r *Router) DELETE(pattern string, fn HandlerFunc) *Route {
	return r.Handle(http.MethodDelete, pattern, Func(fn))
}

// Use appends middleware to the chain. Middleware wraps the matched handler
// in registration order.
func (r *Router) Use(mw ...MiddlewareFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

// Routes returns the route table as a method-keyed map of ordered route
// lists. The spec generator consumes this view.
func (r *Router) Routes() map[string][]*Route {
	return r.routes
}

// ServeHTTP dispatches the handler registered for the first matching route.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	rt, vars := r.matchRequest(req)

	if rt == nil {
		if allowed := r.allowedMethods(req); len(allowed) > 0 {
			// RFC 7231 Section 6.5.5: the origin server MUST generate an
			// Allow header field in a 405 response.
			w.Header().Set("Allow", strings.Join(allowed, ", "))
			if r.MethodNotAllowedHandler != nil {
				r.MethodNotAllowedHandler.ServeHTTP(w, req)
				return
			}
			Error(http.StatusMethodNotAllowed, "method not allowed").Write(w)
			return
		}
		if r.NotFoundHandler != nil {
			r.NotFoundHandler.ServeHTTP(w, req)
			return
		}
		Error(http.StatusNotFound, "not found").Write(w)
		return
	}

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp := rt.handler.Invoke(req)
		if resp == nil {
			Error(http.StatusInternalServerError, "handler produced no response").Write(w)
			return
		}
		resp.Write(w)
	})

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	req = setRouteContext(req, rt, vars)
	handler.ServeHTTP(w, req)
}

// matchRequest finds the first route registered under the request method
// whose pattern matches the request path.
func (r *Router) matchRequest(req *http.Request) (*Route, map[string]string) {
	for _, rt := range r.routes[req.Method] {
		if vars, ok := rt.match(req.URL.Path); ok {
			return rt, vars
		}
	}
	return nil, nil
}

// allowedMethods returns the sorted set of methods whose routes match the
// request path, excluding the request's own method.
func (r *Router) allowedMethods(req *http.Request) []string {
	var allowed []string
	for method, routes := range r.routes {
		if method == req.Method {
			continue
		}
		for _, rt := range routes {
			if _, ok := rt.match(req.URL.Path); ok {
				allowed = append(allowed, method)
				break
			}
		}
	}
	sort.Strings(allowed)
	return allowed
}
