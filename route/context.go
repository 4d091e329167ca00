package route

import (
	"context"
	"net/http"
)

// routeContextKey is an unexported type for the single context key.
type routeContextKey struct{}

// ctxKey is the single context key used to store both route and vars.
var ctxKey = routeContextKey{}

// routeContext holds the matched route and extracted path parameters.
type routeContext struct {
	route *Route
	vars  map[string]string
}

// Vars returns the path parameters for the current request, if any. Keys
// follow the positional naming pool (id, param1, param2, ...).
func Vars(r *http.Request) map[string]string {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		return rc.vars
	}
	return nil
}

// VarGet returns the value of a single path parameter by name and a boolean
// indicating whether the parameter exists.
func VarGet(r *http.Request, name string) (string, bool) {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok && rc.vars != nil {
		val, exists := rc.vars[name]
		return val, exists
	}
	return "", false
}

// CurrentRoute returns the matched route for the current request, if any.
// This only works when called inside the handler of the matched route
// because the matched route is stored in the request context.
func CurrentRoute(r *http.Request) *Route {
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		return rc.route
	}
	return nil
}

// SetVars sets the path parameters for the given request, returning the
// modified request. This is intended for testing route handlers.
func SetVars(r *http.Request, vars map[string]string) *http.Request {
	var rt *Route
	if rc, ok := r.Context().Value(ctxKey).(*routeContext); ok {
		rt = rc.route
	}
	return setRouteContext(r, rt, vars)
}

// setRouteContext stores both the matched route and vars in the request
// context using a single WithContext call.
func setRouteContext(r *http.Request, rt *Route, vars map[string]string) *http.Request {
	ctx := context.WithValue(r.Context(), ctxKey, &routeContext{route: rt, vars: vars})
	return r.WithContext(ctx)
}
