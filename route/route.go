package route

import (
	"regexp"
	"strconv"
	"strings"
)

// paramNamePool is the fixed ordered pool of positional parameter names
// assigned to capture groups, left to right. Groups beyond the pool get
// synthetic "paramN" names using the zero-based group index.
var paramNamePool = []string{"id", "param1", "param2", "param3", "slug", "query"}

// ParamName returns the positional parameter name for the zero-based
// capture-group index i.
func ParamName(i int) string {
	if i >= 0 && i < len(paramNamePool) {
		return paramNamePool[i]
	}
	return "param" + strconv.Itoa(i)
}

// Route is a single entry in the route table: an HTTP method, a regex
// pattern matched against the request path, and a handler reference.
// Routes are immutable once registered except for documentation metadata.
type Route struct {
	method  string
	pattern string
	regex   *regexp.Regexp
	handler HandlerRef
	doc     *Doc
	err     error
}

// newRoute compiles the pattern anchored at both ends. Compilation errors
// are stored on the route: a broken route never matches and is skipped by
// the spec generator's metadata pass.
func newRoute(method, pattern string, h HandlerRef) *Route {
	rt := &Route{
		method:  method,
		pattern: pattern,
		handler: h,
	}
	rt.regex, rt.err = compileRegexp(anchor(pattern))
	return rt
}

// anchor wraps a pattern with ^ and $ unless already anchored.
func anchor(pattern string) string {
	if !strings.HasPrefix(pattern, "^") {
		pattern = "^" + pattern
	}
	if !strings.HasSuffix(pattern, "$") {
		pattern += "$"
	}
	return pattern
}

// WithDoc attaches registration-level documentation metadata to the route.
// It overrides any type-level annotation field by field; tags are merged.
func (rt *Route) WithDoc(d Doc) *Route {
	rt.doc = &d
	return rt
}

// Method returns the HTTP method the route is registered under.
func (rt *Route) Method() string { return rt.method }

// Pattern returns the original regex pattern.
func (rt *Route) Pattern() string { return rt.pattern }

// Handler returns the route's handler reference.
func (rt *Route) Handler() HandlerRef { return rt.handler }

// DocMeta returns the registration-level documentation annotation, or nil.
func (rt *Route) DocMeta() *Doc { return rt.doc }

// Err returns the pattern compilation error, if any.
func (rt *Route) Err() error { return rt.err }

// match tests the route's pattern against a request path. On success it
// returns the path parameters named from the positional pool.
func (rt *Route) match(path string) (map[string]string, bool) {
	if rt.err != nil || rt.regex == nil {
		return nil, false
	}
	groups := rt.regex.FindStringSubmatch(path)
	if groups == nil {
		return nil, false
	}
	if len(groups) == 1 {
		return nil, true
	}
	vars := make(map[string]string, len(groups)-1)
	for i, val := range groups[1:] {
		vars[ParamName(i)] = val
	}
	return vars, true
}
