// Package route implements a regex-based HTTP route table and dispatcher.
//
// Routes are registered per HTTP method with a regular expression pattern.
// Parenthesized capture groups become positional path parameters, named from
// a fixed pool (id, param1, param2, ...):
//
//	r := route.New()
//	r.GET(`/users/(\d+)`, func(req *http.Request) *route.Response {
//	    id, _ := route.VarGet(req, "id")
//	    return route.NewResponse(http.StatusOK, fetchUser(id))
//	})
//	http.ListenAndServe(":8080", r)
//
// Handlers come in three forms, modeled by HandlerRef: an inline HandlerFunc,
// a Controller (a named type with a Trigger method), or a method reference
// (a receiver plus method name resolved via reflection). All three return a
// *Response wrapper which the router serializes, JSON by default.
//
// Documentation metadata for the OpenAPI generator can be attached at
// registration time with Route.WithDoc, or at the type level by implementing
// the Annotated interface.
package route
