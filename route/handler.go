package route

import (
	"net/http"
	"reflect"
)

// HandlerFunc is the signature of an inline route handler.
type HandlerFunc func(r *http.Request) *Response

// Controller is the interface implemented by named handler types. The router
// invokes Trigger for every matched request.
type Controller interface {
	Trigger(r *http.Request) *Response
}

// Annotated can be implemented by a Controller or method receiver to attach
// type-level documentation metadata. Registration-level metadata set with
// Route.WithDoc overrides it field by field; tags from both levels are
// merged.
type Annotated interface {
	RouteDoc() Doc
}

// Doc is a structured documentation annotation for a route. All fields are
// optional; unset fields fall back to doc comments and source heuristics
// during spec generation.
type Doc struct {
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	OperationID string
	ContentType string

	// Returns declares the handler result type in type-expression form,
	// e.g. "UserEntity", "UserEntity[]", "int|string".
	Returns string

	// ResponseMap declares distinct result types per HTTP status code.
	// Takes precedence over Returns when non-empty.
	ResponseMap map[int]string
}

// HandlerKind discriminates the HandlerRef variants.
type HandlerKind int

const (
	// KindFunc is an inline function handler.
	KindFunc HandlerKind = iota
	// KindController is a named type with a Trigger method.
	KindController
	// KindMethod is a static method reference (receiver + method name).
	KindMethod
)

// HandlerRef is a closed union over the three handler forms. Each variant
// can be invoked for a request and introspected for documentation.
type HandlerRef struct {
	kind       HandlerKind
	fn         HandlerFunc
	controller Controller
	recv       any
	method     string
}

// Func wraps an inline function as a HandlerRef.
func Func(f HandlerFunc) HandlerRef {
	return HandlerRef{kind: KindFunc, fn: f}
}

// Handler wraps a Controller as a HandlerRef.
func Handler(c Controller) HandlerRef {
	return HandlerRef{kind: KindController, controller: c}
}

// Method wraps a receiver and method name as a HandlerRef. The named method
// must have the signature func(*http.Request) *Response; it is resolved via
// reflection at dispatch time.
func Method(recv any, name string) HandlerRef {
	return HandlerRef{kind: KindMethod, recv: recv, method: name}
}

// Kind returns the handler variant.
func (h HandlerRef) Kind() HandlerKind { return h.kind }

// Func returns the inline function, or nil for other variants.
func (h HandlerRef) Func() HandlerFunc { return h.fn }

// Controller returns the controller value and whether this is a controller
// reference.
func (h HandlerRef) Controller() (Controller, bool) {
	return h.controller, h.kind == KindController
}

// Target returns the receiver and method name of a method reference.
func (h HandlerRef) Target() (recv any, method string, ok bool) {
	return h.recv, h.method, h.kind == KindMethod
}

// IsValid reports whether the reference holds an invokable handler.
func (h HandlerRef) IsValid() bool {
	switch h.kind {
	case KindFunc:
		return h.fn != nil
	case KindController:
		return h.controller != nil
	case KindMethod:
		return h.recv != nil && h.method != ""
	}
	return false
}

// TypeDoc returns the type-level Doc annotation if the handler's receiver
// implements Annotated.
func (h HandlerRef) TypeDoc() (Doc, bool) {
	var v any
	switch h.kind {
	case KindController:
		v = h.controller
	case KindMethod:
		v = h.recv
	default:
		return Doc{}, false
	}
	if a, ok := v.(Annotated); ok {
		return a.RouteDoc(), true
	}
	return Doc{}, false
}

// Invoke dispatches the request to the underlying handler. A nil return
// means the handler could not be invoked or produced no response; the router
// maps it to 500 Internal Server Error.
func (h HandlerRef) Invoke(r *http.Request) *Response {
	switch h.kind {
	case KindFunc:
		if h.fn == nil {
			return nil
		}
		return h.fn(r)
	case KindController:
		if h.controller == nil {
			return nil
		}
		return h.controller.Trigger(r)
	case KindMethod:
		return h.invokeMethod(r)
	}
	return nil
}

// invokeMethod resolves the named method on the receiver and calls it.
func (h HandlerRef) invokeMethod(r *http.Request) *Response {
	if h.recv == nil || h.method == "" {
		return nil
	}
	m := reflect.ValueOf(h.recv).MethodByName(h.method)
	if !m.IsValid() {
		return nil
	}
	fn, ok := m.Interface().(func(*http.Request) *Response)
	if !ok {
		return nil
	}
	return fn(r)
}
