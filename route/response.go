package route

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Response is the standard response wrapper returned by handlers. The router
// serializes Body according to ContentType (JSON when empty) and writes it
// with the given status code. Raw responses bypass serialization entirely.
type Response struct {
	Status      int
	Body        any
	ContentType string
	Header      http.Header

	raw []byte
}

// NewResponse creates a response with the given status code and body.
func NewResponse(status int, body any) *Response {
	return &Response{Status: status, Body: body}
}

// NewRawResponse creates a response that writes pre-serialized bytes with the
// given content type, bypassing the JSON encoder.
func NewRawResponse(status int, contentType string, data []byte) *Response {
	return &Response{Status: status, ContentType: contentType, raw: data}
}

// NoContent creates an empty response with the given status code.
func NoContent(status int) *Response {
	return &Response{Status: status}
}

// WithContentType overrides the response content type.
func (resp *Response) WithContentType(ct string) *Response {
	resp.ContentType = ct
	return resp
}

// WithHeader sets a response header.
func (resp *Response) WithHeader(key, value string) *Response {
	if resp.Header == nil {
		resp.Header = make(http.Header)
	}
	resp.Header.Set(key, value)
	return resp
}

// Write serializes the response to w. A nil body produces an empty response
// body. If JSON encoding fails, a 500 Internal Server Error is written
// instead.
func (resp *Response) Write(w http.ResponseWriter) {
	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	if resp.raw != nil {
		if resp.ContentType != "" {
			w.Header().Set("Content-Type", resp.ContentType)
		}
		w.WriteHeader(status)
		w.Write(resp.raw)
		return
	}

	if resp.Body == nil {
		if resp.ContentType != "" {
			w.Header().Set("Content-Type", resp.ContentType)
		}
		w.WriteHeader(status)
		return
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(resp.Body); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ct := resp.ContentType
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// FieldMessage is a single field-level validation message in an error body.
type FieldMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorBody is the standard error payload shape used for error responses.
type ErrorBody struct {
	Error    string         `json:"error"`
	Messages []FieldMessage `json:"messages,omitempty"`
}

// Error creates an error response with the standard error body shape.
func Error(status int, message string, fields ...FieldMessage) *Response {
	return NewResponse(status, ErrorBody{Error: message, Messages: fields})
}

// ResponseJSON encodes v as JSON and writes it to the response with the given
// status code. The Content-Type header is set to "application/json".
// If encoding fails, an HTTP 500 Internal Server Error is written instead.
func ResponseJSON(w http.ResponseWriter, code int, v any) {
	NewResponse(code, v).Write(w)
}
