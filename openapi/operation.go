package openapi

import (
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// statusDescriptions is the fixed description table for response codes.
// Codes outside the table fall back to "Response".
var statusDescriptions = map[int]string{
	200: "OK",
	201: "Created",
	202: "Accepted",
	204: "No Content",
	301: "Moved Permanently",
	302: "Found",
	304: "Not Modified",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	409: "Conflict",
	422: "Unprocessable Entity",
	429: "Too Many Requests",
	500: "Internal Server Error",
	502: "Bad Gateway",
	503: "Service Unavailable",
}

// statusDescription returns the standard description for a status code.
func statusDescription(code int) string {
	if desc, ok := statusDescriptions[code]; ok {
		return desc
	}
	return "Response"
}

// StandardErrorSchema returns the fixed error payload schema used for error
// responses: {error: string, messages: [{field, message}]}. It mirrors the
// route package's ErrorBody shape.
func StandardErrorSchema() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"error": {Type: "string"},
			"messages": {
				Type: "array",
				Items: &Schema{
					Type: "object",
					Properties: map[string]*Schema{
						"field":   {Type: "string"},
						"message": {Type: "string"},
					},
				},
			},
		},
		Required: []string{"error"},
	}
}

// OperationBuilder assembles Operation objects from converted paths,
// extracted metadata, and schemas produced by a SchemaBuilder.
type OperationBuilder struct {
	schemas *SchemaBuilder
}

// NewOperationBuilder creates an operation builder over the given schema
// builder.
func NewOperationBuilder(sb *SchemaBuilder) *OperationBuilder {
	return &OperationBuilder{schemas: sb}
}

// Build assembles the operation for one (method, route) pair.
func (b *OperationBuilder) Build(method, pattern string, params []*Parameter, md RouteMetadata) *Operation {
	op := &Operation{
		OperationID: md.OperationID,
		Summary:     md.Summary,
		Description: md.Description,
		Deprecated:  md.Deprecated,
	}

	if op.OperationID == "" {
		op.OperationID = synthOperationID(method, pattern)
	}
	if op.Summary == "" {
		op.Summary = titleMethod(method) + " operation"
	}
	if len(md.Tags) > 0 {
		op.Tags = md.Tags
	}

	contentType := md.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	if md.Returns != nil && md.Returns.Kind == KindStatusMap {
		op.Responses = b.statusMapResponses(md.Returns, contentType)
	} else {
		op.Responses = b.DefaultResponses(method, md.Returns, contentType)
	}

	if len(params) > 0 {
		op.Parameters = params
	}

	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		// Request bodies are not inferred from types; a generic JSON
		// object is declared for mutating methods.
		op.RequestBody = &RequestBody{
			Required: true,
			Content: map[string]*MediaType{
				"application/json": {Schema: &Schema{Type: "object"}},
			},
		}
	}

	return op
}

// statusMapResponses builds one response per declared status code. Error
// codes declared as generic objects use the standard error schema; a 500
// entry is synthesized when absent.
func (b *OperationBuilder) statusMapResponses(ts *TypeSpec, contentType string) map[string]*Response {
	responses := make(map[string]*Response, len(ts.Codes)+1)

	codes := make([]int, 0, len(ts.Codes))
	for code := range ts.Codes {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	for _, code := range codes {
		declared := ts.Codes[code]

		var schema *Schema
		if code >= 400 && code <= 599 && declared.isGenericObject() {
			schema = StandardErrorSchema()
		} else {
			schema = b.schemas.Build(declared, true)
		}

		responses[strconv.Itoa(code)] = &Response{
			Description: statusDescription(code),
			Content: map[string]*MediaType{
				contentType: {Schema: schema},
			},
		}
	}

	if _, ok := responses["500"]; !ok {
		responses["500"] = &Response{
			Description: statusDescription(500),
			Content: map[string]*MediaType{
				contentType: {Schema: StandardErrorSchema()},
			},
		}
	}

	return responses
}

// DefaultResponses synthesizes the default response set: 200 with the
// resolved schema (generic object when no type was declared), 404 and 500
// with the standard error schema, plus a 201 reusing the 200 schema for
// POST and PUT.
func (b *OperationBuilder) DefaultResponses(method string, ts *TypeSpec, contentType string) map[string]*Response {
	okSchema := &Schema{Type: "object"}
	if ts != nil {
		okSchema = b.schemas.Build(*ts, true)
	}

	responses := map[string]*Response{
		"200": {
			Description: statusDescription(200),
			Content: map[string]*MediaType{
				contentType: {Schema: okSchema},
			},
		},
		"404": {
			Description: statusDescription(404),
			Content: map[string]*MediaType{
				contentType: {Schema: StandardErrorSchema()},
			},
		},
		"500": {
			Description: statusDescription(500),
			Content: map[string]*MediaType{
				contentType: {Schema: StandardErrorSchema()},
			},
		},
	}

	if method == http.MethodPost || method == http.MethodPut {
		responses["201"] = &Response{
			Description: statusDescription(201),
			Content: map[string]*MediaType{
				contentType: {Schema: okSchema},
			},
		}
	}

	return responses
}

// nonIDChars matches every character replaced during operation ID synthesis.
var nonIDChars = regexp.MustCompile(`[^a-zA-Z0-9/]`)

// synthOperationID derives an operation ID from the method and the raw
// route pattern: non-alphanumeric characters become underscores, leading
// and trailing separators are trimmed, and slashes turn into underscores.
func synthOperationID(method, pattern string) string {
	sanitized := nonIDChars.ReplaceAllString(pattern, "_")
	sanitized = strings.Trim(sanitized, "_/")
	sanitized = strings.ReplaceAll(sanitized, "/", "_")
	return strings.ToLower(method) + "_" + sanitized
}

// titleMethod returns the HTTP method with only its first letter uppercased.
func titleMethod(method string) string {
	if method == "" {
		return ""
	}
	return strings.ToUpper(method[:1]) + strings.ToLower(method[1:])
}
