package openapi

import (
	"net/http"
	"sort"

	"github.com/strutkit/strut/entity"
	"github.com/strutkit/strut/route"
)

// Generator assembles a complete OpenAPI 3.0.3 Document from a route table
// and an entity reflector. Generation is synchronous and deterministic:
// every run re-extracts route metadata and uses a fresh SchemaBuilder, so
// no schema state leaks across runs.
type Generator struct {
	info      Info
	servers   []Server
	reflector entity.Reflector
}

// NewGenerator creates a generator with the given API info. The reflector
// provides entity shapes for response schemas; it may be nil.
func NewGenerator(info Info, r entity.Reflector) *Generator {
	return &Generator{info: info, reflector: r}
}

// AddServer adds a server entry to the generated document.
func (g *Generator) AddServer(server Server) *Generator {
	g.servers = append(g.servers, server)
	return g
}

// Generate builds the document from the router's route table.
func (g *Generator) Generate(r *route.Router) *Document {
	return g.GenerateRoutes(r.Routes())
}

// GenerateRoutes builds the document from a method-keyed route table.
// Operations are grouped by converted path; component schemas accumulated
// during the run are attached only when non-empty.
func (g *Generator) GenerateRoutes(routes map[string][]*route.Route) *Document {
	schemas := NewSchemaBuilder(g.reflector)
	extractor := NewMetadataExtractor(g.reflector)
	operations := NewOperationBuilder(schemas)

	doc := &Document{
		OpenAPI: "3.0.3",
		Info:    g.info,
		Servers: g.servers,
		Paths:   make(map[string]*PathItem),
	}

	methods := make([]string, 0, len(routes))
	for method := range routes {
		methods = append(methods, method)
	}
	sort.Strings(methods)

	for _, method := range methods {
		for _, rt := range routes[method] {
			path, params := ConvertPath(rt.Pattern())
			md := extractor.Extract(rt)
			op := operations.Build(method, rt.Pattern(), params, md)

			pathItem, ok := doc.Paths[path]
			if !ok {
				pathItem = &PathItem{}
				doc.Paths[path] = pathItem
			}
			assignOperation(pathItem, method, op)
		}
	}

	if schemas := schemas.ComponentSchemas(); len(schemas) > 0 {
		doc.Components = &Components{Schemas: schemas}
	}

	return doc
}

// assignOperation assigns an operation to the correct HTTP method field
// on the path item.
func assignOperation(pathItem *PathItem, method string, op *Operation) {
	switch method {
	case http.MethodGet:
		pathItem.Get = op
	case http.MethodPost:
		pathItem.Post = op
	case http.MethodPut:
		pathItem.Put = op
	case http.MethodDelete:
		pathItem.Delete = op
	case http.MethodPatch:
		pathItem.Patch = op
	case http.MethodHead:
		pathItem.Head = op
	case http.MethodOptions:
		pathItem.Options = op
	case http.MethodTrace:
		pathItem.Trace = op
	}
}
