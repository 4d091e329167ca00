// Package openapi generates OpenAPI 3.0.3 documents from registered
// routes and entity descriptors.
//
// A Generator walks the routes of a route.Router, converts each regex
// pattern into an OpenAPI path template, extracts operation metadata
// from handler annotations, doc comments or handler source, and builds
// component schemas from an entity.Reflector:
//
//	gen := openapi.NewGenerator(openapi.Info{
//		Title:   "My API",
//		Version: "1.0.0",
//	}, registry)
//	gen.AddServer(openapi.Server{URL: "https://api.example.com"})
//
//	doc := gen.Generate(router)
//
// Generators can also serve the document over HTTP, including an
// interactive docs UI:
//
//	gen.Handle(router, "/docs", nil)
package openapi
