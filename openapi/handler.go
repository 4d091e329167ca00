package openapi

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/strutkit/strut/route"
	"gopkg.in/yaml.v3"
)

// DocsUI selects which interactive documentation UI to serve.
type DocsUI int

const (
	DocsSwaggerUI DocsUI = iota
	DocsRedoc
)

// HandleConfig configures the endpoints registered by Handle.
type HandleConfig struct {
	// UI selects the interactive docs UI (default: DocsSwaggerUI).
	UI DocsUI

	// Title overrides the HTML page title (default: generator info.title).
	Title string

	// JSONFilename is the path for the JSON spec endpoint
	// (default: "schema.json"). Set to "-" to disable.
	// Relative paths are joined with the base path; absolute paths
	// (starting with "/") are used as-is.
	JSONFilename string

	// YAMLFilename is the path for the YAML spec endpoint
	// (default: "schema.yaml"). Set to "-" to disable.
	// Follows the same absolute/relative rules as JSONFilename.
	YAMLFilename string

	// DisableDocs disables the interactive HTML docs UI endpoint.
	DisableDocs bool
}

func (cfg HandleConfig) jsonFilename() string {
	if cfg.JSONFilename == "" {
		return "schema.json"
	}
	return cfg.JSONFilename
}

func (cfg HandleConfig) yamlFilename() string {
	if cfg.YAMLFilename == "" {
		return "schema.yaml"
	}
	return cfg.YAMLFilename
}

// resolvePath returns the full route path for a filename.
// Absolute filenames (starting with "/") are returned as-is.
// Relative filenames are joined under basePath.
func resolvePath(basePath, filename string) string {
	if strings.HasPrefix(filename, "/") {
		return filename
	}
	if basePath == "" {
		return "/" + filename
	}
	return basePath + "/" + filename
}

// Handle registers OpenAPI endpoints under the given base path on the
// router. Depending on config, the following routes are registered:
//
//	<basePath>             - interactive HTML docs (unless DisableDocs)
//	<JSONFilename path>    - OpenAPI spec as JSON  (unless JSONFilename is "-")
//	<YAMLFilename path>    - OpenAPI spec as YAML  (unless YAMLFilename is "-")
//
// The config parameter is optional; pass nil for defaults. The spec is
// built once on first request and cached.
func (g *Generator) Handle(r *route.Router, basePath string, cfg *HandleConfig) {
	if cfg == nil {
		cfg = &HandleConfig{}
	}
	basePath = strings.TrimRight(basePath, "/")

	var jsonPath, yamlPath string

	if name := cfg.jsonFilename(); name != "-" {
		jsonPath = resolvePath(basePath, name)
		g.registerSpec(r, jsonPath, "application/json", func(doc *Document) ([]byte, error) {
			return json.MarshalIndent(doc, "", "  ")
		})
	}

	if name := cfg.yamlFilename(); name != "-" {
		yamlPath = resolvePath(basePath, name)
		g.registerSpec(r, yamlPath, "application/x-yaml", func(doc *Document) ([]byte, error) {
			return yaml.Marshal(doc)
		})
	}

	if !cfg.DisableDocs {
		specURL := jsonPath
		if specURL == "" {
			specURL = yamlPath
		}
		// Skip docs registration when no spec endpoint is available.
		if specURL != "" {
			g.registerDocs(r, basePath, cfg, specURL)
		}
	}
}

// registerSpec registers a handler serving the generated document in the
// given encoding. The document is built and serialized once, lazily.
func (g *Generator) registerSpec(r *route.Router, path, contentType string, marshal func(*Document) ([]byte, error)) {
	var (
		once     sync.Once
		data     []byte
		buildErr error
	)
	r.GET(regexp.QuoteMeta(path), func(_ *http.Request) *route.Response {
		once.Do(func() {
			defer func() {
				if rv := recover(); rv != nil {
					buildErr = fmt.Errorf("%v", rv)
				}
			}()
			data, buildErr = marshal(g.Generate(r))
		})
		if buildErr != nil {
			return route.Error(http.StatusInternalServerError, "failed to serialize OpenAPI spec")
		}
		return route.NewRawResponse(http.StatusOK, contentType, data)
	})
}

// registerDocs registers a handler serving the interactive HTML docs UI.
func (g *Generator) registerDocs(r *route.Router, basePath string, cfg *HandleConfig, specURL string) {
	var (
		once sync.Once
		data []byte
	)
	handler := func(_ *http.Request) *route.Response {
		once.Do(func() {
			title := cfg.Title
			if title == "" {
				title = g.info.Title
			}

			var page string
			switch cfg.UI {
			case DocsRedoc:
				page = redocTemplate(title, specURL)
			default:
				page = swaggerUITemplate(title, specURL)
			}
			data = []byte(page)
		})
		return route.NewRawResponse(http.StatusOK, "text/html; charset=utf-8", data)
	}
	if basePath == "" {
		// Root base path: register only "/" to avoid an empty pattern.
		r.GET("/", handler)
	} else {
		r.GET(regexp.QuoteMeta(basePath)+"/?", handler)
	}
}

func swaggerUITemplate(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: %q, dom_id: "#swagger-ui"});
</script>
</body>
</html>`, html.EscapeString(title), specPath)
}

func redocTemplate(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
</head>
<body>
<redoc spec-url=%q></redoc>
<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`, html.EscapeString(title), specPath)
}
