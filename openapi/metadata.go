package openapi

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/strutkit/strut/entity"
	"github.com/strutkit/strut/route"
)

// RouteMetadata is the resolved documentation metadata for one route,
// computed fresh for every spec generation run.
type RouteMetadata struct {
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	OperationID string
	ContentType string

	// Returns is the declared result type, nil when none was declared.
	Returns *TypeSpec
}

// MetadataExtractor resolves per-route metadata from three ranked sources:
// explicit Doc annotations, doc comments on the handler, and a best-effort
// textual scan of inline handler source. The first source that yields a
// value wins, per field.
type MetadataExtractor struct {
	reflector entity.Reflector
}

// NewMetadataExtractor creates an extractor. The reflector is used to
// resolve type names found by the source-scan heuristic; it may be nil.
func NewMetadataExtractor(r entity.Reflector) *MetadataExtractor {
	return &MetadataExtractor{reflector: r}
}

// Extract resolves the route's metadata. It never fails: missing sources
// simply leave fields at their defaults (JSON content type, empty tags, not
// deprecated, no declared return type).
func (e *MetadataExtractor) Extract(rt *route.Route) RouteMetadata {
	var typeDoc *route.Doc
	if td, ok := rt.Handler().TypeDoc(); ok {
		typeDoc = &td
	}
	merged := mergeDocs(typeDoc, rt.DocMeta())

	md := RouteMetadata{
		Summary:     merged.Summary,
		Description: merged.Description,
		Tags:        merged.Tags,
		Deprecated:  merged.Deprecated,
		OperationID: merged.OperationID,
		ContentType: merged.ContentType,
	}
	if md.ContentType == "" {
		md.ContentType = "application/json"
	}

	switch {
	case len(merged.ResponseMap) > 0:
		ts := StatusMapType(merged.ResponseMap)
		md.Returns = &ts
	case merged.Returns != "":
		ts := ParseType(merged.Returns)
		md.Returns = &ts
	}

	if md.Summary == "" || md.Description == "" || md.Returns == nil {
		if dc := docCommentFor(rt.Handler()); dc != nil {
			if md.Summary == "" {
				md.Summary = dc.summary
			}
			if md.Description == "" {
				md.Description = dc.description
			}
			if md.Returns == nil && dc.returnExpr != "" {
				ts := ParseType(dc.returnExpr)
				md.Returns = &ts
			}
		}
	}

	if md.Returns == nil && rt.Handler().Kind() == route.KindFunc {
		md.Returns = e.scanReturnType(rt.Handler())
	}

	return md
}

// mergeDocs merges a type-level annotation with a registration-level one.
// Registration values override type values field by field, except tags,
// which are unioned with duplicates removed.
func mergeDocs(typeDoc, methodDoc *route.Doc) route.Doc {
	var out route.Doc
	if typeDoc != nil {
		out = *typeDoc
	}
	if methodDoc == nil {
		return out
	}

	if methodDoc.Summary != "" {
		out.Summary = methodDoc.Summary
	}
	if methodDoc.Description != "" {
		out.Description = methodDoc.Description
	}
	if methodDoc.OperationID != "" {
		out.OperationID = methodDoc.OperationID
	}
	if methodDoc.ContentType != "" {
		out.ContentType = methodDoc.ContentType
	}
	if methodDoc.Deprecated {
		out.Deprecated = true
	}
	if methodDoc.Returns != "" {
		out.Returns = methodDoc.Returns
	}
	if len(methodDoc.ResponseMap) > 0 {
		out.ResponseMap = methodDoc.ResponseMap
	}
	out.Tags = unionTags(out.Tags, methodDoc.Tags)

	return out
}

// unionTags merges two tag lists preserving first-seen order.
func unionTags(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, tag := range a {
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	for _, tag := range b {
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}

// --- Doc comment source ---

// docComment is the parsed form of a handler doc comment.
type docComment struct {
	summary     string
	description string
	returnExpr  string
}

// returnStoplist lists @return tokens that carry no type information.
// "Response" is the bare response-wrapper name.
var returnStoplist = map[string]bool{
	"void": true, "null": true, "self": true,
	"static": true, "mixed": true, "Response": true,
	"*Response": true, "*route.Response": true, "route.Response": true,
}

// wrapperRe matches the generic response-wrapper syntax Response[Inner]
// (or Response<Inner>) and captures the inner type expression.
var wrapperRe = regexp.MustCompile(`^\*?(?:route\.)?Response[\[<](.+)[\]>]$`)

// docCommentFor locates the handler's defining source file via runtime
// information, parses it, and returns the declaration's doc comment.
// All failures (unknown location, unreadable file, parse error, no comment)
// yield nil.
func docCommentFor(h route.HandlerRef) *docComment {
	file, line, ok := handlerSourceLine(h)
	if !ok {
		return nil
	}

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, file, nil, parser.ParseComments)
	if err != nil {
		return nil
	}

	for _, decl := range parsed.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Doc == nil {
			continue
		}
		start := fset.Position(fd.Pos()).Line
		end := fset.Position(fd.End()).Line
		if line >= start && line <= end {
			return parseDocComment(fd.Doc.Text())
		}
	}

	return nil
}

// handlerSourceLine resolves the source file and line of the handler's
// function or trigger method.
func handlerSourceLine(h route.HandlerRef) (string, int, bool) {
	var pc uintptr

	switch h.Kind() {
	case route.KindFunc:
		fn := h.Func()
		if fn == nil {
			return "", 0, false
		}
		pc = reflect.ValueOf(fn).Pointer()

	case route.KindController:
		c, _ := h.Controller()
		if c == nil {
			return "", 0, false
		}
		m, ok := reflect.TypeOf(c).MethodByName("Trigger")
		if !ok {
			return "", 0, false
		}
		pc = m.Func.Pointer()

	case route.KindMethod:
		recv, name, _ := h.Target()
		if recv == nil {
			return "", 0, false
		}
		m, ok := reflect.TypeOf(recv).MethodByName(name)
		if !ok {
			return "", 0, false
		}
		pc = m.Func.Pointer()
	}

	f := runtime.FuncForPC(pc)
	if f == nil {
		return "", 0, false
	}
	file, line := f.FileLine(pc)
	if file == "" {
		return "", 0, false
	}
	return file, line, true
}

// parseDocComment splits a doc comment into summary, description, and an
// optional @return type hint. The first non-empty non-tag line is the
// summary; all lines up to the first @-tag join into the description.
func parseDocComment(text string) *docComment {
	lines := strings.Split(text, "\n")

	dc := &docComment{}
	var descParts []string

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "@") {
			if expr, ok := strings.CutPrefix(line, "@return"); ok {
				dc.returnExpr = parseReturnToken(expr)
			}
			continue
		}
		if line == "" {
			continue
		}
		if dc.summary == "" {
			dc.summary = line
		}
		descParts = append(descParts, line)
	}

	dc.description = strings.Join(descParts, " ")
	return dc
}

// parseReturnToken extracts a type expression from an @return tag value,
// unwrapping the generic response-wrapper syntax and dropping stoplisted
// non-informative tokens.
func parseReturnToken(rest string) string {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	token := fields[0]

	if m := wrapperRe.FindStringSubmatch(token); m != nil {
		token = m[1]
	}

	if returnStoplist[token] {
		return ""
	}
	return token
}

// --- Source-scan heuristic ---

// newResponseRe matches a literal response-wrapper construction and captures
// the leading text of the second (body) argument.
var newResponseRe = regexp.MustCompile(`NewResponse\(\s*[^,()]+,\s*([^\n]{1,160})`)

// arrayLiteralRe matches a slice literal body argument: []Type{...}.
var arrayLiteralRe = regexp.MustCompile(`^\[\]([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)?)\s*\{`)

// structLiteralRe matches a struct literal body argument: Type{...} or &Type{...}.
var structLiteralRe = regexp.MustCompile(`^&?([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)?)\s*\{`)

// scanWindow bounds how much handler source the heuristic inspects.
const scanWindow = 4096

// scanReturnType statically scans an inline handler's source text for a
// literal NewResponse construction and pattern-matches its body argument for
// an entity literal. This is a textual heuristic, not a parser; every
// failure yields nil ("no hint found").
func (e *MetadataExtractor) scanReturnType(h route.HandlerRef) *TypeSpec {
	fn := h.Func()
	if fn == nil {
		return nil
	}
	pc := reflect.ValueOf(fn).Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return nil
	}
	file, line := f.FileLine(pc)

	src, err := os.ReadFile(file)
	if err != nil {
		return nil
	}

	window := sourceWindow(src, line)

	for _, match := range newResponseRe.FindAllStringSubmatch(window, -1) {
		arg := strings.TrimSpace(match[1])

		if m := arrayLiteralRe.FindStringSubmatch(arg); m != nil {
			if elem := e.resolveScannedName(m[1], f.Name()); elem != nil {
				return &TypeSpec{Kind: KindArray, Elem: elem}
			}
			continue
		}
		if m := structLiteralRe.FindStringSubmatch(arg); m != nil {
			if ts := e.resolveScannedName(m[1], f.Name()); ts != nil {
				return ts
			}
		}
	}

	return nil
}

// sourceWindow returns up to scanWindow bytes of src starting at the given
// one-based line.
func sourceWindow(src []byte, line int) string {
	offset := 0
	for i := 1; i < line && offset < len(src); i++ {
		next := bytes.IndexByte(src[offset:], '\n')
		if next < 0 {
			break
		}
		offset += next + 1
	}
	end := offset + scanWindow
	if end > len(src) {
		end = len(src)
	}
	return string(src[offset:end])
}

// resolveScannedName resolves a literal type name found in handler source.
// Known entities resolve directly; unknown short names are qualified with
// the handler's declared package before giving up.
func (e *MetadataExtractor) resolveScannedName(name, funcName string) *TypeSpec {
	if e.reflector == nil {
		return nil
	}
	if _, ok := e.reflector.Reflect(name); ok {
		return &TypeSpec{Kind: KindEntity, Name: name}
	}

	if !strings.Contains(name, ".") {
		if pkg := declaredPackage(funcName); pkg != "" {
			qualified := pkg + "." + name
			if _, ok := e.reflector.Reflect(qualified); ok {
				return &TypeSpec{Kind: KindEntity, Name: qualified}
			}
		}
	}

	return nil
}

// declaredPackage extracts the package name from a runtime function name
// such as "github.com/acme/app/web.glob..func1".
func declaredPackage(funcName string) string {
	if idx := strings.LastIndexByte(funcName, '/'); idx >= 0 {
		funcName = funcName[idx+1:]
	}
	pkg, _, ok := strings.Cut(funcName, ".")
	if !ok {
		return ""
	}
	return pkg
}
