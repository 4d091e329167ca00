package openapi

import "strings"

// TypeKind discriminates TypeSpec variants.
type TypeKind int

const (
	// KindPrimitive is a scalar or builtin type (int, string, datetime, ...).
	KindPrimitive TypeKind = iota
	// KindArray is an array of an element type.
	KindArray
	// KindEntity is a reference to a mapped entity.
	KindEntity
	// KindUnion is a union of member types.
	KindUnion
	// KindStatusMap associates HTTP status codes with result types.
	// Valid only at the route-metadata level, never nested.
	KindStatusMap
)

// TypeSpec is the tagged union over declared types.
type TypeSpec struct {
	Kind    TypeKind
	Name    string           // primitive or entity name
	Elem    *TypeSpec        // array element
	Members []TypeSpec       // union members
	Codes   map[int]TypeSpec // status-map entries
}

// primitiveNames is the set of names resolved as primitives rather than
// entity references.
var primitiveNames = map[string]bool{
	"int": true, "integer": true,
	"float": true, "double": true,
	"bool": true, "boolean": true,
	"string":   true,
	"array":    true,
	"object":   true,
	"mixed":    true,
	"datetime": true,
	"null":     true,
}

// ParseType parses a type expression into a TypeSpec. Supported forms:
//
//	int, string, datetime        primitives
//	UserEntity                   entity reference
//	UserEntity[]                 array
//	int|string                   union
//	?string                      shorthand for string|null
//
// Unknown names parse as entity references; the schema builder degrades
// unmapped entities to a generic object schema.
func ParseType(expr string) TypeSpec {
	expr = strings.TrimSpace(expr)

	if parts := strings.Split(expr, "|"); len(parts) > 1 {
		members := make([]TypeSpec, 0, len(parts))
		for _, part := range parts {
			members = append(members, ParseType(part))
		}
		return TypeSpec{Kind: KindUnion, Members: members}
	}

	if rest, ok := strings.CutPrefix(expr, "?"); ok {
		inner := ParseType(rest)
		return TypeSpec{Kind: KindUnion, Members: []TypeSpec{
			inner,
			{Kind: KindPrimitive, Name: "null"},
		}}
	}

	if rest, ok := strings.CutSuffix(expr, "[]"); ok {
		elem := ParseType(rest)
		return TypeSpec{Kind: KindArray, Elem: &elem}
	}

	if primitiveNames[expr] || primitiveNames[strings.ToLower(expr)] {
		return TypeSpec{Kind: KindPrimitive, Name: strings.ToLower(expr)}
	}

	return TypeSpec{Kind: KindEntity, Name: expr}
}

// StatusMapType builds a route-level status-map TypeSpec from a map of
// status code to type expression.
func StatusMapType(codes map[int]string) TypeSpec {
	ts := TypeSpec{Kind: KindStatusMap, Codes: make(map[int]TypeSpec, len(codes))}
	for code, expr := range codes {
		ts.Codes[code] = ParseType(expr)
	}
	return ts
}

// isNull reports whether the spec is the null primitive.
func (ts TypeSpec) isNull() bool {
	return ts.Kind == KindPrimitive && ts.Name == "null"
}

// nonNullMembers returns the union members that are not null. For non-union
// specs it returns the spec itself.
func (ts TypeSpec) nonNullMembers() []TypeSpec {
	if ts.Kind != KindUnion {
		return []TypeSpec{ts}
	}
	var members []TypeSpec
	for _, m := range ts.Members {
		if !m.isNull() {
			members = append(members, m)
		}
	}
	return members
}

// Nullable reports whether the type admits null: a union with a null member.
func (ts TypeSpec) Nullable() bool {
	if ts.Kind != KindUnion {
		return false
	}
	for _, m := range ts.Members {
		if m.isNull() {
			return true
		}
	}
	return false
}

// isGenericObject reports whether the spec is the generic object/mixed
// primitive. Error-code responses declared as generic objects use the
// standard error schema instead.
func (ts TypeSpec) isGenericObject() bool {
	return ts.Kind == KindPrimitive && (ts.Name == "object" || ts.Name == "mixed")
}
