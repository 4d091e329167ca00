package openapi

import (
	"errors"
	"fmt"

	"github.com/strutkit/strut/entity"
)

// ErrNotEntity is returned by BuildEntity when the named type is not a
// registered entity. Building a schema explicitly for a non-entity is a
// programmer error; every other unknown type degrades to a generic object.
var ErrNotEntity = errors.New("openapi: not a mapped entity")

// dateTimeExample is the fixed example attached to datetime schemas.
const dateTimeExample = "2024-01-15T10:30:00Z"

// SchemaBuilder converts declared types into OpenAPI schema fragments and
// collects entity schemas into a component registry for $ref deduplication.
// The cache and registry are scoped to one builder instance; a spec
// generation run uses one fresh builder to avoid cross-run schema leakage.
type SchemaBuilder struct {
	reflector entity.Reflector
	schemas   map[string]*Schema // component registry, keyed by short name
	cache     map[string]*Schema // finished entity schemas, keyed by short name
	building  map[string]bool    // cycle detection: entities being built
}

// NewSchemaBuilder creates a schema builder over the given reflector.
// The reflector may be nil, in which case every entity reference degrades
// to a generic object.
func NewSchemaBuilder(r entity.Reflector) *SchemaBuilder {
	b := &SchemaBuilder{reflector: r}
	b.ClearCache()
	return b
}

// ClearCache resets the component registry, schema cache, and building set.
// Callers needing isolation construct a fresh builder or call this between
// generation runs.
func (b *SchemaBuilder) ClearCache() {
	b.schemas = make(map[string]*Schema)
	b.cache = make(map[string]*Schema)
	b.building = make(map[string]bool)
}

// ComponentSchemas returns the accumulated component registry.
func (b *SchemaBuilder) ComponentSchemas() map[string]*Schema {
	return b.schemas
}

// BuildType resolves a type expression (see ParseType) into a schema
// fragment. With useRef, entity schemas are returned as $ref fragments and
// registered as components.
func (b *SchemaBuilder) BuildType(expr string, useRef bool) *Schema {
	return b.Build(ParseType(expr), useRef)
}

// Build resolves a TypeSpec into a schema fragment. Unknown entity
// references degrade to a generic object; Build never fails.
func (b *SchemaBuilder) Build(ts TypeSpec, useRef bool) *Schema {
	switch ts.Kind {
	case KindPrimitive:
		return primitiveSchema(ts.Name)

	case KindArray:
		return &Schema{Type: "array", Items: b.Build(*ts.Elem, useRef)}

	case KindEntity:
		if b.reflector != nil {
			if _, ok := b.reflector.Reflect(ts.Name); ok {
				schema, err := b.BuildEntity(ts.Name, useRef)
				if err == nil {
					return schema
				}
			}
		}
		return &Schema{Type: "object"}

	case KindUnion:
		return b.buildUnion(ts, useRef)

	case KindStatusMap:
		// Status maps are only meaningful at the route-metadata level.
		return &Schema{Type: "object"}
	}

	return &Schema{Type: "object"}
}

// buildUnion resolves a union type. A union of exactly one non-null member
// plus null collapses to that member's schema annotated nullable; unions of
// two or more non-null members produce a oneOf list.
func (b *SchemaBuilder) buildUnion(ts TypeSpec, useRef bool) *Schema {
	members := ts.nonNullMembers()

	switch len(members) {
	case 0:
		return &Schema{Type: "object", Nullable: true}

	case 1:
		schema := b.Build(members[0], useRef)
		if !ts.Nullable() {
			return schema
		}
		clone := *schema
		clone.Nullable = true
		return &clone

	default:
		oneOf := make([]*Schema, 0, len(members))
		for _, m := range members {
			oneOf = append(oneOf, b.Build(m, useRef))
		}
		return &Schema{OneOf: oneOf}
	}
}

// BuildEntity builds the object schema for a registered entity and records
// it in the component registry under its short name. With useRef the
// returned fragment is a $ref to the component. Self-referencing entities
// terminate via the building set: recursing back into an entity currently
// being built yields a $ref (or generic object) instead of descending.
//
// Entity short names must be unique across a generation run; colliding
// short names silently overwrite each other in the registry. This is a
// known limitation kept for reference-name stability.
func (b *SchemaBuilder) BuildEntity(name string, useRef bool) (*Schema, error) {
	if b.reflector == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotEntity, name)
	}
	desc, ok := b.reflector.Reflect(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotEntity, name)
	}

	short := entity.ShortName(desc.Name)

	if cached, ok := b.cache[short]; ok {
		// Idempotent re-registration: the component entry must exist even
		// if the registry was drained since the schema was cached.
		b.schemas[short] = cached
		if useRef {
			return refSchema(short), nil
		}
		return cached, nil
	}

	if b.building[short] {
		if useRef {
			return refSchema(short), nil
		}
		return &Schema{Type: "object"}, nil
	}

	b.building[short] = true

	schema := &Schema{
		Type:        "object",
		Description: desc.Doc,
		Properties:  make(map[string]*Schema, len(desc.Fields)),
	}

	for _, field := range desc.Fields {
		ts := ParseType(field.Type)

		fieldSchema := b.Build(ts, true)
		if field.Doc != "" {
			clone := *fieldSchema
			clone.Description = field.Doc
			fieldSchema = &clone
		}
		schema.Properties[field.Name] = fieldSchema

		if !ts.Nullable() && !field.HasDefault {
			schema.Required = append(schema.Required, field.Name)
		}
	}

	delete(b.building, short)
	b.cache[short] = schema
	b.schemas[short] = schema

	if useRef {
		return refSchema(short), nil
	}
	return schema, nil
}

// refSchema returns a $ref fragment pointing at a component schema.
func refSchema(short string) *Schema {
	return &Schema{Ref: "#/components/schemas/" + short}
}

// primitiveSchema maps a primitive type name to its schema.
func primitiveSchema(name string) *Schema {
	switch name {
	case "int", "integer":
		return &Schema{Type: "integer"}
	case "float", "double":
		return &Schema{Type: "number"}
	case "bool", "boolean":
		return &Schema{Type: "boolean"}
	case "string":
		return &Schema{Type: "string"}
	case "array":
		return &Schema{Type: "array", Items: &Schema{Type: "object"}}
	case "datetime":
		return &Schema{Type: "string", Format: "date-time", Example: dateTimeExample}
	case "null":
		return &Schema{Type: "object", Nullable: true}
	default:
		// object, mixed, and anything unrecognized.
		return &Schema{Type: "object"}
	}
}
