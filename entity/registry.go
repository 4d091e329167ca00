package entity

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Registry is a registration-based Reflector. Entities are registered once,
// by hand-built descriptor or by deriving one from a Go struct, and looked
// up by qualified or short name during spec generation.
//
// Registry is not safe for concurrent mutation; register all entities before
// handing the registry to a generator.
type Registry struct {
	entities map[string]*Descriptor
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*Descriptor),
	}
}

// Register adds a descriptor under its qualified name. Registering the same
// name twice replaces the previous descriptor.
func (r *Registry) Register(desc *Descriptor) {
	if _, exists := r.entities[desc.Name]; !exists {
		r.order = append(r.order, desc.Name)
	}
	r.entities[desc.Name] = desc
}

// Reflect returns the descriptor for the named entity. Exact qualified
// matches win; otherwise the name's last segment is matched against the
// short names of registered entities, first registration wins.
func (r *Registry) Reflect(name string) (*Descriptor, bool) {
	if desc, ok := r.entities[name]; ok {
		return desc, true
	}
	short := ShortName(name)
	for _, registered := range r.order {
		if ShortName(registered) == short {
			return r.entities[registered], true
		}
	}
	return nil, false
}

// Names returns the qualified names of all registered entities in
// registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ShortName returns the last segment of a qualified entity name, splitting
// on both "/" and ".".
func ShortName(name string) string {
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// DescribeOption customizes struct-derived descriptors.
type DescribeOption func(*Descriptor)

// WithDoc sets the entity-level description.
func WithDoc(doc string) DescribeOption {
	return func(d *Descriptor) { d.Doc = doc }
}

// WithName overrides the derived qualified name.
func WithName(name string) DescribeOption {
	return func(d *Descriptor) { d.Name = name }
}

// RegisterStruct derives a descriptor from a Go struct via reflection and
// registers it. The qualified name is the struct's package-qualified type
// name (reflect.Type.String form, e.g. "models.UserEntity").
func (r *Registry) RegisterStruct(v any, opts ...DescribeOption) (*Descriptor, error) {
	desc, err := Describe(v, opts...)
	if err != nil {
		return nil, err
	}
	r.Register(desc)
	return desc, nil
}

// Describe derives a descriptor from a Go struct without registering it.
// Pointers are unwrapped; non-struct values are an error.
func Describe(v any, opts ...DescribeOption) (*Descriptor, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, fmt.Errorf("entity: cannot describe nil value")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entity: cannot describe %s, want a struct", t.Kind())
	}

	desc := &Descriptor{Name: t.String()}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name, tagOpts, _ := strings.Cut(jsonTag, ",")
		if name == "" {
			name = field.Name
		}

		typeExpr := field.Tag.Get("union")
		if typeExpr == "" {
			typeExpr = typeString(field.Type)
		}

		_, hasDefault := field.Tag.Lookup("default")
		// omitempty fields may be absent from payloads; treat them as
		// having an implicit zero default.
		if strings.Contains(tagOpts, "omitempty") || strings.Contains(tagOpts, "omitzero") {
			hasDefault = true
		}

		desc.Fields = append(desc.Fields, Field{
			Name:       name,
			Type:       typeExpr,
			Doc:        field.Tag.Get("doc"),
			HasDefault: hasDefault,
		})
	}

	for _, opt := range opts {
		opt(desc)
	}

	return desc, nil
}

// typeString maps a Go type to its type-expression form.
func typeString(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Pointer:
		return "?" + typeString(t.Elem())

	case reflect.Bool:
		return "bool"

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"

	case reflect.Float32, reflect.Float64:
		return "float"

	case reflect.String:
		return "string"

	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return "string"
		}
		return typeString(t.Elem()) + "[]"

	case reflect.Map:
		return "object"

	case reflect.Interface:
		return "mixed"

	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			return "datetime"
		}
		if t.Name() != "" {
			return t.Name()
		}
		return "object"
	}

	return "object"
}
