package entity

// Field describes a single entity field in declaration order.
type Field struct {
	// Name is the wire name of the field (json tag name or Go field name).
	Name string

	// Type is the declared type in type-expression form, e.g. "int",
	// "?string", "UserEntity[]", "int|string".
	Type string

	// Doc is the field-level description, if any.
	Doc string

	// HasDefault reports whether the field declares a default value.
	// Fields with defaults are never listed as required in schemas.
	HasDefault bool
}

// Descriptor is the reflected shape of one entity: its qualified name, an
// optional description, and its fields in declaration order.
type Descriptor struct {
	// Name is the qualified entity name, e.g. "models.UserEntity".
	// Schema builders key components by the short (last-segment) name.
	Name string

	// Doc is the entity-level description, if any.
	Doc string

	// Fields lists the entity fields in declaration order.
	Fields []Field
}

// Reflector resolves entity names to descriptors. The schema builder depends
// on this capability; Registry is the standard implementation.
type Reflector interface {
	// Reflect returns the descriptor for the named entity. The name may be
	// qualified ("models.UserEntity") or short ("UserEntity").
	Reflect(name string) (*Descriptor, bool)
}
