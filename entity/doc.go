// Package entity provides the type-descriptor registry consumed by the
// OpenAPI schema builder and the record layer.
//
// An entity is described by an ordered list of fields, each carrying its
// declared type in type-expression form: "int", "string", "?string"
// (nullable), "UserEntity[]" (array), "int|string" (union), "datetime".
// Descriptors can be built by hand or derived from a Go struct:
//
//	reg := entity.NewRegistry()
//	desc, err := reg.RegisterStruct(UserEntity{}, entity.WithDoc("A registered user"))
//
// Struct derivation follows encoding/json field naming (`json` tags) and
// reads three additional tags: `doc` (field description), `default`
// (declares a default value, making the field optional), and `union`
// (overrides the derived type with an explicit union expression).
package entity
