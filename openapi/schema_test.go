package openapi

import (
	"testing"

	"github.com/strutkit/strut/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *entity.Registry {
	t.Helper()
	r := entity.NewRegistry()
	r.Register(&entity.Descriptor{
		Name: "models.UserEntity",
		Doc:  "A user account",
		Fields: []entity.Field{
			{Name: "id", Type: "int"},
			{Name: "name", Type: "string", Doc: "Display name"},
			{Name: "email", Type: "?string"},
			{Name: "created_at", Type: "datetime"},
			{Name: "role", Type: "string", HasDefault: true},
		},
	})
	r.Register(&entity.Descriptor{
		Name: "models.PostEntity",
		Fields: []entity.Field{
			{Name: "id", Type: "int"},
			{Name: "author", Type: "UserEntity"},
		},
	})
	r.Register(&entity.Descriptor{
		Name: "models.CategoryEntity",
		Fields: []entity.Field{
			{Name: "id", Type: "int"},
			{Name: "parent", Type: "?CategoryEntity"},
			{Name: "children", Type: "CategoryEntity[]"},
		},
	})
	return r
}

func TestSchemaBuilderPrimitives(t *testing.T) {
	b := NewSchemaBuilder(nil)

	tests := []struct {
		expr   string
		typ    string
		format string
	}{
		{"int", "integer", ""},
		{"float", "number", ""},
		{"bool", "boolean", ""},
		{"string", "string", ""},
		{"datetime", "string", "date-time"},
		{"object", "object", ""},
		{"mixed", "object", ""},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			schema := b.BuildType(tt.expr, true)
			require.NotNil(t, schema)
			assert.Equal(t, tt.typ, schema.Type)
			assert.Equal(t, tt.format, schema.Format)
		})
	}

	t.Run("datetime carries fixed example", func(t *testing.T) {
		schema := b.BuildType("datetime", true)
		assert.Equal(t, "2024-01-15T10:30:00Z", schema.Example)
	})
}

func TestSchemaBuilderArrays(t *testing.T) {
	b := NewSchemaBuilder(nil)

	t.Run("array of primitives", func(t *testing.T) {
		schema := b.BuildType("int[]", true)
		assert.Equal(t, "array", schema.Type)
		require.NotNil(t, schema.Items)
		assert.Equal(t, "integer", schema.Items.Type)
	})

	t.Run("unknown entity array degrades to object items", func(t *testing.T) {
		schema := b.BuildType("Nothing[]", true)
		assert.Equal(t, "array", schema.Type)
		assert.Equal(t, "object", schema.Items.Type)
	})
}

func TestSchemaBuilderEntities(t *testing.T) {
	t.Run("builds object schema with required list", func(t *testing.T) {
		b := NewSchemaBuilder(testRegistry(t))

		schema, err := b.BuildEntity("UserEntity", false)
		require.NoError(t, err)
		assert.Equal(t, "object", schema.Type)
		assert.Equal(t, "A user account", schema.Description)

		require.Len(t, schema.Properties, 5)
		assert.Equal(t, "integer", schema.Properties["id"].Type)
		assert.Equal(t, "Display name", schema.Properties["name"].Description)
		assert.True(t, schema.Properties["email"].Nullable)

		// Nullable and defaulted fields are not required.
		assert.ElementsMatch(t, []string{"id", "name", "created_at"}, schema.Required)
	})

	t.Run("useRef returns component reference", func(t *testing.T) {
		b := NewSchemaBuilder(testRegistry(t))

		schema, err := b.BuildEntity("UserEntity", true)
		require.NoError(t, err)
		assert.Equal(t, "#/components/schemas/UserEntity", schema.Ref)

		components := b.ComponentSchemas()
		require.Contains(t, components, "UserEntity")
		assert.Equal(t, "object", components["UserEntity"].Type)
	})

	t.Run("unknown entity returns ErrNotEntity", func(t *testing.T) {
		b := NewSchemaBuilder(testRegistry(t))
		_, err := b.BuildEntity("Missing", true)
		assert.ErrorIs(t, err, ErrNotEntity)
	})

	t.Run("nil reflector returns ErrNotEntity", func(t *testing.T) {
		b := NewSchemaBuilder(nil)
		_, err := b.BuildEntity("UserEntity", true)
		assert.ErrorIs(t, err, ErrNotEntity)
	})

	t.Run("repeated builds are idempotent", func(t *testing.T) {
		b := NewSchemaBuilder(testRegistry(t))

		first, err := b.BuildEntity("UserEntity", false)
		require.NoError(t, err)
		second, err := b.BuildEntity("UserEntity", false)
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Len(t, b.ComponentSchemas(), 1)
	})

	t.Run("nested entity is registered as component", func(t *testing.T) {
		b := NewSchemaBuilder(testRegistry(t))

		schema, err := b.BuildEntity("PostEntity", false)
		require.NoError(t, err)
		assert.Equal(t, "#/components/schemas/UserEntity", schema.Properties["author"].Ref)

		components := b.ComponentSchemas()
		assert.Contains(t, components, "PostEntity")
		assert.Contains(t, components, "UserEntity")
	})

	t.Run("self reference terminates via ref", func(t *testing.T) {
		b := NewSchemaBuilder(testRegistry(t))

		schema, err := b.BuildEntity("CategoryEntity", false)
		require.NoError(t, err)

		parent := schema.Properties["parent"]
		require.NotNil(t, parent)
		assert.Equal(t, "#/components/schemas/CategoryEntity", parent.Ref)
		assert.True(t, parent.Nullable)

		children := schema.Properties["children"]
		require.NotNil(t, children)
		assert.Equal(t, "array", children.Type)
		assert.Equal(t, "#/components/schemas/CategoryEntity", children.Items.Ref)
	})

	t.Run("ClearCache drops components and cache", func(t *testing.T) {
		b := NewSchemaBuilder(testRegistry(t))

		_, err := b.BuildEntity("UserEntity", true)
		require.NoError(t, err)
		require.NotEmpty(t, b.ComponentSchemas())

		b.ClearCache()
		assert.Empty(t, b.ComponentSchemas())
	})
}

func TestSchemaBuilderUnions(t *testing.T) {
	b := NewSchemaBuilder(testRegistry(t))

	t.Run("multi-member union builds oneOf", func(t *testing.T) {
		schema := b.BuildType("int|string", true)
		require.Len(t, schema.OneOf, 2)
		assert.Equal(t, "integer", schema.OneOf[0].Type)
		assert.Equal(t, "string", schema.OneOf[1].Type)
	})

	t.Run("single member plus null collapses to nullable", func(t *testing.T) {
		schema := b.BuildType("?int", true)
		assert.Empty(t, schema.OneOf)
		assert.Equal(t, "integer", schema.Type)
		assert.True(t, schema.Nullable)
	})

	t.Run("nullable entity does not mutate cached schema", func(t *testing.T) {
		nullable := b.BuildType("?UserEntity", true)
		assert.True(t, nullable.Nullable)

		plain := b.BuildType("UserEntity", true)
		assert.False(t, plain.Nullable)
	})

	t.Run("union of entities keeps refs", func(t *testing.T) {
		schema := b.BuildType("UserEntity|PostEntity", true)
		require.Len(t, schema.OneOf, 2)
		assert.Equal(t, "#/components/schemas/UserEntity", schema.OneOf[0].Ref)
		assert.Equal(t, "#/components/schemas/PostEntity", schema.OneOf[1].Ref)
	})
}

func TestStandardErrorSchema(t *testing.T) {
	schema := StandardErrorSchema()
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"error"}, schema.Required)

	require.Contains(t, schema.Properties, "messages")
	items := schema.Properties["messages"].Items
	require.NotNil(t, items)
	assert.Contains(t, items.Properties, "field")
	assert.Contains(t, items.Properties, "message")
}
