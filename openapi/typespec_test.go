package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	t.Run("primitives", func(t *testing.T) {
		for _, name := range []string{"int", "string", "bool", "float", "datetime", "object", "mixed"} {
			ts := ParseType(name)
			assert.Equal(t, KindPrimitive, ts.Kind, name)
			assert.Equal(t, name, ts.Name)
		}
	})

	t.Run("primitive aliases normalize to lowercase", func(t *testing.T) {
		ts := ParseType("Integer")
		assert.Equal(t, KindPrimitive, ts.Kind)
		assert.Equal(t, "integer", ts.Name)
	})

	t.Run("entity reference", func(t *testing.T) {
		ts := ParseType("UserEntity")
		assert.Equal(t, KindEntity, ts.Kind)
		assert.Equal(t, "UserEntity", ts.Name)
	})

	t.Run("qualified entity reference", func(t *testing.T) {
		ts := ParseType("models.UserEntity")
		assert.Equal(t, KindEntity, ts.Kind)
		assert.Equal(t, "models.UserEntity", ts.Name)
	})

	t.Run("array", func(t *testing.T) {
		ts := ParseType("UserEntity[]")
		require.Equal(t, KindArray, ts.Kind)
		require.NotNil(t, ts.Elem)
		assert.Equal(t, KindEntity, ts.Elem.Kind)
		assert.Equal(t, "UserEntity", ts.Elem.Name)
	})

	t.Run("nested array", func(t *testing.T) {
		ts := ParseType("int[][]")
		require.Equal(t, KindArray, ts.Kind)
		require.Equal(t, KindArray, ts.Elem.Kind)
		assert.Equal(t, "int", ts.Elem.Elem.Name)
	})

	t.Run("union", func(t *testing.T) {
		ts := ParseType("int|string")
		require.Equal(t, KindUnion, ts.Kind)
		require.Len(t, ts.Members, 2)
		assert.Equal(t, "int", ts.Members[0].Name)
		assert.Equal(t, "string", ts.Members[1].Name)
		assert.False(t, ts.Nullable())
	})

	t.Run("union with null is nullable", func(t *testing.T) {
		ts := ParseType("UserEntity|null")
		require.Equal(t, KindUnion, ts.Kind)
		assert.True(t, ts.Nullable())
		assert.Len(t, ts.nonNullMembers(), 1)
	})

	t.Run("question mark prefix desugars to union with null", func(t *testing.T) {
		ts := ParseType("?string")
		require.Equal(t, KindUnion, ts.Kind)
		assert.True(t, ts.Nullable())

		members := ts.nonNullMembers()
		require.Len(t, members, 1)
		assert.Equal(t, "string", members[0].Name)
	})

	t.Run("nullable array", func(t *testing.T) {
		ts := ParseType("?UserEntity[]")
		require.Equal(t, KindUnion, ts.Kind)
		assert.True(t, ts.Nullable())

		members := ts.nonNullMembers()
		require.Len(t, members, 1)
		assert.Equal(t, KindArray, members[0].Kind)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		ts := ParseType("  int | string ")
		require.Equal(t, KindUnion, ts.Kind)
		assert.Equal(t, "int", ts.Members[0].Name)
		assert.Equal(t, "string", ts.Members[1].Name)
	})
}

func TestStatusMapType(t *testing.T) {
	t.Run("parses each code entry", func(t *testing.T) {
		ts := StatusMapType(map[int]string{
			200: "UserEntity",
			404: "object",
		})
		require.Equal(t, KindStatusMap, ts.Kind)
		require.Len(t, ts.Codes, 2)
		assert.Equal(t, KindEntity, ts.Codes[200].Kind)
		assert.True(t, ts.Codes[404].isGenericObject())
	})
}
