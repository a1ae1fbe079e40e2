package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Scalar(t *testing.T) {
	var zero Value
	assert.False(t, zero.IsSet())
	assert.False(t, zero.IsList())
	assert.Equal(t, "0", zero.String())
	assert.Empty(t, zero.IDs())

	v := ScalarValue(12)
	assert.True(t, v.IsSet())
	assert.Equal(t, int64(12), v.Int())
	assert.Equal(t, []int64{12}, v.IDs())
	assert.Equal(t, "12", v.String())
}

func TestValue_List(t *testing.T) {
	empty := ListValue()
	assert.True(t, empty.IsList())
	assert.False(t, empty.IsSet())

	v := ListValue(3, 5, 8)
	assert.True(t, v.IsSet())
	assert.Equal(t, int64(0), v.Int())
	assert.Equal(t, "3,5,8", v.String())

	ids := v.IDs()
	ids[0] = 99
	assert.Equal(t, []int64{3, 5, 8}, v.IDs(), "IDs must return a copy")
}

func TestParseEntityRestriction(t *testing.T) {
	tests := map[string]EntityRestriction{
		"":        NoEntityRestriction,
		"none":    NoEntityRestriction,
		"Current": CurrentEntity,
		"sub":     SubEntities,
	}
	for input, want := range tests {
		got, err := ParseEntityRestriction(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseEntityRestriction("everything")
	assert.Error(t, err)
}

func TestEntityScope_String(t *testing.T) {
	assert.Equal(t, "-1", Unrestricted().String())
	assert.Equal(t, "0,4", EntityIDs(0, 4).String())
}
