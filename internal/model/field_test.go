package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldUnmarshal(t *testing.T) {
	var patch TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"title":"renamed","description":null}`), &patch))

	assert.True(t, patch.Title.Set)
	assert.True(t, patch.Title.Valid)
	assert.Equal(t, "renamed", patch.Title.Value)

	// explicit null: present but invalid
	assert.True(t, patch.Description.Set)
	assert.False(t, patch.Description.Valid)

	// absent keys stay unset
	assert.False(t, patch.Status.Set)
	assert.False(t, patch.DueDate.Set)
}

func TestFieldUnmarshal_TypeMismatch(t *testing.T) {
	var patch TaskPatch
	err := json.Unmarshal([]byte(`{"title":123}`), &patch)
	assert.Error(t, err)
}

func TestFieldMarshal(t *testing.T) {
	set := Field[string]{Set: true, Valid: true, Value: "x"}
	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.Equal(t, `"x"`, string(data))

	null := Field[string]{Set: true}
	data, err = json.Marshal(null)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
