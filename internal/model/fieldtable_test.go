package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldTable_OrderAndLookup(t *testing.T) {
	table := NewFieldTable([]FieldCode{
		{Attribute: "first_name", Code: "4000"},
		{Attribute: "email", Code: "1240"},
		{Attribute: "first_name", Code: "9999"}, // duplicate, ignored
	})

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "first_name", table.Entries()[0].Attribute)
	assert.Equal(t, "email", table.Entries()[1].Attribute)

	code, ok := table.Code("first_name")
	assert.True(t, ok)
	assert.Equal(t, "4000", code)

	_, ok = table.Code("shoe_size")
	assert.False(t, ok)
}

func TestDefaultFieldTable(t *testing.T) {
	table := DefaultFieldTable()

	code, ok := table.Code("first_name")
	require.True(t, ok)
	assert.Equal(t, "4000", code)

	code, ok = table.Code("email")
	require.True(t, ok)
	assert.Equal(t, "1240", code)
}

func TestLoadFieldTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"- attribute: first_name\n  code: \"4000\"\n- attribute: email\n  code: \"1240\"\n",
	), 0o644))

	table, err := LoadFieldTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	code, ok := table.Code("email")
	assert.True(t, ok)
	assert.Equal(t, "1240", code)
}

func TestLoadFieldTable_Errors(t *testing.T) {
	_, err := LoadFieldTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("[]\n"), 0o644))
	_, err = LoadFieldTable(empty)
	assert.ErrorContains(t, err, "empty")
}
