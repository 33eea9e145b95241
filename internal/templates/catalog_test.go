package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/journey-keeper/internal/journey"
)

func TestNewCatalog_BuiltinsLoadAndValidate(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	for _, id := range []string{"kitchen-v1", "bathroom-v1", "backyard-v1"} {
		tmpl, err := c.Get(id)
		require.NoError(t, err, "builtin %s should be registered", id)
		assert.Equal(t, id, tmpl.ID)
		assert.NotEmpty(t, tmpl.Steps)
		require.NoError(t, tmpl.Validate())
	}
}

func TestCatalog_GetUnknown(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	_, err = c.Get("garage-v9")
	var unknownErr *journey.UnknownTemplateError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "garage-v9", unknownErr.TemplateID)
}

func TestCatalog_ListSorted(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 3)
	assert.Equal(t, "backyard-v1", list[0].ID)
	assert.Equal(t, "bathroom-v1", list[1].ID)
	assert.Equal(t, "kitchen-v1", list[2].ID)
}

func TestCatalog_LoadDir(t *testing.T) {
	dir := t.TempDir()
	def := `{
		"id": "garage-v1",
		"name": "Garage Conversion",
		"steps": [
			{"id": "scope", "name": "Define Scope", "ordinal": 1, "required": true},
			{"id": "insulation", "name": "Insulation Plan", "ordinal": 2, "depends_on": ["scope"], "required": true}
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garage-v1.json"), []byte(def), 0o644))
	// Non-JSON files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("docs"), 0o644))

	c, err := NewCatalog()
	require.NoError(t, err)
	require.NoError(t, c.LoadDir(dir))

	tmpl, err := c.Get("garage-v1")
	require.NoError(t, err)
	assert.Equal(t, "Garage Conversion", tmpl.Name)
}

func TestCatalog_LoadDirRejectsCyclicTemplate(t *testing.T) {
	dir := t.TempDir()
	def := `{
		"id": "loop-v1",
		"name": "Loop",
		"steps": [
			{"id": "a", "name": "A", "ordinal": 1, "depends_on": ["b"], "required": true},
			{"id": "b", "name": "B", "ordinal": 2, "depends_on": ["a"], "required": true}
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loop.json"), []byte(def), 0o644))

	c, err := NewCatalog()
	require.NoError(t, err)

	err = c.LoadDir(dir)
	var cycleErr *journey.CyclicTemplateError
	require.ErrorAs(t, err, &cycleErr)
}

func TestCatalog_LoadDirRejectsDuplicateID(t *testing.T) {
	dir := t.TempDir()
	def := `{
		"id": "kitchen-v1",
		"name": "Shadowing Kitchen",
		"steps": [{"id": "scope", "name": "Scope", "ordinal": 1, "required": true}]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kitchen.json"), []byte(def), 0o644))

	c, err := NewCatalog()
	require.NoError(t, err)

	err = c.LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate template id")
}

func TestValidateDefinition(t *testing.T) {
	valid := []byte(`{"id": "x-v1", "name": "X", "steps": [{"id": "a", "name": "A", "ordinal": 1}]}`)
	require.NoError(t, ValidateDefinition(valid))

	missingName := []byte(`{"id": "x-v1", "steps": [{"id": "a", "name": "A", "ordinal": 1}]}`)
	err := ValidateDefinition(missingName)
	var defErr *DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.NotEmpty(t, defErr.Errors)

	badID := []byte(`{"id": "Not Valid!", "name": "X", "steps": [{"id": "a", "name": "A", "ordinal": 1}]}`)
	require.ErrorAs(t, ValidateDefinition(badID), &defErr)

	notJSON := []byte(`{id: x}`)
	require.Error(t, ValidateDefinition(notJSON))
}
