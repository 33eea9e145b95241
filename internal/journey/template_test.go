package journey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kitchenTemplate() *Template {
	return &Template{
		ID:   "kitchen-v1",
		Name: "Kitchen Renovation",
		Steps: []StepTemplate{
			{ID: "scope", Name: "Define Scope", Ordinal: 1, Required: true},
			{ID: "layout", Name: "Plan Layout", Ordinal: 2, DependsOn: []string{"scope"}, Required: true},
			{ID: "finishes", Name: "Choose Finishes", Ordinal: 3, DependsOn: []string{"layout"}, Required: true},
		},
	}
}

// diamondTemplate has two parallel-eligible middle steps and an optional leaf.
func diamondTemplate() *Template {
	return &Template{
		ID:   "bathroom-v1",
		Name: "Bathroom Renovation",
		Steps: []StepTemplate{
			{ID: "scope", Name: "Define Scope", Ordinal: 1, Required: true},
			{ID: "plumbing", Name: "Plumbing Plan", Ordinal: 2, DependsOn: []string{"scope"}, Required: true},
			{ID: "tile", Name: "Tile Selection", Ordinal: 3, DependsOn: []string{"scope"}, Required: true},
			{ID: "fixtures", Name: "Fixture Order", Ordinal: 4, DependsOn: []string{"plumbing", "tile"}, Required: true},
			{ID: "moodboard", Name: "Mood Board", Ordinal: 5, DependsOn: []string{"scope"}, Required: false},
		},
	}
}

func TestTemplateValidate(t *testing.T) {
	require.NoError(t, kitchenTemplate().Validate())
	require.NoError(t, diamondTemplate().Validate())
}

func TestTemplateValidate_Cycle(t *testing.T) {
	tmpl := &Template{
		ID: "broken",
		Steps: []StepTemplate{
			{ID: "a", Ordinal: 1, DependsOn: []string{"c"}},
			{ID: "b", Ordinal: 2, DependsOn: []string{"a"}},
			{ID: "c", Ordinal: 3, DependsOn: []string{"b"}},
		},
	}

	err := tmpl.Validate()
	require.Error(t, err)
	var cycleErr *CyclicTemplateError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, "broken", cycleErr.TemplateID)
	assert.NotEmpty(t, cycleErr.Cycle)
}

func TestTemplateValidate_SelfDependency(t *testing.T) {
	tmpl := &Template{
		ID:    "selfdep",
		Steps: []StepTemplate{{ID: "a", Ordinal: 1, DependsOn: []string{"a"}}},
	}

	var cycleErr *CyclicTemplateError
	require.ErrorAs(t, tmpl.Validate(), &cycleErr)
}

func TestTemplateValidate_UnknownDependency(t *testing.T) {
	tmpl := &Template{
		ID:    "dangling",
		Steps: []StepTemplate{{ID: "a", Ordinal: 1, DependsOn: []string{"ghost"}}},
	}

	err := tmpl.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step")
}

func TestTemplateValidate_DuplicateStepID(t *testing.T) {
	tmpl := &Template{
		ID: "dups",
		Steps: []StepTemplate{
			{ID: "a", Ordinal: 1},
			{ID: "a", Ordinal: 2},
		},
	}

	err := tmpl.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate step id")
}

func TestTemplateValidate_Empty(t *testing.T) {
	assert.Error(t, (&Template{ID: "empty"}).Validate())
	assert.Error(t, (&Template{Steps: []StepTemplate{{ID: "a"}}}).Validate())
}

func TestTopoOrder_DependenciesFirst(t *testing.T) {
	order, err := diamondTemplate().topoOrder()
	require.NoError(t, err)
	require.Len(t, order, 5)

	pos := map[string]int{}
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos["scope"], pos["plumbing"])
	assert.Less(t, pos["scope"], pos["tile"])
	assert.Less(t, pos["plumbing"], pos["fixtures"])
	assert.Less(t, pos["tile"], pos["fixtures"])
}
