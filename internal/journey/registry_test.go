package journey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, tmpl *Template) *Registry {
	t.Helper()
	require.NoError(t, tmpl.Validate())

	steps := make([]*Step, 0, len(tmpl.Steps))
	for _, st := range tmpl.Steps {
		steps = append(steps, &Step{ID: st.ID, Name: st.Name, Status: StepStatusNotStarted})
	}
	reg, err := NewRegistry(tmpl, steps)
	require.NoError(t, err)
	return reg
}

func TestRegistry_TransitionDependencyGuarantee(t *testing.T) {
	reg := newTestRegistry(t, kitchenTemplate())

	_, err := reg.Transition("finishes", StepStatusCompleted, nil, false)
	require.Error(t, err)
	var depErr *DependencyNotSatisfiedError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "finishes", depErr.StepID)
	assert.Equal(t, []string{"layout"}, depErr.Missing)

	// Complete in order and the same transition succeeds.
	_, err = reg.Transition("scope", StepStatusCompleted, nil, false)
	require.NoError(t, err)
	_, err = reg.Transition("layout", StepStatusCompleted, nil, false)
	require.NoError(t, err)
	s, err := reg.Transition("finishes", StepStatusCompleted, nil, false)
	require.NoError(t, err)
	assert.Equal(t, StepStatusCompleted, s.Status)
	assert.False(t, s.ForceCompleted)
	assert.Equal(t, 100, s.ProgressPercent)
	assert.NotNil(t, s.CompletedAt)
}

func TestRegistry_ForceCompleteRecordsAudit(t *testing.T) {
	reg := newTestRegistry(t, kitchenTemplate())

	s, err := reg.Transition("finishes", StepStatusCompleted, nil, true)
	require.NoError(t, err)
	assert.Equal(t, StepStatusCompleted, s.Status)
	assert.True(t, s.ForceCompleted, "force completion must be recorded, not silent")
}

func TestRegistry_ForceIsOneTimeOverride(t *testing.T) {
	reg := newTestRegistry(t, kitchenTemplate())

	_, err := reg.Transition("layout", StepStatusCompleted, nil, true)
	require.NoError(t, err)

	// Reopening clears the override; completing again re-checks dependencies.
	s, err := reg.Transition("layout", StepStatusInProgress, nil, false)
	require.NoError(t, err)
	assert.False(t, s.ForceCompleted)

	_, err = reg.Transition("layout", StepStatusCompleted, nil, false)
	var depErr *DependencyNotSatisfiedError
	require.ErrorAs(t, err, &depErr)
}

func TestRegistry_TransitionUnknownStep(t *testing.T) {
	reg := newTestRegistry(t, kitchenTemplate())

	_, err := reg.Transition("demolition", StepStatusCompleted, nil, false)
	var unknownErr *UnknownStepError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "demolition", unknownErr.StepID)
}

func TestRegistry_TransitionUnknownStatus(t *testing.T) {
	reg := newTestRegistry(t, kitchenTemplate())

	_, err := reg.Transition("scope", "half_done", nil, false)
	var invalidErr *InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
}

func TestRegistry_UnsatisfiedDependencies(t *testing.T) {
	reg := newTestRegistry(t, diamondTemplate())

	missing, err := reg.UnsatisfiedDependencies("fixtures")
	require.NoError(t, err)
	assert.Equal(t, []string{"plumbing", "tile"}, missing)

	_, err = reg.Transition("scope", StepStatusCompleted, nil, false)
	require.NoError(t, err)
	_, err = reg.Transition("plumbing", StepStatusCompleted, nil, false)
	require.NoError(t, err)

	missing, err = reg.UnsatisfiedDependencies("fixtures")
	require.NoError(t, err)
	assert.Equal(t, []string{"tile"}, missing)
}

func TestRegistry_EditDataMerges(t *testing.T) {
	reg := newTestRegistry(t, kitchenTemplate())

	_, err := reg.EditData("scope", map[string]interface{}{"budget": 12000, "style": "modern"})
	require.NoError(t, err)
	s, err := reg.EditData("scope", map[string]interface{}{"style": "farmhouse"})
	require.NoError(t, err)

	// Updated key overwritten, untouched key preserved, nothing removed.
	assert.Equal(t, "farmhouse", s.Data["style"])
	assert.Equal(t, 12000, s.Data["budget"])
	assert.Len(t, s.Data, 2)
}

func TestRegistry_EditDataBlockedStep(t *testing.T) {
	reg := newTestRegistry(t, kitchenTemplate())

	_, err := reg.Transition("layout", StepStatusBlocked, nil, false)
	require.NoError(t, err)

	_, err = reg.EditData("layout", map[string]interface{}{"note": "waiting on permit"})
	var invalidErr *InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
}

func TestRegistry_Downstream(t *testing.T) {
	reg := newTestRegistry(t, diamondTemplate())

	down, err := reg.Downstream("scope")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"plumbing", "tile", "fixtures", "moodboard"}, down)

	// fixtures must come after both of its parents in the returned order.
	pos := map[string]int{}
	for i, id := range down {
		pos[id] = i
	}
	assert.Greater(t, pos["fixtures"], pos["plumbing"])
	assert.Greater(t, pos["fixtures"], pos["tile"])

	down, err = reg.Downstream("fixtures")
	require.NoError(t, err)
	assert.Empty(t, down)
}

func TestRegistry_StepsOrderedByOrdinal(t *testing.T) {
	reg := newTestRegistry(t, diamondTemplate())

	var ids []string
	for _, s := range reg.Steps() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"scope", "plumbing", "tile", "fixtures", "moodboard"}, ids)
}

func TestNewRegistry_RejectsPartialStepSet(t *testing.T) {
	tmpl := kitchenTemplate()
	steps := []*Step{{ID: "scope", Status: StepStatusNotStarted}}

	_, err := NewRegistry(tmpl, steps)
	var unknownErr *UnknownStepError
	require.ErrorAs(t, err, &unknownErr)
}

func TestNewRegistry_RejectsStepOutsideTemplate(t *testing.T) {
	tmpl := kitchenTemplate()
	steps := []*Step{
		{ID: "scope", Status: StepStatusNotStarted},
		{ID: "layout", Status: StepStatusNotStarted},
		{ID: "finishes", Status: StepStatusNotStarted},
		{ID: "rogue", Status: StepStatusNotStarted},
	}

	_, err := NewRegistry(tmpl, steps)
	var unknownErr *UnknownStepError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "rogue", unknownErr.StepID)
}
