package journey

import (
	"sort"
	"time"
)

// Registry holds the per-journey step instances together with the dependency
// graph derived from the template. The graph is resolved once at
// construction; runtime mutation only ever touches per-step status, so
// dependency queries are map lookups and cascades are O(steps).
type Registry struct {
	template   *Template
	steps      map[string]*Step
	dependents map[string][]string // direct dependents, by step ID
	topo       []string            // dependency order, dependencies first
}

// NewRegistry builds a registry over an already-validated template and the
// journey's step instances. Every template entry must have exactly one step
// instance; the step set is never partially materialized.
func NewRegistry(tmpl *Template, steps []*Step) (*Registry, error) {
	topo, err := tmpl.topoOrder()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Step, len(steps))
	for _, s := range steps {
		if tmpl.Step(s.ID) == nil {
			return nil, &UnknownStepError{StepID: s.ID}
		}
		byID[s.ID] = s
	}
	for _, st := range tmpl.Steps {
		if _, ok := byID[st.ID]; !ok {
			return nil, &UnknownStepError{StepID: st.ID}
		}
	}

	dependents := make(map[string][]string, len(tmpl.Steps))
	for _, st := range tmpl.Steps {
		for _, dep := range st.DependsOn {
			dependents[dep] = append(dependents[dep], st.ID)
		}
	}

	return &Registry{
		template:   tmpl,
		steps:      byID,
		dependents: dependents,
		topo:       topo,
	}, nil
}

// Step returns the step instance for the given ID.
func (r *Registry) Step(id string) (*Step, error) {
	s, ok := r.steps[id]
	if !ok {
		return nil, &UnknownStepError{StepID: id}
	}
	return s, nil
}

// Steps returns the step instances in template ordinal order.
func (r *Registry) Steps() []*Step {
	ordered := r.template.stepsByOrdinal()
	out := make([]*Step, 0, len(ordered))
	for _, st := range ordered {
		out = append(out, r.steps[st.ID])
	}
	return out
}

// Template returns the immutable template this registry was built from.
func (r *Registry) Template() *Template {
	return r.template
}

// IsComplete reports whether the step exists and is completed.
func (r *Registry) IsComplete(id string) bool {
	s, ok := r.steps[id]
	return ok && s.Status == StepStatusCompleted
}

// UnsatisfiedDependencies returns the dependency step IDs of id that are not
// yet completed, in template ordinal order.
func (r *Registry) UnsatisfiedDependencies(id string) ([]string, error) {
	s, ok := r.steps[id]
	if !ok {
		return nil, &UnknownStepError{StepID: id}
	}
	tmplStep := r.template.Step(s.ID)

	var missing []string
	for _, dep := range tmplStep.DependsOn {
		if !r.IsComplete(dep) {
			missing = append(missing, dep)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		return r.template.Step(missing[i]).Ordinal < r.template.Step(missing[j]).Ordinal
	})
	return missing, nil
}

// Transition moves a step to newStatus, enforcing the dependency guarantee
// for completions. With force set, an incomplete-dependency completion
// succeeds but is recorded on the step as a force-completion rather than
// silently allowed. The call mutates only the named step; cascading to
// dependents is the aggregate's job.
func (r *Registry) Transition(id, newStatus string, data map[string]interface{}, force bool) (*Step, error) {
	s, ok := r.steps[id]
	if !ok {
		return nil, &UnknownStepError{StepID: id}
	}
	if !ValidStepStatus(newStatus) {
		return nil, &InvalidTransitionError{StepID: id, From: s.Status, To: newStatus, Reason: "unknown status"}
	}

	if newStatus == StepStatusCompleted && s.Status != StepStatusCompleted {
		missing, err := r.UnsatisfiedDependencies(id)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			if !force {
				return nil, &DependencyNotSatisfiedError{StepID: id, Missing: missing}
			}
			s.ForceCompleted = true
		}
	}

	if data != nil {
		mergeData(s, data)
	}

	now := time.Now().UTC()
	wasCompleted := s.Status == StepStatusCompleted
	s.Status = newStatus

	switch newStatus {
	case StepStatusInProgress:
		if s.StartedAt == nil {
			s.StartedAt = &now
		}
		s.CompletedAt = nil
	case StepStatusCompleted:
		if s.StartedAt == nil {
			s.StartedAt = &now
		}
		if !wasCompleted {
			s.CompletedAt = &now
		}
		s.ProgressPercent = 100
	}

	// Leaving completed revokes any one-time force override; a later
	// completion must pass the dependency check again.
	if wasCompleted && newStatus != StepStatusCompleted {
		s.ForceCompleted = false
		s.CompletedAt = nil
	}

	return s, nil
}

// EditData merges the payload into the step's data map. Allowed in any
// status except blocked. Existing keys are overwritten, absent keys are
// preserved; entries are never removed. Status is untouched; the caller
// decides whether the edit demotes dependents.
func (r *Registry) EditData(id string, data map[string]interface{}) (*Step, error) {
	s, ok := r.steps[id]
	if !ok {
		return nil, &UnknownStepError{StepID: id}
	}
	if s.Status == StepStatusBlocked {
		return nil, &InvalidTransitionError{StepID: id, From: s.Status, To: s.Status, Reason: "blocked steps cannot be edited"}
	}
	mergeData(s, data)
	return s, nil
}

// Downstream returns the direct and transitive dependents of id in
// dependency order (closest dependents before their own dependents).
func (r *Registry) Downstream(id string) ([]string, error) {
	if _, ok := r.steps[id]; !ok {
		return nil, &UnknownStepError{StepID: id}
	}

	reach := map[string]bool{}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range r.dependents[cur] {
			if !reach[dep] {
				reach[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	var out []string
	for _, stepID := range r.topo {
		if reach[stepID] {
			out = append(out, stepID)
		}
	}
	return out, nil
}

func mergeData(s *Step, data map[string]interface{}) {
	if s.Data == nil {
		s.Data = make(map[string]interface{}, len(data))
	}
	for k, v := range data {
		s.Data[k] = v
	}
}
