package journey

import "fmt"

// StepTemplate defines one step of a project type: its identity, suggested
// display order, required predecessors, and whether the journey can complete
// while the step was never started.
type StepTemplate struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Ordinal   int      `json:"ordinal"`
	DependsOn []string `json:"depends_on,omitempty"`
	Required  bool     `json:"required"`
}

// Template is the immutable definition of a project type. It is read-only
// after validation and may be shared across every journey of that type.
type Template struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Steps []StepTemplate `json:"steps"`
}

// Validate checks structural integrity: non-empty step set, unique step IDs,
// dependency references that exist, and an acyclic dependency graph. A cycle
// yields CyclicTemplateError; templates fail fast here, never at runtime.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template has no id")
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("template %s has no steps", t.ID)
	}

	byID := make(map[string]*StepTemplate, len(t.Steps))
	for i := range t.Steps {
		st := &t.Steps[i]
		if st.ID == "" {
			return fmt.Errorf("template %s: step %d has no id", t.ID, i)
		}
		if _, dup := byID[st.ID]; dup {
			return fmt.Errorf("template %s: duplicate step id %s", t.ID, st.ID)
		}
		byID[st.ID] = st
	}

	for _, st := range t.Steps {
		for _, dep := range st.DependsOn {
			if dep == st.ID {
				return &CyclicTemplateError{TemplateID: t.ID, Cycle: []string{st.ID, st.ID}}
			}
			if _, ok := byID[dep]; !ok {
				return fmt.Errorf("template %s: step %s depends on unknown step %s", t.ID, st.ID, dep)
			}
		}
	}

	if _, err := t.topoOrder(); err != nil {
		return err
	}
	return nil
}

// topoOrder returns the step IDs in dependency order (dependencies before
// dependents, ordinal as tie-break) or CyclicTemplateError.
func (t *Template) topoOrder() ([]string, error) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)

	deps := make(map[string][]string, len(t.Steps))
	for _, st := range t.Steps {
		deps[st.ID] = st.DependsOn
	}

	state := make(map[string]int, len(t.Steps))
	order := make([]string, 0, len(t.Steps))
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			// Extract the cycle from the visitation stack for the error.
			cycle := []string{id}
			for i := len(stack) - 1; i >= 0; i-- {
				cycle = append(cycle, stack[i])
				if stack[i] == id {
					break
				}
			}
			return &CyclicTemplateError{TemplateID: t.ID, Cycle: cycle}
		}
		state[id] = visiting
		stack = append(stack, id)
		for _, dep := range deps[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		order = append(order, id)
		return nil
	}

	for _, st := range t.stepsByOrdinal() {
		if err := visit(st.ID); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// stepsByOrdinal returns the template steps sorted by ordinal without
// mutating the template.
func (t *Template) stepsByOrdinal() []StepTemplate {
	sorted := make([]StepTemplate, len(t.Steps))
	copy(sorted, t.Steps)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Ordinal < sorted[j-1].Ordinal; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}

// Step returns the step template with the given ID, or nil.
func (t *Template) Step(id string) *StepTemplate {
	for i := range t.Steps {
		if t.Steps[i].ID == id {
			return &t.Steps[i]
		}
	}
	return nil
}
