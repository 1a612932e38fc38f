package saga

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
)

// StepDefinition is a reusable named action/compensation pair.
//
// Saga construction is often driven by runtime input, so definitions
// are registered once and looked up by name when a builder assembles a
// saga, rather than referenced directly at every call site.
type StepDefinition struct {
	Name         StepName
	Action       ActionFunc
	Compensation CompensateFunc
	Options      []StepOption
}

// Registry holds step definitions shared across sagas. It is safe for
// concurrent use.
type Registry struct {
	definitions *xsync.MapOf[StepName, *StepDefinition]
}

// NewRegistry creates a new Registry.
func NewRegistry() *Registry {
	return &Registry{
		definitions: xsync.NewMapOf[StepName, *StepDefinition](),
	}
}

// Register adds a step definition to the registry.
func (r *Registry) Register(def *StepDefinition) error {
	if _, ok := r.definitions.Load(def.Name); ok {
		return fmt.Errorf("step definition with name '%s' already registered", def.Name)
	}
	r.definitions.Store(def.Name, def)
	return nil
}

// Get retrieves a step definition from the registry by its name.
func (r *Registry) Get(name StepName) (*StepDefinition, error) {
	def, ok := r.definitions.Load(name)
	if !ok {
		return nil, fmt.Errorf("step definition with name '%s' not found", name)
	}
	return def, nil
}
