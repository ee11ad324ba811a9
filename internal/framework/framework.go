// Package framework defines the analytical lenses an analysis can run and
// the registry that names them. Each framework renders its own prompts and
// binds the model's parsed response to its typed payload; orchestration
// never looks inside either.
package framework

import (
	"strings"

	"github.com/ppiankov/krisis/internal/model"
	"github.com/ppiankov/krisis/internal/parse"
)

// Canonical framework names.
const (
	PorterName          = "porter_five_forces"
	SystemsDynamicsName = "systems_dynamics"
)

// Framework is one analytical lens over a problem context.
type Framework interface {
	// Name returns the canonical framework name.
	Name() string

	// Lens names the analytical angle the framework applies.
	Lens() string

	// Description returns a one-line summary for listings.
	Description() string

	// RequiresFocus reports whether the framework needs a DecisionFocus to
	// run at all.
	RequiresFocus() bool

	// Prompts renders the system and user prompts for the given context.
	Prompts(pctx *model.ProblemContext) (system, user string)

	// Bind reconciles a parsed, normalized response with the framework's
	// typed payload.
	Bind(m parse.Mapping) (Payload, error)
}

// Payload is a framework's typed analysis result.
type Payload interface {
	// AnalyticalClaims collects the claims the payload carries, tagged with
	// the framework name.
	AnalyticalClaims() []model.AnalyticalClaim
}

// Registry manages the available frameworks
type Registry struct {
	frameworks []Framework
	byName     map[string]Framework
}

// NewRegistry creates a registry with the built-in frameworks registered.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Framework)}
	r.Register(NewPorter(), "porter")
	r.Register(NewSystemsDynamics(), "sysdyn")
	return r
}

// Register adds a framework under its canonical name plus any short
// aliases.
func (r *Registry) Register(f Framework, aliases ...string) {
	r.frameworks = append(r.frameworks, f)
	r.byName[strings.ToLower(f.Name())] = f
	for _, alias := range aliases {
		r.byName[strings.ToLower(alias)] = f
	}
}

// Get resolves a framework by canonical name or alias.
func (r *Registry) Get(name string) (Framework, bool) {
	f, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// List returns the registered frameworks in registration order.
func (r *Registry) List() []Framework {
	return append([]Framework(nil), r.frameworks...)
}
