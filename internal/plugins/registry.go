// internal/plugins/registry.go
// Wires every tournament-kind plugin implementation into a single
// engine.Registry, the one construction site that knows about all six
// kinds at once.
package plugins

import (
	"tournament-planner/internal/engine"
	"tournament-planner/internal/models"
	"tournament-planner/internal/repositories"
)

// NewRegistry builds and wires every plugin, including the two compound
// plugins' back-reference to the finished registry.
func NewRegistry(repos *repositories.Container, builder *engine.BracketBuilder, runtime *engine.BracketRuntime, rating *engine.RatingEngine) engine.Registry {
	prelimRR := NewPrelimFinalPlugin(repos, models.KindPrelimWithFinalRR, models.KindRoundRobin)
	prelimPlayoff := NewPrelimFinalPlugin(repos, models.KindPrelimWithFinalPlayoff, models.KindPlayoff)

	reg := engine.Registry{
		models.KindRoundRobin:             NewRoundRobinPlugin(repos, rating),
		models.KindPlayoff:                NewPlayoffPlugin(repos, builder, runtime, rating),
		models.KindSwiss:                  NewSwissPlugin(repos, rating),
		models.KindSingleMatch:            NewSingleMatchPlugin(repos, rating),
		models.KindPrelimWithFinalRR:      prelimRR,
		models.KindPrelimWithFinalPlayoff: prelimPlayoff,
	}

	prelimRR.SetRegistry(reg)
	prelimPlayoff.SetRegistry(reg)

	return reg
}
