package cmd

import (
	"strings"

	"github.com/felixgeelhaar/smartplan/internal/errors"
	"github.com/felixgeelhaar/smartplan/internal/generator"
	"github.com/felixgeelhaar/smartplan/internal/planner"
)

// resolveGenerator looks up a generator by name. An unknown name is a
// configuration error.
func resolveGenerator(name string) (generator.Generator, error) {
	reg := generator.NewRegistry()
	gen, err := reg.Get(name)
	if err != nil {
		return nil, errors.NewConfigInvalidError(err.Error()).
			WithSuggestions("Available generators: " + strings.Join(reg.List(), ", "))
	}
	return gen, nil
}

// newPlanner builds the plan service from the invocation's configuration.
func newPlanner(a *app, gen generator.Generator) *planner.Service {
	return planner.NewService(gen, a.cfg.Scheduling.Preferences(),
		planner.WithMetrics(a.metrics),
		planner.WithLogger(a.logger),
		planner.WithGeneratorTimeout(a.cfg.Scheduling.GeneratorTimeout),
	)
}
