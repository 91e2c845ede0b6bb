package health

import (
	"context"
	"time"

	"github.com/felixgeelhaar/smartplan/internal/generator"
	"github.com/felixgeelhaar/smartplan/internal/plan"
)

// DefaultSlowGenerator is the latency above which a working generator is
// reported degraded.
const DefaultSlowGenerator = 2 * time.Second

const probeGoal = "health check"

// GeneratorChecker asks the configured generator for a plan and checks
// that its output is a schedulable task list.
type GeneratorChecker struct {
	gen  generator.Generator
	slow time.Duration
}

func NewGeneratorChecker(gen generator.Generator) *GeneratorChecker {
	return &GeneratorChecker{gen: gen, slow: DefaultSlowGenerator}
}

// WithSlowThreshold overrides DefaultSlowGenerator.
func (c *GeneratorChecker) WithSlowThreshold(d time.Duration) *GeneratorChecker {
	c.slow = d
	return c
}

func (c *GeneratorChecker) Name() string {
	return "task-generator"
}

func (c *GeneratorChecker) Check(ctx context.Context) *Result {
	if c.gen == nil {
		return Unhealthy("no task generator configured").
			WithDetail("suggestion", "Set scheduling.generator in smartplan.yaml")
	}

	start := time.Now()
	records, err := c.gen.Generate(ctx, probeGoal)
	latency := time.Since(start)
	if err != nil {
		return Unhealthy("task generator failed").
			WithDetail("generator", c.gen.Name()).
			WithDetail("error", err.Error()).
			WithLatency(latency)
	}

	tasks, err := plan.ToTasks(records)
	if err == nil {
		err = plan.ValidateTasks(tasks)
	}
	if err == nil {
		_, err = plan.Order(tasks)
	}
	if err != nil {
		return Unhealthy("task generator returned an unschedulable plan").
			WithDetail("generator", c.gen.Name()).
			WithDetail("error", err.Error()).
			WithLatency(latency)
	}

	if latency > c.slow {
		return Degraded("task generator is slow").
			WithDetail("generator", c.gen.Name()).
			WithDetail("threshold", c.slow.String()).
			WithLatency(latency)
	}

	return Healthy("task generator operational").
		WithDetail("generator", c.gen.Name()).
		WithDetail("tasks", len(tasks)).
		WithLatency(latency)
}
