// Package generator supplies task lists for goals that arrive without one.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/smartplan/internal/plan"
)

// Generator breaks a goal down into task records. Implementations must be
// safe for concurrent use.
type Generator interface {
	// Name identifies the generator in logs, metrics and configuration.
	Name() string

	// Generate returns the tasks for goal. The records are validated by the
	// caller, so a generator may return incomplete data.
	Generate(ctx context.Context, goal string) ([]plan.TaskRecord, error)
}

// StaticName is the registry name of the Static generator.
const StaticName = "static"

type staticTask struct {
	id          string
	title       string
	description string
	hours       float64
}

// launchPlan is the five step chain every goal maps to.
var launchPlan = []staticTask{
	{"t1", "Define scope and requirements", "Write clear acceptance criteria.", 6},
	{"t2", "Design & assets", "Create UI/marketing assets.", 8},
	{"t3", "Implementation", "Develop core features.", 20},
	{"t4", "Testing & QA", "Test flows and fix bugs.", 6},
	{"t5", "Launch", "Deploy and announce.", 4},
}

// Static is a deterministic generator that ignores the goal text and returns
// a fixed launch plan. It is the default for development and offline use.
type Static struct{}

// NewStatic creates a Static generator.
func NewStatic() *Static {
	return &Static{}
}

// Name implements Generator.
func (s *Static) Name() string {
	return StaticName
}

// Generate implements Generator. Each task depends on the previous one.
func (s *Static) Generate(ctx context.Context, goal string) ([]plan.TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(goal) == "" {
		return nil, fmt.Errorf("goal is empty")
	}

	records := make([]plan.TaskRecord, len(launchPlan))
	for i, st := range launchPlan {
		title := st.title
		hours := st.hours
		var deps []string
		if i > 0 {
			deps = []string{launchPlan[i-1].id}
		}
		records[i] = plan.TaskRecord{
			ID:           st.id,
			Title:        &title,
			Description:  st.description,
			Dependencies: deps,
			EstHours:     &hours,
		}
	}
	return records, nil
}
