package health

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/smartplan/internal/domain"
	"github.com/felixgeelhaar/smartplan/internal/plan"
)

// probeStart anchors the engine self-test so its expected dates are fixed.
var probeStart = domain.NewDate(2026, time.January, 5)

// EngineChecker schedules a small diamond and compares the result with
// known dates. It catches a broken build of the scheduling core without
// touching any external dependency.
type EngineChecker struct{}

func NewEngineChecker() *EngineChecker {
	return &EngineChecker{}
}

func (c *EngineChecker) Name() string {
	return "schedule-engine"
}

func (c *EngineChecker) Check(ctx context.Context) *Result {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Unhealthy("check cancelled").WithDetail("error", err.Error())
	}

	tasks := []plan.Task{
		{ID: "d", Title: "merge", Dependencies: []string{"b", "c"}, EstHours: 4},
		{ID: "c", Title: "long branch", Dependencies: []string{"a"}, EstHours: 20},
		{ID: "b", Title: "short branch", Dependencies: []string{"a"}, EstHours: 8},
		{ID: "a", Title: "root", EstHours: 4},
	}
	p, err := plan.ScheduleFrom(tasks, plan.DefaultPreferences(), probeStart, nil)
	if err != nil {
		return Unhealthy("scheduling self-test failed").
			WithDetail("error", err.Error()).
			WithLatency(time.Since(start))
	}

	if got, ok := p.Task("d"); !ok || !got.EarliestStart.Equal(probeStart.AddDays(6)) {
		return Unhealthy("scheduling self-test produced wrong dates").
			WithDetail("order", fmt.Sprint(p.Order())).
			WithLatency(time.Since(start))
	}

	return Healthy("scheduling engine operational").
		WithDetail("tasks", p.Summary.TotalTasks).
		WithLatency(time.Since(start))
}
