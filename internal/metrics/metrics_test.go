package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("expected metrics, got nil")
	}

	tests := []struct {
		name   string
		metric interface{}
	}{
		{"CommandExecutions", m.CommandExecutions},
		{"CommandDuration", m.CommandDuration},
		{"PlanRequests", m.PlanRequests},
		{"PlanDuration", m.PlanDuration},
		{"PlanTaskCount", m.PlanTaskCount},
		{"PlanSpanDays", m.PlanSpanDays},
		{"DeadlineMisses", m.DeadlineMisses},
		{"GeneratorCalls", m.GeneratorCalls},
		{"GeneratorLatency", m.GeneratorLatency},
		{"HTTPRequests", m.HTTPRequests},
		{"HTTPDuration", m.HTTPDuration},
		{"Errors", m.Errors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s is nil", tt.name)
			}
		})
	}
}

func TestNewMetricsTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	NewMetrics(reg)
}

func TestRecordPlan(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordPlan("request", 3*time.Millisecond, 4, 9, nil)
	m.RecordPlan("generator", time.Millisecond, 0, 0, errors.NewCycleError([]string{"a", "a"}))
	m.RecordPlan("request", time.Millisecond, 0, 0, errors.NewTaskInvalidError("x", "bad"))
	m.RecordPlan("generator", time.Millisecond, 0, 0, errors.NewGenerationError("static", fmt.Errorf("down")))
	m.RecordPlan("request", time.Millisecond, 0, 0, fmt.Errorf("plain"))

	tests := []struct {
		source, outcome string
	}{
		{"request", "success"},
		{"generator", "structural_error"},
		{"request", "validation_error"},
		{"generator", "generation_error"},
		{"request", "error"},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.PlanRequests.WithLabelValues(tt.source, tt.outcome)); got != 1 {
			t.Errorf("PlanRequests{%s,%s} = %v, want 1", tt.source, tt.outcome, got)
		}
	}

	// only the successful plan contributes task counts
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() != "smartplan_plan_tasks" {
			continue
		}
		found = true
		if got := mf.GetMetric()[0].GetHistogram().GetSampleCount(); got != 1 {
			t.Errorf("smartplan_plan_tasks samples = %d, want 1", got)
		}
	}
	if !found {
		t.Error("smartplan_plan_tasks not gathered")
	}
}

func TestRecordGeneratorAndCommand(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordGenerator("static", time.Millisecond, nil)
	m.RecordGenerator("static", time.Millisecond, fmt.Errorf("x"))
	m.RecordCommand("schedule", time.Second, nil)

	if got := testutil.ToFloat64(m.GeneratorCalls.WithLabelValues("static", "true")); got != 1 {
		t.Errorf("GeneratorCalls success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.GeneratorCalls.WithLabelValues("static", "false")); got != 1 {
		t.Errorf("GeneratorCalls failure = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CommandExecutions.WithLabelValues("schedule", "true")); got != 1 {
		t.Errorf("CommandExecutions = %v, want 1", got)
	}
}

func TestRecordHTTP(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordHTTP("/plan", "POST", 200, 5*time.Millisecond)
	m.RecordHTTP("/plan", "POST", 422, 5*time.Millisecond)
	m.RecordHTTP("/plan", "POST", 422, 5*time.Millisecond)

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/plan", "POST", "422")); got != 2 {
		t.Errorf("HTTPRequests 422 = %v, want 2", got)
	}
}

func TestRecordError(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordError("planner", nil)
	m.RecordError("planner", errors.NewMissingDependencyError("a", "b"))
	m.RecordError("api", fmt.Errorf("unknown failure"))

	if got := testutil.ToFloat64(m.Errors.WithLabelValues("GRAPH-002", "planner")); got != 1 {
		t.Errorf("Errors GRAPH-002 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Errors.WithLabelValues("unknown", "api")); got != 1 {
		t.Errorf("Errors unknown = %v, want 1", got)
	}
}
