package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/felixgeelhaar/smartplan/internal/errors"
	"github.com/felixgeelhaar/smartplan/internal/generator"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/metrics"
	"github.com/felixgeelhaar/smartplan/internal/plan"
	"github.com/felixgeelhaar/smartplan/internal/telemetry"
)

var clock = time.Date(2026, time.March, 2, 23, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, gen generator.Generator, opts ...Option) *Service {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return clock }),
		WithIDSource(func() string { return "plan-1" }),
		WithLogger(log.Discard()),
	}
	return NewService(gen, plan.DefaultPreferences(), append(base, opts...)...)
}

func record(id string, hours float64, deps ...string) plan.TaskRecord {
	title := "Task " + id
	return plan.TaskRecord{ID: id, Title: &title, Dependencies: deps, EstHours: &hours}
}

func hoursPtr(h float64) *float64 { return &h }

type span struct{ start, end string }

func spansOf(resp *Response) map[string]span {
	out := make(map[string]span, len(resp.Tasks))
	for _, t := range resp.Tasks {
		out[t.ID] = span{t.EarliestStart.String(), t.LatestEnd.String()}
	}
	return out
}

func TestCreatePlanFromGenerator(t *testing.T) {
	svc := newTestService(t, generator.NewStatic())

	resp, err := svc.CreatePlan(context.Background(), &Request{Goal: "Launch a landing page"})
	require.NoError(t, err)

	assert.Equal(t, "plan-1", resp.PlanID)
	assert.Equal(t, "Launch a landing page", resp.Goal)
	assert.Equal(t, "2026-03-02T23:30:00Z", resp.GeneratedAt)
	assert.Equal(t, SourceGenerator, resp.TaskSource)
	assert.Len(t, resp.Fingerprint, 64)

	assert.Equal(t, map[string]span{
		"t1": {"2026-03-02", "2026-03-03"},
		"t2": {"2026-03-04", "2026-03-05"},
		"t3": {"2026-03-06", "2026-03-10"},
		"t4": {"2026-03-11", "2026-03-12"},
		"t5": {"2026-03-13", "2026-03-13"},
	}, spansOf(resp))

	summary := resp.TimelineSummary
	assert.Equal(t, 5, summary.TotalTasks)
	assert.Equal(t, "2026-03-02", summary.StartDate.String())
	assert.Equal(t, "2026-03-13", summary.EndDate.String())
}

func TestCreatePlanFromRequestTasks(t *testing.T) {
	svc := newTestService(t, generator.NewStatic())

	resp, err := svc.CreatePlan(context.Background(), &Request{
		Goal:  "Ship",
		Tasks: []plan.TaskRecord{record("a", 4), record("b", 8, "a")},
	})
	require.NoError(t, err)

	assert.Equal(t, SourceRequest, resp.TaskSource)
	assert.Equal(t, map[string]span{
		"a": {"2026-03-02", "2026-03-02"},
		"b": {"2026-03-03", "2026-03-04"},
	}, spansOf(resp))
}

func TestCreatePlanExplicitEmptyTasks(t *testing.T) {
	svc := newTestService(t, generator.NewStatic())

	resp, err := svc.CreatePlan(context.Background(), &Request{Goal: "Nothing", Tasks: []plan.TaskRecord{}})
	require.NoError(t, err)

	assert.Equal(t, SourceRequest, resp.TaskSource)
	assert.Empty(t, resp.Tasks)
	assert.Equal(t, 0, resp.TimelineSummary.TotalTasks)
	assert.Nil(t, resp.TimelineSummary.StartDate)
	assert.Nil(t, resp.TimelineSummary.EndDate)
}

func TestCreatePlanPreferences(t *testing.T) {
	svc := newTestService(t, generator.NewStatic())

	resp, err := svc.CreatePlan(context.Background(), &Request{
		Goal:        "Launch",
		Preferences: &PreferencesInput{WorkPerDayHours: hoursPtr(8)},
	})
	require.NoError(t, err)
	assert.Equal(t, 8.0, resp.Preferences.WorkPerDayHours)
	assert.Equal(t, span{"2026-03-04", "2026-03-06"}, spansOf(resp)["t3"])

	// the override must not leak into the next request
	resp, err = svc.CreatePlan(context.Background(), &Request{Goal: "Launch"})
	require.NoError(t, err)
	assert.Equal(t, 4.0, resp.Preferences.WorkPerDayHours)
	assert.Equal(t, "2026-03-13", resp.TimelineSummary.EndDate.String())

	// nil field inside preferences keeps the default
	resp, err = svc.CreatePlan(context.Background(), &Request{Goal: "Launch", Preferences: &PreferencesInput{}})
	require.NoError(t, err)
	assert.Equal(t, 4.0, resp.Preferences.WorkPerDayHours)
}

func TestCreatePlanDefaultsAreCopied(t *testing.T) {
	defaults := plan.Preferences{WorkPerDayHours: 8}
	svc := NewService(generator.NewStatic(), defaults, WithLogger(log.Discard()))
	defaults.WorkPerDayHours = 1

	resp, err := svc.CreatePlan(context.Background(), &Request{Goal: "x"})
	require.NoError(t, err)
	assert.Equal(t, 8.0, resp.Preferences.WorkPerDayHours)
}

func TestCreatePlanDeadline(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	svc := newTestService(t, generator.NewStatic(), WithMetrics(m))

	resp, err := svc.CreatePlan(context.Background(), &Request{Goal: "Launch", Deadline: "2026-03-10"})
	require.NoError(t, err)

	check := resp.TimelineSummary.Deadline
	require.NotNil(t, check)
	assert.False(t, check.Feasible)
	assert.Equal(t, -3, check.SlackDays)
	assert.Equal(t, "2026-03-13", resp.TimelineSummary.EndDate.String(), "deadline is advisory")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeadlineMisses))
}

type failingGenerator struct {
	records []plan.TaskRecord
	err     error
}

func (f *failingGenerator) Name() string { return "failing" }

func (f *failingGenerator) Generate(ctx context.Context, goal string) ([]plan.TaskRecord, error) {
	return f.records, f.err
}

type blockingGenerator struct{}

func (blockingGenerator) Name() string { return "blocking" }

func (blockingGenerator) Generate(ctx context.Context, goal string) ([]plan.TaskRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCreatePlanErrors(t *testing.T) {
	tests := []struct {
		name     string
		gen      generator.Generator
		req      *Request
		opts     []Option
		wantCode errors.ErrorCode
	}{
		{
			name:     "blank goal",
			gen:      generator.NewStatic(),
			req:      &Request{Goal: "   "},
			wantCode: errors.ErrCodeGoalRequired,
		},
		{
			name:     "malformed deadline",
			gen:      generator.NewStatic(),
			req:      &Request{Goal: "x", Deadline: "31/03/2026"},
			wantCode: errors.ErrCodeDeadlineInvalid,
		},
		{
			name:     "zero capacity",
			gen:      generator.NewStatic(),
			req:      &Request{Goal: "x", Preferences: &PreferencesInput{WorkPerDayHours: hoursPtr(0)}},
			wantCode: errors.ErrCodePreferenceInvalid,
		},
		{
			name:     "task missing est_hours",
			gen:      generator.NewStatic(),
			req:      &Request{Goal: "x", Tasks: []plan.TaskRecord{{ID: "a", Title: new(string)}}},
			wantCode: errors.ErrCodeTaskInvalid,
		},
		{
			name: "cycle",
			gen:  generator.NewStatic(),
			req: &Request{Goal: "x", Tasks: []plan.TaskRecord{
				record("a", 1, "c"), record("b", 1, "a"), record("c", 1, "b"),
			}},
			wantCode: errors.ErrCodeGraphCycle,
		},
		{
			name:     "missing dependency",
			gen:      generator.NewStatic(),
			req:      &Request{Goal: "x", Tasks: []plan.TaskRecord{record("a", 1, "ghost")}},
			wantCode: errors.ErrCodeGraphMissingDep,
		},
		{
			name:     "generator failure",
			gen:      &failingGenerator{err: fmt.Errorf("model unavailable")},
			req:      &Request{Goal: "x"},
			wantCode: errors.ErrCodeGenerationFailed,
		},
		{
			name:     "generator returns malformed tasks",
			gen:      &failingGenerator{records: []plan.TaskRecord{{ID: "a"}}},
			req:      &Request{Goal: "x"},
			wantCode: errors.ErrCodeGenerationFailed,
		},
		{
			name: "generator returns a cycle",
			gen: &failingGenerator{records: []plan.TaskRecord{
				record("a", 1, "b"), record("b", 1, "a"),
			}},
			req:      &Request{Goal: "x"},
			wantCode: errors.ErrCodeGraphCycle,
		},
		{
			name:     "generator timeout",
			gen:      blockingGenerator{},
			req:      &Request{Goal: "x"},
			opts:     []Option{WithGeneratorTimeout(10 * time.Millisecond)},
			wantCode: errors.ErrCodeGenerationFailed,
		},
		{
			name:     "no generator",
			gen:      nil,
			req:      &Request{Goal: "x"},
			wantCode: errors.ErrCodeGenerationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewMetrics(prometheus.NewRegistry())
			svc := newTestService(t, tt.gen, append(tt.opts, WithMetrics(m))...)

			resp, err := svc.CreatePlan(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues(string(tt.wantCode), "planner")))
		})
	}
}

func TestCreatePlanIsDeterministic(t *testing.T) {
	svc := newTestService(t, generator.NewStatic())
	req := &Request{Goal: "Launch", Tasks: []plan.TaskRecord{record("a", 4), record("b", 9, "a"), record("c", 2, "a")}}

	first, err := svc.CreatePlan(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.CreatePlan(context.Background(), req)
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.JSONEq(t, string(a), string(b))
}

func TestCreatePlanConcurrentPreferences(t *testing.T) {
	svc := newTestService(t, generator.NewStatic())

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(hours float64) {
			defer wg.Done()
			resp, err := svc.CreatePlan(context.Background(), &Request{
				Goal:        "Launch",
				Preferences: &PreferencesInput{WorkPerDayHours: hoursPtr(hours)},
			})
			if err != nil {
				errs <- err
				return
			}
			if resp.Preferences.WorkPerDayHours != hours {
				errs <- fmt.Errorf("request with %v hours got %v", hours, resp.Preferences.WorkPerDayHours)
			}
		}(float64(1 + i%8))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestCreatePlanRecordsMetricsAndSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	cfg := telemetry.DefaultConfig()
	cfg.Enabled = true
	_, err := telemetry.InitProvider(context.Background(), cfg, telemetry.WithExporter(exporter))
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = telemetry.InitProvider(context.Background(), telemetry.DefaultConfig())
	})

	m := metrics.NewMetrics(prometheus.NewRegistry())
	svc := newTestService(t, generator.NewStatic(), WithMetrics(m))

	_, err = svc.CreatePlan(context.Background(), &Request{Goal: "Launch"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlanRequests.WithLabelValues(SourceGenerator, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GeneratorCalls.WithLabelValues("static", "true")))

	var names []string
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"generator.generate", "plan.schedule", "plan.create"}, names)
}

func TestResponsePlan(t *testing.T) {
	svc := newTestService(t, generator.NewStatic())
	resp, err := svc.CreatePlan(context.Background(), &Request{Goal: "Launch"})
	require.NoError(t, err)

	p := resp.Plan()
	assert.Equal(t, []string{"t1", "t2", "t3", "t4", "t5"}, p.Order())
	assert.Equal(t, resp.TimelineSummary.TotalTasks, p.Summary.TotalTasks)
}
