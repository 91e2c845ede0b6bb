// Package planner turns plan requests into scheduled plans.
package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/smartplan/internal/domain"
	"github.com/felixgeelhaar/smartplan/internal/errors"
	"github.com/felixgeelhaar/smartplan/internal/generator"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/metrics"
	"github.com/felixgeelhaar/smartplan/internal/plan"
	"github.com/felixgeelhaar/smartplan/internal/telemetry"
)

// Service creates plans. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	generator        generator.Generator
	defaults         plan.Preferences
	generatorTimeout time.Duration
	now              func() time.Time
	newID            func() string
	metrics          *metrics.Metrics
	logger           *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock that fixes the project start date and the
// generated_at timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDSource replaces the random plan id source.
func WithIDSource(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithMetrics records plan metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithGeneratorTimeout bounds each generator call. Zero means no bound.
func WithGeneratorTimeout(d time.Duration) Option {
	return func(s *Service) { s.generatorTimeout = d }
}

// NewService creates a Service. defaults is copied; later changes to the
// caller's value do not affect the service.
func NewService(gen generator.Generator, defaults plan.Preferences, opts ...Option) *Service {
	s := &Service{
		generator: gen,
		defaults:  defaults,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
		logger:    log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePlan validates req, obtains its tasks, and schedules them. Errors
// carry codes: REQ/TASK/PREF for bad input, GRAPH for structural problems
// in the task graph and GEN for generator failures. No partial plan is
// returned.
func (s *Service) CreatePlan(ctx context.Context, req *Request) (*Response, error) {
	started := time.Now()

	source := SourceGenerator
	if req.Tasks != nil {
		source = SourceRequest
	}

	ctx, span := telemetry.StartPlanSpan(ctx, source)
	defer span.End()
	logger := s.logger.WithContext(ctx).With("task_source", source)

	resp, err := s.createPlan(ctx, req, source)
	if s.metrics != nil {
		taskCount, spanDays := 0, 0
		if resp != nil {
			taskCount = len(resp.Tasks)
			spanDays = spanOf(resp.TimelineSummary)
		}
		s.metrics.RecordPlan(source, time.Since(started), taskCount, spanDays, err)
		s.metrics.RecordError("planner", err)
		if resp != nil && resp.TimelineSummary.Deadline != nil && !resp.TimelineSummary.Deadline.Feasible {
			s.metrics.DeadlineMisses.Inc()
		}
	}

	if err != nil {
		telemetry.RecordError(span, err)
		if errors.IsValidation(err) || errors.IsStructural(err) {
			logger.WithError(err).WarnContext(ctx, "plan rejected")
		} else {
			logger.WithError(err).ErrorContext(ctx, "plan failed")
		}
		return nil, err
	}

	telemetry.RecordSuccess(span,
		attribute.String("plan.id", resp.PlanID),
		attribute.Int("plan.tasks", len(resp.Tasks)),
	)
	logger.InfoContext(ctx, "plan created",
		"plan_id", resp.PlanID,
		"tasks", len(resp.Tasks),
		"start_date", dateString(resp.TimelineSummary.StartDate),
		"end_date", dateString(resp.TimelineSummary.EndDate),
		"duration", time.Since(started),
	)
	return resp, nil
}

func (s *Service) createPlan(ctx context.Context, req *Request, source string) (*Response, error) {
	goal := strings.TrimSpace(req.Goal)
	if goal == "" {
		return nil, errors.New(errors.ErrCodeGoalRequired, "goal is required").
			WithSuggestion("Describe what the plan should achieve in the goal field")
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}

	prefs := s.preferences(req.Preferences)
	if err := prefs.Validate(); err != nil {
		return nil, err
	}

	records := req.Tasks
	if source == SourceGenerator {
		records, err = s.generate(ctx, goal)
		if err != nil {
			return nil, err
		}
	}

	tasks, err := plan.ToTasks(records)
	if err != nil {
		if source == SourceGenerator {
			return nil, errors.NewGenerationError(s.generator.Name(), err)
		}
		return nil, err
	}

	// One clock reading fixes both the start date and generated_at.
	now := s.now().UTC()
	start := domain.DateOf(now)

	_, schedSpan := telemetry.StartScheduleSpan(ctx, len(tasks))
	p, err := plan.ScheduleFrom(tasks, prefs, start, deadline)
	telemetry.RecordError(schedSpan, err)
	schedSpan.End()
	if err != nil {
		return nil, err
	}

	fingerprint, err := plan.Fingerprint(tasks, prefs, start)
	if err != nil {
		return nil, fmt.Errorf("fingerprint plan: %w", err)
	}

	return &Response{
		PlanID:          s.newID(),
		Goal:            req.Goal,
		GeneratedAt:     now.Format(time.RFC3339),
		Fingerprint:     fingerprint,
		TaskSource:      source,
		Preferences:     prefs,
		Tasks:           p.Tasks,
		TimelineSummary: p.Summary,
	}, nil
}

// preferences merges the request overrides over a copy of the defaults.
func (s *Service) preferences(in *PreferencesInput) plan.Preferences {
	prefs := s.defaults
	if in != nil && in.WorkPerDayHours != nil {
		prefs.WorkPerDayHours = *in.WorkPerDayHours
	}
	return prefs
}

func (s *Service) generate(ctx context.Context, goal string) ([]plan.TaskRecord, error) {
	if s.generator == nil {
		return nil, errors.NewGenerationError("none", fmt.Errorf("no generator configured"))
	}

	if s.generatorTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.generatorTimeout)
		defer cancel()
	}

	ctx, span := telemetry.StartGeneratorSpan(ctx, s.generator.Name())
	defer span.End()

	started := time.Now()
	records, err := s.generator.Generate(ctx, goal)
	if s.metrics != nil {
		s.metrics.RecordGenerator(s.generator.Name(), time.Since(started), err)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, errors.NewGenerationError(s.generator.Name(), err)
	}

	telemetry.RecordSuccess(span, attribute.Int("generator.tasks", len(records)))
	return records, nil
}

func parseDeadline(s string) (*domain.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDeadlineInvalid, fmt.Sprintf("invalid deadline %q", s), err).
			WithSuggestion("Use an ISO date such as 2026-03-31")
	}
	return &d, nil
}

func dateString(d *domain.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func spanOf(summary plan.TimelineSummary) int {
	if summary.StartDate == nil || summary.EndDate == nil {
		return 0
	}
	return summary.StartDate.DaysUntil(*summary.EndDate) + 1
}
