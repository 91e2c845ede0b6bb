package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/smartplan/internal/domain"
	"github.com/felixgeelhaar/smartplan/internal/errors"
	"github.com/felixgeelhaar/smartplan/internal/plan"
	"github.com/felixgeelhaar/smartplan/internal/ux"
)

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule a task file",
		Long: `Order the tasks in a YAML or JSON file by their dependencies and assign
calendar dates, starting today or on --start.

File format:
  tasks:
    - id: design
      title: Design the API
      est_hours: 6
    - id: build
      title: Build it
      dependencies: [design]
      est_hours: 16
  preferences:
    work_per_day_hours: 6
  deadline: 2026-04-01

Example:
  smartplan schedule --in tasks.yaml
  smartplan schedule --in tasks.yaml --start 2026-03-02 --out plan.json`,
		Args: cobra.NoArgs,
		RunE: instrumented("schedule", runSchedule),
	}

	f := cmd.Flags()
	f.String("in", "", "task file (default tasks.yaml)")
	f.Float64("work-per-day", plan.DefaultWorkPerDayHours, "hours of work per calendar day (overrides the file)")
	f.String("deadline", "", "target date YYYY-MM-DD (overrides the file)")
	f.String("start", "", "project start date YYYY-MM-DD (default today, UTC)")
	f.String("out", "", "also write the plan as JSON to this file")
	return cmd
}

func runSchedule(cmd *cobra.Command, a *app, args []string) error {
	f := cmd.Flags()
	in, _ := f.GetString("in")
	in = ux.NewPathDefaults().ResolveTasksFile(in)
	outPath, _ := f.GetString("out")

	file, err := plan.LoadTasks(in)
	if err != nil {
		return err
	}
	tasks, prefs, deadline, err := file.Records(a.cfg.Scheduling.Preferences())
	if err != nil {
		return err
	}

	if f.Changed("work-per-day") {
		prefs.WorkPerDayHours, _ = f.GetFloat64("work-per-day")
	}
	if f.Changed("deadline") {
		raw, _ := f.GetString("deadline")
		if deadline, err = parseDateFlag("deadline", raw, errors.ErrCodeDeadlineInvalid); err != nil {
			return err
		}
	}

	var p *plan.Plan
	if f.Changed("start") {
		raw, _ := f.GetString("start")
		start, err := parseDateFlag("start", raw, errors.ErrCodeRequestInvalid)
		if err != nil {
			return err
		}
		p, err = plan.ScheduleFrom(tasks, prefs, *start, deadline)
		if err != nil {
			return err
		}
	} else {
		p, err = plan.Schedule(tasks, prefs, plan.Options{Deadline: deadline})
		if err != nil {
			return err
		}
	}

	if outPath != "" {
		if err := plan.SavePlan(p, outPath); err != nil {
			return err
		}
		a.logger.Info("plan written", "path", outPath)
	}

	a.logger.Debug("scheduled", "file", in, "tasks", len(p.Tasks))

	formatter, err := a.flags.Formatter(cmd)
	if err != nil {
		return err
	}
	if a.flags.TextOutput() {
		var fingerprint string
		if p.Summary.StartDate != nil {
			fingerprint, err = plan.Fingerprint(tasks, prefs, *p.Summary.StartDate)
			if err != nil {
				return fmt.Errorf("fingerprint plan: %w", err)
			}
		}
		return formatter.Format(ux.PlanView{Goal: in, Fingerprint: fingerprint, Plan: p})
	}
	return formatter.Format(p)
}

func parseDateFlag(name, raw string, code errors.ErrorCode) (*domain.Date, error) {
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, errors.Wrap(code, fmt.Sprintf("invalid --%s %q, expected YYYY-MM-DD", name, raw), err)
	}
	return &d, nil
}
