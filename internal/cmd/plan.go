package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/smartplan/internal/plan"
	"github.com/felixgeelhaar/smartplan/internal/planner"
	"github.com/felixgeelhaar/smartplan/internal/ux"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create a plan for a goal",
		Long: `Create a plan the same way POST /plan does, without a server.

Without --tasks the configured generator proposes the tasks for the goal.
With --tasks the tasks, and any preferences or deadline, come from the file;
flags override the file.

Example:
  smartplan plan --goal "Launch a landing page"
  smartplan plan --goal "Ship v1" --tasks tasks.yaml --deadline 2026-04-01 -f json`,
		Args: cobra.NoArgs,
		RunE: instrumented("plan", runPlan),
	}

	f := cmd.Flags()
	f.String("goal", "", "what the plan should achieve (required)")
	f.String("deadline", "", "target date YYYY-MM-DD, reported as met or missed")
	f.Float64("work-per-day", plan.DefaultWorkPerDayHours, "hours of work per calendar day")
	f.String("tasks", "", "YAML or JSON task file to schedule instead of generating tasks")
	f.String("generator", "", "task generator (overrides scheduling.generator)")
	f.String("out", "", "also write the plan as JSON to this file")
	_ = cmd.MarkFlagRequired("goal")
	return cmd
}

func runPlan(cmd *cobra.Command, a *app, args []string) error {
	f := cmd.Flags()
	goal, _ := f.GetString("goal")
	tasksPath, _ := f.GetString("tasks")
	outPath, _ := f.GetString("out")

	req := &planner.Request{Goal: goal}

	if tasksPath != "" {
		file, err := plan.LoadTasks(tasksPath)
		if err != nil {
			return err
		}
		req.Tasks = file.Tasks
		if req.Tasks == nil {
			req.Tasks = []plan.TaskRecord{}
		}
		req.Deadline = file.Deadline
		if file.Preferences != nil && file.Preferences.WorkPerDayHours != nil {
			req.Preferences = &planner.PreferencesInput{WorkPerDayHours: file.Preferences.WorkPerDayHours}
		}
	}

	if f.Changed("deadline") {
		req.Deadline, _ = f.GetString("deadline")
	}
	if f.Changed("work-per-day") {
		hours, _ := f.GetFloat64("work-per-day")
		req.Preferences = &planner.PreferencesInput{WorkPerDayHours: &hours}
	}

	genName := a.cfg.Scheduling.Generator
	if f.Changed("generator") {
		genName, _ = f.GetString("generator")
	}
	gen, err := resolveGenerator(genName)
	if err != nil {
		return err
	}

	resp, err := newPlanner(a, gen).CreatePlan(cmd.Context(), req)
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := plan.SavePlan(resp.Plan(), outPath); err != nil {
			return err
		}
		a.logger.Info("plan written", "path", outPath)
	}

	formatter, err := a.flags.Formatter(cmd)
	if err != nil {
		return err
	}
	if a.flags.TextOutput() {
		return formatter.Format(ux.PlanView{
			Goal:        resp.Goal,
			PlanID:      resp.PlanID,
			Fingerprint: resp.Fingerprint,
			Plan:        resp.Plan(),
		})
	}
	if err := formatter.Format(resp); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return nil
}
