package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/smartplan/internal/plan"
	"github.com/felixgeelhaar/smartplan/internal/ux"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a task file without scheduling it",
		Long: `Validate the task records in a file and resolve their dependency order.

Reports malformed records, duplicate ids, unknown dependencies and cycles,
and prints the order tasks would be scheduled in.

Example:
  smartplan validate --in tasks.yaml`,
		Args: cobra.NoArgs,
		RunE: instrumented("validate", runValidate),
	}

	cmd.Flags().String("in", "", "task file (default tasks.yaml)")
	return cmd
}

// validationResult is the machine-readable output of validate.
type validationResult struct {
	File  string   `json:"file" yaml:"file"`
	Valid bool     `json:"valid" yaml:"valid"`
	Order []string `json:"order" yaml:"order"`
}

func runValidate(cmd *cobra.Command, a *app, args []string) error {
	in, _ := cmd.Flags().GetString("in")
	in = ux.NewPathDefaults().ResolveTasksFile(in)

	file, err := plan.LoadTasks(in)
	if err != nil {
		return err
	}
	tasks, prefs, _, err := file.Records(a.cfg.Scheduling.Preferences())
	if err != nil {
		return err
	}
	if err := prefs.Validate(); err != nil {
		return err
	}
	if err := plan.ValidateTasks(tasks); err != nil {
		return err
	}
	ordered, err := plan.Order(tasks)
	if err != nil {
		return err
	}

	order := make([]string, len(ordered))
	for i, t := range ordered {
		order[i] = t.ID
	}

	formatter, err := a.flags.Formatter(cmd)
	if err != nil {
		return err
	}
	if a.flags.TextOutput() {
		return formatter.Format(ux.OrderView{Source: in, Order: order})
	}
	return formatter.Format(validationResult{File: in, Valid: true, Order: order})
}
