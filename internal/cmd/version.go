package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/smartplan/internal/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
		Args: cobra.NoArgs,
		RunE: instrumented("version", runVersion),
	}

	cmd.Flags().BoolP("verbose", "v", false, "show detailed version information")
	cmd.Flags().Bool("json", false, "output version information as JSON (same as --format json)")
	return cmd
}

func runVersion(cmd *cobra.Command, a *app, args []string) error {
	info := version.GetInfo()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		a.flags.Format = "json"
	}

	formatter, err := a.flags.Formatter(cmd)
	if err != nil {
		return err
	}
	if !a.flags.TextOutput() {
		return formatter.Format(info)
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return formatter.Format(info)
	}
	return formatter.Format(fmt.Sprintf("smartplan %s", info.Short()))
}
