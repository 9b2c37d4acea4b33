// Command loamc runs semantic analysis over a Loam program document and
// prints the resulting diagnostics.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"loam/frontend-go/pkg/driver"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "loamc",
		Short:         "Loam Datalog front-end",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCommand())
	return root
}

func newCheckCommand() *cobra.Command {
	var configPath string
	var suppressWarnings string
	var debugReport string

	cmd := &cobra.Command{
		Use:   "check <program.yaml>",
		Short: "Run semantic analysis over a program document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := driver.NewConfig()
			if configPath != "" {
				loaded, err := driver.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("suppress-warnings") {
				cfg.Set(driver.KeySuppressWarnings, suppressWarnings)
			}
			if debugReport != "" {
				cfg.Set(driver.KeyDebugReport, debugReport)
			}

			program, err := driver.LoadProgram(args[0])
			if err != nil {
				return err
			}

			result, err := driver.Run(program, cfg)
			if err != nil {
				return err
			}

			result.Report.Print(cmd.OutOrStdout())
			if result.Semantic.UsesRecords {
				fmt.Fprintln(cmd.ErrOrStderr(), "note: program uses record types")
			}
			if result.Report.NumErrors() > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d errors generated\n", result.Report.NumErrors())
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML configuration file")
	cmd.Flags().StringVar(&suppressWarnings, "suppress-warnings", "", "comma list of relations to mute, or *")
	cmd.Flags().StringVar(&debugReport, "debug-report", "", "write the per-clause type debug stream to this path, - for stderr")
	return cmd
}
