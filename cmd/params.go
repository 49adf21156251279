package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/report"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Show adaptive learning parameters for a student",
	Long: "Computes adaptive parameters from the full history. With --recalibrate the\n" +
		"computed parameters are then nudged by the most recent attempts and the\n" +
		"changes are reported.",
	RunE: func(cmd *cobra.Command, args []string) error {
		student, course := studentFlags(cmd)
		recalibrate, _ := cmd.Flags().GetBool("recalibrate")
		asJSON, _ := cmd.Flags().GetBool("json")
		ctx := cmd.Context()

		p, err := openPipeline(cmd, false)
		if err != nil {
			return err
		}
		defer p.Close()

		params, err := p.service.Parameters(ctx, student, course)
		if err != nil {
			return userError(err)
		}

		var changes []adaptive.Change
		if recalibrate {
			params, changes, err = p.service.Recalibrate(ctx, student, course, params)
			if err != nil {
				return userError(err)
			}
		}

		if asJSON {
			return printJSON(cmd.OutOrStdout(), struct {
				Parameters adaptive.Parameters `json:"parameters"`
				Changes    []adaptive.Change   `json:"changes,omitempty"`
			}{params, changes})
		}
		fmt.Print(report.Parameters(params))
		if recalibrate {
			fmt.Print(report.Changes(changes))
		}
		return nil
	},
}

func init() {
	addStudentFlags(paramsCmd)
	paramsCmd.Flags().Bool("recalibrate", false, "Apply the recent-performance update and report changes")
	paramsCmd.Flags().Bool("json", false, "Print the parameters as JSON")
}
