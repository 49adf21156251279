package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Show a student's performance profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		student, course := studentFlags(cmd)
		asJSON, _ := cmd.Flags().GetBool("json")

		p, err := openPipeline(cmd, false)
		if err != nil {
			return err
		}
		defer p.Close()

		profile, err := p.service.Profile(cmd.Context(), student, course)
		if err != nil {
			return userError(err)
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), profile)
		}
		fmt.Print(report.Profile(profile))
		return nil
	},
}

func init() {
	addStudentFlags(analyzeCmd)
	analyzeCmd.Flags().Bool("json", false, "Print the profile as JSON")
}
