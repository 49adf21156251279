package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/export"
	"github.com/abhisek/adaptiq/internal/report"
	"github.com/abhisek/adaptiq/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Plan the coming study week",
	Long: "Plans seven days of study sessions. Content items are given as id=title\n" +
		"pairs in study order; without --item the student's weaknesses are queued\n" +
		"for review.",
	RunE: func(cmd *cobra.Command, args []string) error {
		student, course := studentFlags(cmd)
		items, _ := cmd.Flags().GetStringArray("item")
		startFlag, _ := cmd.Flags().GetString("start")
		xlsx, _ := cmd.Flags().GetString("xlsx")
		asJSON, _ := cmd.Flags().GetBool("json")
		ctx := cmd.Context()

		var start time.Time
		if startFlag != "" {
			t, err := time.ParseInLocation(time.DateOnly, startFlag, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --start %q: %w", startFlag, err)
			}
			start = t
		}

		p, err := openPipeline(cmd, false)
		if err != nil {
			return err
		}
		defer p.Close()

		queue := parseItems(items)
		if len(queue) == 0 {
			profile, err := p.service.Profile(ctx, student, course)
			if err != nil {
				return userError(err)
			}
			for _, w := range profile.Weaknesses {
				queue = append(queue, schedule.ContentItem{ID: w.Concept, Title: "Review " + w.Concept})
			}
		}

		plan, err := p.service.WeeklySchedule(ctx, student, course, queue, start)
		if err != nil {
			return userError(err)
		}

		if xlsx != "" {
			params, err := p.service.Parameters(ctx, student, course)
			if err != nil {
				return userError(err)
			}
			if err := export.SaveWeekly(xlsx, *plan, params); err != nil {
				return fmt.Errorf("export schedule: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", xlsx)
		}

		if asJSON {
			return printJSON(cmd.OutOrStdout(), plan)
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Schedule(plan))
		return nil
	},
}

// parseItems reads id=title pairs. A bare value is used as both.
func parseItems(raw []string) []schedule.ContentItem {
	var out []schedule.ContentItem
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		id, title, ok := strings.Cut(r, "=")
		if !ok {
			title = id
		}
		out = append(out, schedule.ContentItem{ID: strings.TrimSpace(id), Title: strings.TrimSpace(title)})
	}
	return out
}

func init() {
	addStudentFlags(scheduleCmd)
	scheduleCmd.Flags().StringArray("item", nil, "Content item as id=title (repeatable, in study order)")
	scheduleCmd.Flags().String("start", "", "First day of the plan (YYYY-MM-DD, default today)")
	scheduleCmd.Flags().String("xlsx", "", "Also write the plan to this .xlsx file")
	scheduleCmd.Flags().Bool("json", false, "Print the plan as JSON")
}
