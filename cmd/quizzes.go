package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/attempt"
	"github.com/abhisek/adaptiq/internal/quizgen"
	"github.com/abhisek/adaptiq/internal/report"
)

var quizzesCmd = &cobra.Command{
	Use:   "quizzes",
	Short: "Inspect generated quizzes",
}

var quizzesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a student's generated quizzes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		student, _ := cmd.Flags().GetString("student")
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		quizzes, err := s.Quizzes().ListQuizzes(cmd.Context(), student, limit)
		if err != nil {
			return err
		}
		if len(quizzes) == 0 {
			fmt.Printf("No quizzes generated for %s.\n", student)
			return nil
		}
		fmt.Print(report.Quizzes(quizzes))
		return nil
	},
}

var quizzesViewCmd = &cobra.Command{
	Use:   "view <quiz-id>",
	Short: "Show a stored quiz with its answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		rec, err := s.Quizzes().Quiz(cmd.Context(), args[0])
		if errors.Is(err, attempt.ErrNotFound) {
			return fmt.Errorf("no quiz with id %q", args[0])
		}
		if err != nil {
			return err
		}

		var res quizgen.Result
		if err := json.Unmarshal(rec.Body, &res); err != nil {
			return fmt.Errorf("decode quiz %s: %w", rec.ID, err)
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), &res)
		}
		fmt.Print(report.Quiz(&res))
		return nil
	},
}

func init() {
	quizzesListCmd.Flags().String("student", "", "Student id")
	quizzesListCmd.Flags().Int("limit", 20, "Maximum number of quizzes to show")
	_ = quizzesListCmd.MarkFlagRequired("student")
	quizzesViewCmd.Flags().Bool("json", false, "Print the quiz as JSON")

	quizzesCmd.AddCommand(quizzesListCmd)
	quizzesCmd.AddCommand(quizzesViewCmd)
}
