package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/attempt"
	"github.com/abhisek/adaptiq/internal/quizgen"
	"github.com/abhisek/adaptiq/internal/report"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a personalized quiz",
	RunE: func(cmd *cobra.Command, args []string) error {
		student, course := studentFlags(cmd)
		topic, _ := cmd.Flags().GetString("topic")
		count, _ := cmd.Flags().GetInt("count")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		types, _ := cmd.Flags().GetStringSlice("types")
		asJSON, _ := cmd.Flags().GetBool("json")

		req := quizgen.Request{
			StudentID:     student,
			CourseID:      course,
			Topic:         topic,
			Difficulty:    attempt.Difficulty(difficulty),
			QuestionCount: count,
		}
		for _, t := range types {
			req.QuestionTypes = append(req.QuestionTypes, questionType(t))
		}

		p, err := openPipeline(cmd, true)
		if err != nil {
			return err
		}
		defer p.Close()

		res, err := p.service.GenerateQuiz(cmd.Context(), req)
		if err != nil {
			return userError(err)
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Print(report.Quiz(res))
		return nil
	},
}

// questionType expands the short aliases accepted on the command line.
func questionType(s string) quizgen.QuestionType {
	switch s {
	case "mc":
		return quizgen.TypeMultipleChoice
	case "tf":
		return quizgen.TypeTrueFalse
	case "sa":
		return quizgen.TypeShortAnswer
	case "fb":
		return quizgen.TypeFillBlank
	default:
		return quizgen.QuestionType(s)
	}
}

func init() {
	addStudentFlags(generateCmd)
	_ = generateCmd.MarkFlagRequired("course")
	generateCmd.Flags().String("topic", "", "Quiz topic")
	generateCmd.Flags().Int("count", 10, "Number of questions")
	generateCmd.Flags().String("difficulty", "medium", "easy, medium or hard")
	generateCmd.Flags().StringSlice("types", []string{"mc"}, "Question types: mc, tf, sa, fb")
	generateCmd.Flags().Bool("json", false, "Print the quiz as JSON")
	_ = generateCmd.MarkFlagRequired("topic")
}
