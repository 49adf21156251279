// Package report renders pipeline output for the terminal.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/analysis"
	"github.com/abhisek/adaptiq/internal/quizgen"
	"github.com/abhisek/adaptiq/internal/schedule"
	"github.com/abhisek/adaptiq/internal/store"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return cell
		})
}

func field(label string, value any) string {
	return labelStyle.Render(label) + fmt.Sprint(value)
}

func pct(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func trendStyle(t analysis.Trend) lipgloss.Style {
	switch t {
	case analysis.TrendImproving:
		return goodStyle
	case analysis.TrendDeclining:
		return badStyle
	default:
		return hintStyle
	}
}

// Profile renders an analysis profile.
func Profile(p *analysis.Profile) string {
	var b strings.Builder
	course := p.CourseID
	if course == "" {
		course = "all courses"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("Performance of %s (%s)", p.StudentID, course)))
	b.WriteString("\n")

	s := p.Summary
	lines := []string{
		field("Completed attempts", s.TotalAttempts),
		field("Last 30 days", s.RecentAttempts),
		field("Overall average", fmt.Sprintf("%.1f", s.OverallAverage)),
		field("Recent average", fmt.Sprintf("%.1f", s.RecentAverage)),
		field("Trend", trendStyle(s.Trend).Render(string(s.Trend))),
		field("Velocity", fmt.Sprintf("%s (%s confidence, %+.2f/day)", p.Velocity.Class, p.Velocity.Confidence, p.Velocity.ImprovementRate)),
		field("Consistency", fmt.Sprintf("%s (sd %.1f)", p.Consistency.Bucket, p.Consistency.StdDev)),
		field("Pace", fmt.Sprintf("%s (%.0fs per question)", p.Efficiency.Bucket, p.Efficiency.SecondsPerQuestion)),
	}
	if p.TimeOfDay.HasData {
		lines = append(lines, field("Best time", fmt.Sprintf("%02d:00, %s", p.TimeOfDay.BestHour, p.TimeOfDay.BestDay)))
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")

	if p.Insufficient() {
		b.WriteString(warnStyle.Render("Not enough history yet; neutral parameters apply."))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Weaknesses"))
	b.WriteString("\n")
	if len(p.Weaknesses) == 0 {
		b.WriteString(hintStyle.Render("None identified"))
		b.WriteString("\n")
	} else {
		t := newTable("Concept", "Flagged", "Accuracy", "Recent", "Priority", "Needs work")
		for _, w := range p.Weaknesses {
			needs := "no"
			if w.ImprovementNeeded {
				needs = "yes"
			}
			t.Row(w.Concept, strconv.Itoa(w.OccurrenceCount), pct(w.Accuracy), pct(w.RecentAccuracy),
				fmt.Sprintf("%.2f", w.PriorityScore), needs)
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Strengths"))
	b.WriteString("\n")
	if len(p.Strengths) == 0 {
		b.WriteString(hintStyle.Render("None identified"))
		b.WriteString("\n")
	} else {
		t := newTable("Concept", "Flagged", "Accuracy", "Mastery")
		for _, s := range p.Strengths {
			t.Row(s.Concept, strconv.Itoa(s.OccurrenceCount), pct(s.Accuracy), string(s.MasteryLevel))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}
	return b.String()
}

// Parameters renders adaptive parameters.
func Parameters(p adaptive.Parameters) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Adaptive parameters"))
	b.WriteString("\n")
	b.WriteString(strings.Join([]string{
		field("Difficulty adjustment", fmt.Sprintf("%+.2f", p.DifficultyAdjustment)),
		field("Content pace", fmt.Sprintf("%.2f", p.ContentPace)),
		field("Repetition factor", fmt.Sprintf("%.2f", p.RepetitionFactor)),
		field("Challenge level", fmt.Sprintf("%.2f", p.ChallengeLevel)),
		field("Support level", fmt.Sprintf("%.2f", p.SupportLevel)),
		field("Session length", fmt.Sprintf("%d min", p.EstimatedCompletionMinutes)),
	}, "\n"))
	b.WriteString("\n")
	return b.String()
}

// Changes renders a recalibration report.
func Changes(changes []adaptive.Change) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Recalibration"))
	b.WriteString("\n")
	if len(changes) == 0 {
		b.WriteString(hintStyle.Render(adaptive.Summary(changes)))
		b.WriteString("\n")
		return b.String()
	}
	for _, line := range adaptive.Explain(changes) {
		b.WriteString("  • " + line + "\n")
	}
	return b.String()
}

// Quiz renders a generated quiz with its provenance.
func Quiz(res *quizgen.Result) string {
	q := res.Quiz
	var b strings.Builder
	b.WriteString(titleStyle.Render(q.Title))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(q.Description))
	b.WriteString("\n")

	source := goodStyle.Render(string(res.Info.Source))
	if res.Info.Source == quizgen.SourceFallback {
		source = warnStyle.Render(string(res.Info.Source))
	}
	tier := string(res.Info.Tier)
	if res.Info.Model != "" {
		tier += " / " + res.Info.Model
	}
	b.WriteString(strings.Join([]string{
		field("Quiz", q.ID),
		field("Source", source+" ("+tier+")"),
		field("Targets", strings.Join(q.TargetConcepts, ", ")),
		field("Passing score", fmt.Sprintf("%.1f", q.PassingScore)),
		field("Time limit", fmt.Sprintf("%d min", q.TimeLimitMinutes)),
		field("Attempts allowed", q.MaxAttempts),
	}, "\n"))
	b.WriteString("\n")
	if res.Info.Discarded > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d generated questions were discarded", res.Info.Discarded)))
		b.WriteString("\n")
	}

	for _, qq := range q.Questions {
		b.WriteString("\n")
		b.WriteString(sectionStyle.UnsetMarginTop().Render(fmt.Sprintf("%d. [%s, %s, %d pts]", qq.ID, qq.Type, qq.Difficulty, qq.Points)))
		b.WriteString(" " + qq.Prompt + "\n")
		for i, opt := range qq.Options {
			marker := " "
			if strconv.Itoa(i) == qq.CorrectAnswer {
				marker = "*"
			}
			fmt.Fprintf(&b, "   %s %c) %s\n", marker, 'A'+i, opt)
		}
		if len(qq.Options) == 0 {
			fmt.Fprintf(&b, "   Answer: %s\n", qq.CorrectAnswer)
		}
		if qq.Explanation != "" {
			b.WriteString("   " + hintStyle.Render(qq.Explanation) + "\n")
		}
		if len(qq.Tags) > 0 {
			b.WriteString("   " + hintStyle.Render("tags: "+strings.Join(qq.Tags, ", ")) + "\n")
		}
	}
	return b.String()
}

// Quizzes renders stored quizzes as a table.
func Quizzes(qs []store.QuizRecord) string {
	t := newTable("Quiz", "Created", "Course", "Title", "Questions", "Source")
	for _, q := range qs {
		source := q.Source
		if q.Tier != "" {
			source += " (" + q.Tier + ")"
		}
		t.Row(q.ID, q.CreatedAt.Local().Format("2006-01-02 15:04"), q.CourseID, q.Title, strconv.Itoa(q.QuestionCount), source)
	}
	return t.String() + "\n"
}

// Schedule renders a weekly plan.
func Schedule(w *schedule.Weekly) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Study plan from %s", w.Start.Format("Mon Jan 2"))))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(fmt.Sprintf("Sessions start at %02d:00; strongest day is %s", w.BestHour, w.BestDay)))
	b.WriteString("\n")

	t := newTable("Day", "Kind", "Start", "Minutes", "Content")
	for _, d := range w.Days {
		titles := make([]string, len(d.Items))
		for i, it := range d.Items {
			titles[i] = it.Title
		}
		content := strings.Join(titles, "; ")
		if content == "" {
			content = "review and practice"
		}
		t.Row(d.Date.Format("Mon Jan 2"), string(d.Kind), d.Start.Format("15:04"), strconv.Itoa(d.Minutes), content)
	}
	for _, c := range w.Checkpoints {
		content := strings.Join(c.Concepts, "; ")
		if content == "" {
			content = "spaced review"
		}
		t.Row(c.Start.Format("Mon Jan 2"), "checkpoint", c.Start.Format("15:04"), strconv.Itoa(c.Minutes), content)
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	b.WriteString(field("Total", fmt.Sprintf("%d min", w.TotalMinutes())))
	b.WriteString("\n")
	return b.String()
}
