// Package export writes study plans to spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/schedule"
)

// Sheet names.
const (
	SheetSchedule   = "Schedule"
	SheetParameters = "Parameters"
)

var scheduleHeader = []any{"Date", "Weekday", "Kind", "Start", "Minutes", "Content"}

// WeeklyWorkbook builds a workbook with the schedule and the parameters it
// was derived from. The caller owns the returned file and must Close it.
func WeeklyWorkbook(w schedule.Weekly, params adaptive.Parameters) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSchedule); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetParameters); err != nil {
		f.Close()
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := writeSchedule(f, w, header); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeParameters(f, params, header); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteWeekly writes the workbook to out.
func WriteWeekly(out io.Writer, w schedule.Weekly, params adaptive.Parameters) error {
	f, err := WeeklyWorkbook(w, params)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveWeekly writes the workbook to path.
func SaveWeekly(path string, w schedule.Weekly, params adaptive.Parameters) error {
	f, err := WeeklyWorkbook(w, params)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeSchedule(f *excelize.File, w schedule.Weekly, header int) error {
	rows := [][]any{scheduleHeader}
	for _, d := range w.Days {
		titles := make([]string, len(d.Items))
		for i, it := range d.Items {
			titles[i] = it.Title
		}
		rows = append(rows, []any{
			d.Date.Format("2006-01-02"),
			d.Date.Weekday().String(),
			string(d.Kind),
			d.Start.Format("15:04"),
			d.Minutes,
			strings.Join(titles, "; "),
		})
	}
	for _, c := range w.Checkpoints {
		rows = append(rows, []any{
			c.Start.Format("2006-01-02"),
			c.Start.Weekday().String(),
			"checkpoint",
			c.Start.Format("15:04"),
			c.Minutes,
			strings.Join(c.Concepts, "; "),
		})
	}

	if err := setRows(f, SheetSchedule, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSchedule, "A1", "F1", header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(SheetSchedule, "A", "E", 12); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	return f.SetColWidth(SheetSchedule, "F", "F", 48)
}

func writeParameters(f *excelize.File, p adaptive.Parameters, header int) error {
	rows := [][]any{
		{"Parameter", "Value"},
		{"Difficulty adjustment", p.DifficultyAdjustment},
		{"Content pace", p.ContentPace},
		{"Repetition factor", p.RepetitionFactor},
		{"Challenge level", p.ChallengeLevel},
		{"Support level", p.SupportLevel},
		{"Estimated minutes", p.EstimatedCompletionMinutes},
	}
	if err := setRows(f, SheetParameters, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetParameters, "A1", "B1", header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	return f.SetColWidth(SheetParameters, "A", "A", 24)
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, r+1, err)
		}
	}
	return nil
}
