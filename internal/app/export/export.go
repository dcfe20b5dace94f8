// Package export writes an instructor's evaluation history to an xlsx
// workbook for offline review.
package export

import (
	"fmt"
	"time"

	"github.com/tealeg/xlsx"

	"coachlens/internal/app/metrics"
	"coachlens/internal/app/model"
)

// ToExcel writes one row per evaluation plus one column per tracked metric.
func ToExcel(evaluations []model.Evaluation, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Evaluations")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	defs := metrics.Definitions()

	headerRow := sheet.AddRow()
	headerRow.AddCell().Value = "ID"
	headerRow.AddCell().Value = "Instructor"
	headerRow.AddCell().Value = "Video"
	headerRow.AddCell().Value = "Status"
	headerRow.AddCell().Value = "Created"
	headerRow.AddCell().Value = "Completed"
	for _, def := range defs {
		headerRow.AddCell().Value = def.DisplayName
	}
	headerRow.AddCell().Value = "Error"

	for _, e := range evaluations {
		row := sheet.AddRow()
		row.AddCell().Value = e.ID
		row.AddCell().Value = e.InstructorID
		row.AddCell().Value = e.VideoID
		row.AddCell().Value = string(e.Status)
		row.AddCell().Value = e.CreatedAt.Format(time.RFC3339)
		if e.CompletedAt != nil {
			row.AddCell().Value = e.CompletedAt.Format(time.RFC3339)
		} else {
			row.AddCell().Value = ""
		}
		for _, def := range defs {
			if v, ok := e.Metrics[def.Key]; ok {
				row.AddCell().Value = fmt.Sprintf("%.2f", v)
			} else {
				row.AddCell().Value = ""
			}
		}
		row.AddCell().Value = e.ErrorDetail
	}

	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
