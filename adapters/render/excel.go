package render

import (
	"fmt"
	"path/filepath"

	"coursemetry/domain/glm"
	"coursemetry/domain/report"
	"coursemetry/internal/errors"

	"github.com/xuri/excelize/v2"
)

// ExcelRenderer writes the report as an XLSX workbook with native charts:
// column charts for histograms and category counts, a scatter line for the
// ROC curve.
type ExcelRenderer struct {
	outputDir string
}

// NewExcelRenderer writes report.xlsx into outputDir.
func NewExcelRenderer(outputDir string) *ExcelRenderer {
	return &ExcelRenderer{outputDir: outputDir}
}

func (r *ExcelRenderer) Name() string { return "xlsx" }

// Render builds the workbook sheet by sheet.
func (r *ExcelRenderer) Render(rep *report.AnalysisReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := r.writeSummarySheet(f, rep); err != nil {
		return err
	}
	if err := r.writeModelSheet(f, rep); err != nil {
		return err
	}
	if err := r.writeDistributionSheet(f, rep); err != nil {
		return err
	}
	if rep.Evaluation != nil {
		if err := r.writeROCSheet(f, rep); err != nil {
			return err
		}
	}

	// Drop the default sheet so the workbook opens on the summary.
	f.DeleteSheet("Sheet1")

	path := filepath.Join(r.outputDir, "report.xlsx")
	if err := f.SaveAs(path); err != nil {
		return errors.RenderError("failed to save XLSX report", err)
	}
	return nil
}

func (r *ExcelRenderer) writeSummarySheet(f *excelize.File, rep *report.AnalysisReport) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.RenderError("failed to create summary sheet", err)
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Course Engagement Analysis — run %s", rep.RunID))
	f.SetCellValue(sheet, "A2", fmt.Sprintf("Source: %s", rep.Source))
	f.SetCellValue(sheet, "A3", fmt.Sprintf("Rows: %d  Columns: %d  Missing cells: %d",
		rep.Summary.Rows, rep.Summary.Columns, rep.Summary.MissingCells))

	header := []string{"column", "n", "missing", "min", "q1", "median", "mean", "q3", "max", "sd", "skew"}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 5)
		f.SetCellValue(sheet, cell, h)
	}
	row := 6
	for _, ns := range rep.Summary.Numeric {
		values := []interface{}{ns.Column, ns.Count, ns.Missing, ns.Min, ns.Q1, ns.Median, ns.Mean, ns.Q3, ns.Max, ns.StdDev, ns.Skewness}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	// Categorical level counts with a bar chart per column.
	row += 2
	for _, cs := range rep.Summary.Categorical {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), cs.Column)
		start := row + 1
		for i, lc := range cs.Levels {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", start+i), lc.Level)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", start+i), lc.Count)
		}
		end := start + len(cs.Levels) - 1
		if len(cs.Levels) > 0 {
			chart := &excelize.Chart{
				Type: excelize.Col,
				Series: []excelize.ChartSeries{{
					Name:       fmt.Sprintf("%s!$A$%d", sheet, row),
					Categories: fmt.Sprintf("%s!$A$%d:$A$%d", sheet, start, end),
					Values:     fmt.Sprintf("%s!$B$%d:$B$%d", sheet, start, end),
				}},
				Title: []excelize.RichTextRun{{Text: cs.Column}},
			}
			if err := f.AddChart(sheet, fmt.Sprintf("D%d", row), chart); err != nil {
				return errors.RenderError("failed to add category chart", err)
			}
		}
		row = end + 18 // leave room below the chart
	}

	return nil
}

func (r *ExcelRenderer) writeModelSheet(f *excelize.File, rep *report.AnalysisReport) error {
	const sheet = "Models"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.RenderError("failed to create model sheet", err)
	}

	row := 1
	row = writeModelBlock(f, sheet, row, "Full model", rep.FullModel)
	row = writeModelBlock(f, sheet, row, "Selected model", rep.SelectedModel)

	if len(rep.Comparison) > 0 {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Model comparison (ascending AIC)")
		row++
		for i, h := range []string{"formula", "df", "logLik", "AIC", "BIC"} {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, h)
		}
		row++
		for _, cmp := range rep.Comparison {
			values := []interface{}{cmp.Formula, cmp.DF, cmp.LogLikelihood, cmp.AIC, cmp.BIC}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}

	if rep.Evaluation != nil {
		cm := rep.Evaluation.Confusion
		row += 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("Confusion matrix (threshold %.2f)", cm.Threshold))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row+1), "pred 0")
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row+1), "pred 1")
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row+2), "actual 0")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row+2), cm.TrueNegatives)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row+2), cm.FalsePositives)
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row+3), "actual 1")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row+3), cm.FalseNegatives)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row+3), cm.TruePositives)
	}

	return nil
}

func writeModelBlock(f *excelize.File, sheet string, row int, title string, m *glm.FittedModel) int {
	if m == nil {
		return row
	}
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s: %s", title, m.Formula.String()))
	row++
	for i, h := range []string{"term", "estimate", "std.err", "z", "p"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, h)
	}
	row++
	for _, c := range m.Coefficients {
		values := []interface{}{c.Name, c.Estimate, c.StdErr, c.ZValue, c.PValue}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row),
		fmt.Sprintf("null dev %.4f  resid dev %.4f  AIC %.4f  BIC %.4f  n %d", m.NullDeviance, m.ResidualDeviance, m.AIC, m.BIC, m.N))
	return row + 2
}

func (r *ExcelRenderer) writeDistributionSheet(f *excelize.File, rep *report.AnalysisReport) error {
	const sheet = "Distributions"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.RenderError("failed to create distribution sheet", err)
	}

	row := 1
	for _, h := range rep.Histograms {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), h.Column)
		start := row + 1
		for i, bin := range h.Bins {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", start+i), fmt.Sprintf("[%.2f, %.2f)", bin.Lower, bin.Upper))
			f.SetCellValue(sheet, fmt.Sprintf("B%d", start+i), bin.Count)
		}
		end := start + len(h.Bins) - 1
		if len(h.Bins) > 0 {
			chart := &excelize.Chart{
				Type: excelize.Col,
				Series: []excelize.ChartSeries{{
					Name:       fmt.Sprintf("%s!$A$%d", sheet, row),
					Categories: fmt.Sprintf("%s!$A$%d:$A$%d", sheet, start, end),
					Values:     fmt.Sprintf("%s!$B$%d:$B$%d", sheet, start, end),
				}},
				Title: []excelize.RichTextRun{{Text: h.Column}},
			}
			if err := f.AddChart(sheet, fmt.Sprintf("D%d", row), chart); err != nil {
				return errors.RenderError("failed to add histogram chart", err)
			}
		}
		row = end + 18
	}

	return nil
}

func (r *ExcelRenderer) writeROCSheet(f *excelize.File, rep *report.AnalysisReport) error {
	const sheet = "ROC"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.RenderError("failed to create ROC sheet", err)
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("AUC (trapezoid) %.6f", rep.Evaluation.Curve.AUC))
	f.SetCellValue(sheet, "A2", fmt.Sprintf("AUC (concordance) %.6f", rep.Evaluation.ConcordanceAUC))

	f.SetCellValue(sheet, "A4", "FPR")
	f.SetCellValue(sheet, "B4", "TPR")
	start := 5
	for i, pt := range rep.Evaluation.Curve.Points {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", start+i), pt.FPR)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", start+i), pt.TPR)
	}
	end := start + len(rep.Evaluation.Curve.Points) - 1

	chart := &excelize.Chart{
		Type: excelize.Scatter,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$A$1", sheet),
			Categories: fmt.Sprintf("%s!$A$%d:$A$%d", sheet, start, end),
			Values:     fmt.Sprintf("%s!$B$%d:$B$%d", sheet, start, end),
		}},
		Title: []excelize.RichTextRun{{Text: "ROC curve"}},
	}
	if err := f.AddChart(sheet, "D4", chart); err != nil {
		return errors.RenderError("failed to add ROC chart", err)
	}

	return nil
}
