package ports

import (
	"coursemetry/domain/report"
)

// ReportRenderer turns a finished analysis into one output surface (console,
// HTML file, XLSX workbook). Rendering never mutates the report.
type ReportRenderer interface {
	Name() string
	Render(rep *report.AnalysisReport) error
}
