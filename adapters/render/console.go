package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"coursemetry/domain/glm"
	"coursemetry/domain/report"
)

// ConsoleRenderer prints the report as plain text tables with ASCII bars.
type ConsoleRenderer struct {
	out io.Writer
}

// NewConsoleRenderer writes to stdout.
func NewConsoleRenderer() *ConsoleRenderer {
	return &ConsoleRenderer{out: os.Stdout}
}

// NewConsoleRendererTo writes to the given writer.
func NewConsoleRendererTo(out io.Writer) *ConsoleRenderer {
	return &ConsoleRenderer{out: out}
}

func (r *ConsoleRenderer) Name() string { return "console" }

// Render prints every report section.
func (r *ConsoleRenderer) Render(rep *report.AnalysisReport) error {
	w := r.out

	fmt.Fprintf(w, "Course Engagement Analysis — run %s\n", rep.RunID)
	fmt.Fprintf(w, "Source: %s (%d rows, %d columns, %d missing cells)\n\n",
		rep.Source, rep.Summary.Rows, rep.Summary.Columns, rep.Summary.MissingCells)

	fmt.Fprintln(w, "== Summary statistics ==")
	fmt.Fprintf(w, "%-24s %8s %10s %10s %10s %10s %10s %10s\n",
		"column", "n", "min", "q1", "median", "mean", "q3", "max")
	for _, ns := range rep.Summary.Numeric {
		fmt.Fprintf(w, "%-24s %8d %10.3f %10.3f %10.3f %10.3f %10.3f %10.3f\n",
			ns.Column, ns.Count, ns.Min, ns.Q1, ns.Median, ns.Mean, ns.Q3, ns.Max)
	}
	fmt.Fprintln(w)

	for _, cs := range rep.Summary.Categorical {
		fmt.Fprintf(w, "== %s levels ==\n", cs.Column)
		maxCount := 1
		for _, lc := range cs.Levels {
			if lc.Count > maxCount {
				maxCount = lc.Count
			}
		}
		for _, lc := range cs.Levels {
			fmt.Fprintf(w, "%-20s %6d %s\n", lc.Level, lc.Count, bar(lc.Count, maxCount, 40))
		}
		fmt.Fprintln(w)
	}

	for _, h := range rep.Histograms {
		fmt.Fprintf(w, "== Histogram: %s ==\n", h.Column)
		maxCount := 1
		for _, b := range h.Bins {
			if b.Count > maxCount {
				maxCount = b.Count
			}
		}
		for _, b := range h.Bins {
			fmt.Fprintf(w, "[%9.2f, %9.2f) %6d %s\n", b.Lower, b.Upper, b.Count, bar(b.Count, maxCount, 40))
		}
		fmt.Fprintln(w)
	}

	r.renderModel(w, "Full model", rep.FullModel)
	r.renderModel(w, "Selected model", rep.SelectedModel)

	if len(rep.Comparison) > 0 {
		fmt.Fprintln(w, "== Model comparison (ascending AIC) ==")
		fmt.Fprintf(w, "%-64s %4s %12s %12s %12s\n", "formula", "df", "logLik", "AIC", "BIC")
		for _, row := range rep.Comparison {
			fmt.Fprintf(w, "%-64s %4d %12.4f %12.4f %12.4f\n",
				row.Formula, row.DF, row.LogLikelihood, row.AIC, row.BIC)
		}
		fmt.Fprintln(w)
	}

	if rep.Evaluation != nil {
		cm := rep.Evaluation.Confusion
		fmt.Fprintf(w, "== Confusion matrix (threshold %.2f) ==\n", cm.Threshold)
		fmt.Fprintf(w, "%12s %10s %10s\n", "", "pred 0", "pred 1")
		fmt.Fprintf(w, "%12s %10d %10d\n", "actual 0", cm.TrueNegatives, cm.FalsePositives)
		fmt.Fprintf(w, "%12s %10d %10d\n", "actual 1", cm.FalseNegatives, cm.TruePositives)
		fmt.Fprintf(w, "accuracy %.4f  sensitivity %.4f  specificity %.4f  precision %.4f\n\n",
			cm.Accuracy(), cm.Sensitivity(), cm.Specificity(), cm.Precision())

		fmt.Fprintf(w, "== ROC ==\nAUC (trapezoid)   %.6f\nAUC (concordance) %.6f\n\n",
			rep.Evaluation.Curve.AUC, rep.Evaluation.ConcordanceAUC)
	}

	return nil
}

func (r *ConsoleRenderer) renderModel(w io.Writer, title string, m *glm.FittedModel) {
	if m == nil {
		return
	}
	fmt.Fprintf(w, "== %s: %s ==\n", title, m.Formula.String())
	fmt.Fprintf(w, "%-28s %12s %12s %10s %12s\n", "term", "estimate", "std.err", "z", "p")
	for _, c := range m.Coefficients {
		fmt.Fprintf(w, "%-28s %12.6f %12.6f %10.4f %12.6g\n",
			c.Name, c.Estimate, c.StdErr, c.ZValue, c.PValue)
	}
	fmt.Fprintf(w, "null deviance %.4f  residual deviance %.4f  AIC %.4f  BIC %.4f  n %d\n\n",
		m.NullDeviance, m.ResidualDeviance, m.AIC, m.BIC, m.N)
}

// bar draws a proportional ASCII bar.
func bar(count, max, width int) string {
	if max <= 0 {
		return ""
	}
	n := count * width / max
	return strings.Repeat("#", n)
}
