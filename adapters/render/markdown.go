package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"coursemetry/domain/glm"
	"coursemetry/domain/report"
	"coursemetry/internal/errors"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// HTMLRenderer writes the report as Markdown plus a rendered HTML document.
type HTMLRenderer struct {
	outputDir string
}

// NewHTMLRenderer writes report.md and report.html into outputDir.
func NewHTMLRenderer(outputDir string) *HTMLRenderer {
	return &HTMLRenderer{outputDir: outputDir}
}

func (r *HTMLRenderer) Name() string { return "html" }

// Render builds the Markdown source and converts it with gomarkdown.
func (r *HTMLRenderer) Render(rep *report.AnalysisReport) error {
	md := buildMarkdown(rep)

	mdPath := filepath.Join(r.outputDir, "report.md")
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return errors.RenderError("failed to write Markdown report", err)
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Course Engagement Analysis",
		Flags: html.CommonFlags | html.CompletePage,
	})
	htmlDoc := markdown.ToHTML([]byte(md), p, renderer)

	htmlPath := filepath.Join(r.outputDir, "report.html")
	if err := os.WriteFile(htmlPath, htmlDoc, 0o644); err != nil {
		return errors.RenderError("failed to write HTML report", err)
	}

	return nil
}

func buildMarkdown(rep *report.AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Course Engagement Analysis\n\n")
	fmt.Fprintf(&b, "Run `%s` over `%s`: %d rows, %d columns, %d missing cells.\n\n",
		rep.RunID, rep.Source, rep.Summary.Rows, rep.Summary.Columns, rep.Summary.MissingCells)

	b.WriteString("## Summary statistics\n\n")
	b.WriteString("| column | n | missing | min | q1 | median | mean | q3 | max | sd | skew |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|---|---|\n")
	for _, ns := range rep.Summary.Numeric {
		fmt.Fprintf(&b, "| %s | %d | %d | %.3f | %.3f | %.3f | %.3f | %.3f | %.3f | %.3f | %.3f |\n",
			ns.Column, ns.Count, ns.Missing, ns.Min, ns.Q1, ns.Median, ns.Mean, ns.Q3, ns.Max, ns.StdDev, ns.Skewness)
	}
	b.WriteString("\n")

	for _, cs := range rep.Summary.Categorical {
		fmt.Fprintf(&b, "## %s levels\n\n| level | count |\n|---|---|\n", cs.Column)
		for _, lc := range cs.Levels {
			fmt.Fprintf(&b, "| %s | %d |\n", lc.Level, lc.Count)
		}
		b.WriteString("\n")
	}

	for _, h := range rep.Histograms {
		fmt.Fprintf(&b, "## Histogram: %s\n\n| bin | count |\n|---|---|\n", h.Column)
		for _, bin := range h.Bins {
			fmt.Fprintf(&b, "| [%.2f, %.2f) | %d |\n", bin.Lower, bin.Upper, bin.Count)
		}
		b.WriteString("\n")
	}

	writeModelMarkdown(&b, "Full model", rep.FullModel)
	writeModelMarkdown(&b, "Selected model", rep.SelectedModel)

	if len(rep.Comparison) > 0 {
		b.WriteString("## Model comparison\n\n| formula | df | logLik | AIC | BIC |\n|---|---|---|---|---|\n")
		for _, row := range rep.Comparison {
			fmt.Fprintf(&b, "| %s | %d | %.4f | %.4f | %.4f |\n",
				row.Formula, row.DF, row.LogLikelihood, row.AIC, row.BIC)
		}
		b.WriteString("\n")
	}

	if rep.Evaluation != nil {
		cm := rep.Evaluation.Confusion
		fmt.Fprintf(&b, "## Confusion matrix (threshold %.2f)\n\n", cm.Threshold)
		b.WriteString("| | pred 0 | pred 1 |\n|---|---|---|\n")
		fmt.Fprintf(&b, "| actual 0 | %d | %d |\n", cm.TrueNegatives, cm.FalsePositives)
		fmt.Fprintf(&b, "| actual 1 | %d | %d |\n\n", cm.FalseNegatives, cm.TruePositives)
		fmt.Fprintf(&b, "Accuracy %.4f, sensitivity %.4f, specificity %.4f, precision %.4f.\n\n",
			cm.Accuracy(), cm.Sensitivity(), cm.Specificity(), cm.Precision())

		fmt.Fprintf(&b, "## ROC\n\nAUC (trapezoid) **%.6f**, AUC (concordance) **%.6f**.\n\n",
			rep.Evaluation.Curve.AUC, rep.Evaluation.ConcordanceAUC)
		b.WriteString("| threshold | FPR | TPR |\n|---|---|---|\n")
		for _, pt := range rep.Evaluation.Curve.Points {
			fmt.Fprintf(&b, "| %.6f | %.6f | %.6f |\n", pt.Threshold, pt.FPR, pt.TPR)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeModelMarkdown(b *strings.Builder, title string, m *glm.FittedModel) {
	if m == nil {
		return
	}
	fmt.Fprintf(b, "## %s\n\n`%s`\n\n", title, m.Formula.String())
	b.WriteString("| term | estimate | std.err | z | p |\n|---|---|---|---|---|\n")
	for _, c := range m.Coefficients {
		fmt.Fprintf(b, "| %s | %.6f | %.6f | %.4f | %.6g |\n",
			c.Name, c.Estimate, c.StdErr, c.ZValue, c.PValue)
	}
	fmt.Fprintf(b, "\nNull deviance %.4f, residual deviance %.4f, AIC %.4f, BIC %.4f, n=%d, %d iterations.\n\n",
		m.NullDeviance, m.ResidualDeviance, m.AIC, m.BIC, m.N, m.Iterations)
}
