package report

import (
	"time"

	"coursemetry/domain/dataset"
	"coursemetry/domain/evaluation"
	"coursemetry/domain/glm"
)

// StageTiming records wall time for one pipeline stage.
type StageTiming struct {
	Stage     string        `json:"stage"`
	Duration  time.Duration `json:"duration"`
	Succeeded bool          `json:"succeeded"`
}

// AnalysisReport is the complete artifact of one report run, computed once and
// held in memory for rendering.
type AnalysisReport struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`

	Summary    dataset.TableSummary `json:"summary"`
	Histograms []dataset.Histogram  `json:"histograms"`

	FullModel     *glm.FittedModel    `json:"full_model"`
	SelectedModel *glm.FittedModel    `json:"selected_model"`
	Comparison    []glm.ComparisonRow `json:"comparison"`

	Evaluation *evaluation.Evaluation `json:"evaluation"`

	Timings []StageTiming `json:"timings"`
}
