package app

import (
	"context"
	"time"

	statglm "coursemetry/adapters/stats/glm"
	"coursemetry/adapters/stats/roc"
	"coursemetry/adapters/stats/stepwise"
	"coursemetry/domain/dataset"
	domglm "coursemetry/domain/glm"
	"coursemetry/domain/report"
	"coursemetry/internal"
	"coursemetry/internal/errors"
	"coursemetry/internal/profiling"
	"coursemetry/ports"

	"github.com/google/uuid"
)

// ReportService runs the full analysis pipeline: load, summarize, visualize,
// fit, select, evaluate, render. Stages execute strictly in order; a stage
// failure aborts the run with its coded error.
type ReportService struct {
	reader    ports.DatasetReader
	renderers []ports.ReportRenderer
	logger    *internal.Logger
}

// RunRequest defines the inputs for one report run
type RunRequest struct {
	Threshold float64  // classification threshold, DefaultThreshold when zero
	BinCount  int      // histogram bins, 0 for Sturges' rule
	Universe  []string // predictor universe, defaults to every predictor column
}

// NewReportService creates a report service
func NewReportService(reader ports.DatasetReader, renderers []ports.ReportRenderer) *ReportService {
	return &ReportService{
		reader:    reader,
		renderers: renderers,
		logger:    internal.DefaultLogger,
	}
}

// Run executes the pipeline once and hands the finished report to every
// configured renderer.
func (s *ReportService) Run(ctx context.Context, req RunRequest) (*report.AnalysisReport, error) {
	threshold := req.Threshold
	if threshold == 0 {
		threshold = roc.DefaultThreshold
	}
	universe := req.Universe
	if len(universe) == 0 {
		universe = dataset.PredictorColumns
	}

	rep := &report.AnalysisReport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}
	s.logger.Info("[ReportService] run %s starting", rep.RunID)

	// Stage 1: load
	var ds *dataset.Dataset
	err := s.stage(rep, "load", func() error {
		var err error
		ds, err = s.reader.ReadDataset()
		return err
	})
	if err != nil {
		return nil, err
	}
	rep.Source = ds.Source
	s.logger.Info("[ReportService] loaded %d records from %s", ds.Len(), ds.Source)

	// Stage 2: summarize
	err = s.stage(rep, "summarize", func() error {
		rep.Summary = profiling.NewSummarizer().Summarize(ds)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stage 3: visualize (histogram binning; charts render later)
	err = s.stage(rep, "visualize", func() error {
		rep.Histograms = profiling.DatasetHistograms(ds, req.BinCount)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stage 4: fit the full model
	fitter := statglm.NewFitter()
	err = s.stage(rep, "fit", func() error {
		full, err := fitter.Fit(ds, domglm.Formula{
			Target:     dataset.ColCourseCompletion,
			Predictors: universe,
		})
		if err != nil {
			return err
		}
		rep.FullModel = full
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("[ReportService] full model AIC %.4f (%d iterations)",
		rep.FullModel.AIC, rep.FullModel.Iterations)

	// Stage 5: stepwise selection
	err = s.stage(rep, "select", func() error {
		selected, err := stepwise.NewSelector(fitter).Select(ctx, ds, rep.FullModel, universe)
		if err != nil {
			return err
		}
		rep.SelectedModel = selected
		rep.Comparison = stepwise.Compare([]*domglm.FittedModel{rep.FullModel, selected})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("[ReportService] selected %s (AIC %.4f)",
		rep.SelectedModel.Formula.String(), rep.SelectedModel.AIC)

	// Stage 6: evaluate
	err = s.stage(rep, "evaluate", func() error {
		eval, err := roc.NewEvaluator(threshold).Evaluate(rep.SelectedModel, ds)
		if err != nil {
			return err
		}
		rep.Evaluation = eval
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("[ReportService] AUC %.4f (concordance %.4f)",
		rep.Evaluation.Curve.AUC, rep.Evaluation.ConcordanceAUC)

	// Stage 7: render to every configured surface
	err = s.stage(rep, "render", func() error {
		for _, renderer := range s.renderers {
			if err := renderer.Render(rep); err != nil {
				return errors.Wrapf(err, "renderer %s failed", renderer.Name())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("[ReportService] run %s complete", rep.RunID)
	return rep, nil
}

// stage times one pipeline stage and records its outcome on the report.
func (s *ReportService) stage(rep *report.AnalysisReport, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	rep.Timings = append(rep.Timings, report.StageTiming{
		Stage:     name,
		Duration:  time.Since(start),
		Succeeded: err == nil,
	})
	if err != nil {
		s.logger.Error("[ReportService] stage %s failed: %v", name, err)
		return errors.Wrapf(err, "stage %s failed", name)
	}
	s.logger.Debug("[ReportService] stage %s finished in %s", name, time.Since(start))
	return err
}
