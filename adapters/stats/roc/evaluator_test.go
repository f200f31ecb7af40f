package roc

import (
	"math"
	"math/rand"
	"testing"

	statglm "coursemetry/adapters/stats/glm"
	"coursemetry/domain/dataset"
	domglm "coursemetry/domain/glm"
	"coursemetry/internal/errors"
	"coursemetry/internal/testkit"
)

func TestBuildCurve_PerfectSeparatorAUC(t *testing.T) {
	scores := []float64{0.9, 0.8, 0.7, 0.3, 0.2, 0.1}
	truth := []float64{1, 1, 1, 0, 0, 0}

	curve := buildCurve(scores, truth)
	if curve.AUC != 1.0 {
		t.Errorf("perfect separator: expected AUC exactly 1.0, got %v", curve.AUC)
	}
	if got := ConcordanceAUC(scores, truth); got != 1.0 {
		t.Errorf("perfect separator: expected concordance AUC exactly 1.0, got %v", got)
	}
}

func TestBuildCurve_ConstantScoresAUC(t *testing.T) {
	scores := []float64{0.4, 0.4, 0.4, 0.4, 0.4, 0.4}
	truth := []float64{1, 0, 1, 0, 1, 0}

	curve := buildCurve(scores, truth)
	if curve.AUC != 0.5 {
		t.Errorf("constant scores: expected AUC exactly 0.5, got %v", curve.AUC)
	}
	if got := ConcordanceAUC(scores, truth); got != 0.5 {
		t.Errorf("constant scores: expected concordance AUC exactly 0.5, got %v", got)
	}
}

func TestBuildCurve_TrapezoidMatchesConcordance(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	n := 500
	scores := make([]float64, n)
	truth := make([]float64, n)
	for i := 0; i < n; i++ {
		// Quantized scores force plenty of ties.
		scores[i] = math.Round(rng.Float64()*20) / 20
		if rng.Float64() < 0.3+0.4*scores[i] {
			truth[i] = 1
		}
	}

	curve := buildCurve(scores, truth)
	concordance := ConcordanceAUC(scores, truth)
	if math.Abs(curve.AUC-concordance) > 1e-6 {
		t.Errorf("trapezoid AUC %v differs from concordance AUC %v", curve.AUC, concordance)
	}
}

func TestBuildCurve_ThresholdOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	scores := make([]float64, 200)
	truth := make([]float64, 200)
	for i := range scores {
		scores[i] = rng.Float64()
		if rng.Float64() < scores[i] {
			truth[i] = 1
		}
	}

	curve := buildCurve(scores, truth)
	first := curve.Points[0]
	if first.FPR != 1 || first.TPR != 1 {
		t.Errorf("curve must start at (1,1), got (%v,%v)", first.FPR, first.TPR)
	}
	last := curve.Points[len(curve.Points)-1]
	if last.FPR != 0 || last.TPR != 0 {
		t.Errorf("curve must end at (0,0), got (%v,%v)", last.FPR, last.TPR)
	}
	if !math.IsInf(last.Threshold, 1) {
		t.Errorf("final threshold must be +Inf, got %v", last.Threshold)
	}
	for i := 1; i < len(curve.Points); i++ {
		if curve.Points[i].Threshold <= curve.Points[i-1].Threshold {
			t.Errorf("thresholds must strictly increase, point %d", i)
		}
		if curve.Points[i].FPR > curve.Points[i-1].FPR {
			t.Errorf("FPR increases at point %d", i)
		}
		if curve.Points[i].TPR > curve.Points[i-1].TPR {
			t.Errorf("TPR increases at point %d", i)
		}
	}
}

func TestConfusionAt_CountsSumToTotal(t *testing.T) {
	scores := []float64{0.9, 0.6, 0.4, 0.2, 0.8, 0.1}
	truth := []float64{1, 0, 1, 0, 1, 0}

	cm := confusionAt(scores, truth, 0.5)
	if cm.Total() != len(scores) {
		t.Errorf("confusion counts sum to %d, want %d", cm.Total(), len(scores))
	}
	if cm.TruePositives != 2 || cm.FalsePositives != 1 {
		t.Errorf("unexpected counts: TP=%d FP=%d TN=%d FN=%d",
			cm.TruePositives, cm.FalsePositives, cm.TrueNegatives, cm.FalseNegatives)
	}
}

func TestEvaluate_DegenerateLabels(t *testing.T) {
	cfg := testkit.DefaultEngagementConfig()
	cfg.RecordCount = 100
	ds := testkit.NewEngagementDataGenerator(cfg, testkit.DefaultGeneratingCoefficients()).Generate()

	model, err := statglm.NewFitter().Fit(ds, domglm.Formula{
		Target:     dataset.ColCourseCompletion,
		Predictors: []string{dataset.ColQuizScores},
	})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	for i := range ds.Records {
		ds.Records[i].CourseCompletion = 1
	}

	_, err = NewEvaluator(DefaultThreshold).Evaluate(model, ds)
	if err == nil {
		t.Fatal("expected an error for single-class labels")
	}
	if errors.GetCode(err) != errors.CodeDegenerateLabels {
		t.Errorf("expected DEGENERATE_LABELS, got %s", errors.GetCode(err))
	}
}

func TestEvaluate_EndToEnd(t *testing.T) {
	cfg := testkit.DefaultEngagementConfig()
	cfg.RecordCount = 1000
	cfg.Seed = 77
	ds := testkit.NewEngagementDataGenerator(cfg, testkit.DefaultGeneratingCoefficients()).Generate()

	model, err := statglm.NewFitter().Fit(ds, domglm.Formula{
		Target:     dataset.ColCourseCompletion,
		Predictors: dataset.PredictorColumns,
	})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	eval, err := NewEvaluator(DefaultThreshold).Evaluate(model, ds)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	if len(eval.Probabilities) != ds.Len() {
		t.Errorf("expected %d probabilities, got %d", ds.Len(), len(eval.Probabilities))
	}
	for i, p := range eval.Probabilities {
		if math.IsNaN(p) {
			continue
		}
		if p < 0 || p > 1 {
			t.Fatalf("record %d: probability %f out of range", i, p)
		}
	}

	if eval.Confusion.Total() != ds.Len() {
		t.Errorf("confusion counts sum to %d, want %d", eval.Confusion.Total(), ds.Len())
	}
	if eval.Curve.AUC <= 0.5 {
		t.Errorf("informative model should discriminate: AUC %f", eval.Curve.AUC)
	}
	if math.Abs(eval.Curve.AUC-eval.ConcordanceAUC) > 1e-6 {
		t.Errorf("trapezoid AUC %f differs from concordance AUC %f", eval.Curve.AUC, eval.ConcordanceAUC)
	}
}
