package glm

import (
	"math"
	"testing"

	"coursemetry/domain/dataset"
	domglm "coursemetry/domain/glm"
	"coursemetry/internal/errors"
	"coursemetry/internal/testkit"
)

func syntheticDataset(rows int, seed int64) *dataset.Dataset {
	cfg := testkit.DefaultEngagementConfig()
	cfg.RecordCount = rows
	cfg.Seed = seed
	gen := testkit.NewEngagementDataGenerator(cfg, testkit.DefaultGeneratingCoefficients())
	return gen.Generate()
}

func numericFormula() domglm.Formula {
	return domglm.Formula{
		Target: dataset.ColCourseCompletion,
		Predictors: []string{
			dataset.ColTimeSpent,
			dataset.ColVideosWatched,
			dataset.ColQuizzesTaken,
			dataset.ColQuizScores,
			dataset.ColCompletionRate,
			dataset.ColDeviceType,
		},
	}
}

func TestFit_Deterministic(t *testing.T) {
	ds := syntheticDataset(800, 7)
	fitter := NewFitter()

	first, err := fitter.Fit(ds, numericFormula())
	if err != nil {
		t.Fatalf("first fit failed: %v", err)
	}
	second, err := fitter.Fit(ds, numericFormula())
	if err != nil {
		t.Fatalf("second fit failed: %v", err)
	}

	if len(first.Coefficients) != len(second.Coefficients) {
		t.Fatalf("coefficient counts differ: %d vs %d", len(first.Coefficients), len(second.Coefficients))
	}
	for i := range first.Coefficients {
		a, b := first.Coefficients[i].Estimate, second.Coefficients[i].Estimate
		if math.Abs(a-b) > 1e-12 {
			t.Errorf("coefficient %s not deterministic: %v vs %v", first.Coefficients[i].Name, a, b)
		}
	}
	if first.AIC != second.AIC {
		t.Errorf("AIC not deterministic: %v vs %v", first.AIC, second.AIC)
	}
}

func TestFit_InterceptOnlyBaseRate(t *testing.T) {
	ds := syntheticDataset(600, 11)
	fitter := NewFitter()

	model, err := fitter.Fit(ds, domglm.Formula{Target: dataset.ColCourseCompletion})
	if err != nil {
		t.Fatalf("intercept-only fit failed: %v", err)
	}
	if len(model.Coefficients) != 1 {
		t.Fatalf("expected a single intercept coefficient, got %d", len(model.Coefficients))
	}

	labels := ds.Labels()
	positives := 0.0
	for _, y := range labels {
		positives += y
	}
	baseRate := positives / float64(len(labels))

	probs := Predict(model, ds)
	for i, p := range probs {
		if math.Abs(p-baseRate) > 1e-6 {
			t.Fatalf("record %d: intercept-only probability %f differs from base rate %f", i, p, baseRate)
		}
	}

	// The intercept-only residual deviance is the null deviance.
	if math.Abs(model.ResidualDeviance-model.NullDeviance) > 1e-6 {
		t.Errorf("intercept-only residual deviance %f differs from null deviance %f",
			model.ResidualDeviance, model.NullDeviance)
	}
}

func TestFit_RecoversGeneratingCoefficients(t *testing.T) {
	cfg := testkit.DefaultEngagementConfig()
	cfg.RecordCount = 5000
	cfg.Seed = 1234
	coefs := testkit.DefaultGeneratingCoefficients()
	ds := testkit.NewEngagementDataGenerator(cfg, coefs).Generate()

	model, err := NewFitter().Fit(ds, numericFormula())
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	want := map[string]float64{
		"(Intercept)":             coefs.Intercept,
		dataset.ColTimeSpent:      coefs.TimeSpent,
		dataset.ColVideosWatched:  coefs.VideosWatched,
		dataset.ColQuizzesTaken:   coefs.QuizzesTaken,
		dataset.ColQuizScores:     coefs.QuizScores,
		dataset.ColCompletionRate: coefs.CompletionRate,
		dataset.ColDeviceType:     coefs.DeviceType,
	}
	tolerance := map[string]float64{
		"(Intercept)":         1.5,
		dataset.ColDeviceType: 0.5,
	}

	for name, truth := range want {
		c, ok := model.Coefficient(name)
		if !ok {
			t.Fatalf("missing coefficient %s", name)
		}
		tol, found := tolerance[name]
		if !found {
			tol = 0.1
		}
		if math.Abs(c.Estimate-truth) > tol {
			t.Errorf("coefficient %s: recovered %f, generating value %f (tolerance %f)",
				name, c.Estimate, truth, tol)
		}
	}
}

func TestFit_ModelStatisticsConsistent(t *testing.T) {
	ds := syntheticDataset(700, 3)
	model, err := NewFitter().Fit(ds, numericFormula())
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	k := float64(model.DegreesOfFreedom())
	if math.Abs(model.AIC-(model.ResidualDeviance+2*k)) > 1e-9 {
		t.Errorf("AIC inconsistent with deviance: %f vs %f", model.AIC, model.ResidualDeviance+2*k)
	}
	if math.Abs(model.BIC-(model.ResidualDeviance+k*math.Log(float64(model.N)))) > 1e-9 {
		t.Errorf("BIC inconsistent with deviance")
	}
	if model.ResidualDeviance > model.NullDeviance {
		t.Errorf("residual deviance %f exceeds null deviance %f", model.ResidualDeviance, model.NullDeviance)
	}
	for _, c := range model.Coefficients {
		if c.PValue < 0 || c.PValue > 1 {
			t.Errorf("coefficient %s: p-value %f out of range", c.Name, c.PValue)
		}
		if c.StdErr <= 0 {
			t.Errorf("coefficient %s: non-positive standard error %f", c.Name, c.StdErr)
		}
	}
	if model.Iterations > NewFitter().MaxIterations {
		t.Errorf("iterations %d exceed cap", model.Iterations)
	}
}

func TestFit_CategoricalPredictorExpansion(t *testing.T) {
	ds := syntheticDataset(500, 21)
	model, err := NewFitter().Fit(ds, domglm.Formula{
		Target:     dataset.ColCourseCompletion,
		Predictors: []string{dataset.ColCourseCategory, dataset.ColQuizScores},
	})
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	// Five categories expand to four treatment dummies against the first
	// sorted level, plus the intercept and the numeric term.
	levels := ds.Levels(dataset.ColCourseCategory)
	expected := 1 + (len(levels) - 1) + 1
	if model.DegreesOfFreedom() != expected {
		t.Errorf("expected %d parameters, got %d", expected, model.DegreesOfFreedom())
	}
	if _, ok := model.Coefficient(dataset.ColCourseCategory + levels[0]); ok {
		t.Errorf("reference level %s must not have a dummy", levels[0])
	}
}

func TestFit_SingleClassTargetIsSeparation(t *testing.T) {
	ds := syntheticDataset(100, 5)
	for i := range ds.Records {
		ds.Records[i].CourseCompletion = 1
	}

	_, err := NewFitter().Fit(ds, numericFormula())
	if err == nil {
		t.Fatal("expected an error for single-class target")
	}
	if errors.GetCode(err) != errors.CodeSeparation {
		t.Errorf("expected SEPARATION, got %s", errors.GetCode(err))
	}
}

func TestFit_PerfectSeparationDetected(t *testing.T) {
	// Build a dataset where QuizScores alone perfectly separates the target.
	ds := syntheticDataset(200, 17)
	for i := range ds.Records {
		if ds.Records[i].QuizScores >= 65 {
			ds.Records[i].CourseCompletion = 1
		} else {
			ds.Records[i].CourseCompletion = 0
		}
	}

	_, err := NewFitter().Fit(ds, domglm.Formula{
		Target:     dataset.ColCourseCompletion,
		Predictors: []string{dataset.ColQuizScores},
	})
	if err == nil {
		t.Fatal("expected an error for perfectly separated data")
	}
	code := errors.GetCode(err)
	if code != errors.CodeSeparation && code != errors.CodeNonConvergence {
		t.Errorf("expected SEPARATION or NON_CONVERGENCE, got %s", code)
	}
}

func TestPredict_MissingPredictorYieldsNaN(t *testing.T) {
	ds := syntheticDataset(50, 9)
	model, err := NewFitter().Fit(ds, numericFormula())
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	ds.Records[0].QuizScores = math.NaN()
	probs := Predict(model, ds)
	if !math.IsNaN(probs[0]) {
		t.Errorf("expected NaN probability for record with missing predictor, got %f", probs[0])
	}
	if math.IsNaN(probs[1]) {
		t.Errorf("expected a probability for complete record, got NaN")
	}
}
