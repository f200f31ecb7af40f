package roc

import (
	"math"
	"sort"

	statglm "coursemetry/adapters/stats/glm"
	"coursemetry/domain/dataset"
	"coursemetry/domain/evaluation"
	domglm "coursemetry/domain/glm"
	"coursemetry/internal/errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// DefaultThreshold is the conventional classification cutoff.
const DefaultThreshold = 0.5

// Evaluator scores a fitted model against a labeled record collection.
type Evaluator struct {
	Threshold float64
}

// NewEvaluator creates an evaluator with the given classification threshold.
func NewEvaluator(threshold float64) *Evaluator {
	return &Evaluator{Threshold: threshold}
}

// Evaluate computes per-record probabilities, the confusion matrix at the
// evaluator threshold, the ROC curve over the distinct predicted
// probabilities, and both AUC formulations.
func (e *Evaluator) Evaluate(model *domglm.FittedModel, ds *dataset.Dataset) (*evaluation.Evaluation, error) {
	probs := statglm.Predict(model, ds)
	labels := ds.Labels()

	scores, truth := completePairs(probs, labels)
	if err := checkLabels(truth); err != nil {
		return nil, err
	}

	curve := buildCurve(scores, truth)

	return &evaluation.Evaluation{
		Probabilities:  probs,
		Confusion:      confusionAt(scores, truth, e.Threshold),
		Curve:          curve,
		ConcordanceAUC: ConcordanceAUC(scores, truth),
	}, nil
}

// completePairs drops records whose probability or label is missing.
func completePairs(probs, labels []float64) (scores, truth []float64) {
	for i := range probs {
		if math.IsNaN(probs[i]) || math.IsNaN(labels[i]) {
			continue
		}
		scores = append(scores, probs[i])
		truth = append(truth, labels[i])
	}
	return scores, truth
}

// checkLabels rejects single-class label columns, for which ROC and AUC are
// undefined.
func checkLabels(truth []float64) error {
	if len(truth) == 0 {
		return errors.DegenerateLabels("no labeled records to evaluate")
	}
	first := truth[0]
	for _, t := range truth[1:] {
		if t != first {
			return nil
		}
	}
	return errors.DegenerateLabels("label column contains a single class; ROC/AUC undefined")
}

// confusionAt counts classification outcomes with predicted positive defined
// as score >= threshold.
func confusionAt(scores, truth []float64, threshold float64) evaluation.ConfusionMatrix {
	cm := evaluation.ConfusionMatrix{Threshold: threshold}
	for i, s := range scores {
		predictedPositive := s >= threshold
		actualPositive := truth[i] == 1
		switch {
		case predictedPositive && actualPositive:
			cm.TruePositives++
		case predictedPositive && !actualPositive:
			cm.FalsePositives++
		case !predictedPositive && actualPositive:
			cm.FalseNegatives++
		default:
			cm.TrueNegatives++
		}
	}
	return cm
}

// buildCurve runs the threshold sweep with stat.ROC: one point per distinct
// score plus the +Inf sentinel, ordered by increasing threshold, so the curve
// walks from the (1,1) corner down to (0,0). Tied scores collapse into a
// single step, which is what makes the trapezoid integral agree with the
// tie-corrected concordance statistic.
func buildCurve(scores, truth []float64) evaluation.ROCCurve {
	type scored struct {
		score float64
		label float64
	}
	pairs := make([]scored, len(scores))
	for i := range scores {
		pairs[i] = scored{score: scores[i], label: truth[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })

	y := make([]float64, len(pairs))
	classes := make([]bool, len(pairs))
	for i, p := range pairs {
		y[i] = p.score
		classes[i] = p.label == 1
	}
	tpr, fpr, thresh := stat.ROC(nil, y, classes, nil)

	points := make([]evaluation.ROCPoint, len(thresh))
	for i := range thresh {
		points[i] = evaluation.ROCPoint{Threshold: thresh[i], FPR: fpr[i], TPR: tpr[i]}
	}

	// Trapezoidal wants ascending abscissae; the sweep emits FPR from 1 down
	// to 0.
	ascFPR := append([]float64(nil), fpr...)
	ascTPR := append([]float64(nil), tpr...)
	floats.Reverse(ascFPR)
	floats.Reverse(ascTPR)

	return evaluation.ROCCurve{
		Points: points,
		AUC:    integrate.Trapezoidal(ascFPR, ascTPR),
	}
}

// ConcordanceAUC computes AUC as the probability that a randomly chosen
// positive is scored above a randomly chosen negative, with half credit for
// ties (the Mann-Whitney formulation). Agrees with the trapezoidal integral
// to floating-point tolerance.
func ConcordanceAUC(scores, truth []float64) float64 {
	concordant := 0.0
	pairs := 0
	for i := range scores {
		if truth[i] != 1 {
			continue
		}
		for j := range scores {
			if truth[j] == 1 {
				continue
			}
			pairs++
			switch {
			case scores[i] > scores[j]:
				concordant++
			case scores[i] == scores[j]:
				concordant += 0.5
			}
		}
	}
	if pairs == 0 {
		return math.NaN()
	}
	return concordant / float64(pairs)
}
