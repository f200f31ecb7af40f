package evaluation

// ROCPoint is one point of the ROC curve: the (FPR, TPR) pair obtained by
// classifying at Threshold.
type ROCPoint struct {
	Threshold float64 `json:"threshold"`
	FPR       float64 `json:"fpr"`
	TPR       float64 `json:"tpr"`
}

// ROCCurve is the threshold sweep, ordered by increasing threshold: the curve
// starts at (1,1), ends at (0,0) under the +Inf sentinel, and FPR and TPR are
// non-increasing along it.
type ROCCurve struct {
	Points []ROCPoint `json:"points"`
	AUC    float64    `json:"auc"` // trapezoidal integral of the point sequence
}

// ConfusionMatrix holds classification counts at a single threshold.
type ConfusionMatrix struct {
	Threshold      float64 `json:"threshold"`
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	TrueNegatives  int     `json:"true_negatives"`
	FalseNegatives int     `json:"false_negatives"`
}

// Total is the number of classified records.
func (c ConfusionMatrix) Total() int {
	return c.TruePositives + c.FalsePositives + c.TrueNegatives + c.FalseNegatives
}

// Accuracy is the fraction of correct classifications.
func (c ConfusionMatrix) Accuracy() float64 {
	if c.Total() == 0 {
		return 0
	}
	return float64(c.TruePositives+c.TrueNegatives) / float64(c.Total())
}

// Sensitivity is the true-positive rate at the matrix threshold.
func (c ConfusionMatrix) Sensitivity() float64 {
	pos := c.TruePositives + c.FalseNegatives
	if pos == 0 {
		return 0
	}
	return float64(c.TruePositives) / float64(pos)
}

// Specificity is the true-negative rate at the matrix threshold.
func (c ConfusionMatrix) Specificity() float64 {
	neg := c.TrueNegatives + c.FalsePositives
	if neg == 0 {
		return 0
	}
	return float64(c.TrueNegatives) / float64(neg)
}

// Precision is the positive predictive value at the matrix threshold.
func (c ConfusionMatrix) Precision() float64 {
	pred := c.TruePositives + c.FalsePositives
	if pred == 0 {
		return 0
	}
	return float64(c.TruePositives) / float64(pred)
}

// Evaluation is the full discrimination assessment of one fitted model against
// a labeled record collection.
type Evaluation struct {
	Probabilities  []float64       `json:"probabilities"` // one per record, in input order
	Confusion      ConfusionMatrix `json:"confusion"`
	Curve          ROCCurve        `json:"curve"`
	ConcordanceAUC float64         `json:"concordance_auc"` // rank-based check on Curve.AUC
}
