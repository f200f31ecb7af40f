package glm

import (
	"fmt"
	"sort"
	"strings"
)

// Formula describes the model structure: a binary target regressed on an
// ordered list of predictor columns.
type Formula struct {
	Target     string   `json:"target"`
	Predictors []string `json:"predictors"`
}

// String renders the formula in the conventional "target ~ p1 + p2" notation.
func (f Formula) String() string {
	if len(f.Predictors) == 0 {
		return fmt.Sprintf("%s ~ 1", f.Target)
	}
	return fmt.Sprintf("%s ~ %s", f.Target, strings.Join(f.Predictors, " + "))
}

// Equal reports whether two formulas name the same predictor set, ignoring
// order.
func (f Formula) Equal(other Formula) bool {
	if f.Target != other.Target || len(f.Predictors) != len(other.Predictors) {
		return false
	}
	a := append([]string(nil), f.Predictors...)
	b := append([]string(nil), other.Predictors...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Coefficient is one estimated model term on the log-odds scale.
// INVARIANTS:
// - StdErr > 0 for a converged, non-separated fit
// - PValue in [0, 1]
type Coefficient struct {
	Name     string  `json:"name"` // "(Intercept)" or predictor/dummy name
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_err"`
	ZValue   float64 `json:"z_value"`
	PValue   float64 `json:"p_value"`
}

// FittedModel is the immutable result of one maximum-likelihood fit. A new
// predictor subset always yields a new FittedModel; nothing mutates after
// fitting.
type FittedModel struct {
	Formula          Formula       `json:"formula"`
	Coefficients     []Coefficient `json:"coefficients"` // intercept first
	NullDeviance     float64       `json:"null_deviance"`
	ResidualDeviance float64       `json:"residual_deviance"`
	LogLikelihood    float64       `json:"log_likelihood"`
	AIC              float64       `json:"aic"`
	BIC              float64       `json:"bic"`
	N                int           `json:"n"`          // observations used
	Iterations       int           `json:"iterations"` // IRLS iterations taken
	Converged        bool          `json:"converged"`
}

// DegreesOfFreedom is the number of estimated parameters (intercept included).
func (m *FittedModel) DegreesOfFreedom() int {
	return len(m.Coefficients)
}

// Coefficient looks up a term by name.
func (m *FittedModel) Coefficient(name string) (Coefficient, bool) {
	for _, c := range m.Coefficients {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// ComparisonRow is one line of a ranked model comparison table.
type ComparisonRow struct {
	Formula       string  `json:"formula"`
	DF            int     `json:"df"`
	LogLikelihood float64 `json:"log_likelihood"`
	AIC           float64 `json:"aic"`
	BIC           float64 `json:"bic"`
}
