package glm

import (
	"fmt"
	"math"

	"coursemetry/domain/dataset"
	domglm "coursemetry/domain/glm"
	"coursemetry/internal"
	"coursemetry/internal/errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// Standard GLM convergence conventions.
	defaultMaxIterations = 25
	defaultTolerance     = 1e-8

	// Separation heuristics: saturated linear predictors or runaway
	// coefficients mean the likelihood has no finite maximum.
	separationEtaBound  = 30.0
	separationCoefBound = 1e4
	separationDevFloor  = 1e-6

	weightFloor = 1e-10
)

// Fitter estimates binomial logistic regressions by iteratively reweighted
// least squares. A Fitter is stateless; Fit is a pure function of its inputs.
type Fitter struct {
	MaxIterations int
	Tolerance     float64
	logger        *internal.Logger
}

// NewFitter creates a fitter with standard convergence settings.
func NewFitter() *Fitter {
	return &Fitter{
		MaxIterations: defaultMaxIterations,
		Tolerance:     defaultTolerance,
		logger:        internal.DefaultLogger,
	}
}

// Fit estimates the model named by formula over the complete cases of ds.
// Coefficients are log-odds effects. Categorical predictors expand to
// treatment-coded dummies against the first (sorted) level.
func (f *Fitter) Fit(ds *dataset.Dataset, formula domglm.Formula) (*domglm.FittedModel, error) {
	design, err := buildDesign(ds, formula)
	if err != nil {
		return nil, err
	}
	if len(design.Y) == 0 {
		return nil, errors.InvalidInput("no complete cases to fit")
	}
	n, p := design.X.Dims()
	if n <= p {
		return nil, errors.InvalidInput(
			fmt.Sprintf("cannot fit %d parameters on %d observations", p, n))
	}

	positives := 0
	for _, yi := range design.Y {
		if yi == 1 {
			positives++
		}
	}
	if positives == 0 || positives == n {
		// The MLE for the intercept is infinite when only one class is
		// present; surface it as separation rather than grinding through
		// the iteration cap.
		return nil, errors.Separation("target column contains a single class")
	}

	beta := make([]float64, p)
	eta := make([]float64, n)
	w := make([]float64, n)
	z := make([]float64, n)

	deviance := math.Inf(1)
	converged := false
	iterations := 0
	var cov mat.SymDense

	for iter := 1; iter <= f.MaxIterations; iter++ {
		iterations = iter

		for i := 0; i < n; i++ {
			mu := invLogit(eta[i])
			wi := mu * (1 - mu)
			if wi < weightFloor {
				wi = weightFloor
			}
			w[i] = wi
			z[i] = eta[i] + (design.Y[i]-mu)/wi
		}

		xtwx, xtwz := weightedNormalEquations(design.X, w, z)

		var chol mat.Cholesky
		if ok := chol.Factorize(xtwx); !ok {
			return nil, errors.Separation(
				"weighted information matrix is singular (collinear or separating predictors)")
		}

		solution := mat.NewVecDense(p, nil)
		if err := chol.SolveVecTo(solution, mat.NewVecDense(p, xtwz)); err != nil {
			return nil, errors.Wrap(err, "IRLS solve failed")
		}
		copy(beta, solution.RawVector().Data)

		etaVec := mat.NewVecDense(n, eta)
		etaVec.MulVec(design.X, mat.NewVecDense(p, beta))

		if diverging(beta, eta) {
			return nil, errors.Separation(
				"perfect separation detected: coefficients diverging, standard errors exploding")
		}

		newDeviance := binomialDeviance(design.Y, eta)
		relChange := math.Abs(newDeviance-deviance) / (math.Abs(newDeviance) + 0.1)
		deviance = newDeviance
		if relChange < f.Tolerance {
			// A residual deviance at machine zero means every record is
			// fitted exactly, which only a separating predictor achieves.
			if deviance < separationDevFloor {
				return nil, errors.Separation(
					"perfect separation detected: residual deviance collapsed to zero")
			}
			converged = true
			if err := chol.InverseTo(&cov); err != nil {
				return nil, errors.Wrap(err, "covariance inversion failed")
			}
			break
		}
	}

	if !converged {
		return nil, errors.NonConvergence(f.MaxIterations)
	}

	f.logger.Debug("[Fitter] %s converged in %d iterations (deviance %.4f)",
		formula.String(), iterations, deviance)

	normal := distuv.Normal{Mu: 0, Sigma: 1}
	coefficients := make([]domglm.Coefficient, p)
	for j := 0; j < p; j++ {
		se := math.Sqrt(cov.At(j, j))
		zval := beta[j] / se
		coefficients[j] = domglm.Coefficient{
			Name:     design.Names[j],
			Estimate: beta[j],
			StdErr:   se,
			ZValue:   zval,
			PValue:   2 * normal.Survival(math.Abs(zval)),
		}
	}

	k := float64(p)
	return &domglm.FittedModel{
		Formula:          formula,
		Coefficients:     coefficients,
		NullDeviance:     nullBinomialDeviance(design.Y),
		ResidualDeviance: deviance,
		LogLikelihood:    -deviance / 2,
		AIC:              deviance + 2*k,
		BIC:              deviance + k*math.Log(float64(n)),
		N:                n,
		Iterations:       iterations,
		Converged:        true,
	}, nil
}

// Predict returns the inverse-logit probabilities of model applied to ds,
// one per record in input order. Records with a missing predictor value get
// NaN.
func Predict(model *domglm.FittedModel, ds *dataset.Dataset) []float64 {
	probs := make([]float64, ds.Len())
	rows := designRows(ds, model)
	for i, row := range rows {
		if row == nil || len(row) != len(model.Coefficients) {
			probs[i] = math.NaN()
			continue
		}
		eta := 0.0
		for j, x := range row {
			eta += model.Coefficients[j].Estimate * x
		}
		probs[i] = invLogit(eta)
	}
	return probs
}

// invLogit is the logistic inverse link.
func invLogit(eta float64) float64 {
	if eta > 0 {
		return 1 / (1 + math.Exp(-eta))
	}
	e := math.Exp(eta)
	return e / (1 + e)
}

// binomialDeviance is -2 log-likelihood at the given linear predictors.
func binomialDeviance(y, eta []float64) float64 {
	dev := 0.0
	for i := range y {
		// 2*(log(1+exp(eta)) - y*eta), computed without overflow
		dev += 2 * (log1pExp(eta[i]) - y[i]*eta[i])
	}
	return dev
}

// nullBinomialDeviance is the deviance of the intercept-only model, whose
// fitted probability is the positive-class base rate for every record.
func nullBinomialDeviance(y []float64) float64 {
	n := float64(len(y))
	pos := 0.0
	for _, yi := range y {
		pos += yi
	}
	rate := pos / n
	if rate == 0 || rate == 1 {
		return 0
	}
	return -2 * (pos*math.Log(rate) + (n-pos)*math.Log(1-rate))
}

// log1pExp computes log(1+exp(x)) stably.
func log1pExp(x float64) float64 {
	if x > 35 {
		return x
	}
	return math.Log1p(math.Exp(x))
}

// weightedNormalEquations forms XᵀWX and XᵀWz without materializing W.
func weightedNormalEquations(x *mat.Dense, w, z []float64) (*mat.SymDense, []float64) {
	n, p := x.Dims()
	xtwx := mat.NewSymDense(p, nil)
	xtwz := make([]float64, p)

	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		wi := w[i]
		wz := wi * z[i]
		for j := 0; j < p; j++ {
			xtwz[j] += wz * row[j]
			for k := j; k < p; k++ {
				xtwx.SetSym(j, k, xtwx.At(j, k)+wi*row[j]*row[k])
			}
		}
	}
	return xtwx, xtwz
}

// diverging detects the separation signature: every linear predictor
// saturated, or a coefficient past any plausible log-odds magnitude.
func diverging(beta, eta []float64) bool {
	for _, b := range beta {
		if math.Abs(b) > separationCoefBound {
			return true
		}
	}
	if len(eta) == 0 {
		return false
	}
	for _, e := range eta {
		if math.Abs(e) <= separationEtaBound {
			return false
		}
	}
	return true
}
