package glm

import (
	"fmt"
	"math"

	"coursemetry/domain/dataset"
	domglm "coursemetry/domain/glm"
	"coursemetry/internal/errors"

	"gonum.org/v1/gonum/mat"
)

// Design is a fully expanded model matrix over the complete cases of a
// dataset: intercept column first, then numeric predictors and treatment-coded
// dummies in formula order.
type Design struct {
	X     *mat.Dense
	Y     []float64
	Names []string // one per column of X, "(Intercept)" first
}

// term expands one predictor into its design columns for a single record.
type term struct {
	names  []string
	expand func(r dataset.Record) ([]float64, bool) // false when the cell is missing
}

// buildDesign assembles the design matrix for the formula, dropping records
// with a missing target or any missing predictor cell (complete-case
// analysis).
func buildDesign(ds *dataset.Dataset, formula domglm.Formula) (*Design, error) {
	if formula.Target != dataset.ColCourseCompletion {
		return nil, errors.InvalidInput(
			fmt.Sprintf("unsupported target column: %s", formula.Target))
	}

	terms, err := expandTerms(ds, formula.Predictors)
	if err != nil {
		return nil, err
	}

	names := []string{"(Intercept)"}
	for _, t := range terms {
		names = append(names, t.names...)
	}
	p := len(names)

	var rows []float64
	var y []float64
	for _, rec := range ds.Records {
		if math.IsNaN(rec.CourseCompletion) {
			continue
		}
		row, ok := expandRow(rec, terms, p)
		if !ok {
			continue
		}
		rows = append(rows, row...)
		y = append(y, rec.CourseCompletion)
	}

	n := len(y)
	if n == 0 {
		return &Design{X: mat.NewDense(1, p, make([]float64, p)), Y: nil, Names: names}, nil
	}

	return &Design{
		X:     mat.NewDense(n, p, rows),
		Y:     y,
		Names: names,
	}, nil
}

// designRows re-expands the model's predictors over ds for prediction. A nil
// row marks a record with a missing predictor cell.
func designRows(ds *dataset.Dataset, model *domglm.FittedModel) [][]float64 {
	terms, err := expandTerms(ds, model.Formula.Predictors)
	if err != nil {
		return make([][]float64, ds.Len())
	}
	p := model.DegreesOfFreedom()

	out := make([][]float64, ds.Len())
	for i, rec := range ds.Records {
		if row, ok := expandRow(rec, terms, p); ok {
			out[i] = row
		}
	}
	return out
}

func expandRow(rec dataset.Record, terms []term, p int) ([]float64, bool) {
	row := make([]float64, 0, p)
	row = append(row, 1) // intercept
	for _, t := range terms {
		cols, ok := t.expand(rec)
		if !ok {
			return nil, false
		}
		row = append(row, cols...)
	}
	return row, true
}

func expandTerms(ds *dataset.Dataset, predictors []string) ([]term, error) {
	terms := make([]term, 0, len(predictors))
	for _, name := range predictors {
		switch ds.ColumnTypeOf(name) {
		case dataset.TypeNumeric:
			t, err := numericTerm(name)
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		case dataset.TypeCategorical:
			t, err := categoricalTerm(ds, name)
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		}
	}
	return terms, nil
}

func numericTerm(name string) (term, error) {
	get, err := numericGetter(name)
	if err != nil {
		return term{}, err
	}
	return term{
		names: []string{name},
		expand: func(r dataset.Record) ([]float64, bool) {
			v := get(r)
			if math.IsNaN(v) {
				return nil, false
			}
			return []float64{v}, true
		},
	}, nil
}

// categoricalTerm treatment-codes a categorical column: the first sorted level
// is the reference, every other level gets an indicator dummy.
func categoricalTerm(ds *dataset.Dataset, name string) (term, error) {
	get, err := categoricalGetter(name)
	if err != nil {
		return term{}, err
	}

	levels := ds.Levels(name)
	dummies := levels
	if len(dummies) > 0 {
		dummies = dummies[1:]
	}

	names := make([]string, len(dummies))
	for i, lvl := range dummies {
		names[i] = name + lvl
	}

	return term{
		names: names,
		expand: func(r dataset.Record) ([]float64, bool) {
			value := get(r)
			if value == "" {
				return nil, false
			}
			cols := make([]float64, len(dummies))
			for i, lvl := range dummies {
				if value == lvl {
					cols[i] = 1
				}
			}
			return cols, true
		},
	}, nil
}

func categoricalGetter(name string) (func(dataset.Record) string, error) {
	switch name {
	case dataset.ColCourseCategory:
		return func(r dataset.Record) string { return r.CourseCategory }, nil
	case dataset.ColUserID:
		return func(r dataset.Record) string { return r.UserID }, nil
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unknown categorical column: %s", name))
}

func numericGetter(name string) (func(dataset.Record) float64, error) {
	switch name {
	case dataset.ColTimeSpent:
		return func(r dataset.Record) float64 { return r.TimeSpent }, nil
	case dataset.ColVideosWatched:
		return func(r dataset.Record) float64 { return r.VideosWatched }, nil
	case dataset.ColQuizzesTaken:
		return func(r dataset.Record) float64 { return r.QuizzesTaken }, nil
	case dataset.ColQuizScores:
		return func(r dataset.Record) float64 { return r.QuizScores }, nil
	case dataset.ColCompletionRate:
		return func(r dataset.Record) float64 { return r.CompletionRate }, nil
	case dataset.ColDeviceType:
		return func(r dataset.Record) float64 { return r.DeviceType }, nil
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unknown predictor column: %s", name))
}
