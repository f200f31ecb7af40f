package profiling

import (
	"math"
	"sort"

	"coursemetry/domain/dataset"

	"github.com/montanaflynn/stats"
)

// Summarizer computes descriptive statistics over a loaded dataset
type Summarizer struct{}

// NewSummarizer creates a new descriptive summarizer
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize computes per-column statistics plus the global missing-cell count.
// An empty dataset reports zero counts and NaN statistics rather than failing.
func (s *Summarizer) Summarize(ds *dataset.Dataset) dataset.TableSummary {
	summary := dataset.TableSummary{
		Rows:         ds.Len(),
		Columns:      len(dataset.RequiredColumns),
		MissingCells: ds.MissingCells(),
	}

	for _, column := range dataset.RequiredColumns {
		if column == dataset.ColUserID {
			continue // identifier, not a statistic
		}
		switch ds.ColumnTypeOf(column) {
		case dataset.TypeNumeric:
			summary.Numeric = append(summary.Numeric, s.summarizeNumeric(column, ds.Column(column)))
		case dataset.TypeCategorical:
			summary.Categorical = append(summary.Categorical, s.summarizeCategorical(column, ds.Categorical(column)))
		}
	}

	return summary
}

// summarizeNumeric computes the five-number summary plus mean, standard
// deviation and skewness over the non-missing observations.
func (s *Summarizer) summarizeNumeric(column string, values []float64) dataset.NumericSummary {
	observed := dropMissing(values)

	result := dataset.NumericSummary{
		Column:  column,
		Count:   len(observed),
		Missing: len(values) - len(observed),
	}
	if len(observed) == 0 {
		result.Min = math.NaN()
		result.Q1 = math.NaN()
		result.Median = math.NaN()
		result.Mean = math.NaN()
		result.Q3 = math.NaN()
		result.Max = math.NaN()
		result.StdDev = math.NaN()
		result.Skewness = math.NaN()
		return result
	}

	result.Min, _ = stats.Min(observed)
	result.Q1, _ = stats.Percentile(observed, 25)
	result.Median, _ = stats.Median(observed)
	result.Mean, _ = stats.Mean(observed)
	result.Q3, _ = stats.Percentile(observed, 75)
	result.Max, _ = stats.Max(observed)
	result.StdDev, _ = stats.StandardDeviation(observed)
	result.Skewness = calculateSkewness(observed, result.Mean, result.StdDev)

	return result
}

// summarizeCategorical counts levels, sorted by descending frequency then name.
func (s *Summarizer) summarizeCategorical(column string, values []string) dataset.CategoricalSummary {
	counts := make(map[string]int)
	missing := 0
	for _, v := range values {
		if v == "" {
			missing++
			continue
		}
		counts[v]++
	}

	levels := make([]dataset.LevelCount, 0, len(counts))
	for level, count := range counts {
		levels = append(levels, dataset.LevelCount{Level: level, Count: count})
	}
	sort.Slice(levels, func(i, j int) bool {
		if levels[i].Count != levels[j].Count {
			return levels[i].Count > levels[j].Count
		}
		return levels[i].Level < levels[j].Level
	})

	return dataset.CategoricalSummary{
		Column:  column,
		Missing: missing,
		Levels:  levels,
	}
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson
// coefficient.
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// dropMissing filters NaN cells out of a numeric column.
func dropMissing(values []float64) []float64 {
	observed := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			observed = append(observed, v)
		}
	}
	return observed
}
