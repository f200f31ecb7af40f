package profiling

import (
	"math"

	"coursemetry/domain/dataset"
)

// BuildHistogram bins the non-missing values of one numeric column into
// fixed-width bins. binCount <= 0 selects Sturges' rule. The final bin is
// closed on the right so the maximum lands in it.
func BuildHistogram(column string, values []float64, binCount int) dataset.Histogram {
	observed := dropMissing(values)
	hist := dataset.Histogram{Column: column}
	if len(observed) == 0 {
		return hist
	}

	if binCount <= 0 {
		binCount = sturgesBins(len(observed))
	}

	min, max := observed[0], observed[0]
	for _, v := range observed {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if min == max {
		hist.Bins = []dataset.HistogramBin{{Lower: min, Upper: max, Count: len(observed)}}
		return hist
	}

	width := (max - min) / float64(binCount)
	bins := make([]dataset.HistogramBin, binCount)
	for i := range bins {
		bins[i].Lower = min + float64(i)*width
		bins[i].Upper = min + float64(i+1)*width
	}
	bins[binCount-1].Upper = max

	for _, v := range observed {
		idx := int((v - min) / width)
		if idx >= binCount {
			idx = binCount - 1
		}
		bins[idx].Count++
	}

	hist.Bins = bins
	return hist
}

// DatasetHistograms builds one histogram per numeric, non-binary column.
func DatasetHistograms(ds *dataset.Dataset, binCount int) []dataset.Histogram {
	var histograms []dataset.Histogram
	for _, column := range dataset.PredictorColumns {
		if ds.ColumnTypeOf(column) != dataset.TypeNumeric {
			continue
		}
		if column == dataset.ColDeviceType {
			continue // binary indicator renders as a bar pair, not a histogram
		}
		histograms = append(histograms, BuildHistogram(column, ds.Column(column), binCount))
	}
	return histograms
}

// sturgesBins is Sturges' rule: ceil(log2 n) + 1.
func sturgesBins(n int) int {
	if n <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}
