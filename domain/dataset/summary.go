package dataset

// NumericSummary holds descriptive statistics for one numeric column.
// INVARIANT: Min <= Q1 <= Median <= Q3 <= Max whenever Count > 0.
type NumericSummary struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"` // non-missing observations
	Missing  int     `json:"missing"`
	Min      float64 `json:"min"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Mean     float64 `json:"mean"`
	Q3       float64 `json:"q3"`
	Max      float64 `json:"max"`
	StdDev   float64 `json:"std_dev"`
	Skewness float64 `json:"skewness"`
}

// LevelCount is one categorical level with its frequency.
type LevelCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// CategoricalSummary holds level counts for one categorical column, sorted by
// descending count then level name.
type CategoricalSummary struct {
	Column  string       `json:"column"`
	Missing int          `json:"missing"`
	Levels  []LevelCount `json:"levels"`
}

// HistogramBin is one bin of a fixed-width histogram over [Lower, Upper).
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is the binned distribution of one numeric column.
type Histogram struct {
	Column string         `json:"column"`
	Bins   []HistogramBin `json:"bins"`
}

// TableSummary is the whole-table descriptive output: one entry per column
// plus the global missing-cell count.
type TableSummary struct {
	Rows         int                  `json:"rows"`
	Columns      int                  `json:"columns"`
	Numeric      []NumericSummary     `json:"numeric"`
	Categorical  []CategoricalSummary `json:"categorical"`
	MissingCells int                  `json:"missing_cells"`
}
