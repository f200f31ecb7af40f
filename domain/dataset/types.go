package dataset

import (
	"math"
	"sort"
)

// ColumnType classifies a column for downstream statistics
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
)

// Engagement dataset column names. The input file header must match exactly.
const (
	ColUserID           = "UserID"
	ColCourseCategory   = "CourseCategory"
	ColTimeSpent        = "TimeSpentOnCourse"
	ColVideosWatched    = "NumberOfVideosWatched"
	ColQuizzesTaken     = "NumberOfQuizzesTaken"
	ColQuizScores       = "QuizScores"
	ColCompletionRate   = "CompletionRate"
	ColDeviceType       = "DeviceType"
	ColCourseCompletion = "CourseCompletion"
)

// RequiredColumns is the exact header contract, in order.
var RequiredColumns = []string{
	ColUserID,
	ColCourseCategory,
	ColTimeSpent,
	ColVideosWatched,
	ColQuizzesTaken,
	ColQuizScores,
	ColCompletionRate,
	ColDeviceType,
	ColCourseCompletion,
}

// PredictorColumns is the modeling universe: every column that may enter the
// logistic regression. The identifier and the target are excluded.
var PredictorColumns = []string{
	ColCourseCategory,
	ColTimeSpent,
	ColVideosWatched,
	ColQuizzesTaken,
	ColQuizScores,
	ColCompletionRate,
	ColDeviceType,
}

// Record is one user's engagement observation. Missing numeric cells are NaN,
// missing categorical cells are the empty string. Records are immutable after
// load.
type Record struct {
	UserID           string  `json:"user_id"`
	CourseCategory   string  `json:"course_category"`
	TimeSpent        float64 `json:"time_spent_on_course"`
	VideosWatched    float64 `json:"number_of_videos_watched"`
	QuizzesTaken     float64 `json:"number_of_quizzes_taken"`
	QuizScores       float64 `json:"quiz_scores"`
	CompletionRate   float64 `json:"completion_rate"`
	DeviceType       float64 `json:"device_type"`       // 0 or 1
	CourseCompletion float64 `json:"course_completion"` // 0 or 1, the target
}

// numericField reads one named numeric field off a record.
var numericField = map[string]func(Record) float64{
	ColTimeSpent:        func(r Record) float64 { return r.TimeSpent },
	ColVideosWatched:    func(r Record) float64 { return r.VideosWatched },
	ColQuizzesTaken:     func(r Record) float64 { return r.QuizzesTaken },
	ColQuizScores:       func(r Record) float64 { return r.QuizScores },
	ColCompletionRate:   func(r Record) float64 { return r.CompletionRate },
	ColDeviceType:       func(r Record) float64 { return r.DeviceType },
	ColCourseCompletion: func(r Record) float64 { return r.CourseCompletion },
}

// Schema maps column names to their inferred types.
type Schema map[string]ColumnType

// Dataset is a fixed, ordered collection of Records plus the inferred schema.
// Order is irrelevant to every statistic computed downstream; no stage mutates
// the collection after load.
type Dataset struct {
	Records []Record `json:"records"`
	Schema  Schema   `json:"schema"`
	Source  string   `json:"source"` // originating file path, "" for synthetic
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Labels returns the binary target column.
func (d *Dataset) Labels() []float64 {
	return d.Column(ColCourseCompletion)
}

// Column extracts a numeric column by name. Categorical columns and unknown
// names return nil.
func (d *Dataset) Column(name string) []float64 {
	get, ok := numericField[name]
	if !ok {
		return nil
	}
	out := make([]float64, len(d.Records))
	for i, r := range d.Records {
		out[i] = get(r)
	}
	return out
}

// Categorical extracts a string column by name.
func (d *Dataset) Categorical(name string) []string {
	switch name {
	case ColUserID, ColCourseCategory:
	default:
		return nil
	}
	out := make([]string, len(d.Records))
	for i, r := range d.Records {
		if name == ColUserID {
			out[i] = r.UserID
		} else {
			out[i] = r.CourseCategory
		}
	}
	return out
}

// Levels returns the sorted distinct non-missing values of a categorical column.
func (d *Dataset) Levels(name string) []string {
	seen := make(map[string]struct{})
	for _, v := range d.Categorical(name) {
		if v != "" {
			seen[v] = struct{}{}
		}
	}
	levels := make([]string, 0, len(seen))
	for lvl := range seen {
		levels = append(levels, lvl)
	}
	sort.Strings(levels)
	return levels
}

// MissingCells counts null/NA cells across every column of the dataset.
func (d *Dataset) MissingCells() int {
	missing := 0
	for _, r := range d.Records {
		if r.UserID == "" {
			missing++
		}
		if r.CourseCategory == "" {
			missing++
		}
		for _, get := range numericField {
			if math.IsNaN(get(r)) {
				missing++
			}
		}
	}
	return missing
}

// ColumnTypeOf reports the schema type for a column, defaulting to numeric.
func (d *Dataset) ColumnTypeOf(name string) ColumnType {
	if t, ok := d.Schema[name]; ok {
		return t
	}
	return TypeNumeric
}
