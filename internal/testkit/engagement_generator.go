package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	"coursemetry/domain/dataset"
)

// EngagementGeneratorConfig configures the synthetic engagement data generator
type EngagementGeneratorConfig struct {
	RecordCount int     `json:"record_count"`
	Seed        int64   `json:"seed"`
	MissingRate float64 `json:"missing_rate"` // fraction of numeric cells blanked out
}

// GeneratingCoefficients is the known log-odds function used to label
// synthetic records. Recovery of these values by the fitter is the end-to-end
// acceptance check.
type GeneratingCoefficients struct {
	Intercept      float64
	TimeSpent      float64
	VideosWatched  float64
	QuizzesTaken   float64
	QuizScores     float64
	CompletionRate float64
	DeviceType     float64
}

// DefaultEngagementConfig returns sensible defaults for data generation
func DefaultEngagementConfig() EngagementGeneratorConfig {
	return EngagementGeneratorConfig{
		RecordCount: 1000,
		Seed:        42,
		MissingRate: 0,
	}
}

// DefaultGeneratingCoefficients is a moderate-signal generating function whose
// completion odds rise with engagement.
func DefaultGeneratingCoefficients() GeneratingCoefficients {
	return GeneratingCoefficients{
		Intercept:      -4.0,
		TimeSpent:      0.04,
		VideosWatched:  0.06,
		QuizzesTaken:   0.10,
		QuizScores:     0.015,
		CompletionRate: 0.012,
		DeviceType:     0.25,
	}
}

var courseCategories = []string{"Arts", "Business", "Health", "Programming", "Science"}

// EngagementDataGenerator generates realistic online-course engagement records
// from a seeded RNG and a known generating function.
type EngagementDataGenerator struct {
	config EngagementGeneratorConfig
	coefs  GeneratingCoefficients
	rng    *rand.Rand
}

// NewEngagementDataGenerator creates a new engagement data generator
func NewEngagementDataGenerator(config EngagementGeneratorConfig, coefs GeneratingCoefficients) *EngagementDataGenerator {
	return &EngagementDataGenerator{
		config: config,
		coefs:  coefs,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate produces the full synthetic dataset in memory.
func (g *EngagementDataGenerator) Generate() *dataset.Dataset {
	records := make([]dataset.Record, 0, g.config.RecordCount)
	for i := 0; i < g.config.RecordCount; i++ {
		records = append(records, g.generateRecord(i))
	}

	schema := dataset.Schema{
		dataset.ColUserID:           dataset.TypeCategorical,
		dataset.ColCourseCategory:   dataset.TypeCategorical,
		dataset.ColTimeSpent:        dataset.TypeNumeric,
		dataset.ColVideosWatched:    dataset.TypeNumeric,
		dataset.ColQuizzesTaken:     dataset.TypeNumeric,
		dataset.ColQuizScores:       dataset.TypeNumeric,
		dataset.ColCompletionRate:   dataset.TypeNumeric,
		dataset.ColDeviceType:       dataset.TypeNumeric,
		dataset.ColCourseCompletion: dataset.TypeNumeric,
	}

	return &dataset.Dataset{Records: records, Schema: schema}
}

// generateRecord draws one engagement observation and labels it through the
// generating log-odds function.
func (g *EngagementDataGenerator) generateRecord(idx int) dataset.Record {
	rec := dataset.Record{
		UserID:         fmt.Sprintf("user_%05d", idx+1),
		CourseCategory: courseCategories[g.rng.Intn(len(courseCategories))],
		TimeSpent:      clamp(g.rng.NormFloat64()*25+50, 1, 180),
		VideosWatched:  float64(g.rng.Intn(21)),
		QuizzesTaken:   float64(g.rng.Intn(11)),
		QuizScores:     clamp(g.rng.NormFloat64()*15+65, 0, 100),
		CompletionRate: clamp(g.rng.NormFloat64()*20+55, 0, 100),
		DeviceType:     float64(g.rng.Intn(2)),
	}

	eta := g.coefs.Intercept +
		g.coefs.TimeSpent*rec.TimeSpent +
		g.coefs.VideosWatched*rec.VideosWatched +
		g.coefs.QuizzesTaken*rec.QuizzesTaken +
		g.coefs.QuizScores*rec.QuizScores +
		g.coefs.CompletionRate*rec.CompletionRate +
		g.coefs.DeviceType*rec.DeviceType

	prob := 1 / (1 + math.Exp(-eta))
	if g.rng.Float64() < prob {
		rec.CourseCompletion = 1
	}

	g.maybeBlank(&rec)
	return rec
}

// maybeBlank knocks out numeric cells at the configured missing rate. The
// target and the identifier are never blanked so downstream fits stay labeled.
func (g *EngagementDataGenerator) maybeBlank(rec *dataset.Record) {
	if g.config.MissingRate <= 0 {
		return
	}
	for _, dest := range []*float64{
		&rec.TimeSpent, &rec.VideosWatched, &rec.QuizzesTaken,
		&rec.QuizScores, &rec.CompletionRate,
	} {
		if g.rng.Float64() < g.config.MissingRate {
			*dest = math.NaN()
		}
	}
}

// WriteCSV writes the generated dataset to a CSV file with the exact required
// header, for wiring the loader into end-to-end scenarios.
func (g *EngagementDataGenerator) WriteCSV(path string) error {
	ds := g.Generate()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(dataset.RequiredColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range ds.Records {
		row := []string{
			rec.UserID,
			rec.CourseCategory,
			formatCell(rec.TimeSpent),
			formatCell(rec.VideosWatched),
			formatCell(rec.QuizzesTaken),
			formatCell(rec.QuizScores),
			formatCell(rec.CompletionRate),
			formatCell(rec.DeviceType),
			formatCell(rec.CourseCompletion),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
