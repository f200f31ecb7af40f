package testkit

import (
	"math"
	"testing"
)

func TestGenerate_RecordCountAndRanges(t *testing.T) {
	cfg := DefaultEngagementConfig()
	cfg.RecordCount = 500
	gen := NewEngagementDataGenerator(cfg, DefaultGeneratingCoefficients())

	ds := gen.Generate()
	if ds.Len() != 500 {
		t.Fatalf("expected 500 records, got %d", ds.Len())
	}

	for i, rec := range ds.Records {
		if rec.UserID == "" {
			t.Fatalf("record %d: empty UserID", i)
		}
		if rec.CourseCategory == "" {
			t.Fatalf("record %d: empty CourseCategory", i)
		}
		if rec.TimeSpent < 1 || rec.TimeSpent > 180 {
			t.Errorf("record %d: TimeSpent %f out of range", i, rec.TimeSpent)
		}
		if rec.DeviceType != 0 && rec.DeviceType != 1 {
			t.Errorf("record %d: DeviceType %f not binary", i, rec.DeviceType)
		}
		if rec.CourseCompletion != 0 && rec.CourseCompletion != 1 {
			t.Errorf("record %d: CourseCompletion %f not binary", i, rec.CourseCompletion)
		}
	}
}

func TestGenerate_SeedReproducibility(t *testing.T) {
	cfg := DefaultEngagementConfig()
	cfg.RecordCount = 100

	first := NewEngagementDataGenerator(cfg, DefaultGeneratingCoefficients()).Generate()
	second := NewEngagementDataGenerator(cfg, DefaultGeneratingCoefficients()).Generate()

	for i := range first.Records {
		if first.Records[i] != second.Records[i] {
			t.Fatalf("record %d differs between identically seeded runs", i)
		}
	}
}

func TestGenerate_BothClassesPresent(t *testing.T) {
	cfg := DefaultEngagementConfig()
	cfg.RecordCount = 1000
	ds := NewEngagementDataGenerator(cfg, DefaultGeneratingCoefficients()).Generate()

	positives := 0
	for _, rec := range ds.Records {
		if rec.CourseCompletion == 1 {
			positives++
		}
	}
	if positives == 0 || positives == ds.Len() {
		t.Fatalf("degenerate synthetic labels: %d positives of %d", positives, ds.Len())
	}
}

func TestGenerate_MissingRate(t *testing.T) {
	cfg := DefaultEngagementConfig()
	cfg.RecordCount = 2000
	cfg.MissingRate = 0.1
	ds := NewEngagementDataGenerator(cfg, DefaultGeneratingCoefficients()).Generate()

	missing := 0
	cells := 0
	for _, rec := range ds.Records {
		for _, v := range []float64{
			rec.TimeSpent, rec.VideosWatched, rec.QuizzesTaken,
			rec.QuizScores, rec.CompletionRate,
		} {
			cells++
			if math.IsNaN(v) {
				missing++
			}
		}
	}

	rate := float64(missing) / float64(cells)
	if rate < 0.05 || rate > 0.15 {
		t.Errorf("missing rate %f far from configured 0.1", rate)
	}

	// The target is never blanked.
	for i, rec := range ds.Records {
		if math.IsNaN(rec.CourseCompletion) {
			t.Fatalf("record %d: blanked target", i)
		}
	}
}
