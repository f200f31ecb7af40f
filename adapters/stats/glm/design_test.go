package glm

import (
	"testing"

	"coursemetry/domain/dataset"
)

func TestCategoricalTerm_ReadsNamedColumn(t *testing.T) {
	ds := &dataset.Dataset{
		Records: []dataset.Record{
			{UserID: "u2", CourseCategory: "Arts"},
			{UserID: "u1", CourseCategory: "Science"},
		},
		Schema: dataset.Schema{
			dataset.ColUserID:         dataset.TypeCategorical,
			dataset.ColCourseCategory: dataset.TypeCategorical,
		},
	}

	tm, err := categoricalTerm(ds, dataset.ColUserID)
	if err != nil {
		t.Fatalf("categoricalTerm failed: %v", err)
	}
	// Levels sort to [u1 u2]; u1 is the reference, u2 gets the dummy.
	if len(tm.names) != 1 || tm.names[0] != dataset.ColUserID+"u2" {
		t.Fatalf("unexpected dummy columns: %v", tm.names)
	}

	cols, ok := tm.expand(ds.Records[0])
	if !ok || cols[0] != 1 {
		t.Errorf("UserID u2 should activate its dummy, got %v (ok=%v)", cols, ok)
	}
	cols, ok = tm.expand(ds.Records[1])
	if !ok || cols[0] != 0 {
		t.Errorf("UserID u1 is the reference level, got %v (ok=%v)", cols, ok)
	}
}

func TestCategoricalGetter_UnknownColumn(t *testing.T) {
	if _, err := categoricalGetter(dataset.ColTimeSpent); err == nil {
		t.Error("expected an error for a non-categorical column")
	}
}
