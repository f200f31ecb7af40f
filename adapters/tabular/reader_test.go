package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"coursemetry/domain/dataset"
	"coursemetry/internal/errors"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engagement.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

const validCSV = `UserID,CourseCategory,TimeSpentOnCourse,NumberOfVideosWatched,NumberOfQuizzesTaken,QuizScores,CompletionRate,DeviceType,CourseCompletion
u1,Programming,42.5,10,3,88.0,75.5,0,1
u2,Business,12.0,2,1,45.5,20.0,1,0
u3,Programming,60.1,15,5,92.5,90.0,0,1
`

func TestReadDataset_RowCount(t *testing.T) {
	path := writeTempCSV(t, validCSV)

	ds, err := NewDataReader(path).ReadDataset()
	if err != nil {
		t.Fatalf("ReadDataset failed: %v", err)
	}

	if ds.Len() != 3 {
		t.Errorf("expected 3 records, got %d", ds.Len())
	}
	if ds.Source != path {
		t.Errorf("expected source %q, got %q", path, ds.Source)
	}
}

func TestReadDataset_TypeInference(t *testing.T) {
	path := writeTempCSV(t, validCSV)

	ds, err := NewDataReader(path).ReadDataset()
	if err != nil {
		t.Fatalf("ReadDataset failed: %v", err)
	}

	expected := map[string]dataset.ColumnType{
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
	for column, want := range expected {
		if got := ds.Schema[column]; got != want {
			t.Errorf("column %s: expected type %s, got %s", column, want, got)
		}
	}
}

func TestReadDataset_MissingFile(t *testing.T) {
	_, err := NewDataReader("/nonexistent/engagement.csv").ReadDataset()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.GetCode(err) != errors.CodeLoadError {
		t.Errorf("expected LOAD_ERROR, got %s", errors.GetCode(err))
	}
}

func TestReadDataset_HeaderMismatch(t *testing.T) {
	path := writeTempCSV(t, "UserID,WrongColumn\nu1,x\n")

	_, err := NewDataReader(path).ReadDataset()
	if err == nil {
		t.Fatal("expected error for header mismatch")
	}
	if errors.GetCode(err) != errors.CodeLoadError {
		t.Errorf("expected LOAD_ERROR, got %s", errors.GetCode(err))
	}
}

func TestReadDataset_BinaryColumnValidation(t *testing.T) {
	bad := `UserID,CourseCategory,TimeSpentOnCourse,NumberOfVideosWatched,NumberOfQuizzesTaken,QuizScores,CompletionRate,DeviceType,CourseCompletion
u1,Arts,10,1,1,50,50,2,0
`
	path := writeTempCSV(t, bad)

	_, err := NewDataReader(path).ReadDataset()
	if err == nil {
		t.Fatal("expected error for non-binary DeviceType")
	}
	if errors.GetCode(err) != errors.CodeLoadError {
		t.Errorf("expected LOAD_ERROR, got %s", errors.GetCode(err))
	}
}

func TestReadDataset_MissingCells(t *testing.T) {
	withMissing := `UserID,CourseCategory,TimeSpentOnCourse,NumberOfVideosWatched,NumberOfQuizzesTaken,QuizScores,CompletionRate,DeviceType,CourseCompletion
u1,Arts,,1,1,50,50,0,0
u2,Business,20,NA,2,60,70,1,1
`
	path := writeTempCSV(t, withMissing)

	ds, err := NewDataReader(path).ReadDataset()
	if err != nil {
		t.Fatalf("ReadDataset failed: %v", err)
	}
	if got := ds.MissingCells(); got != 2 {
		t.Errorf("expected 2 missing cells, got %d", got)
	}
}

func TestReadDataset_EmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")

	_, err := NewDataReader(path).ReadDataset()
	if err == nil {
		t.Fatal("expected error for empty file")
	}
	if errors.GetCode(err) != errors.CodeLoadError {
		t.Errorf("expected LOAD_ERROR, got %s", errors.GetCode(err))
	}
}
