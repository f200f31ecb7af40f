package tabular

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"coursemetry/domain/dataset"
	"coursemetry/internal"
	"coursemetry/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading CSV and Excel engagement files
type DataReader struct {
	filePath string
	fileType string // "csv" or "xlsx"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both CSV and Excel files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xlsm" {
		fileType = "xlsx"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		logger:   internal.DefaultLogger,
	}
}

// ReadDataset reads the engagement file, validates the header contract, infers
// column types and decodes every row into an immutable Record.
func (r *DataReader) ReadDataset() (*dataset.Dataset, error) {
	raw, err := r.readRaw()
	if err != nil {
		return nil, err
	}

	if err := validateHeader(raw.Headers); err != nil {
		return nil, err
	}

	schema := inferSchema(raw)
	records := make([]dataset.Record, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		rec, err := decodeRecord(row, i)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	r.logger.Info("[DataReader] %s loaded: %d rows, %d columns",
		r.filePath, len(records), len(raw.Headers))

	return &dataset.Dataset{
		Records: records,
		Schema:  schema,
		Source:  r.filePath,
	}, nil
}

// readRaw dispatches on file type and returns unvalidated string rows.
func (r *DataReader) readRaw() (*RawTable, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.LoadError(fmt.Sprintf("input file not found: %s", r.filePath), err)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, errors.LoadError(fmt.Sprintf("unsupported file type: %s", r.fileType), nil)
	}
}

// readCSV reads CSV data into raw string rows
func (r *DataReader) readCSV() (*RawTable, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.LoadError("failed to open CSV file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// FieldsPerRecord stays at the default so a ragged row surfaces as a
	// column-count mismatch instead of silently truncating.
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.LoadError("failed to read CSV file", err)
	}
	r.logger.Debug("[DataReader] CSV file read (%d rows)", len(rows))

	if len(rows) < 2 {
		return nil, errors.LoadError("CSV file must have at least a header row and one data row", nil)
	}

	return r.processRows(rows)
}

// readExcel reads Excel data from Sheet1 into raw string rows
func (r *DataReader) readExcel() (*RawTable, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.LoadError("failed to open Excel file", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, errors.LoadError("failed to read Sheet1", err)
	}
	r.logger.Debug("[DataReader] Sheet1 read (%d rows)", len(rows))

	if len(rows) < 2 {
		return nil, errors.LoadError("Excel file must have at least a header row and one data row", nil)
	}

	return r.processRows(rows)
}

// processRows converts raw string rows into RawTable format
func (r *DataReader) processRows(rows [][]string) (*RawTable, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	var dataRows []RawRow
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) != len(headers) {
			return nil, errors.LoadError(
				fmt.Sprintf("row %d has %d columns, header has %d", i, len(row), len(headers)), nil)
		}
		rowData := make(RawRow, len(headers))
		for j, cell := range row {
			rowData[headers[j]] = strings.TrimSpace(cell)
		}
		dataRows = append(dataRows, rowData)
	}

	return &RawTable{Headers: headers, Rows: dataRows}, nil
}

// validateHeader enforces the exact engagement schema contract.
func validateHeader(headers []string) error {
	if len(headers) != len(dataset.RequiredColumns) {
		return errors.LoadError(
			fmt.Sprintf("expected %d columns, got %d", len(dataset.RequiredColumns), len(headers)), nil)
	}
	for i, want := range dataset.RequiredColumns {
		if headers[i] != want {
			return errors.LoadError(
				fmt.Sprintf("header mismatch at position %d: expected %q, got %q", i, want, headers[i]), nil)
		}
	}
	return nil
}

// inferSchema classifies each column: numeric when every non-missing cell
// parses as a float, categorical otherwise.
func inferSchema(raw *RawTable) dataset.Schema {
	schema := make(dataset.Schema, len(raw.Headers))
	for _, header := range raw.Headers {
		schema[header] = inferColumnType(raw, header)
	}
	return schema
}

func inferColumnType(raw *RawTable, column string) dataset.ColumnType {
	seen := false
	for _, row := range raw.Rows {
		cell := row[column]
		if isMissing(cell) {
			continue
		}
		seen = true
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return dataset.TypeCategorical
		}
	}
	if !seen {
		return dataset.TypeCategorical
	}
	return dataset.TypeNumeric
}

// decodeRecord converts one raw row into a typed Record. rowIdx is zero-based
// over data rows and only used for error messages.
func decodeRecord(row RawRow, rowIdx int) (dataset.Record, error) {
	rec := dataset.Record{
		UserID:         row[dataset.ColUserID],
		CourseCategory: row[dataset.ColCourseCategory],
	}

	numeric := []struct {
		column string
		dest   *float64
		binary bool
	}{
		{dataset.ColTimeSpent, &rec.TimeSpent, false},
		{dataset.ColVideosWatched, &rec.VideosWatched, false},
		{dataset.ColQuizzesTaken, &rec.QuizzesTaken, false},
		{dataset.ColQuizScores, &rec.QuizScores, false},
		{dataset.ColCompletionRate, &rec.CompletionRate, false},
		{dataset.ColDeviceType, &rec.DeviceType, true},
		{dataset.ColCourseCompletion, &rec.CourseCompletion, true},
	}

	for _, field := range numeric {
		cell := row[field.column]
		if isMissing(cell) {
			*field.dest = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return dataset.Record{}, errors.LoadError(
				fmt.Sprintf("row %d: column %s: cannot parse %q as number", rowIdx+1, field.column, cell), err)
		}
		if field.binary && v != 0 && v != 1 {
			return dataset.Record{}, errors.LoadError(
				fmt.Sprintf("row %d: column %s must be 0 or 1, got %v", rowIdx+1, field.column, v), nil)
		}
		*field.dest = v
	}

	return rec, nil
}

// isMissing treats empty cells and the usual NA spellings as missing.
func isMissing(cell string) bool {
	switch strings.ToUpper(cell) {
	case "", "NA", "N/A", "NAN", "NULL":
		return true
	}
	return false
}
