package tabular

// RawRow represents a row of raw tabular data as string key-value pairs
type RawRow map[string]string

// RawTable represents the complete raw dataset before decoding
type RawTable struct {
	Headers []string // Column headers
	Rows    []RawRow // Data rows
}
