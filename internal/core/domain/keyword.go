package domain

// KeywordRecord is a single normalized keyword row from the input table.
// Query is the join key for every downstream merge; it has already been
// stripped to letters, digits and spaces and is longer than three characters.
type KeywordRecord struct {
	// Query is the cleaned search query text.
	Query string

	// Volume is the monthly search volume. Never negative; missing
	// values in the source table are filled with zero.
	Volume int
}

// SearchParameters are the optional per-batch search settings attached to
// every enqueued query. Empty fields are omitted from the enqueue request
// and the remote service applies its own defaults.
type SearchParameters struct {
	// Location is a geographic location string (e.g., "United States").
	Location string

	// Language is the interface language code (e.g., "en").
	Language string

	// Country is the country code for the search (e.g., "us").
	Country string

	// Domain is the Google domain to search (e.g., "google.com").
	Domain string
}

// RawTable is a parsed tabular input file before normalization.
// Rows hold cell values in Columns order; rows shorter than the header
// read as empty cells through Cell.
type RawTable struct {
	// Columns are the header names in file order.
	Columns []string

	// Rows are the data rows, excluding the header.
	Rows [][]string
}

// ColumnIndex returns the position of the named column,
// or -1 if the table has no such column. Matching is exact.
func (t *RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at the given row and column index,
// or empty string when the row is shorter than the header.
func (t *RawTable) Cell(row, col int) string {
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}
