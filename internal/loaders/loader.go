package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

// Load parses the file at path into a RawTable, dispatching on extension.
// Supported extensions: .csv, .xlsx.
func Load(path string) (domain.RawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx":
		return LoadXLSX(path)
	default:
		return domain.RawTable{}, fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// tableFromRows builds a RawTable from raw rows, treating the first row as
// the header. A file without a header row is empty input.
func tableFromRows(rows [][]string) (domain.RawTable, error) {
	if len(rows) == 0 {
		return domain.RawTable{}, domain.ErrEmptySource
	}

	header := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		header[i] = strings.TrimSpace(c)
	}

	return domain.RawTable{
		Columns: header,
		Rows:    rows[1:],
	}, nil
}
