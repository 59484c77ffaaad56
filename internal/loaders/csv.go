package loaders

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

// LoadCSV parses a CSV file into a RawTable. Rows may have fewer fields
// than the header; missing cells read as empty.
func LoadCSV(path string) (domain.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows are tolerated
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	return tableFromRows(rows)
}
