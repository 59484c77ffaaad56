package loaders

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
	"github.com/custodia-labs/serpcluster-cli/internal/logger"
)

// LoadXLSX parses the first sheet of an Excel workbook into a RawTable.
func LoadXLSX(path string) (domain.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("closing %s: %v", path, err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.RawTable{}, domain.ErrEmptySource
	}
	if len(sheets) > 1 {
		logger.Info("Workbook has %d sheets, reading %q", len(sheets), sheets[0])
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	return tableFromRows(rows)
}
