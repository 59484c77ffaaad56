package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

// MinQueryLength is the cleaned-query length a row must exceed to survive
// normalization. Shorter queries are too ambiguous to cluster usefully.
const MinQueryLength = 3

// NormalizeTable validates and normalizes a raw keyword table into
// KeywordRecords. The transformation, in order:
//
//  1. select the keyword and volume columns (ErrColumnNotFound if absent)
//  2. fill missing volume with 0, coerce to integer (ErrInvalidVolume on
//     non-numeric, non-empty values)
//  3. strip every query character that is not a letter, digit or space
//  4. keep rows whose cleaned query is longer than MinQueryLength
//
// The transform is pure and deterministic: output rows keep their input
// order, and normalizing an already-normalized table is a no-op.
func NormalizeTable(table domain.RawTable, keywordColumn, volumeColumn string) ([]domain.KeywordRecord, error) {
	kwIdx := table.ColumnIndex(keywordColumn)
	if kwIdx < 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrColumnNotFound, keywordColumn)
	}
	volIdx := table.ColumnIndex(volumeColumn)
	if volIdx < 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrColumnNotFound, volumeColumn)
	}
	if len(table.Rows) == 0 {
		return nil, domain.ErrEmptySource
	}

	records := make([]domain.KeywordRecord, 0, len(table.Rows))
	for i := range table.Rows {
		volume, err := parseVolume(table.Cell(i, volIdx))
		if err != nil {
			// Rows are reported 1-based, counting the header.
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		query := CleanQuery(table.Cell(i, kwIdx))
		if len(query) <= MinQueryLength {
			continue
		}

		records = append(records, domain.KeywordRecord{Query: query, Volume: volume})
	}

	return records, nil
}

// CleanQuery strips every character that is not an ASCII letter, digit or
// space. The result may be empty.
func CleanQuery(q string) string {
	var b strings.Builder
	b.Grow(len(q))
	for _, r := range q {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseVolume coerces a volume cell to a non-negative integer.
// Empty cells fill as zero; anything non-numeric is an error.
func parseVolume(cell string) (int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(cell)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidVolume, cell)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidVolume, cell)
	}
	return v, nil
}

// DedupKeywords removes duplicate queries, keeping the first occurrence.
// Returns the deduplicated set and the number of rows dropped. The remote
// batch never sees duplicate queries, and the downstream join stays strict.
func DedupKeywords(records []domain.KeywordRecord) ([]domain.KeywordRecord, int) {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.KeywordRecord, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Query]; ok {
			continue
		}
		seen[r.Query] = struct{}{}
		out = append(out, r)
	}
	return out, len(records) - len(out)
}
