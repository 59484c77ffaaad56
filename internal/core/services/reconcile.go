package services

import (
	"fmt"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

// Merge performs a strict left outer join of the keyword table with the
// collected result records on the query key.
//
// Every keyword row appears exactly once in the output, in input order.
// Keywords without a matching result get empty links. Result records whose
// query is not in the keyword set are dropped: the keyword table is the
// authoritative universe and the output must align 1:1 with it.
//
// Duplicate query keys in keywords are a caller bug (DedupKeywords runs
// before the join) and fail loudly with ErrDuplicateQuery rather than
// fanning out rows.
func Merge(keywords []domain.KeywordRecord, results []domain.ResultRecord) ([]domain.UnifiedRecord, error) {
	byQuery := make(map[string][]string, len(results))
	for _, r := range results {
		// Last write wins for duplicate result queries; documents may
		// legitimately repeat a query across pages.
		byQuery[r.Query] = r.Links
	}

	seen := make(map[string]struct{}, len(keywords))
	unified := make([]domain.UnifiedRecord, 0, len(keywords))
	for _, k := range keywords {
		if _, dup := seen[k.Query]; dup {
			return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateQuery, k.Query)
		}
		seen[k.Query] = struct{}{}

		links := byQuery[k.Query]
		if links == nil {
			links = []string{}
		}
		unified = append(unified, domain.UnifiedRecord{
			Query:  k.Query,
			Volume: k.Volume,
			Links:  links,
		})
	}

	return unified, nil
}
