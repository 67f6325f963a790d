package search

import "github.com/jmorris/officiantfinder/internal/model"

// applyFeatured partitions results into featured and non-featured groups,
// preserving relative order within each, and concatenates featured first.
// The output is a permutation of the input.
func applyFeatured(results []model.SearchResult, featuredIDs []int) []model.SearchResult {
	if len(results) == 0 || len(featuredIDs) == 0 {
		return results
	}

	featured := make(map[int]bool, len(featuredIDs))
	for _, id := range featuredIDs {
		featured[id] = true
	}

	front := make([]model.SearchResult, 0, len(results))
	var rest []model.SearchResult
	for _, r := range results {
		if featured[r.ID] {
			r.Featured = true
			front = append(front, r)
		} else {
			rest = append(rest, r)
		}
	}

	return append(front, rest...)
}
