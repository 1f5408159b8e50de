// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders scored records and bounds the result.
package rank

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/pdiddy/license-ranker/pkg/types"
)

// DefaultTopN is the ranked list size used when none is configured.
const DefaultTopN = 5

// ErrInvalidArgument reports a caller error such as a negative list size.
var ErrInvalidArgument = errors.New("invalid argument")

// Rank returns records sorted by descending score, ties in ascending
// extraction Index, truncated to topN. The input slice is not modified.
// A topN above the record count returns every record; zero returns an
// empty list; a negative topN is ErrInvalidArgument.
func Rank(records []types.ScoredRecord, topN int) (types.RankedList, error) {
	if topN < 0 {
		return nil, fmt.Errorf("%w: top_n must be >= 0, got %d", ErrInvalidArgument, topN)
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b types.ScoredRecord) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	n := min(topN, len(sorted))
	return types.RankedList(sorted[:n:n]), nil
}
