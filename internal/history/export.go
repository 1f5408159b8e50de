// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/license-ranker/internal/report"
	"github.com/pdiddy/license-ranker/pkg/types"
)

const exportLimit = 100000

// Export writes every stored run, records included, to w as YAML or JSON.
func (s *Store) Export(ctx context.Context, w io.Writer, format report.Format) error {
	if format != report.FormatYAML && format != report.FormatJSON {
		return fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}
	runs, err := s.exportRuns(ctx)
	if err != nil {
		return err
	}
	return report.Encode(w, format, runs)
}

func (s *Store) exportRuns(ctx context.Context) ([]types.Run, error) {
	runs, err := s.ListRuns(ctx, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	for i := range runs {
		runs[i].Records, err = s.records(ctx, runs[i].ID)
		if err != nil {
			return nil, fmt.Errorf("querying for export: %w", err)
		}
	}
	if runs == nil {
		runs = []types.Run{}
	}
	return runs, nil
}
