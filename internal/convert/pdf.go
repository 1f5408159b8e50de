// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/license-ranker/pkg/types"
)

const (
	// wordGap is the horizontal gap, as a fraction of the font size, above
	// which two glyphs on a row are treated as separate words.
	wordGap = 0.15

	// baselineTolerance is the vertical distance, as a fraction of the font
	// size, within which glyphs share a row.
	baselineTolerance = 0.3
)

// PDF extracts text from PDF bytes in-process. Glyphs are grouped into rows
// by baseline, one output line per row, with a blank line after each page.
type PDF struct{}

func (PDF) Name() string { return string(types.DecoderNative) }

// Decode returns the text of every page in page order. A PDF without any
// extractable text (a scanned image, for example) is an error.
func (PDF) Decode(ctx context.Context, data []byte) (text string, err error) {
	if !IsPDF(data) {
		return "", errors.New("missing %PDF- header")
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, row := range groupRows(page.Content().Text) {
			writeRow(&b, row)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("PDF contains no extractable text")
	}
	return b.String(), nil
}

// groupRows orders glyphs top to bottom and splits them into rows wherever
// the baseline moves by more than the tolerance. Glyphs within a row are
// ordered left to right; glyphs at the same X keep content order.
func groupRows(glyphs []pdf.Text) [][]pdf.Text {
	glyphs = slices.Clone(glyphs)
	slices.SortStableFunc(glyphs, func(a, c pdf.Text) int {
		return cmp.Compare(c.Y, a.Y)
	})

	var rows [][]pdf.Text
	var row []pdf.Text
	var rowY float64
	for _, g := range glyphs {
		if len(row) > 0 && math.Abs(rowY-g.Y) > baselineTolerance*max(g.FontSize, 1) {
			rows = append(rows, row)
			row = nil
		}
		if len(row) == 0 {
			rowY = g.Y
		}
		row = append(row, g)
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	for _, r := range rows {
		slices.SortStableFunc(r, func(a, c pdf.Text) int {
			return cmp.Compare(a.X, c.X)
		})
	}
	return rows
}

// writeRow writes one row's glyphs, inserting a space at visible gaps.
func writeRow(b *strings.Builder, row []pdf.Text) {
	for i, t := range row {
		if i > 0 && needsSpace(row[i-1], t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
	}
}

// needsSpace reports whether a visible gap separates prev from next and
// neither side already carries whitespace.
func needsSpace(prev, next pdf.Text) bool {
	if strings.HasSuffix(prev.S, " ") || strings.HasPrefix(next.S, " ") {
		return false
	}
	gap := next.X - (prev.X + prev.W)
	return gap > wordGap*max(prev.FontSize, 1)
}
