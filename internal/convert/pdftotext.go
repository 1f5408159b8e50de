// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/license-ranker/internal/container"
	"github.com/pdiddy/license-ranker/pkg/types"
)

// PdftotextImage is the container image providing poppler's pdftotext as
// its entrypoint.
var PdftotextImage = "pdftotext:latest"

// Pdftotext decodes PDFs by piping them through the pdftotext container.
// pdftotext separates pages with form feeds, which SplitLines treats as
// line breaks.
type Pdftotext struct {
	runtime container.Runtime
}

// NewPdftotext creates a decoder that runs PdftotextImage on rt. It verifies
// that the image exists locally before returning.
func NewPdftotext(ctx context.Context, rt container.Runtime) (*Pdftotext, error) {
	if err := rt.ImageExists(ctx, PdftotextImage); err != nil {
		return nil, fmt.Errorf("pdftotext image not available in %s: %w", rt.Name(), err)
	}
	return &Pdftotext{runtime: rt}, nil
}

func (p *Pdftotext) Name() string { return string(types.DecoderPdftotext) }

// Decode streams data into the container on stdin and reads UTF-8 text
// from stdout.
func (p *Pdftotext) Decode(ctx context.Context, data []byte) (string, error) {
	if !IsPDF(data) {
		return "", errors.New("missing %PDF- header")
	}

	var out bytes.Buffer
	args := []string{"-enc", "UTF-8", "-", "-"}
	if err := p.runtime.Run(ctx, PdftotextImage, args, bytes.NewReader(data), &out); err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(out.Bytes())) == 0 {
		return "", errors.New("pdftotext produced empty output")
	}
	return out.String(), nil
}
