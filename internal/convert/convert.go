// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns raw document bytes into ordered text lines.
// A Decoder produces one text blob per document; Normalizer splits it on the
// document's own line breaks. Backends: native (pure-Go PDF), pdftotext
// (container), and text (UTF-8 passthrough).
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/license-ranker/internal/container"
	"github.com/pdiddy/license-ranker/pkg/types"
)

// Decoder transforms document bytes into text. Different backends
// (native, pdftotext, text) implement this interface.
type Decoder interface {
	// Name identifies the backend in errors and logs.
	Name() string

	// Decode returns the text content of data.
	Decode(ctx context.Context, data []byte) (string, error)
}

// ErrDecode matches every *DecodeError via errors.Is.
var ErrDecode = errors.New("decode failed")

// DecodeError reports a document that could not be read as text. It is
// fatal to a run and never retried.
type DecodeError struct {
	Backend string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding document with %s: %v", e.Backend, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDecode) match any DecodeError.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Normalizer decodes a document and splits the result into lines.
type Normalizer struct {
	Decoder Decoder
}

// Normalize returns the document's lines in order. Lines are trimmed of
// surrounding whitespace; empty lines are kept. The text is put in Unicode
// NFC form first so composed and decomposed accents compare equal.
func (n *Normalizer) Normalize(ctx context.Context, doc types.Document) ([]string, error) {
	dec := n.Decoder
	if dec == nil {
		dec = Auto{}
	}

	text, err := dec.Decode(ctx, doc.Data)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, &DecodeError{Backend: dec.Name(), Err: err}
	}

	lines := SplitLines(norm.NFC.String(text))
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}

	log.Debug().
		Str("decoder", dec.Name()).
		Int("bytes", len(doc.Data)).
		Int("lines", len(lines)).
		Msg("document normalized")
	return lines, nil
}

// SplitLines splits text on line terminators: \n, \r\n, \r, \v, \f, the
// file/group/record separators \x1c-\x1e, U+0085, U+2028, and U+2029. A
// terminator at the very end does not add an empty line.
func SplitLines(text string) []string {
	lines := []string{}
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data starts with a PDF header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// Text decodes UTF-8 text documents. A leading byte order mark is dropped.
type Text struct{}

func (Text) Name() string { return string(types.DecoderText) }

func (Text) Decode(_ context.Context, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errors.New("document is not valid UTF-8 text")
	}
	return string(data), nil
}

// Auto sends PDF bytes to the native decoder and everything else to Text.
type Auto struct{}

func (Auto) Name() string { return string(types.DecoderAuto) }

func (Auto) Decode(ctx context.Context, data []byte) (string, error) {
	if IsPDF(data) {
		return PDF{}.Decode(ctx, data)
	}
	return Text{}.Decode(ctx, data)
}

// ForBackend builds the decoder for backend. An empty backend means auto.
// The pdftotext backend requires a working docker or podman runtime with
// the pdftotext image present.
func ForBackend(ctx context.Context, backend types.DecoderBackend) (Decoder, error) {
	switch backend {
	case "", types.DecoderAuto:
		return Auto{}, nil
	case types.DecoderNative:
		return PDF{}, nil
	case types.DecoderText:
		return Text{}, nil
	case types.DecoderPdftotext:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewPdftotext(ctx, rt)
	default:
		return nil, fmt.Errorf("unknown decoder backend %q (want auto, native, pdftotext, or text)", backend)
	}
}
