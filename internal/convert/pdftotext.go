// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PdftotextConverter shells out to poppler's pdftotext. The -layout flag
// preserves the bulletin's column alignment, which the parser's
// double-space name/specification split depends on.
type PdftotextConverter struct {
	binary string
}

// NewPdftotextConverter locates pdftotext on PATH.
func NewPdftotextConverter() (*PdftotextConverter, error) {
	path, err := exec.LookPath("pdftotext")
	if err != nil {
		return nil, fmt.Errorf("pdftotext not found on PATH (install poppler-utils): %w", err)
	}
	return &PdftotextConverter{binary: path}, nil
}

// Convert runs pdftotext -layout on the PDF and returns the text written
// to stdout.
func (p *PdftotextConverter) Convert(ctx context.Context, pdfPath string) (string, error) {
	var out, errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, p.binary, "-layout", pdfPath, "-")
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(errBuf.String())
		if msg != "" {
			return "", fmt.Errorf("pdftotext: %s: %w", msg, err)
		}
		return "", fmt.Errorf("pdftotext: %w", err)
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("pdftotext produced no output for %s", pdfPath)
	}
	return out.String(), nil
}
