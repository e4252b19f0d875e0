package source

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PDFText extracts the text layer of the PDF at path with poppler's
// pdftotext. Scanned PDFs without a text layer yield ErrNoText.
func (f *Fetcher) PDFText(ctx context.Context, path string) (string, error) {
	if err := f.require("pdftotext"); err != nil {
		return "", err
	}

	out, err := f.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", fmt.Errorf("extract PDF text: %w", err)
	}

	text := normalizeText(string(out))
	if text == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return text, nil
}

// normalizeText folds compatibility characters such as the "fi"
// ligature, trims every line and squeezes runs of blank lines to one.
func normalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\f", "\n")

	var b strings.Builder
	blank := 0
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank++
			continue
		}
		if b.Len() > 0 {
			if blank > 0 {
				b.WriteString("\n\n")
			} else {
				b.WriteByte('\n')
			}
		}
		blank = 0
		b.WriteString(line)
	}
	return b.String()
}
