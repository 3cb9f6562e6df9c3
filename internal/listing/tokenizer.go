package listing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/nao1215/latestver/internal/model"
)

// Tokenize splits an HTML document into its text chunks.
//
// Every run of text between two tags becomes one chunk, with character
// references decoded. Text inside <script> and <style> is included; comments,
// the doctype and attribute values are not. Whitespace-only runs are dropped.
// The input is expected to be UTF-8.
func Tokenize(r io.Reader) ([]string, error) {
	chunks := make([]string, 0)
	z := html.NewTokenizer(r)

	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return chunks, nil
			}
			return chunks, z.Err()
		case html.TextToken:
			text := string(z.Text())
			if strings.TrimSpace(text) != "" {
				chunks = append(chunks, text)
			}
		}
	}
}

// TokenizePage decodes page to UTF-8 and splits it into text chunks.
//
// The character set is taken from the Content-Type header, a byte order mark
// or a <meta> declaration, in that order. Pages served as text/plain are
// split into lines instead of being parsed as HTML.
func TokenizePage(page *model.Page) ([]string, error) {
	if len(page.Raw) == 0 {
		return make([]string, 0), nil
	}

	r, err := charset.NewReader(bytes.NewReader(page.Raw), page.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", page.URL, err)
	}

	if page.IsPlainText() {
		return splitLines(r)
	}

	chunks, err := Tokenize(r)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize %s: %w", page.URL, err)
	}
	return chunks, nil
}

// splitLines returns the non-blank lines of r.
func splitLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
