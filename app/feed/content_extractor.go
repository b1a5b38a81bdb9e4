package feed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-shiori/go-readability"
	"golang.org/x/text/unicode/norm"
)

var errNoReadableText = errors.New("no readable text in HTML")

// ContentExtractor pulls the readable text out of an item body.
type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

func (e *ContentExtractor) Run(body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", errNoReadableText
	}

	article, err := readability.FromReader(strings.NewReader(body), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	text := strings.Join(strings.Fields(norm.NFC.String(article.TextContent)), " ")
	if text == "" {
		return "", errNoReadableText
	}

	return text, nil
}
