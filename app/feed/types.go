package feed

import (
	"errors"
	"fmt"
)

// RawItem is one <item> of the source channel, as delivered.
type RawItem struct {
	Title       string
	Description string
	Body        string // custom <body> element, not the description
	Author      string // carried through but never used for attribution
	PubDate     string
	GUID        string
}

// Record is a normalized item ready for the insertion gate. It is built once
// by the Normalizer and never mutated afterwards.
type Record struct {
	Title       string
	Excerpt     string
	Body        string
	AuthorID    int64
	PublishedAt string // YYYY-MM-DD HH:MM:SS in the site timezone
	GUID        string
	Status      string
}

// PublishedAtLayout is the storage layout of Record.PublishedAt.
const PublishedAtLayout = "2006-01-02 15:04:05"

var ErrEmptyResponse = errors.New("empty response body")

// FetchError reports a transport failure: connection, timeout, bad status or
// an empty body.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports a document that is not a well-formed feed.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
