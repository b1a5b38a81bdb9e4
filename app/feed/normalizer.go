package feed

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"

	"github.com/lysyi3m/csl-import/app/options"
)

const (
	// FallbackAuthorID is used when no default author is configured.
	FallbackAuthorID int64 = 1

	excerptWordLimit = 55
)

var errEmptyDate = errors.New("publish date is empty")

// Normalizer maps a RawItem onto a Record through independent field
// handlers. Handlers never see each other's output, so a failure in one of
// them only degrades its own field.
type Normalizer struct {
	htmlPolicy      *bluemonday.Policy
	stripTagsPolicy *bluemonday.Policy
	extractor       *ContentExtractor
	location        *time.Location
	handlers        []fieldHandler
}

type fieldHandler struct {
	field string
	run   func(raw RawItem, opts options.Options, rec *Record) error
}

func NewNormalizer(location *time.Location) *Normalizer {
	if location == nil {
		location = time.UTC
	}

	n := &Normalizer{
		htmlPolicy:      bluemonday.UGCPolicy(),
		stripTagsPolicy: bluemonday.StripTagsPolicy(),
		extractor:       NewContentExtractor(),
		location:        location,
	}

	n.handlers = []fieldHandler{
		{field: "title", run: n.title},
		{field: "excerpt", run: n.excerpt},
		{field: "body", run: n.body},
		{field: "author", run: n.author},
		{field: "published_at", run: n.publishedAt},
		{field: "guid", run: n.guid},
		{field: "status", run: n.status},
	}

	return n
}

func (n *Normalizer) Run(raw RawItem, opts options.Options) Record {
	rec := Record{
		AuthorID:    FallbackAuthorID,
		PublishedAt: n.formatTime(time.Unix(0, 0)),
		Status:      options.StatusPublished,
	}

	for _, h := range n.handlers {
		if err := n.apply(h, raw, opts, &rec); err != nil {
			slog.Warn("Field degraded during normalization", "field", h.field, "guid", raw.GUID, "error", err)
		}
	}

	return rec
}

// apply confines a handler failure, panics included, to its own field.
func (n *Normalizer) apply(h fieldHandler, raw RawItem, opts options.Options, rec *Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return h.run(raw, opts, rec)
}

func (n *Normalizer) title(raw RawItem, _ options.Options, rec *Record) error {
	rec.Title = n.plainText(raw.Title)
	return nil
}

func (n *Normalizer) excerpt(raw RawItem, _ options.Options, rec *Record) error {
	rec.Excerpt = n.plainText(raw.Description)
	if rec.Excerpt != "" || strings.TrimSpace(raw.Body) == "" {
		return nil
	}

	rec.Excerpt = truncateWords(n.bodyText(html.UnescapeString(raw.Body)), excerptWordLimit)
	return nil
}

func (n *Normalizer) body(raw RawItem, _ options.Options, rec *Record) error {
	rec.Body = strings.TrimSpace(n.htmlPolicy.Sanitize(html.UnescapeString(raw.Body)))
	return nil
}

func (n *Normalizer) author(_ RawItem, opts options.Options, rec *Record) error {
	rec.AuthorID = FallbackAuthorID
	if opts.DefaultAuthorID != nil && *opts.DefaultAuthorID > 0 {
		rec.AuthorID = *opts.DefaultAuthorID
	}
	return nil
}

func (n *Normalizer) publishedAt(raw RawItem, _ options.Options, rec *Record) error {
	published, err := n.parseDate(raw.PubDate)
	if err != nil {
		rec.PublishedAt = n.formatTime(time.Unix(0, 0))
		return fmt.Errorf("unparseable publish date %q: %w", raw.PubDate, err)
	}
	rec.PublishedAt = n.formatTime(published)
	return nil
}

func (n *Normalizer) guid(raw RawItem, _ options.Options, rec *Record) error {
	rec.GUID = n.plainText(raw.GUID)
	return nil
}

func (n *Normalizer) status(_ RawItem, opts options.Options, rec *Record) error {
	rec.Status = options.StatusPublished
	if opts.PostStatus != nil && options.KnownStatuses[*opts.PostStatus] {
		rec.Status = *opts.PostStatus
	}
	return nil
}

func (n *Normalizer) parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errEmptyDate
	}
	// Dates without a zone are read as UTC.
	return dateparse.ParseIn(numericZone(value), time.UTC)
}

// rfc822Zones are the North American zone names RFC 822 allows in dates.
var rfc822Zones = map[string]string{
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

// numericZone rewrites a trailing RFC 822 zone name as its offset.
// time.Parse would otherwise give an unknown abbreviation a zero offset.
func numericZone(value string) string {
	idx := strings.LastIndexByte(value, ' ')
	if idx < 0 {
		return value
	}
	if offset, ok := rfc822Zones[strings.ToUpper(value[idx+1:])]; ok {
		return value[:idx+1] + offset
	}
	return value
}

func (n *Normalizer) formatTime(t time.Time) string {
	return t.In(n.location).Format(PublishedAtLayout)
}

// Plain text fields never keep angle brackets, even literal ones.
var angleBrackets = strings.NewReplacer("<", " ", ">", " ")

// plainText strips every tag, decodes entities and collapses whitespace.
func (n *Normalizer) plainText(value string) string {
	text := html.UnescapeString(n.stripTagsPolicy.Sanitize(value))
	if strings.ContainsAny(text, "<>") {
		// Escaped markup decodes into real tags on the first pass.
		text = html.UnescapeString(n.stripTagsPolicy.Sanitize(text))
	}
	text = angleBrackets.Replace(text)
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

func (n *Normalizer) bodyText(body string) string {
	if text, err := n.extractor.Run(body); err == nil {
		return text
	}
	return n.plainText(body)
}

func truncateWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ") + " …"
}
