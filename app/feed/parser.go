package feed

import (
	"bytes"
	"cmp"
	"errors"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
)

var errNotRSS = errors.New("document is not an RSS channel")

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses an RSS document into its items in channel order. A channel
// without items yields an empty slice and no error.
func (p *Parser) Run(data []byte) ([]RawItem, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	if feed.FeedType != "rss" {
		return nil, &ParseError{Err: errNotRSS}
	}

	return lo.Map(feed.Items, func(item *gofeed.Item, _ int) RawItem {
		return p.convertItem(item)
	}), nil
}

func (p *Parser) convertItem(item *gofeed.Item) RawItem {
	raw := RawItem{
		Title:       item.Title,
		Description: item.Description,
		Body:        cmp.Or(customElement(item, "body"), item.Content),
		PubDate:     strings.TrimSpace(item.Published),
		GUID:        strings.TrimSpace(item.GUID),
	}

	if item.Author != nil {
		raw.Author = strings.TrimSpace(item.Author.Name)
	}

	return raw
}

func customElement(item *gofeed.Item, name string) string {
	if item.Custom == nil {
		return ""
	}
	return item.Custom[name]
}
