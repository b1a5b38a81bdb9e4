package feed

import (
	"errors"
	"testing"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Collegiate Starleague</title>
    <link>https://cstarleague.com</link>
    <description>News</description>
    <item>
      <title>Week 1 Recap</title>
      <description>&lt;p&gt;Short summary&lt;/p&gt;</description>
      <body><![CDATA[<p>Full <strong>story</strong></p>]]></body>
      <author>staff@cstarleague.com (Staff)</author>
      <guid>csl-1</guid>
      <pubDate>Mon, 01 Jan 2024 12:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Week 2 Recap</title>
      <description>Another summary</description>
      <guid>csl-2</guid>
      <pubDate>Mon, 08 Jan 2024 12:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	items, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	item1 := items[0]
	if item1.Title != "Week 1 Recap" {
		t.Errorf("Expected title 'Week 1 Recap', got: %s", item1.Title)
	}
	if item1.GUID != "csl-1" {
		t.Errorf("Expected GUID 'csl-1', got: %s", item1.GUID)
	}
	if item1.PubDate != "Mon, 01 Jan 2024 12:00:00 GMT" {
		t.Errorf("Expected raw pubDate to be preserved, got: %s", item1.PubDate)
	}
	if item1.Body != "<p>Full <strong>story</strong></p>" {
		t.Errorf("Expected body from custom element, got: %s", item1.Body)
	}
	if item1.Description == "" {
		t.Error("Expected description to be populated")
	}

	if items[1].Title != "Week 2 Recap" {
		t.Errorf("Expected channel order to be preserved, got: %s", items[1].Title)
	}
	if items[1].Body != "" {
		t.Errorf("Expected empty body for item without one, got: %s", items[1].Body)
	}
}

func TestParseFallsBackToEncodedContent(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Feed</title>
    <item>
      <title>Encoded</title>
      <content:encoded><![CDATA[<p>Encoded body</p>]]></content:encoded>
      <guid>enc-1</guid>
    </item>
  </channel>
</rss>`

	items, err := NewParser().Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}
	if items[0].Body != "<p>Encoded body</p>" {
		t.Errorf("Expected encoded content as body, got: %s", items[0].Body)
	}
}

func TestParseEmptyChannel(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Empty</title></channel></rss>`

	items, err := NewParser().Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error for empty channel, got: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected 0 items, got: %d", len(items))
	}
}

func TestParseInvalidFeed(t *testing.T) {
	inputs := map[string]string{
		"not xml":   "<not xml",
		"plain":     "invalid xml",
		"atom feed": `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"><title>x</title></feed>`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := NewParser().Run([]byte(input))
			if err == nil {
				t.Fatal("Expected error for invalid feed")
			}

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("Expected *ParseError, got %T", err)
			}
		})
	}
}
