package importer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/lysyi3m/csl-import/app/feed"
)

const (
	ConferenceTerm = "Collegiate Starleague"
	SchoolTerm     = "eSports"
)

// DefaultTags is the tag set every imported item starts with.
var DefaultTags = []string{"eSports"}

// TagProvider customizes the tags of a freshly created item. It receives the
// default tags, the new item id and the raw feed item, and returns the tags
// it wants attached. Its result is merged with the defaults.
type TagProvider func(defaults []string, itemID int64, raw feed.RawItem) ([]string, error)

// StaticTagProvider adds a fixed list of tags to every item.
func StaticTagProvider(extra ...string) TagProvider {
	return func(defaults []string, _ int64, _ feed.RawItem) ([]string, error) {
		return append(append([]string{}, defaults...), extra...), nil
	}
}

func resolveTags(provider TagProvider, itemID int64, raw feed.RawItem) []string {
	defaults := append([]string{}, DefaultTags...)
	if provider == nil {
		return defaults
	}

	custom, err := callProvider(provider, defaults, itemID, raw)
	if err != nil {
		slog.Warn("Tag provider failed, using default tags", "item_id", itemID, "error", err)
		return append([]string{}, DefaultTags...)
	}

	tags := append(append([]string{}, DefaultTags...), custom...)
	tags = lo.Map(tags, func(tag string, _ int) string { return strings.TrimSpace(tag) })

	return lo.Uniq(lo.Compact(tags))
}

func callProvider(provider TagProvider, defaults []string, itemID int64, raw feed.RawItem) (tags []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tag provider panic: %v", r)
		}
	}()

	return provider(defaults, itemID, raw)
}
