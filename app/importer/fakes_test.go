package importer

import (
	"context"
	"errors"
	"sync"

	"github.com/lysyi3m/csl-import/app/database"
	"github.com/lysyi3m/csl-import/app/options"
)

var errStore = errors.New("store unavailable")

// memoryStore is an in-memory content store with failure switches.
type memoryStore struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]database.ContentItem
	terms  map[int64]map[string][]string

	failCreate   bool
	failExists   bool
	failTaxonomy map[string]bool
	failMedia    bool
}

var _ database.ContentRepository = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{
		items:        make(map[int64]database.ContentItem),
		terms:        make(map[int64]map[string][]string),
		failTaxonomy: make(map[string]bool),
	}
}

func (s *memoryStore) CreateContentItem(_ context.Context, item database.NewContentItem) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCreate {
		return 0, errStore
	}

	s.nextID++
	s.items[s.nextID] = database.ContentItem{
		ID:          s.nextID,
		Title:       item.Title,
		Excerpt:     item.Excerpt,
		Body:        item.Body,
		AuthorID:    item.AuthorID,
		PublishedAt: item.PublishedAt,
		GUID:        item.GUID,
		Status:      item.Status,
	}
	return s.nextID, nil
}

func (s *memoryStore) ContentItemExists(_ context.Context, title, publishedAt string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failExists {
		return false, errStore
	}

	for _, item := range s.items {
		if item.Title == title && item.PublishedAt == publishedAt {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) AttachTerms(_ context.Context, itemID int64, terms []string, taxonomy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failTaxonomy[taxonomy] {
		return errStore
	}

	if s.terms[itemID] == nil {
		s.terms[itemID] = make(map[string][]string)
	}
	s.terms[itemID][taxonomy] = append(s.terms[itemID][taxonomy], terms...)
	return nil
}

func (s *memoryStore) SetFeaturedMedia(_ context.Context, itemID int64, mediaID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failMedia {
		return errStore
	}

	item, ok := s.items[itemID]
	if !ok {
		return errors.New("not found")
	}
	item.FeaturedMediaID = &mediaID
	s.items[itemID] = item
	return nil
}

func (s *memoryStore) GetContentItem(_ context.Context, itemID int64) (*database.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *memoryStore) ListContentItems(_ context.Context, limit int) ([]database.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]database.ContentItem, 0, len(s.items))
	for id := s.nextID; id > 0 && len(items) < limit; id-- {
		if item, ok := s.items[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *memoryStore) GetTerms(_ context.Context, itemID int64) (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]string)
	for taxonomy, terms := range s.terms[itemID] {
		out[taxonomy] = append([]string{}, terms...)
	}
	return out, nil
}

func (s *memoryStore) GetContentItemCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

type staticOptions struct {
	opts options.Options
	err  error
}

func (s staticOptions) Load() (options.Options, error) {
	return s.opts, s.err
}
