package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var _ ContentRepository = (*ContentRepo)(nil)

// ContentRepo handles database operations for imported content items and
// their taxonomy terms.
type ContentRepo struct {
	db *DB
}

func NewContentRepository(db *DB) *ContentRepo {
	return &ContentRepo{db: db}
}

// CreateContentItem inserts a new content item and returns its identifier.
func (r *ContentRepo) CreateContentItem(ctx context.Context, item NewContentItem) (int64, error) {
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO content_items (title, excerpt, body, author_id, published_at, guid, status)
		VALUES (:title, :excerpt, :body, :author_id, :published_at, :guid, :status)
	`, item)
	if err != nil {
		return 0, fmt.Errorf("failed to insert content item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read content item id: %w", err)
	}

	return id, nil
}

// ContentItemExists reports whether an item with this exact title and
// publish timestamp is already stored.
func (r *ContentRepo) ContentItemExists(ctx context.Context, title, publishedAt string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM content_items WHERE title = ? AND published_at = ?
		)
	`, title, publishedAt)
	if err != nil {
		return false, fmt.Errorf("failed to check content item existence: %w", err)
	}
	return exists, nil
}

// AttachTerms adds terms of one taxonomy to an item. Terms already attached
// are left as they are.
func (r *ContentRepo) AttachTerms(ctx context.Context, itemID int64, terms []string, taxonomy string) error {
	if len(terms) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, term := range terms {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO content_terms (item_id, taxonomy, term)
			VALUES (?, ?, ?)
		`, itemID, taxonomy, term)
		if err != nil {
			return fmt.Errorf("failed to attach %s term %q: %w", taxonomy, term, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit terms: %w", err)
	}

	return nil
}

// SetFeaturedMedia records mediaID as the item's cover media.
func (r *ContentRepo) SetFeaturedMedia(ctx context.Context, itemID int64, mediaID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE content_items SET featured_media_id = ? WHERE id = ?
	`, mediaID, itemID)
	if err != nil {
		return fmt.Errorf("failed to set featured media: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("content item %d not found", itemID)
	}

	return nil
}

func (r *ContentRepo) GetContentItem(ctx context.Context, itemID int64) (*ContentItem, error) {
	var item ContentItem
	err := r.db.GetContext(ctx, &item, `
		SELECT id, title, excerpt, body, author_id, published_at, guid, status,
		       featured_media_id, created_at
		FROM content_items
		WHERE id = ?
	`, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}
	return &item, nil
}

// ListContentItems returns the most recently imported items first.
func (r *ContentRepo) ListContentItems(ctx context.Context, limit int) ([]ContentItem, error) {
	items := []ContentItem{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, title, excerpt, body, author_id, published_at, guid, status,
		       featured_media_id, created_at
		FROM content_items
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}
	return items, nil
}

// GetTerms returns the item's terms grouped by taxonomy.
func (r *ContentRepo) GetTerms(ctx context.Context, itemID int64) (map[string][]string, error) {
	var terms []Term
	err := r.db.SelectContext(ctx, &terms, `
		SELECT item_id, taxonomy, term
		FROM content_terms
		WHERE item_id = ?
		ORDER BY taxonomy, term
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get terms: %w", err)
	}

	grouped := make(map[string][]string)
	for _, t := range terms {
		grouped[t.Taxonomy] = append(grouped[t.Taxonomy], t.Term)
	}
	return grouped, nil
}

func (r *ContentRepo) GetContentItemCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM content_items"); err != nil {
		return 0, fmt.Errorf("failed to get content item count: %w", err)
	}
	return count, nil
}
