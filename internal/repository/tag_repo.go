package repository

import (
	"context"
	"fmt"

	"mnemo/internal/database"
)

// TagRepository stores the explicit tag hierarchy that seeds the knowledge
// graph's parent-to-child edges.
type TagRepository struct {
	db *database.DB
}

// NewTagRepository creates a tag repository.
func NewTagRepository(db *database.DB) *TagRepository {
	return &TagRepository{db: db}
}

// GetTagHierarchy returns the tag-to-parent mapping. Tags without a parent
// entry are branch roots.
func (r *TagRepository) GetTagHierarchy(_ context.Context) (map[string]string, error) {
	rows, err := r.db.Query(`SELECT tag, parent FROM tag_hierarchy WHERE parent IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("get tag hierarchy: %w", err)
	}
	defer rows.Close()

	hierarchy := make(map[string]string)
	for rows.Next() {
		var tag, parent string
		if err := rows.Scan(&tag, &parent); err != nil {
			return nil, fmt.Errorf("scan tag hierarchy: %w", err)
		}
		hierarchy[tag] = parent
	}
	return hierarchy, rows.Err()
}

// SetTagParent records or replaces a tag's parent.
func (r *TagRepository) SetTagParent(_ context.Context, tag, parent string) error {
	result, err := r.db.Exec(`UPDATE tag_hierarchy SET parent = ? WHERE tag = ?`, parent, tag)
	if err != nil {
		return fmt.Errorf("set tag parent: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set tag parent: %w", err)
	}
	if n == 0 {
		if _, err := r.db.Exec(`INSERT INTO tag_hierarchy (tag, parent) VALUES (?, ?)`, tag, parent); err != nil {
			return fmt.Errorf("set tag parent: %w", err)
		}
	}
	return nil
}
