package repository

import (
	"context"

	"conduit/internal/cache"
	"conduit/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	ListNames(ctx context.Context) ([]string, error)
	EnsureTags(ctx context.Context, names []string) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// ListNames returns every known tag name. The list is cached in Redis and
// invalidated when article creation introduces new tags.
func (r *tagRepository) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	err := cache.Aside(ctx, cache.TagListKey(), &names, cache.TagListTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Tag{}).
			Order("name").
			Pluck("name", &names).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return names, nil
}

// EnsureTags creates the tags that don't exist yet and returns the full set.
func (r *tagRepository) EnsureTags(ctx context.Context, names []string) ([]models.Tag, error) {
	tags, err := ensureTags(r.db.WithContext(ctx), names)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

// ensureTags lazily creates missing tags inside the caller's transaction.
// Duplicate names in the input collapse to a single tag.
func ensureTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	seen := make(map[string]bool, len(names))
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var tag models.Tag
		if err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
