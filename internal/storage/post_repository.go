package storage

import (
	"context"

	"gorm.io/gorm"

	"hostelhub/internal/models"
)

// PostRepository defines the interface for group post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.GroupPost) error
	// ListForGroup returns the group's posts, newest first, with author info.
	ListForGroup(ctx context.Context, groupID uint) ([]*models.GroupPost, error)
}

// gormPostRepository implements PostRepository using GORM.
type gormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-based PostRepository.
func NewGormPostRepository(db *gorm.DB) PostRepository {
	return &gormPostRepository{db: db}
}

// Create creates a new post record in the database.
func (r *gormPostRepository) Create(ctx context.Context, post *models.GroupPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// ListForGroup retrieves all posts of a group ordered by recency.
func (r *gormPostRepository) ListForGroup(ctx context.Context, groupID uint) ([]*models.GroupPost, error) {
	var posts []*models.GroupPost
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Preload("Author").
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}
