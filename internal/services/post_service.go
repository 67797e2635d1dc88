package services

import (
	"context"
	"errors"
	"fmt"

	"hostelhub/internal/apperr"
	"hostelhub/internal/models"
	"hostelhub/internal/storage"

	"gorm.io/gorm"
)

// PostService 定义了群组帖子相关服务的接口。
type PostService interface {
	CreatePost(ctx context.Context, authorID, groupID uint, title, content string) (*models.GroupPost, error)
	ListPosts(ctx context.Context, groupID uint) ([]*models.GroupPost, error)
}

// postService 是 PostService 的实现。
type postService struct {
	postRepo  storage.PostRepository
	groupRepo storage.GroupRepository
}

// NewPostService 创建一个新的 PostService 实例。
func NewPostService(postRepo storage.PostRepository, groupRepo storage.GroupRepository) PostService {
	return &postService{postRepo: postRepo, groupRepo: groupRepo}
}

// CreatePost 在群组中发帖。只要求调用者已认证，
// 不校验其是否是群组成员，与既有行为保持一致。
func (s *postService) CreatePost(ctx context.Context, authorID, groupID uint, title, content string) (*models.GroupPost, error) {
	if title == "" || content == "" {
		return nil, apperr.Validation("标题和内容不能为空")
	}

	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("群组不存在")
		}
		return nil, fmt.Errorf("获取群组 %d 失败: %w", groupID, err)
	}

	post := &models.GroupPost{
		GroupID:  groupID,
		AuthorID: authorID,
		Title:    title,
		Content:  content,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, apperr.FromDB(err)
	}
	return post, nil
}

// ListPosts 返回群组的帖子列表，最新的在前。
// 列表是公开的，群组不存在时返回空列表而不是 404。
func (s *postService) ListPosts(ctx context.Context, groupID uint) ([]*models.GroupPost, error) {
	return s.postRepo.ListForGroup(ctx, groupID)
}
