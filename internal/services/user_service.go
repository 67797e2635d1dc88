package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hostelhub/internal/apperr"
	"hostelhub/internal/models"
	"hostelhub/internal/storage"

	"gorm.io/gorm"
)

// UserService 定义了用户资料相关服务的接口。
type UserService interface {
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
	// UpdateProfile 做部分更新：为 nil 的字段保持不变。
	UpdateProfile(ctx context.Context, userID uint, name, email *string) (*models.User, error)
	// ListGroups 返回用户作为成员所属的全部群组。
	ListGroups(ctx context.Context, userID uint) ([]*models.Group, error)
}

// userService 是 UserService 的实现。
type userService struct {
	userRepo  storage.UserRepository
	groupRepo storage.GroupRepository
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo storage.UserRepository, groupRepo storage.GroupRepository) UserService {
	return &userService{userRepo: userRepo, groupRepo: groupRepo}
}

// GetProfile 返回当前用户的资料。
func (s *userService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("用户不存在")
		}
		return nil, fmt.Errorf("获取用户 %d 失败: %w", userID, err)
	}
	return user, nil
}

// UpdateProfile 更新当前用户的资料。
// 换邮箱时检查新邮箱是否已被其他账号占用；是否在允许名单内不做复核，
// 与注册时的行为不同，这是沿用下来的历史语义。
func (s *userService) UpdateProfile(ctx context.Context, userID uint, name, email *string) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email != nil {
		newEmail := strings.TrimSpace(*email)
		if newEmail == "" {
			return nil, apperr.Validation("邮箱不能为空")
		}
		if newEmail != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, newEmail)
			if err == nil && existing.ID != userID {
				return nil, apperr.Conflict("该邮箱已被占用")
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("检查邮箱时出错: %w", err)
			}
			user.Email = newEmail
		}
	}
	if name != nil {
		user.Name = *name
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperr.FromDB(err)
	}
	return user, nil
}

// ListGroups 返回用户所属的群组列表。
func (s *userService) ListGroups(ctx context.Context, userID uint) ([]*models.Group, error) {
	return s.groupRepo.ListUserGroups(ctx, userID)
}
