package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hostelhub/internal/allowlist"
	"hostelhub/internal/apperr"
	"hostelhub/internal/auth"
	"hostelhub/internal/config"
	"hostelhub/internal/models"
	"hostelhub/internal/storage"

	"gorm.io/gorm"
)

// AuthService 定义了用户认证服务的接口。
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (token string, user *models.User, err error)
}

// authService 是 AuthService 的实现。
type authService struct {
	userRepo storage.UserRepository
	allow    *allowlist.Store
	cfg      config.Config // 包含 AuthConfig
}

// NewAuthService 创建一个新的 AuthService 实例。
func NewAuthService(userRepo storage.UserRepository, allow *allowlist.Store, cfg config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		allow:    allow,
		cfg:      cfg,
	}
}

// Register 处理用户注册逻辑。邮箱必须在允许名单中，且未被占用。
func (s *authService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("邮箱和密码不能为空")
	}

	// 允许名单优先于一切其他检查：名单外的邮箱无论密码如何都拒绝
	if !s.allow.IsAllowed(email) {
		return nil, apperr.Forbidden("该邮箱不在允许注册的名单中")
	}

	// 检查邮箱是否已被注册
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, apperr.Conflict("用户已存在")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("检查邮箱时出错: %w", err)
	}

	hashedPassword, err := auth.HashPassword(password, s.cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	newUser := &models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
	}

	// 并发注册同一邮箱时由唯一索引兜底，映射为 Conflict
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, apperr.FromDB(err)
	}

	return newUser, nil
}

// Login 处理用户登录逻辑。
// 未知邮箱和错误密码返回同一个 401，不向调用方区分两种失败。
func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.Unauthenticated("邮箱或密码错误")
		}
		return "", nil, fmt.Errorf("通过邮箱查找用户失败: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, apperr.Unauthenticated("邮箱或密码错误")
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.cfg.Auth)
	if err != nil {
		return "", nil, fmt.Errorf("生成令牌失败: %w", err)
	}

	return token, user, nil
}
