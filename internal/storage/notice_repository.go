package storage

import (
	"context"

	"gorm.io/gorm"

	"hostelhub/internal/models"
)

// NoticeRepository 定义了公告数据操作的接口。
type NoticeRepository interface {
	Create(ctx context.Context, notice *models.Notice) error
	// GetByID 返回公告及其所属群组（用于队长权限判断）。
	GetByID(ctx context.Context, id uint) (*models.Notice, error)
	Update(ctx context.Context, notice *models.Notice) error
	// Delete 删除公告，返回受影响的行数。
	Delete(ctx context.Context, id uint) (int64, error)
	// ListForGroup 按 置顶 > 优先级 > 创建时间 降序返回群组公告。
	ListForGroup(ctx context.Context, groupID uint) ([]*models.Notice, error)
}

// gormNoticeRepository 使用 GORM 实现 NoticeRepository。
type gormNoticeRepository struct {
	db *gorm.DB
}

// NewGormNoticeRepository 创建一个新的基于 GORM 的 NoticeRepository。
func NewGormNoticeRepository(db *gorm.DB) NoticeRepository {
	return &gormNoticeRepository{db: db}
}

// Create 创建一条新公告。
func (r *gormNoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	return r.db.WithContext(ctx).Create(notice).Error
}

// GetByID 通过ID检索公告，预加载所属群组。
func (r *gormNoticeRepository) GetByID(ctx context.Context, id uint) (*models.Notice, error) {
	var notice models.Notice
	err := r.db.WithContext(ctx).Preload("Group").First(&notice, id).Error
	if err != nil {
		return nil, err
	}
	return &notice, nil
}

// Update 保存公告的全部字段。部分更新的合并在服务层完成。
func (r *gormNoticeRepository) Update(ctx context.Context, notice *models.Notice) error {
	if notice.ID == 0 {
		return gorm.ErrMissingWhereClause
	}
	// Select("*") 保证 false/0 这类零值字段（例如取消置顶）也会被写入。
	return r.db.WithContext(ctx).Model(notice).Select("*").Omit("created_at").Updates(notice).Error
}

// Delete 删除公告。
func (r *gormNoticeRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Notice{}, id)
	return result.RowsAffected, result.Error
}

// ListForGroup 返回群组的公告列表。
func (r *gormNoticeRepository) ListForGroup(ctx context.Context, groupID uint) ([]*models.Notice, error) {
	var notices []*models.Notice
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Preload("Author").
		Order("is_pinned DESC, priority DESC, created_at DESC").
		Find(&notices).Error
	return notices, err
}
