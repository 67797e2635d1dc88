package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"hostelhub/internal/models"
)

// JoinRequestRepository 定义了加入申请数据操作的接口。
type JoinRequestRepository interface {
	Create(ctx context.Context, request *models.JoinRequest) error
	// GetByID 返回申请及其所属群组（用于队长权限判断）。
	GetByID(ctx context.Context, id uint) (*models.JoinRequest, error)
	// FindPending 查找 (groupID, userID) 的待处理申请，不存在时返回 (nil, nil)。
	FindPending(ctx context.Context, groupID, userID uint) (*models.JoinRequest, error)
	// ListForGroup 按创建时间升序返回群组的全部待处理申请（含申请人信息）。
	ListForGroup(ctx context.Context, groupID uint) ([]*models.JoinRequest, error)
	// Accept 在一个事务里写入成员记录并删除申请。插入在前、删除在后：
	// 任何一步失败整体回滚，不会出现申请没了但成员也没加上的状态。
	Accept(ctx context.Context, request *models.JoinRequest) error
	// Delete 删除申请（拒绝路径），返回受影响的行数。
	Delete(ctx context.Context, id uint) (int64, error)
}

// gormJoinRequestRepository 使用 GORM 实现 JoinRequestRepository。
type gormJoinRequestRepository struct {
	db *gorm.DB
}

// NewGormJoinRequestRepository 创建一个新的基于 GORM 的 JoinRequestRepository。
func NewGormJoinRequestRepository(db *gorm.DB) JoinRequestRepository {
	return &gormJoinRequestRepository{db: db}
}

// Create 创建一条新的加入申请。
func (r *gormJoinRequestRepository) Create(ctx context.Context, request *models.JoinRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetByID 通过ID检索申请，预加载所属群组。
func (r *gormJoinRequestRepository) GetByID(ctx context.Context, id uint) (*models.JoinRequest, error) {
	var request models.JoinRequest
	err := r.db.WithContext(ctx).Preload("Group").First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindPending 查找指定用户对指定群组的待处理申请。
func (r *gormJoinRequestRepository) FindPending(ctx context.Context, groupID, userID uint) (*models.JoinRequest, error) {
	var request models.JoinRequest
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// ListForGroup 返回群组的全部待处理申请。
func (r *gormJoinRequestRepository) ListForGroup(ctx context.Context, groupID uint) ([]*models.JoinRequest, error) {
	var requests []*models.JoinRequest
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Preload("User").
		Order("created_at ASC, id ASC").
		Find(&requests).Error
	return requests, err
}

// Accept 把申请转化为成员关系：插入 GroupMember，删除 JoinRequest，同一事务。
// 并发接受同一申请时，先提交者胜出，后提交者撞上成员表的唯一约束回滚。
func (r *gormJoinRequestRepository) Accept(ctx context.Context, request *models.JoinRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member := &models.GroupMember{
			GroupID:  request.GroupID,
			UserID:   request.UserID,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		return tx.Delete(&models.JoinRequest{}, request.ID).Error
	})
}

// Delete 删除申请。
func (r *gormJoinRequestRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.JoinRequest{}, id)
	return result.RowsAffected, result.Error
}
