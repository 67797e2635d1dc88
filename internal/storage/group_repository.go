package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"hostelhub/internal/models"
)

// GroupRepository 定义了群组与成员数据操作的接口。
// 涉及多条语句的流程（建组、队长交接、解散）在这里以事务收口，
// 服务层只做编排和权限判断。
type GroupRepository interface {
	// CreateWithLeader 在一个事务里创建群组并写入队长的成员记录。
	CreateWithLeader(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	// GetDetails 返回群组及其完整成员列表（含用户信息）。
	GetDetails(ctx context.Context, id uint) (*models.Group, error)
	// ListWithMemberCounts 返回全部群组及实时统计的成员数。
	ListWithMemberCounts(ctx context.Context) ([]*models.GroupSummary, error)
	// TransferLeadership 在一个事务里把 leader_id 交给 newLeaderID 并删除离开者的成员记录。
	TransferLeadership(ctx context.Context, groupID, newLeaderID, leavingUserID uint) error
	// DeleteCascade 物理删除群组，成员/申请/帖子/公告由外键级联清理。
	DeleteCascade(ctx context.Context, id uint) error

	AddMember(ctx context.Context, member *models.GroupMember) error
	GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error)
	// RemoveMember 删除成员记录，返回受影响的行数。
	RemoveMember(ctx context.Context, groupID, userID uint) (int64, error)
	// ListMembers 按加入时间（再按 ID）升序返回成员，顺序是确定的。
	ListMembers(ctx context.Context, groupID uint) ([]*models.GroupMember, error)
	// OldestMemberExcept 返回除 exceptUserID 外加入最早的成员，用于队长交接；
	// 没有其他成员时返回 (nil, nil)。
	OldestMemberExcept(ctx context.Context, groupID, exceptUserID uint) (*models.GroupMember, error)
	// ListUserGroups 返回用户作为成员所属的全部群组。
	ListUserGroups(ctx context.Context, userID uint) ([]*models.Group, error)
}

// gormGroupRepository 使用 GORM 实现 GroupRepository。
type gormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository 创建一个新的基于 GORM 的 GroupRepository。
func NewGormGroupRepository(db *gorm.DB) GroupRepository {
	return &gormGroupRepository{db: db}
}

// CreateWithLeader 创建群组并把队长写入成员表，两步同属一个事务。
func (r *gormGroupRepository) CreateWithLeader(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		leaderMember := &models.GroupMember{
			GroupID:  group.ID,
			UserID:   group.LeaderID,
			JoinedAt: group.CreatedAt,
		}
		return tx.Create(leaderMember).Error
	})
}

// GetByID 通过ID检索群组，不带关联。
func (r *gormGroupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).First(&group, id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetDetails 通过ID检索群组，预加载队长和成员信息。
func (r *gormGroupRepository) GetDetails(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).
		Preload("Leader").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC, id ASC")
		}).
		Preload("Members.User").
		First(&group, id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// ListWithMemberCounts 返回所有群组并统计成员数。
func (r *gormGroupRepository) ListWithMemberCounts(ctx context.Context) ([]*models.GroupSummary, error) {
	var summaries []*models.GroupSummary
	err := r.db.WithContext(ctx).
		Model(&models.Group{}).
		Select("groups.*, count(gm.id) AS member_count").
		Joins("LEFT JOIN group_members gm ON gm.group_id = groups.id").
		Group("groups.id").
		Order("groups.created_at DESC").
		Find(&summaries).Error
	return summaries, err
}

// TransferLeadership 更新 leader_id 并删除离开者的成员记录，原子执行。
func (r *gormGroupRepository) TransferLeadership(ctx context.Context, groupID, newLeaderID, leavingUserID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Group{}).
			Where("id = ?", groupID).
			Update("leader_id", newLeaderID).Error; err != nil {
			return err
		}
		return tx.Where("group_id = ? AND user_id = ?", groupID, leavingUserID).
			Delete(&models.GroupMember{}).Error
	})
}

// DeleteCascade 物理删除群组。子表记录依赖外键的 ON DELETE CASCADE 清理，
// 这里必须用 Unscoped：软删除不会触发数据库级联。
func (r *gormGroupRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.Group{}, id).Error
}

// AddMember 向群组中添加成员。重复添加违反 (group_id, user_id) 唯一约束，
// 由调用方把冲突映射为 Conflict。
func (r *gormGroupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetMember 获取群组中的特定成员信息。
func (r *gormGroupRepository) GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveMember 从群组中移除成员。
func (r *gormGroupRepository) RemoveMember(ctx context.Context, groupID, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{})
	return result.RowsAffected, result.Error
}

// ListMembers 获取群组的所有成员列表。
func (r *gormGroupRepository) ListMembers(ctx context.Context, groupID uint) ([]*models.GroupMember, error) {
	var members []*models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Preload("User").
		Order("joined_at ASC, id ASC").
		Find(&members).Error
	return members, err
}

// OldestMemberExcept 返回加入最早的其他成员。joined_at 相同按 id 升序，
// 保证队长交接的选择是可复现的。
func (r *gormGroupRepository) OldestMemberExcept(ctx context.Context, groupID, exceptUserID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id != ?", groupID, exceptUserID).
		Order("joined_at ASC, id ASC").
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// ListUserGroups 获取用户加入的所有群组列表。
func (r *gormGroupRepository) ListUserGroups(ctx context.Context, userID uint) ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", userID).
		Order("groups.created_at DESC").
		Find(&groups).Error
	return groups, err
}
