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

// GroupService 定义了群组与成员生命周期的服务接口。
// (user, group) 关系的四种状态 none/pending/member/leader 由
// MembershipState 在读取时推导，所有状态迁移都经过这里。
type GroupService interface {
	CreateGroup(ctx context.Context, leaderID uint, name, description string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.GroupSummary, error)
	GetGroupDetails(ctx context.Context, groupID uint) (*models.Group, error)
	MembershipState(ctx context.Context, userID, groupID uint) (models.MembershipState, error)

	ListMembers(ctx context.Context, groupID uint) ([]*models.GroupMember, error)
	RemoveMember(ctx context.Context, callerID, groupID, targetUserID uint) error
	// LeaveGroup 返回群组是否因最后一名成员离开而被删除。
	LeaveGroup(ctx context.Context, userID, groupID uint) (groupDeleted bool, err error)

	RequestJoin(ctx context.Context, userID, groupID uint, message string) (*models.JoinRequest, error)
	ListJoinRequests(ctx context.Context, callerID, groupID uint) ([]*models.JoinRequestWithUser, error)
	AcceptJoinRequest(ctx context.Context, callerID, requestID uint) error
	DeclineJoinRequest(ctx context.Context, callerID, requestID uint) error
}

// groupService 是 GroupService 的实现。
type groupService struct {
	groupRepo storage.GroupRepository
	joinRepo  storage.JoinRequestRepository
	userRepo  storage.UserRepository
}

// NewGroupService 创建一个新的 GroupService 实例。
func NewGroupService(groupRepo storage.GroupRepository, joinRepo storage.JoinRequestRepository, userRepo storage.UserRepository) GroupService {
	return &groupService{groupRepo: groupRepo, joinRepo: joinRepo, userRepo: userRepo}
}

// CreateGroup 创建一个新的群组，创建者成为队长并同时写入成员记录。
// 创建者若对同一群组有历史遗留的待处理申请，这里不做自动清理。
func (s *groupService) CreateGroup(ctx context.Context, leaderID uint, name, description string) (*models.Group, error) {
	if name == "" {
		return nil, apperr.Validation("群组名称不能为空")
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		LeaderID:    leaderID,
	}
	if err := s.groupRepo.CreateWithLeader(ctx, group); err != nil {
		return nil, apperr.FromDB(err)
	}
	return group, nil
}

// ListGroups 返回全部群组及成员数。
func (s *groupService) ListGroups(ctx context.Context) ([]*models.GroupSummary, error) {
	return s.groupRepo.ListWithMemberCounts(ctx)
}

// GetGroupDetails 返回群组详情及完整成员列表。
func (s *groupService) GetGroupDetails(ctx context.Context, groupID uint) (*models.Group, error) {
	group, err := s.groupRepo.GetDetails(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("群组不存在")
		}
		return nil, fmt.Errorf("获取群组 %d 详情失败: %w", groupID, err)
	}
	return group, nil
}

// MembershipState 推导 (user, group) 对当前所处的状态。
func (s *groupService) MembershipState(ctx context.Context, userID, groupID uint) (models.MembershipState, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return "", err
	}
	if group.LeaderID == userID {
		return models.MembershipLeader, nil
	}

	_, err = s.groupRepo.GetMember(ctx, groupID, userID)
	if err == nil {
		return models.MembershipMember, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("查询成员记录失败: %w", err)
	}

	pending, err := s.joinRepo.FindPending(ctx, groupID, userID)
	if err != nil {
		return "", fmt.Errorf("查询加入申请失败: %w", err)
	}
	if pending != nil {
		return models.MembershipPending, nil
	}
	return models.MembershipNone, nil
}

// ListMembers 返回群组成员列表，按加入时间排序。
func (s *groupService) ListMembers(ctx context.Context, groupID uint) ([]*models.GroupMember, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.groupRepo.ListMembers(ctx, groupID)
}

// RemoveMember 由队长移除指定成员。队长不能移除自己，离开要走 LeaveGroup。
func (s *groupService) RemoveMember(ctx context.Context, callerID, groupID, targetUserID uint) error {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.LeaderID != callerID {
		return apperr.Forbidden("只有队长可以移除成员")
	}
	if targetUserID == callerID {
		return apperr.Validation("队长不能移除自己，请使用退出群组")
	}

	rows, err := s.groupRepo.RemoveMember(ctx, groupID, targetUserID)
	if err != nil {
		return fmt.Errorf("从群组 %d 移除用户 %d 失败: %w", groupID, targetUserID, err)
	}
	if rows == 0 {
		return apperr.NotFound("该用户不是群组成员")
	}
	return nil
}

// LeaveGroup 处理成员自助退出。
// 队长退出时触发交接：把队长身份交给加入最早的剩余成员；
// 没有其他成员时整组删除，子表记录由外键级联清理。
func (s *groupService) LeaveGroup(ctx context.Context, userID, groupID uint) (bool, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return false, err
	}

	if _, err := s.groupRepo.GetMember(ctx, groupID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.Forbidden("你不是该群组的成员")
		}
		return false, fmt.Errorf("查询成员记录失败: %w", err)
	}

	if group.LeaderID != userID {
		if _, err := s.groupRepo.RemoveMember(ctx, groupID, userID); err != nil {
			return false, fmt.Errorf("从群组 %d 移除用户 %d 失败: %w", groupID, userID, err)
		}
		return false, nil
	}

	successor, err := s.groupRepo.OldestMemberExcept(ctx, groupID, userID)
	if err != nil {
		return false, fmt.Errorf("查找继任队长失败: %w", err)
	}
	if successor == nil {
		// 队长是最后一名成员，解散群组
		if err := s.groupRepo.DeleteCascade(ctx, groupID); err != nil {
			return false, fmt.Errorf("删除群组 %d 失败: %w", groupID, err)
		}
		return true, nil
	}

	if err := s.groupRepo.TransferLeadership(ctx, groupID, successor.UserID, userID); err != nil {
		return false, fmt.Errorf("群组 %d 队长交接失败: %w", groupID, err)
	}
	return false, nil
}

// RequestJoin 创建加入申请。已是成员或已有待处理申请都视为冲突。
func (s *groupService) RequestJoin(ctx context.Context, userID, groupID uint, message string) (*models.JoinRequest, error) {
	state, err := s.MembershipState(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	switch state {
	case models.MembershipLeader, models.MembershipMember:
		return nil, apperr.Conflict("你已经是该群组的成员")
	case models.MembershipPending:
		return nil, apperr.Conflict("加入申请已发送，请等待队长处理")
	}

	request := &models.JoinRequest{
		GroupID: groupID,
		UserID:  userID,
		Message: message,
		Status:  models.JoinRequestStatusPending,
	}
	// 并发重复提交由 (group_id, user_id) 唯一约束兜底
	if err := s.joinRepo.Create(ctx, request); err != nil {
		return nil, apperr.FromDB(err)
	}
	return request, nil
}

// ListJoinRequests 返回群组的待处理申请，仅队长可见。
func (s *groupService) ListJoinRequests(ctx context.Context, callerID, groupID uint) ([]*models.JoinRequestWithUser, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.LeaderID != callerID {
		return nil, apperr.Forbidden("只有队长可以查看加入申请")
	}

	requests, err := s.joinRepo.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("获取群组 %d 的加入申请失败: %w", groupID, err)
	}

	result := make([]*models.JoinRequestWithUser, 0, len(requests))
	for _, req := range requests {
		result = append(result, &models.JoinRequestWithUser{
			JoinRequest: *req,
			Requester:   req.User.BasicInfo(),
		})
	}
	return result, nil
}

// AcceptJoinRequest 接受加入申请：写入成员记录并删除申请，存储层保证原子性。
// 同一申请被并发接受时，后提交者撞上唯一约束，映射为 Conflict。
func (s *groupService) AcceptJoinRequest(ctx context.Context, callerID, requestID uint) error {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Group.LeaderID != callerID {
		return apperr.Forbidden("只有队长可以处理加入申请")
	}

	if err := s.joinRepo.Accept(ctx, request); err != nil {
		return apperr.FromDB(err)
	}
	return nil
}

// DeclineJoinRequest 拒绝加入申请：直接删除申请记录，不做归档。
func (s *groupService) DeclineJoinRequest(ctx context.Context, callerID, requestID uint) error {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Group.LeaderID != callerID {
		return apperr.Forbidden("只有队长可以处理加入申请")
	}

	rows, err := s.joinRepo.Delete(ctx, requestID)
	if err != nil {
		return fmt.Errorf("删除加入申请 %d 失败: %w", requestID, err)
	}
	if rows == 0 {
		return apperr.NotFound("加入申请不存在")
	}
	return nil
}

func (s *groupService) getGroup(ctx context.Context, groupID uint) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("群组不存在")
		}
		return nil, fmt.Errorf("获取群组 %d 失败: %w", groupID, err)
	}
	return group, nil
}

func (s *groupService) getRequest(ctx context.Context, requestID uint) (*models.JoinRequest, error) {
	request, err := s.joinRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("加入申请不存在")
		}
		return nil, fmt.Errorf("获取加入申请 %d 失败: %w", requestID, err)
	}
	return request, nil
}
