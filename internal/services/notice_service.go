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

// NoticeUpdate 描述公告的部分更新，为 nil 的字段保持不变。
type NoticeUpdate struct {
	Title    *string
	Content  *string
	Priority *models.NoticePriority
	IsPinned *bool
}

// NoticeService 定义了群组公告相关服务的接口。
// 读公告要求调用者是成员或队长；写操作（创建/更新/删除/置顶）只允许队长。
type NoticeService interface {
	ListNotices(ctx context.Context, callerID, groupID uint) ([]*models.Notice, error)
	CreateNotice(ctx context.Context, callerID, groupID uint, title, content string, priority *models.NoticePriority) (*models.Notice, error)
	UpdateNotice(ctx context.Context, callerID, noticeID uint, update NoticeUpdate) (*models.Notice, error)
	DeleteNotice(ctx context.Context, callerID, noticeID uint) error
	TogglePin(ctx context.Context, callerID, noticeID uint) (*models.Notice, error)
}

// noticeService 是 NoticeService 的实现。
type noticeService struct {
	noticeRepo storage.NoticeRepository
	groupRepo  storage.GroupRepository
}

// NewNoticeService 创建一个新的 NoticeService 实例。
func NewNoticeService(noticeRepo storage.NoticeRepository, groupRepo storage.GroupRepository) NoticeService {
	return &noticeService{noticeRepo: noticeRepo, groupRepo: groupRepo}
}

// ListNotices 返回群组公告，按 置顶 > 优先级 > 创建时间 排序。
func (s *noticeService) ListNotices(ctx context.Context, callerID, groupID uint) ([]*models.Notice, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if group.LeaderID != callerID {
		if _, err := s.groupRepo.GetMember(ctx, groupID, callerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.Forbidden("只有群组成员可以查看公告")
			}
			return nil, fmt.Errorf("查询成员记录失败: %w", err)
		}
	}

	return s.noticeRepo.ListForGroup(ctx, groupID)
}

// CreateNotice 创建公告，默认置顶、普通优先级。
func (s *noticeService) CreateNotice(ctx context.Context, callerID, groupID uint, title, content string, priority *models.NoticePriority) (*models.Notice, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.LeaderID != callerID {
		return nil, apperr.Forbidden("只有队长可以发布公告")
	}
	if title == "" {
		return nil, apperr.Validation("公告标题不能为空")
	}

	notice := &models.Notice{
		GroupID:  groupID,
		AuthorID: callerID,
		Title:    title,
		Content:  content,
		Priority: models.NoticePriorityNormal,
		IsPinned: true,
	}
	if priority != nil {
		notice.Priority = *priority
	}

	if err := s.noticeRepo.Create(ctx, notice); err != nil {
		return nil, apperr.FromDB(err)
	}
	return notice, nil
}

// UpdateNotice 对公告做部分合并更新，只有提供的字段会被修改。
func (s *noticeService) UpdateNotice(ctx context.Context, callerID, noticeID uint, update NoticeUpdate) (*models.Notice, error) {
	notice, err := s.getNoticeForLeader(ctx, callerID, noticeID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		if *update.Title == "" {
			return nil, apperr.Validation("公告标题不能为空")
		}
		notice.Title = *update.Title
	}
	if update.Content != nil {
		notice.Content = *update.Content
	}
	if update.Priority != nil {
		notice.Priority = *update.Priority
	}
	if update.IsPinned != nil {
		notice.IsPinned = *update.IsPinned
	}

	if err := s.noticeRepo.Update(ctx, notice); err != nil {
		return nil, fmt.Errorf("更新公告 %d 失败: %w", noticeID, err)
	}
	return notice, nil
}

// DeleteNotice 删除公告。
func (s *noticeService) DeleteNotice(ctx context.Context, callerID, noticeID uint) error {
	if _, err := s.getNoticeForLeader(ctx, callerID, noticeID); err != nil {
		return err
	}

	rows, err := s.noticeRepo.Delete(ctx, noticeID)
	if err != nil {
		return fmt.Errorf("删除公告 %d 失败: %w", noticeID, err)
	}
	if rows == 0 {
		return apperr.NotFound("公告不存在")
	}
	return nil
}

// TogglePin 切换公告的置顶状态。没有自动取消置顶的策略，只有这里手动切换。
func (s *noticeService) TogglePin(ctx context.Context, callerID, noticeID uint) (*models.Notice, error) {
	notice, err := s.getNoticeForLeader(ctx, callerID, noticeID)
	if err != nil {
		return nil, err
	}

	notice.IsPinned = !notice.IsPinned
	if err := s.noticeRepo.Update(ctx, notice); err != nil {
		return nil, fmt.Errorf("切换公告 %d 置顶状态失败: %w", noticeID, err)
	}
	return notice, nil
}

// getNoticeForLeader 获取公告并校验调用者是其所属群组的队长。
func (s *noticeService) getNoticeForLeader(ctx context.Context, callerID, noticeID uint) (*models.Notice, error) {
	notice, err := s.noticeRepo.GetByID(ctx, noticeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("公告不存在")
		}
		return nil, fmt.Errorf("获取公告 %d 失败: %w", noticeID, err)
	}
	if notice.Group.LeaderID != callerID {
		return nil, apperr.Forbidden("只有队长可以管理公告")
	}
	return notice, nil
}

func (s *noticeService) getGroup(ctx context.Context, groupID uint) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("群组不存在")
		}
		return nil, fmt.Errorf("获取群组 %d 失败: %w", groupID, err)
	}
	return group, nil
}
