package services

// 服务层测试使用的内存版仓库。行为对齐 GORM 实现：
// 找不到记录返回 gorm.ErrRecordNotFound，唯一约束冲突返回 gorm.ErrDuplicatedKey。

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"hostelhub/internal/models"
)

var fakeEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeClock 发出严格递增的时间戳，保证排序测试是确定的。
type fakeClock struct {
	seq int
}

func (c *fakeClock) tick() time.Time {
	c.seq++
	return fakeEpoch.Add(time.Duration(c.seq) * time.Second)
}

type fakeUserRepo struct {
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	user.ID = f.nextID
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, u := range f.users {
		if u.ID != user.ID && u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

type fakeGroupRepo struct {
	clock        *fakeClock
	nextGroupID  uint
	nextMemberID uint
	groups       map[uint]*models.Group
	members      []*models.GroupMember
}

func newFakeGroupRepo(clock *fakeClock) *fakeGroupRepo {
	return &fakeGroupRepo{clock: clock, groups: make(map[uint]*models.Group)}
}

func (f *fakeGroupRepo) CreateWithLeader(_ context.Context, group *models.Group) error {
	f.nextGroupID++
	group.ID = f.nextGroupID
	group.CreatedAt = f.clock.tick()
	cp := *group
	f.groups[group.ID] = &cp

	f.nextMemberID++
	f.members = append(f.members, &models.GroupMember{
		ID:       f.nextMemberID,
		GroupID:  group.ID,
		UserID:   group.LeaderID,
		JoinedAt: group.CreatedAt,
	})
	return nil
}

func (f *fakeGroupRepo) GetByID(_ context.Context, id uint) (*models.Group, error) {
	group, ok := f.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *group
	return &cp, nil
}

func (f *fakeGroupRepo) GetDetails(ctx context.Context, id uint) (*models.Group, error) {
	group, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	members, _ := f.ListMembers(ctx, id)
	for _, m := range members {
		group.Members = append(group.Members, *m)
	}
	return group, nil
}

func (f *fakeGroupRepo) ListWithMemberCounts(_ context.Context) ([]*models.GroupSummary, error) {
	var summaries []*models.GroupSummary
	for _, group := range f.groups {
		summary := &models.GroupSummary{Group: *group}
		for _, m := range f.members {
			if m.GroupID == group.ID {
				summary.MemberCount++
			}
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (f *fakeGroupRepo) TransferLeadership(_ context.Context, groupID, newLeaderID, leavingUserID uint) error {
	group, ok := f.groups[groupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	group.LeaderID = newLeaderID
	f.deleteMember(groupID, leavingUserID)
	return nil
}

func (f *fakeGroupRepo) DeleteCascade(_ context.Context, id uint) error {
	delete(f.groups, id)
	kept := f.members[:0]
	for _, m := range f.members {
		if m.GroupID != id {
			kept = append(kept, m)
		}
	}
	f.members = kept
	return nil
}

func (f *fakeGroupRepo) AddMember(_ context.Context, member *models.GroupMember) error {
	for _, m := range f.members {
		if m.GroupID == member.GroupID && m.UserID == member.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextMemberID++
	member.ID = f.nextMemberID
	cp := *member
	f.members = append(f.members, &cp)
	return nil
}

func (f *fakeGroupRepo) GetMember(_ context.Context, groupID, userID uint) (*models.GroupMember, error) {
	for _, m := range f.members {
		if m.GroupID == groupID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGroupRepo) RemoveMember(_ context.Context, groupID, userID uint) (int64, error) {
	return f.deleteMember(groupID, userID), nil
}

func (f *fakeGroupRepo) ListMembers(_ context.Context, groupID uint) ([]*models.GroupMember, error) {
	var members []*models.GroupMember
	for _, m := range f.members {
		if m.GroupID == groupID {
			cp := *m
			members = append(members, &cp)
		}
	}
	sortMembers(members)
	return members, nil
}

func (f *fakeGroupRepo) OldestMemberExcept(_ context.Context, groupID, exceptUserID uint) (*models.GroupMember, error) {
	var candidates []*models.GroupMember
	for _, m := range f.members {
		if m.GroupID == groupID && m.UserID != exceptUserID {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sortMembers(candidates)
	cp := *candidates[0]
	return &cp, nil
}

func (f *fakeGroupRepo) ListUserGroups(_ context.Context, userID uint) ([]*models.Group, error) {
	var groups []*models.Group
	for _, m := range f.members {
		if m.UserID != userID {
			continue
		}
		if group, ok := f.groups[m.GroupID]; ok {
			cp := *group
			groups = append(groups, &cp)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
	return groups, nil
}

func (f *fakeGroupRepo) deleteMember(groupID, userID uint) int64 {
	var removed int64
	kept := f.members[:0]
	for _, m := range f.members {
		if m.GroupID == groupID && m.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	f.members = kept
	return removed
}

func sortMembers(members []*models.GroupMember) {
	sort.Slice(members, func(i, j int) bool {
		if !members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].JoinedAt.Before(members[j].JoinedAt)
		}
		return members[i].ID < members[j].ID
	})
}

type fakeJoinRequestRepo struct {
	clock    *fakeClock
	nextID   uint
	requests map[uint]*models.JoinRequest
	groups   *fakeGroupRepo
	users    *fakeUserRepo
}

func newFakeJoinRequestRepo(clock *fakeClock, groups *fakeGroupRepo, users *fakeUserRepo) *fakeJoinRequestRepo {
	return &fakeJoinRequestRepo{
		clock:    clock,
		requests: make(map[uint]*models.JoinRequest),
		groups:   groups,
		users:    users,
	}
}

func (f *fakeJoinRequestRepo) Create(_ context.Context, request *models.JoinRequest) error {
	for _, r := range f.requests {
		if r.GroupID == request.GroupID && r.UserID == request.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	request.ID = f.nextID
	request.CreatedAt = f.clock.tick()
	cp := *request
	f.requests[request.ID] = &cp
	return nil
}

func (f *fakeJoinRequestRepo) GetByID(_ context.Context, id uint) (*models.JoinRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *request
	if group, ok := f.groups.groups[cp.GroupID]; ok {
		cp.Group = *group
	}
	return &cp, nil
}

func (f *fakeJoinRequestRepo) FindPending(_ context.Context, groupID, userID uint) (*models.JoinRequest, error) {
	for _, r := range f.requests {
		if r.GroupID == groupID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeJoinRequestRepo) ListForGroup(_ context.Context, groupID uint) ([]*models.JoinRequest, error) {
	var requests []*models.JoinRequest
	for _, r := range f.requests {
		if r.GroupID != groupID {
			continue
		}
		cp := *r
		if user, ok := f.users.users[cp.UserID]; ok {
			cp.User = *user
		}
		requests = append(requests, &cp)
	}
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].CreatedAt.Before(requests[j].CreatedAt)
		}
		return requests[i].ID < requests[j].ID
	})
	return requests, nil
}

func (f *fakeJoinRequestRepo) Accept(ctx context.Context, request *models.JoinRequest) error {
	member := &models.GroupMember{
		GroupID:  request.GroupID,
		UserID:   request.UserID,
		JoinedAt: f.clock.tick(),
	}
	if err := f.groups.AddMember(ctx, member); err != nil {
		return err
	}
	delete(f.requests, request.ID)
	return nil
}

func (f *fakeJoinRequestRepo) Delete(_ context.Context, id uint) (int64, error) {
	if _, ok := f.requests[id]; !ok {
		return 0, nil
	}
	delete(f.requests, id)
	return 1, nil
}

type fakeNoticeRepo struct {
	clock   *fakeClock
	nextID  uint
	notices map[uint]*models.Notice
	groups  *fakeGroupRepo
}

func newFakeNoticeRepo(clock *fakeClock, groups *fakeGroupRepo) *fakeNoticeRepo {
	return &fakeNoticeRepo{clock: clock, notices: make(map[uint]*models.Notice), groups: groups}
}

func (f *fakeNoticeRepo) Create(_ context.Context, notice *models.Notice) error {
	f.nextID++
	notice.ID = f.nextID
	notice.CreatedAt = f.clock.tick()
	cp := *notice
	f.notices[notice.ID] = &cp
	return nil
}

func (f *fakeNoticeRepo) GetByID(_ context.Context, id uint) (*models.Notice, error) {
	notice, ok := f.notices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *notice
	if group, ok := f.groups.groups[cp.GroupID]; ok {
		cp.Group = *group
	}
	return &cp, nil
}

func (f *fakeNoticeRepo) Update(_ context.Context, notice *models.Notice) error {
	if _, ok := f.notices[notice.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *notice
	cp.Group = models.Group{}
	f.notices[notice.ID] = &cp
	return nil
}

func (f *fakeNoticeRepo) Delete(_ context.Context, id uint) (int64, error) {
	if _, ok := f.notices[id]; !ok {
		return 0, nil
	}
	delete(f.notices, id)
	return 1, nil
}

func (f *fakeNoticeRepo) ListForGroup(_ context.Context, groupID uint) ([]*models.Notice, error) {
	var notices []*models.Notice
	for _, n := range f.notices {
		if n.GroupID == groupID {
			cp := *n
			notices = append(notices, &cp)
		}
	}
	sort.Slice(notices, func(i, j int) bool {
		a, b := notices[i], notices[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return notices, nil
}

type fakePostRepo struct {
	clock  *fakeClock
	nextID uint
	posts  []*models.GroupPost
}

func newFakePostRepo(clock *fakeClock) *fakePostRepo {
	return &fakePostRepo{clock: clock}
}

func (f *fakePostRepo) Create(_ context.Context, post *models.GroupPost) error {
	f.nextID++
	post.ID = f.nextID
	post.CreatedAt = f.clock.tick()
	cp := *post
	f.posts = append(f.posts, &cp)
	return nil
}

func (f *fakePostRepo) ListForGroup(_ context.Context, groupID uint) ([]*models.GroupPost, error) {
	var posts []*models.GroupPost
	for _, p := range f.posts {
		if p.GroupID == groupID {
			cp := *p
			posts = append(posts, &cp)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}
