package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostelhub/internal/apperr"
	"hostelhub/internal/models"
)

func newUserFixture(t *testing.T) (UserService, *fakeUserRepo, *fakeGroupRepo) {
	t.Helper()
	clock := &fakeClock{}
	userRepo := newFakeUserRepo()
	groupRepo := newFakeGroupRepo(clock)
	return NewUserService(userRepo, groupRepo), userRepo, groupRepo
}

func TestGetProfile(t *testing.T) {
	svc, userRepo, _ := newUserFixture(t)
	ctx := context.Background()

	user := &models.User{Email: "alice@example.com", Name: "Alice"}
	require.NoError(t, userRepo.Create(ctx, user))

	got, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = svc.GetProfile(ctx, 999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, userRepo, _ := newUserFixture(t)
	ctx := context.Background()

	user := &models.User{Email: "alice@example.com", Name: "Alice"}
	require.NoError(t, userRepo.Create(ctx, user))

	newName := "Alice Zhang"
	got, err := svc.UpdateProfile(ctx, user.ID, &newName, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alice Zhang", got.Name)
	assert.Equal(t, "alice@example.com", got.Email, "未提供的字段保持不变")

	newEmail := "alice.zhang@example.com"
	got, err = svc.UpdateProfile(ctx, user.ID, nil, &newEmail)
	require.NoError(t, err)
	assert.Equal(t, "alice.zhang@example.com", got.Email)
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	svc, userRepo, _ := newUserFixture(t)
	ctx := context.Background()

	alice := &models.User{Email: "alice@example.com"}
	bob := &models.User{Email: "bob@example.com"}
	require.NoError(t, userRepo.Create(ctx, alice))
	require.NoError(t, userRepo.Create(ctx, bob))

	taken := "alice@example.com"
	_, err := svc.UpdateProfile(ctx, bob.ID, nil, &taken)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// 改成自己当前的邮箱不算冲突
	same := "bob@example.com"
	_, err = svc.UpdateProfile(ctx, bob.ID, nil, &same)
	assert.NoError(t, err)

	empty := "  "
	_, err = svc.UpdateProfile(ctx, bob.ID, nil, &empty)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestListGroupsForUser(t *testing.T) {
	svc, userRepo, groupRepo := newUserFixture(t)
	ctx := context.Background()

	user := &models.User{Email: "alice@example.com"}
	require.NoError(t, userRepo.Create(ctx, user))

	group := &models.Group{Name: "一组", LeaderID: user.ID}
	require.NoError(t, groupRepo.CreateWithLeader(ctx, group))

	groups, err := svc.ListGroups(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, group.ID, groups[0].ID)

	groups, err = svc.ListGroups(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
