package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/approval-backend/internal/auth"
	"github.com/baharkarakas/approval-backend/internal/bulk"
	"github.com/baharkarakas/approval-backend/internal/models"
)

func TestUserService_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	out, err := f.userSvc.Create(ctx, 7, UserInput{
		Username: "ana", Email: strp("a@x.io"), BranchID: i64p(10), RoleID: i64p(2),
	})
	require.NoError(t, err)

	u, ok := f.users.get(out.Request.EntityID)
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, u.Status)
	assert.NoError(t, auth.VerifyPassword(out.TemporaryPassword, u.PasswordHash))

	users, ok := out.Request.Changes.New.Table(models.TableUsers)
	require.True(t, ok)
	assert.Equal(t, "ana", users["username"])
	assert.Equal(t, u.PasswordHash, users["password"])
	assert.NotContains(t, users, "status")
	assert.Equal(t, models.Fields{"branchId": int64(10)}, out.Request.Changes.New[models.TableUserBranch])
	assert.Equal(t, models.Fields{"email": "a@x.io"}, out.Request.Changes.New[models.TableUserProfile])

	_, err = f.approvalSvc.Decide(ctx, out.Request.ID, 8, models.DecisionReject)
	require.NoError(t, err)
	_, ok = f.users.get(out.Request.EntityID)
	assert.False(t, ok)
}

func seedUser(t *testing.T, f *fixture, username, password string) models.UserDetails {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u, _ := f.users.InsertUser(context.Background(), nil, models.User{Username: username, PasswordHash: hash, Status: models.StatusActive})
	d := models.UserDetails{User: u, Profile: models.UserProfile{Email: strp(username + "@x.io")}, RoleID: i64p(1)}
	f.users.rows[u.ID] = d
	return d
}

func TestUserService_UpdatePassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := seedUser(t, f, "ana", "first-pass")

	_, err := f.userSvc.Update(ctx, 7, u.ID, UserPatch{Password: strp("first-pass")})
	assert.Error(t, err, "same password must not produce a change")

	cr, err := f.userSvc.Update(ctx, 7, u.ID, UserPatch{Password: strp("second-pass"), RoleID: i64p(3)})
	require.NoError(t, err)
	users, ok := cr.Changes.New.Table(models.TableUsers)
	require.True(t, ok)
	require.NoError(t, auth.VerifyPassword("second-pass", users["password"].(string)))
	assert.Equal(t, models.Fields{"roleId": int64(3)}, cr.Changes.New[models.TableUserRoles])

	_, err = f.approvalSvc.Decide(ctx, cr.ID, 8, models.DecisionApprove)
	require.NoError(t, err)
	got, _ := f.users.get(u.ID)
	assert.Equal(t, models.StatusActive, got.Status)
	assert.Equal(t, int64(3), *got.RoleID)
	assert.NoError(t, auth.VerifyPassword("second-pass", got.PasswordHash))
}

func TestUserService_UpdateRejectRestores(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := seedUser(t, f, "ana", "pass-1234")

	cr, err := f.userSvc.Update(ctx, 7, u.ID, UserPatch{Email: strp("new@x.io"), Status: strp("inactive")})
	require.NoError(t, err)

	_, err = f.approvalSvc.Decide(ctx, cr.ID, 8, models.DecisionReject)
	require.NoError(t, err)
	got, _ := f.users.get(u.ID)
	assert.Equal(t, u, got)
}

func TestUserService_DeleteBulk(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := seedUser(t, f, "ana", "pass-1234")
	b := seedUser(t, f, "bob", "pass-1234")

	res := f.userSvc.DeleteBulk(ctx, 7, []int64{a.ID, b.ID, 999}, 0)
	assert.Equal(t, bulk.Summary{Total: 3, Success: 2, Failed: 1}, res.Summary)
	assert.Equal(t, []bulk.ItemError{{Index: 2, Message: "user 999 not found"}}, res.Errors)
	assert.Equal(t, bulk.OutcomePartial, res.Outcome())

	for _, id := range []int64{a.ID, b.ID} {
		got, _ := f.users.get(id)
		assert.Equal(t, models.StatusPending, got.Status)
	}
	assert.Equal(t, 2, f.approvals.inserted)
	assert.Len(t, f.auditor.events, 2)
	assert.Zero(t, f.beginner.Open())
}

func TestUserService_CreateBulk(t *testing.T) {
	f := newFixture()
	res := f.userSvc.CreateBulk(context.Background(), 7, []UserInput{
		{Username: "ana"}, {Username: "bob"}, {Username: "cid"},
	}, 2)
	assert.Equal(t, bulk.OutcomeSuccess, res.Outcome())
	assert.Equal(t, 3, f.approvals.inserted)
	assert.Empty(t, res.Errors)
}

func TestUserService_UpdateBulk(t *testing.T) {
	f := newFixture()
	a := seedUser(t, f, "ana", "pass-1234")

	res := f.userSvc.UpdateBulk(context.Background(), 7, []UserUpdateItem{
		{ID: a.ID, UserPatch: UserPatch{Username: strp("ana2")}},
		{ID: a.ID, UserPatch: UserPatch{Username: strp("ana3")}},
	}, 1)
	assert.Equal(t, bulk.Summary{Total: 2, Success: 1, Failed: 1}, res.Summary)
	assert.Contains(t, res.Errors[0].Message, "Duplicate entry")
	assert.Len(t, f.auditor.events, 1)
}
