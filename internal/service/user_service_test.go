package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
)

type userRepoStub struct {
	users   map[string]*models.User
	byEmail map[string]*models.User
	revoked []string
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	stub := &userRepoStub{users: map[string]*models.User{}, byEmail: map[string]*models.User{}}
	for _, u := range users {
		stub.users[u.ID] = u
		stub.byEmail[u.Email] = u
	}
	return stub
}

func (s *userRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	user.ID = "user-new"
	s.users[user.ID] = user
	s.byEmail[user.Email] = user
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *userRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	s.revoked = append(s.revoked, userID)
	return nil
}

func activeReceptionist() *models.User {
	return &models.User{
		ID:        "user-1",
		CompanyID: "company-1",
		Email:     "recepcao@clinic.test",
		FullName:  "Beatriz Ramos",
		Role:      models.RoleReceptionist,
		Active:    true,
	}
}

func TestUserCreateHashesPasswordAndLowercasesEmail(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewUserService(repo, nil, nil)

	user, err := svc.Create(context.Background(), "company-1", dto.CreateUserRequest{
		Email:    "Novo.Medico@Clinic.Test",
		FullName: "Dr. Carlos Lima",
		Role:     models.RolePractitioner,
		Password: "s3cret!",
	})
	require.NoError(t, err)
	assert.Equal(t, "novo.medico@clinic.test", user.Email)
	assert.True(t, user.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret!")))
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	repo := newUserRepoStub(activeReceptionist())
	svc := NewUserService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "company-1", dto.CreateUserRequest{
		Email:    "recepcao@clinic.test",
		FullName: "Someone Else",
		Role:     models.RoleReceptionist,
		Password: "s3cret!",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestUserGetScopedToTenant(t *testing.T) {
	repo := newUserRepoStub(activeReceptionist())
	svc := NewUserService(repo, nil, nil)

	_, err := svc.Get(context.Background(), "company-other", "user-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUserDeactivationRevokesSessions(t *testing.T) {
	repo := newUserRepoStub(activeReceptionist())
	svc := NewUserService(repo, nil, nil)

	inactive := false
	user, err := svc.Update(context.Background(), "company-1", "user-1", dto.UpdateUserRequest{
		FullName: "Beatriz Ramos",
		Role:     models.RoleReceptionist,
		Active:   &inactive,
	})
	require.NoError(t, err)
	assert.False(t, user.Active)
	assert.Equal(t, []string{"user-1"}, repo.revoked)
}

func TestUserUpdateWithoutActiveFlagKeepsSessions(t *testing.T) {
	repo := newUserRepoStub(activeReceptionist())
	svc := NewUserService(repo, nil, nil)

	user, err := svc.Update(context.Background(), "company-1", "user-1", dto.UpdateUserRequest{
		FullName: "Beatriz R. Santos",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Empty(t, repo.revoked)
}
