package auth

import (
	"os"
	"testing"

	"confia/internal/models"
	"confia/internal/repositories"
	"confia/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	utils.InitJWT("test-signing-key")
	os.Exit(m.Run())
}

type memUserRepo struct {
	nextID uint
	users  map[uint]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[uint]*models.User)}
}

func (r *memUserRepo) Create(user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrEmailTaken
		}
	}
	user.ID = r.nextID
	if user.Role == "" {
		user.Role = "user"
	}
	if user.TokenVersion == 0 {
		user.TokenVersion = 1
	}
	r.nextID++
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetByID(id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *memUserRepo) Update(user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) IncrementTokenVersion(userID uint) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.TokenVersion++
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewService(repo)

	user, access, refresh, err := svc.Register("Ana@Example.com", "s3cret-pass", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email, "email is normalized")
	assert.NotEqual(t, "s3cret-pass", user.Password, "password is hashed")
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	_, _, _, err = svc.Register("ana@example.com", "another-pass", "Ana")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, _, _, err = svc.Register("bob@example.com", "short", "Bob")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, _, _, err = svc.Login("ana@example.com", "s3cret-pass")
	assert.NoError(t, err)

	_, _, _, err = svc.Login("ana@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = svc.Login("nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokens(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewService(repo)

	user, _, refresh, err := svc.Register("ana@example.com", "s3cret-pass", "Ana")
	require.NoError(t, err)

	access2, refresh2, err := svc.RefreshTokens(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEmpty(t, refresh2)

	_, _, err = svc.RefreshTokens("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Logout bumps the token version, invalidating outstanding tokens.
	require.NoError(t, svc.Logout(user.ID))
	_, _, err = svc.RefreshTokens(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
