package auth

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue(Viewer{ID: 42, Username: "alice"})
	require.NoError(t, err)

	v, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), v.ID)
	assert.Equal(t, "alice", v.Username)
}

func TestTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue(Viewer{ID: 1, Username: "alice"})
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).Parse(token)
	assert.Error(t, err)

	expired := NewTokenManager("secret", -time.Minute)
	token, err = expired.Issue(Viewer{ID: 1, Username: "alice"})
	require.NoError(t, err)
	_, err = expired.Parse(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}

func newAccountService(t *testing.T) *Service {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&model.User{}))
	return NewService(repository.NewUserRepository(gdb))
}

func TestSignUpAndLogin(t *testing.T) {
	s := newAccountService(t)
	ctx := context.Background()

	user, err := s.SignUp(ctx, SignupInput{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	_, err = s.SignUp(ctx, SignupInput{Username: "alice", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := s.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = s.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidLogin)
	_, err = s.Login(ctx, "ghost", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidLogin)
}

func TestSignUpValidation(t *testing.T) {
	s := newAccountService(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, SignupInput{Username: "ab", Password: "hunter22"})
	assert.Error(t, err, "username too short")

	_, err = s.SignUp(ctx, SignupInput{Username: "alice", Password: "short"})
	assert.Error(t, err, "password too short")
}
