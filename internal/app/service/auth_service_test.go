package service

import (
	"context"
	"testing"

	"campus_lms/internal/common"
	"campus_lms/internal/common/security"
	"campus_lms/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, RegisterRequest{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, resp.User.Role, "role defaults to student")
	assert.NotEmpty(t, resp.Token)
	assert.Empty(t, resp.User.HashedPassword)

	stored, err := env.userRepo.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.HashedPassword, "password must be hashed at rest")
	assert.True(t, security.CheckPasswordHash("secret123", stored.HashedPassword))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "Jane", "jane@example.com", model.RoleStudent)

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Name:     "Other Jane",
		Email:    "jane@example.com",
		Password: "different1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterRequest{Name: "X", Email: "not-an-email", Password: "secret123"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = env.auth.Register(ctx, RegisterRequest{Name: "X", Email: "x@example.com", Password: "short"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = env.auth.Register(ctx, RegisterRequest{Name: "X", Email: "x@example.com", Password: "secret123", Role: "superuser"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "Jane", "jane@example.com", model.RoleInstructor)

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleInstructor, resp.User.Role)
	assert.NotEmpty(t, resp.Token)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "wrongpass"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	// Unknown email gets the same generic error as a bad password.
	_, err = env.auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "Jane", "jane@example.com", model.RoleStudent)

	name := "Jane Smith"
	image := "https://cdn.example.com/avatars/jane.png"
	updated, err := env.auth.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Name: &name, ProfileImage: &image})
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", updated.Name)
	assert.Equal(t, image, updated.ProfileImage)

	bad := "not a url"
	_, err = env.auth.UpdateProfile(ctx, user.ID, UpdateProfileRequest{ProfileImage: &bad})
	assert.ErrorIs(t, err, common.ErrValidation)
}
