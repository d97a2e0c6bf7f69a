package service

import (
	"context"
	"testing"

	"campus_lms/internal/common"
	"campus_lms/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersByRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "Ada", "ada@example.com", model.RoleInstructor)
	env.registerUser(t, "Bob", "bob@example.com", model.RoleStudent)
	env.registerUser(t, "Cal", "cal@example.com", model.RoleStudent)

	instructors, err := env.users.ListUsersByRole(ctx, model.RoleInstructor)
	require.NoError(t, err)
	require.Len(t, instructors, 1)
	assert.Equal(t, "Ada", instructors[0].Name)

	students, err := env.users.ListUsersByRole(ctx, model.RoleStudent)
	require.NoError(t, err)
	assert.Len(t, students, 2)

	_, err = env.users.ListUsersByRole(ctx, "wizard")
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "Bob", "bob@example.com", model.RoleStudent)

	require.NoError(t, env.users.DeleteUser(ctx, user.ID))

	_, err := env.auth.Profile(ctx, user.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, env.users.DeleteUser(ctx, user.ID), common.ErrNotFound)
}
