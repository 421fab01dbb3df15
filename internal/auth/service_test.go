package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockroom-ims/stockroom/internal/auth"
	"github.com/stockroom-ims/stockroom/internal/shared"
)

func TestRegisterValidation(t *testing.T) {
	svc := auth.NewService(newMemoryRepo(), nil).WithCost(bcrypt.MinCost)
	_, err := svc.Register(context.Background(), auth.Registration{
		FirstName: "  ", LastName: "Cruz", Username: "ana", Password: "abc", ConfirmPassword: "abd",
	})
	var fe shared.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "The First Name field is required.", fe["firstName"])
	assert.Equal(t, "Password must be at least 6 characters.", fe["password"])
	assert.Equal(t, "The password and confirmation password do not match.", fe["confirmPassword"])
}

func TestAuthenticate(t *testing.T) {
	repo := newMemoryRepo()
	svc := auth.NewService(repo, nil).WithCost(bcrypt.MinCost)
	ctx := context.Background()
	_, err := svc.Register(ctx, auth.Registration{FirstName: "Ana", LastName: "Cruz", Username: "ana", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "ana", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Cruz", u.FullName())

	_, err = svc.Authenticate(ctx, "ana", "nope")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ghost", "secret1")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestEnsureDefaultAdminSeedsOnce(t *testing.T) {
	repo := newMemoryRepo()
	svc := auth.NewService(repo, nil).WithCost(bcrypt.MinCost)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultAdmin(ctx, nil))
	require.NoError(t, svc.EnsureDefaultAdmin(ctx, nil))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	admin, err := svc.Authenticate(ctx, auth.DefaultAdminUsername, auth.DefaultAdminPassword)
	require.NoError(t, err)
	assert.Equal(t, "Default Admin", auth.SessionUser(admin).DisplayName)
}
