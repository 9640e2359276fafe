package authUseCase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	userRepo "github.com/ghaniswara/dharmasaathi/internal/repository/user"
	"github.com/ghaniswara/dharmasaathi/internal/testhelper"
	"github.com/ghaniswara/dharmasaathi/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUseCase(t *testing.T) (*authUseCase, *jwt.Manager) {
	t.Helper()
	db := testhelper.NewTestDB(t)
	tokens := jwt.NewManager("test-secret", time.Hour)
	uc := New(userRepo.New(db), tokens).(*authUseCase)
	uc.cost = bcrypt.MinCost
	return uc, tokens
}

func TestSignupAndSignIn(t *testing.T) {
	uc, tokens := newUseCase(t)
	ctx := context.Background()

	user, err := uc.SignupUser(ctx, entity.CreateUserRequest{
		FirstName: "Asha",
		Email:     "asha@example.com",
		Username:  "asha",
		Password:  "hunter22",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", user.Password)
	assert.Equal(t, entity.VerificationPending, user.VerificationStatus)
	assert.Equal(t, entity.AccountFree, user.AccountStatus)

	token, err := uc.SignIn(ctx, "", "asha", "hunter22")
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestSignup_Duplicate(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	req := entity.CreateUserRequest{FirstName: "A", Email: "dup@example.com", Username: "dup", Password: "pw"}

	_, err := uc.SignupUser(ctx, req)
	require.NoError(t, err)

	_, err = uc.SignupUser(ctx, req)
	assert.True(t, errors.Is(err, entity.ErrAlreadyExists))
}

func TestSignIn_BadCredentials(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	_, err := uc.SignupUser(ctx, entity.CreateUserRequest{FirstName: "B", Email: "b@example.com", Username: "bee", Password: "right"})
	require.NoError(t, err)

	_, err = uc.SignIn(ctx, "b@example.com", "", "wrong")
	assert.True(t, errors.Is(err, entity.ErrUnauthenticated))

	_, err = uc.SignIn(ctx, "nobody@example.com", "", "right")
	assert.True(t, errors.Is(err, entity.ErrUnauthenticated))
}
