package authUseCase

import (
	"context"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	userRepo "github.com/ghaniswara/dharmasaathi/internal/repository/user"
	"github.com/ghaniswara/dharmasaathi/pkg/jwt"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

type IAuthUseCase interface {
	SignupUser(ctx context.Context, request entity.CreateUserRequest) (*entity.User, error)
	SignIn(ctx context.Context, email, username, password string) (string, error)
}

type authUseCase struct {
	userRepo userRepo.IUserRepo
	tokens   *jwt.Manager
	cost     int
}

func New(userRepo userRepo.IUserRepo, tokens *jwt.Manager) IAuthUseCase {
	return &authUseCase{
		userRepo: userRepo,
		tokens:   tokens,
		cost:     bcryptCost,
	}
}

func (p *authUseCase) SignupUser(ctx context.Context, authData entity.CreateUserRequest) (*entity.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(authData.Password+authData.Email), p.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := entity.User{
		FirstName:          authData.FirstName,
		LastName:           authData.LastName,
		Email:              authData.Email,
		Username:           authData.Username,
		Gender:             authData.Gender,
		Password:           string(hashedPassword),
		Role:               entity.RoleUser,
		VerificationStatus: entity.VerificationPending,
		AccountStatus:      entity.AccountFree,
		IsActive:           true,
	}

	return p.userRepo.CreateUser(ctx, user)
}

func (p *authUseCase) SignIn(ctx context.Context, email, username, password string) (string, error) {
	user, err := p.userRepo.GetUserByUnameOrEmail(ctx, email, username)
	if errors.Is(err, entity.ErrUserNotFound) {
		return "", errors.Wrap(entity.ErrUnauthenticated, "invalid credentials")
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password+user.Email)); err != nil {
		return "", errors.Wrap(entity.ErrUnauthenticated, "invalid credentials")
	}

	if !user.IsActive {
		return "", errors.Wrap(entity.ErrUnauthenticated, "account disabled")
	}

	token, err := p.tokens.CreateToken(user.ID, string(user.Role))
	if err != nil {
		return "", errors.Wrap(err, "create token")
	}
	return token, nil
}
