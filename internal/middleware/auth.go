package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	userRepo "github.com/ghaniswara/dharmasaathi/internal/repository/user"
	"github.com/ghaniswara/dharmasaathi/pkg/http_util"
	"github.com/ghaniswara/dharmasaathi/pkg/jwt"
	"github.com/labstack/echo"
	"github.com/pkg/errors"
)

const userProfileKey = "userProfile"

// IdentityResolver resolves the caller of a request.
type IdentityResolver interface {
	Resolve(ctx context.Context, r *http.Request) (*entity.User, error)
}

type JWTResolver struct {
	tokens   *jwt.Manager
	userRepo userRepo.IUserRepo
}

func NewJWTResolver(tokens *jwt.Manager, userRepo userRepo.IUserRepo) *JWTResolver {
	return &JWTResolver{tokens: tokens, userRepo: userRepo}
}

func (j *JWTResolver) Resolve(ctx context.Context, r *http.Request) (*entity.User, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.Wrap(entity.ErrUnauthenticated, "missing token")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errors.Wrap(entity.ErrUnauthenticated, "invalid token format")
	}

	claims, err := j.tokens.ValidateToken(parts[1])
	if err != nil {
		return nil, errors.Wrap(entity.ErrUnauthenticated, "invalid token")
	}

	user, err := j.userRepo.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, errors.Wrap(entity.ErrUnauthenticated, "unknown user")
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.Wrap(entity.ErrUnauthenticated, "account disabled")
	}
	return user, nil
}

// StaticResolver always resolves to the same user. A nil user rejects every request.
type StaticResolver struct {
	User *entity.User
}

func (s StaticResolver) Resolve(_ context.Context, _ *http.Request) (*entity.User, error) {
	if s.User == nil {
		return nil, entity.ErrUnauthenticated
	}
	return s.User, nil
}

func JWTMiddleware(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userProfile, err := resolver.Resolve(c.Request().Context(), c.Request())
			if err != nil {
				return http_util.Fail(c, err)
			}

			c.Set(userProfileKey, userProfile)

			return next(c)
		}
	}
}

// RequireRole must run after JWTMiddleware.
func RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := CurrentUser(c)
			if err != nil {
				return http_util.Fail(c, err)
			}
			if user.Role != role {
				return http_util.Fail(c, errors.Wrap(entity.ErrUnauthorized, "requires role "+string(role)))
			}
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (*entity.User, error) {
	user, ok := c.Get(userProfileKey).(*entity.User)
	if !ok || user == nil {
		return nil, entity.ErrUnauthenticated
	}
	return user, nil
}
