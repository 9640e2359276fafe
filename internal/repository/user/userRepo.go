package userRepo

import (
	"context"
	"time"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type IUserRepo interface {
	CreateUser(ctx context.Context, user entity.User) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]entity.User, error)
	GetUserByUnameOrEmail(ctx context.Context, email, uname string) (*entity.User, error)
	UpdateVerificationStatus(ctx context.Context, id string, status entity.VerificationStatus) (*entity.User, error)
	DowngradeExpiredPremium(ctx context.Context, now time.Time) (int64, error)
}

type UserRepo struct {
	db *gorm.DB
}

func New(db *gorm.DB) IUserRepo {
	return &UserRepo{
		db: db,
	}
}

func (r *UserRepo) CreateUser(ctx context.Context, user entity.User) (*entity.User, error) {
	result := r.db.WithContext(ctx).Create(&user)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return nil, errors.Wrap(entity.ErrAlreadyExists, "email or username")
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "create user")
	}
	return &user, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(entity.ErrUserNotFound, id)
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "get user")
	}
	return &user, nil
}

func (r *UserRepo) GetUsersByIDs(ctx context.Context, ids []string) (map[string]entity.User, error) {
	users := make(map[string]entity.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var rows []entity.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "get users")
	}
	for _, u := range rows {
		users[u.ID] = u
	}
	return users, nil
}

func (r *UserRepo) GetUserByUnameOrEmail(ctx context.Context, email, uname string) (*entity.User, error) {
	if email == "" && uname == "" {
		return nil, entity.ErrUserNotFound
	}

	var user entity.User
	query := r.db.WithContext(ctx)
	switch {
	case email != "" && uname != "":
		query = query.Where("email = ? OR username = ?", email, uname)
	case email != "":
		query = query.Where("email = ?", email)
	default:
		query = query.Where("username = ?", uname)
	}

	result := query.First(&user)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, entity.ErrUserNotFound
	}
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "get user")
	}
	return &user, nil
}

func (r *UserRepo) UpdateVerificationStatus(ctx context.Context, id string, status entity.VerificationStatus) (*entity.User, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("verification_status", status)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update verification status")
	}
	if res.RowsAffected == 0 {
		return nil, errors.Wrap(entity.ErrUserNotFound, id)
	}
	return r.GetUserByID(ctx, id)
}

// DowngradeExpiredPremium moves every user whose premium expiry has passed back to free.
func (r *UserRepo) DowngradeExpiredPremium(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("account_status <> ? AND premium_expires_at IS NOT NULL AND premium_expires_at < ?", entity.AccountFree, now).
		Updates(map[string]interface{}{
			"account_status": entity.AccountFree,
			"premium_plan":   "",
		})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "downgrade expired premium")
	}
	return res.RowsAffected, nil
}
