package testhelper

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisClient "github.com/ghaniswara/dharmasaathi/internal/datastore/redis"
	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/go-faker/faker/v4"
	"github.com/go-redis/redis"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an isolated in-memory SQLite database with the schema migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()[:8]
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	// one connection keeps the shared in-memory database free of SQLITE_LOCKED
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(entity.Models()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func NewTestRedis(t *testing.T) (*redisClient.RedisClient, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisClient.NewRedis(client), mr
}

type UserOption func(*entity.User)

func WithPremium(plan string, expiresAt time.Time) UserOption {
	return func(u *entity.User) {
		u.AccountStatus = entity.AccountPremium
		u.PremiumPlan = plan
		u.PremiumExpiresAt = &expiresAt
	}
}

func WithSuperLikes(n int) UserOption {
	return func(u *entity.User) { u.SuperLikesCount = n }
}

func WithRole(role entity.Role) UserOption {
	return func(u *entity.User) { u.Role = role }
}

func WithVerification(status entity.VerificationStatus) UserOption {
	return func(u *entity.User) { u.VerificationStatus = status }
}

func WithPhotos(profile string, gallery ...string) UserOption {
	return func(u *entity.User) {
		u.ProfilePhotoPath = profile
		_ = u.SetGalleryPaths(gallery)
	}
}

func WithFields(fn func(*entity.User)) UserOption {
	return fn
}

// CreateUser inserts a verified, onboarded, active user with faker data.
func CreateUser(t *testing.T, db *gorm.DB, opts ...UserOption) entity.User {
	t.Helper()

	user := entity.User{
		Email:               uuid.NewString()[:8] + "_" + faker.Email(),
		Username:            uuid.NewString()[:12],
		Password:            faker.Password(),
		FirstName:           faker.FirstName(),
		LastName:            faker.LastName(),
		Gender:              "female",
		Role:                entity.RoleUser,
		VerificationStatus:  entity.VerificationVerified,
		AccountStatus:       entity.AccountFree,
		OnboardingCompleted: true,
		IsActive:            true,
	}
	for _, opt := range opts {
		opt(&user)
	}

	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// PopulateUsers inserts count users built by CreateUser.
func PopulateUsers(t *testing.T, db *gorm.DB, count int, opts ...UserOption) []entity.User {
	t.Helper()

	users := make([]entity.User, 0, count)
	for i := 0; i < count; i++ {
		users = append(users, CreateUser(t, db, opts...))
	}
	return users
}
