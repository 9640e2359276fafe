package adminUseCase

import (
	"context"
	"strings"
	"time"

	redisClient "github.com/ghaniswara/dharmasaathi/internal/datastore/redis"
	"github.com/ghaniswara/dharmasaathi/internal/datastore/storage"
	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/ghaniswara/dharmasaathi/internal/logger"
	adminRepo "github.com/ghaniswara/dharmasaathi/internal/repository/admin"
	userRepo "github.com/ghaniswara/dharmasaathi/internal/repository/user"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DefaultLimit  = 20
	MaxLimit      = 100
	statsCacheKey = "admin:stats"
)

var (
	sortColumns = map[string]bool{
		"created_at": true,
		"updated_at": true,
		"first_name": true,
		"last_name":  true,
		"email":      true,
	}
	filters = map[string]bool{
		"all": true, "active": true, "inactive": true,
		"verified": true, "pending": true, "rejected": true, "premium": true,
	}
)

type IAdminUseCase interface {
	Dashboard(ctx context.Context, q entity.AdminUserQuery) (entity.AdminDashboardResponse, error)
	UpdateVerification(ctx context.Context, userID string, status entity.VerificationStatus) (entity.AdminUser, error)
}

type adminUseCase struct {
	adminRepo adminRepo.IAdminRepo
	userRepo  userRepo.IUserRepo
	cache     *redisClient.RedisClient
	signer    storage.IPhotoSigner
	statsTTL  time.Duration
	location  *time.Location
	now       func() time.Time
}

func New(adminRepo adminRepo.IAdminRepo, userRepo userRepo.IUserRepo, cache *redisClient.RedisClient, signer storage.IPhotoSigner, statsTTL time.Duration, location *time.Location) IAdminUseCase {
	if location == nil {
		location = time.UTC
	}
	return &adminUseCase{
		adminRepo: adminRepo,
		userRepo:  userRepo,
		cache:     cache,
		signer:    signer,
		statsTTL:  statsTTL,
		location:  location,
		now:       time.Now,
	}
}

// Normalize applies defaults and whitelists to a raw dashboard query.
func Normalize(q entity.AdminUserQuery) adminRepo.UserQuery {
	out := adminRepo.UserQuery{
		Page:                    q.Page,
		Limit:                   q.Limit,
		Search:                  strings.TrimSpace(q.Search),
		Filter:                  strings.ToLower(strings.TrimSpace(q.Filter)),
		SortBy:                  strings.ToLower(strings.TrimSpace(q.SortBy)),
		SortOrder:               strings.ToLower(strings.TrimSpace(q.SortOrder)),
		GenderFilter:            strings.TrimSpace(q.GenderFilter),
		PhotoFilter:             strings.ToLower(strings.TrimSpace(q.PhotoFilter)),
		ProfileCompletionFilter: strings.ToLower(strings.TrimSpace(q.ProfileCompletionFilter)),
	}

	if out.Page < 1 {
		out.Page = 1
	}
	if out.Limit < 1 {
		out.Limit = DefaultLimit
	}
	if out.Limit > MaxLimit {
		out.Limit = MaxLimit
	}
	if !filters[out.Filter] {
		out.Filter = "all"
	}
	if !sortColumns[out.SortBy] {
		out.SortBy = "created_at"
	}
	if out.SortOrder != "asc" {
		out.SortOrder = "desc"
	}
	if strings.EqualFold(out.GenderFilter, "all") {
		out.GenderFilter = ""
	}
	return out
}

func (a *adminUseCase) Dashboard(ctx context.Context, raw entity.AdminUserQuery) (entity.AdminDashboardResponse, error) {
	q := Normalize(raw)

	users, total, err := a.adminRepo.ListUsers(ctx, q)
	if err != nil {
		return entity.AdminDashboardResponse{}, err
	}

	views := make([]entity.AdminUser, 0, len(users))
	for i := range users {
		view, err := a.toAdminUser(ctx, &users[i])
		if err != nil {
			return entity.AdminDashboardResponse{}, err
		}
		views = append(views, view)
	}

	resp := entity.AdminDashboardResponse{
		Users:      views,
		Pagination: entity.NewPagination(q.Page, q.Limit, total),
	}

	if raw.IncludeStats {
		stats, err := a.stats(ctx)
		if err != nil {
			return entity.AdminDashboardResponse{}, err
		}
		resp.Stats = &stats
	}
	return resp, nil
}

func (a *adminUseCase) UpdateVerification(ctx context.Context, userID string, status entity.VerificationStatus) (entity.AdminUser, error) {
	if !status.Valid() {
		return entity.AdminUser{}, errors.Wrapf(entity.ErrValidation, "unknown verification status %q", status)
	}

	user, err := a.userRepo.UpdateVerificationStatus(ctx, userID, status)
	if err != nil {
		return entity.AdminUser{}, err
	}

	a.invalidateStats()
	logger.Log.WithFields(logrus.Fields{"user_id": userID, "status": status}).Info("verification status updated")

	return a.toAdminUser(ctx, user)
}

func (a *adminUseCase) toAdminUser(ctx context.Context, u *entity.User) (entity.AdminUser, error) {
	var view entity.AdminUser
	if err := copier.Copy(&view, u); err != nil {
		return entity.AdminUser{}, errors.Wrap(err, "map admin user")
	}
	view.ProfilePhotoURL = a.signer.SignOptional(ctx, u.ProfilePhotoPath)
	view.GalleryURLs = a.signer.SignURLs(ctx, u.GalleryPaths())
	return view, nil
}

// stats serves aggregate counts from cache, recomputing them on a miss.
func (a *adminUseCase) stats(ctx context.Context) (entity.AdminStats, error) {
	var stats entity.AdminStats
	if a.cache != nil {
		ok, err := a.cache.GetJSON(statsCacheKey, &stats)
		if err != nil {
			logger.Log.WithError(err).Warn("admin stats cache read failed")
		}
		if ok {
			return stats, nil
		}
	}

	statDate := a.now().In(a.location).Format("2006-01-02")
	stats, err := a.adminRepo.Stats(ctx, statDate)
	if err != nil {
		return entity.AdminStats{}, err
	}
	stats.RevenueAmount = decimal.New(stats.RevenueMinor, -2).StringFixed(2)

	if a.cache != nil && a.statsTTL > 0 {
		if err := a.cache.SetJSON(statsCacheKey, stats, a.statsTTL); err != nil {
			logger.Log.WithError(err).Warn("admin stats cache write failed")
		}
	}
	return stats, nil
}

func (a *adminUseCase) invalidateStats() {
	if a.cache == nil {
		return
	}
	if err := a.cache.Delete(statsCacheKey); err != nil {
		logger.Log.WithError(err).Warn("admin stats cache invalidation failed")
	}
}
