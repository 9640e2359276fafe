package adminRepo

import (
	"context"
	"strings"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// UserQuery is a normalized dashboard query: values are already defaulted and whitelisted.
type UserQuery struct {
	Page                    int
	Limit                   int
	Search                  string
	Filter                  string
	SortBy                  string
	SortOrder               string
	GenderFilter            string
	PhotoFilter             string
	ProfileCompletionFilter string
}

type IAdminRepo interface {
	ListUsers(ctx context.Context, q UserQuery) ([]entity.User, int64, error)
	Stats(ctx context.Context, statDate string) (entity.AdminStats, error)
}

type AdminRepo struct {
	db *gorm.DB
}

func New(db *gorm.DB) IAdminRepo {
	return &AdminRepo{db: db}
}

func (r *AdminRepo) ListUsers(ctx context.Context, q UserQuery) ([]entity.User, int64, error) {
	query := applyFilters(r.db.WithContext(ctx).Model(&entity.User{}), q).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}

	var users []entity.User
	err := query.
		Order(q.SortBy + " " + q.SortOrder).
		Order("id ASC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list users")
	}
	return users, total, nil
}

// search input is matched literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func applyFilters(query *gorm.DB, q UserQuery) *gorm.DB {
	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		like := "%" + likeEscaper.Replace(search) + "%"
		query = query.Where(`LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, like, like, like)
	}

	switch q.Filter {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	case "verified", "pending", "rejected":
		query = query.Where("verification_status = ?", q.Filter)
	case "premium":
		query = query.Where("account_status <> ?", entity.AccountFree)
	}

	if q.GenderFilter != "" {
		query = query.Where("LOWER(gender) = ?", strings.ToLower(q.GenderFilter))
	}

	switch q.PhotoFilter {
	case "with_photo":
		query = query.Where("profile_photo_path IS NOT NULL AND profile_photo_path <> ''")
	case "without_photo":
		query = query.Where("profile_photo_path IS NULL OR profile_photo_path = ''")
	}

	switch q.ProfileCompletionFilter {
	case "complete":
		query = query.Where("onboarding_completed = ?", true)
	case "incomplete":
		query = query.Where("onboarding_completed = ?", false)
	}

	return query
}

func (r *AdminRepo) Stats(ctx context.Context, statDate string) (entity.AdminStats, error) {
	var stats entity.AdminStats
	db := r.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		where string
		args  []interface{}
	}{
		{&stats.TotalUsers, "", nil},
		{&stats.Verified, "verification_status = ?", []interface{}{entity.VerificationVerified}},
		{&stats.Pending, "verification_status = ?", []interface{}{entity.VerificationPending}},
		{&stats.Rejected, "verification_status = ?", []interface{}{entity.VerificationRejected}},
		{&stats.Premium, "account_status <> ?", []interface{}{entity.AccountFree}},
		{&stats.Active, "is_active = ?", []interface{}{true}},
	}
	for _, c := range counts {
		query := db.Model(&entity.User{})
		if c.where != "" {
			query = query.Where(c.where, c.args...)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return entity.AdminStats{}, errors.Wrap(err, "count users")
		}
	}

	if err := db.Model(&entity.Match{}).Count(&stats.TotalMatches).Error; err != nil {
		return entity.AdminStats{}, errors.Wrap(err, "count matches")
	}

	if err := db.Model(&entity.DailyStat{}).
		Select("COALESCE(SUM(swipes_used), 0)").
		Where("stat_date = ?", statDate).
		Scan(&stats.SwipesToday).Error; err != nil {
		return entity.AdminStats{}, errors.Wrap(err, "sum swipes")
	}

	if err := db.Model(&entity.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", entity.TransactionCaptured).
		Scan(&stats.RevenueMinor).Error; err != nil {
		return entity.AdminStats{}, errors.Wrap(err, "sum revenue")
	}

	return stats, nil
}
