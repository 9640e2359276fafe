package matchRepo

import (
	"context"
	"sort"
	"time"

	redisClient "github.com/ghaniswara/dharmasaathi/internal/datastore/redis"
	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/ghaniswara/dharmasaathi/internal/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IMatchRepo interface {
	// User Table
	GetDiscoverProfiles(ctx context.Context, userID string, limit int) ([]entity.User, error)

	// Daily counters, cache first
	GetTodaySwipeCount(ctx context.Context, userID, statDate string, ttl time.Duration) (int, error)
	SetTodaySwipeCount(ctx context.Context, userID, statDate string, count int, ttl time.Duration)
	GetDailyStat(ctx context.Context, userID, statDate string) (entity.DailyStat, error)
	DeleteDailyStatsBefore(ctx context.Context, statDate string) (int64, error)

	// Matches Table
	GetMatches(ctx context.Context, userID string) ([]entity.Match, error)

	RecordSwipe(ctx context.Context, params SwipeParams) (SwipeResult, error)
}

type SwipeParams struct {
	SwiperID string
	SwipedID string
	Action   entity.Action
	StatDate string
	// zero means unlimited
	DailyLimit int
}

type SwipeResult struct {
	IsMatch    bool
	SwipesUsed int
}

type MatchRepo struct {
	db  *gorm.DB
	rdb *redisClient.RedisClient
}

func NewMatchRepo(db *gorm.DB, rdb *redisClient.RedisClient) IMatchRepo {
	return &MatchRepo{
		db:  db,
		rdb: rdb,
	}
}

func swipeCountKey(userID, statDate string) string {
	return "user:" + userID + ":swipes:" + statDate
}

// GetTodaySwipeCount reads the cached daily counter and falls back to the
// DailyStat row, seeding the cache on a miss. Cache errors are logged, never returned.
func (m *MatchRepo) GetTodaySwipeCount(ctx context.Context, userID, statDate string, ttl time.Duration) (int, error) {
	key := swipeCountKey(userID, statDate)

	count, ok, err := m.rdb.GetInt(key)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("swipe counter cache read failed")
	}
	if ok {
		return count, nil
	}

	stat, err := m.GetDailyStat(ctx, userID, statDate)
	if err != nil {
		return 0, err
	}

	if err := m.rdb.SeedInt(key, stat.SwipesUsed, ttl); err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("swipe counter cache seed failed")
	}
	return stat.SwipesUsed, nil
}

// SetTodaySwipeCount stores the committed count. Cache errors are logged, never returned.
func (m *MatchRepo) SetTodaySwipeCount(_ context.Context, userID, statDate string, count int, ttl time.Duration) {
	key := swipeCountKey(userID, statDate)
	if err := m.rdb.SetInt(key, count, ttl); err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("swipe counter cache write failed")
	}
}

// GetDailyStat returns a zero stat when the user has not swiped on statDate.
func (m *MatchRepo) GetDailyStat(ctx context.Context, userID, statDate string) (entity.DailyStat, error) {
	var stat entity.DailyStat
	res := m.db.WithContext(ctx).
		Where("user_id = ? AND stat_date = ?", userID, statDate).
		Limit(1).
		Find(&stat)
	if res.Error != nil {
		return entity.DailyStat{}, errors.Wrap(res.Error, "get daily stat")
	}
	if res.RowsAffected == 0 {
		return entity.DailyStat{UserID: userID, StatDate: statDate}, nil
	}
	return stat, nil
}

func (m *MatchRepo) DeleteDailyStatsBefore(ctx context.Context, statDate string) (int64, error) {
	res := m.db.WithContext(ctx).
		Where("stat_date < ?", statDate).
		Delete(&entity.DailyStat{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "delete daily stats")
	}
	return res.RowsAffected, nil
}

// GetDiscoverProfiles returns verified, active, onboarded users the caller has not swiped yet.
func (m *MatchRepo) GetDiscoverProfiles(ctx context.Context, userID string, limit int) ([]entity.User, error) {
	var profiles []entity.User

	swiped := m.db.WithContext(ctx).
		Model(&entity.SwipeAction{}).
		Select("swiped_id").
		Where("swiper_id = ?", userID)

	res := m.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id <> ?", userID).
		Where("verification_status = ? AND is_active = ? AND onboarding_completed = ?", entity.VerificationVerified, true, true).
		Where("id NOT IN (?)", swiped).
		Order("RANDOM()").
		Limit(limit).
		Find(&profiles)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "get discover profiles")
	}
	return profiles, nil
}

func (m *MatchRepo) GetMatches(ctx context.Context, userID string) ([]entity.Match, error) {
	var matches []entity.Match
	res := m.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&matches)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "get matches")
	}
	return matches, nil
}

// RecordSwipe applies a swipe atomically: allowance check, duplicate check,
// superlike debit, match detection, swipe insert and daily stat update all
// commit or roll back together.
func (m *MatchRepo) RecordSwipe(ctx context.Context, p SwipeParams) (SwipeResult, error) {
	var result SwipeResult

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPair(tx, p.SwiperID, p.SwipedID); err != nil {
			return err
		}

		stat, err := lockDailyStat(tx, p.SwiperID, p.StatDate)
		if err != nil {
			return err
		}
		if p.DailyLimit > 0 && stat.SwipesUsed >= p.DailyLimit {
			return entity.ErrLimitReached
		}

		var prior int64
		if err := tx.Model(&entity.SwipeAction{}).
			Where("swiper_id = ? AND swiped_id = ?", p.SwiperID, p.SwipedID).
			Count(&prior).Error; err != nil {
			return errors.Wrap(err, "check prior swipe")
		}
		if prior > 0 {
			return entity.ErrAlreadySwiped
		}

		if p.Action == entity.ActionSuperLike {
			res := tx.Model(&entity.User{}).
				Where("id = ? AND super_likes_count > 0", p.SwiperID).
				UpdateColumn("super_likes_count", gorm.Expr("super_likes_count - ?", 1))
			if res.Error != nil {
				return errors.Wrap(res.Error, "debit superlike")
			}
			if res.RowsAffected == 0 {
				return entity.ErrNoSuperlikesAvailable
			}
		}

		isMatch := false
		if p.Action.IsPositive() {
			var reciprocal entity.SwipeAction
			res := tx.Where("swiper_id = ? AND swiped_id = ? AND action IN ?",
				p.SwipedID, p.SwiperID, []entity.Action{entity.ActionLike, entity.ActionSuperLike}).
				Limit(1).
				Find(&reciprocal)
			if res.Error != nil {
				return errors.Wrap(res.Error, "reciprocal lookup")
			}

			if res.RowsAffected > 0 {
				isMatch = true

				match := entity.NewMatch(p.SwiperID, p.SwipedID)
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&match).Error; err != nil {
					return errors.Wrap(err, "create match")
				}

				if err := tx.Model(&entity.SwipeAction{}).
					Where("id = ?", reciprocal.ID).
					Update("is_match", true).Error; err != nil {
					return errors.Wrap(err, "flag reciprocal swipe")
				}
			}
		}

		swipe := entity.SwipeAction{
			SwiperID: p.SwiperID,
			SwipedID: p.SwipedID,
			Action:   p.Action,
			IsMatch:  isMatch,
		}
		if err := tx.Create(&swipe).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return entity.ErrAlreadySwiped
			}
			return errors.Wrap(err, "insert swipe")
		}

		updates := map[string]interface{}{"swipes_used": gorm.Expr("swipes_used + ?", 1)}
		if p.Action == entity.ActionSuperLike {
			updates["superlikes_used"] = gorm.Expr("superlikes_used + ?", 1)
		}
		if err := tx.Model(&entity.DailyStat{}).Where("id = ?", stat.ID).Updates(updates).Error; err != nil {
			return errors.Wrap(err, "update daily stat")
		}

		result = SwipeResult{IsMatch: isMatch, SwipesUsed: stat.SwipesUsed + 1}
		return nil
	})
	if err != nil {
		return SwipeResult{}, err
	}

	return result, nil
}

// lockPair locks both users FOR UPDATE in id order. Opposite swipes on the same
// pair serialize here, so the later one always sees the earlier reciprocal swipe.
func lockPair(tx *gorm.DB, swiperID, swipedID string) error {
	ids := []string{swiperID, swipedID}
	sort.Strings(ids)

	var users []entity.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id IN ?", ids).
		Order("id").
		Find(&users).Error; err != nil {
		return errors.Wrap(err, "lock users")
	}

	found := make(map[string]bool, len(users))
	for _, u := range users {
		found[u.ID] = true
	}
	if !found[swiperID] {
		return errors.Wrap(entity.ErrUserNotFound, "swiper")
	}
	if !found[swipedID] {
		return errors.Wrap(entity.ErrUserNotFound, "target")
	}
	return nil
}

// lockDailyStat loads today's stat row FOR UPDATE, creating it first when absent.
func lockDailyStat(tx *gorm.DB, userID, statDate string) (entity.DailyStat, error) {
	stat := entity.DailyStat{UserID: userID, StatDate: statDate}

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&stat).Error; err != nil {
		return entity.DailyStat{}, errors.Wrap(err, "create daily stat")
	}

	var locked entity.DailyStat
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND stat_date = ?", userID, statDate).
		First(&locked).Error; err != nil {
		return entity.DailyStat{}, errors.Wrap(err, "lock daily stat")
	}
	return locked, nil
}
