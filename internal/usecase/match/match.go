package match

import (
	"context"
	"strings"
	"time"

	"github.com/ghaniswara/dharmasaathi/internal/datastore/storage"
	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/ghaniswara/dharmasaathi/internal/logger"
	matchRepo "github.com/ghaniswara/dharmasaathi/internal/repository/match"
	userRepo "github.com/ghaniswara/dharmasaathi/internal/repository/user"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultDiscoverLimit = 10
	MaxDiscoverLimit     = 50
	statDateLayout       = "2006-01-02"
)

type Settings struct {
	FreeDailyLimit int
	// zero means unlimited
	PremiumDailyLimit int
	Location          *time.Location
}

type IMatchUseCase interface {
	Swipe(ctx context.Context, caller *entity.User, req entity.SwipeRequest) (entity.SwipeResponse, error)
	SwipeStats(ctx context.Context, caller *entity.User) (entity.SwipeStatsResponse, error)
	GetDatingProfiles(ctx context.Context, caller *entity.User, limit int) ([]entity.DiscoverProfile, error)
	GetMatches(ctx context.Context, caller *entity.User) ([]entity.MatchView, error)
}

type matchUseCase struct {
	userRepo  userRepo.IUserRepo
	matchRepo matchRepo.IMatchRepo
	signer    storage.IPhotoSigner
	settings  Settings
	now       func() time.Time
}

func NewMatchUseCase(userRepo userRepo.IUserRepo, matchRepo matchRepo.IMatchRepo, signer storage.IPhotoSigner, settings Settings) IMatchUseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &matchUseCase{
		userRepo:  userRepo,
		matchRepo: matchRepo,
		signer:    signer,
		settings:  settings,
		now:       time.Now,
	}
}

func (m *matchUseCase) Swipe(ctx context.Context, caller *entity.User, req entity.SwipeRequest) (entity.SwipeResponse, error) {
	target := strings.TrimSpace(req.SwipedUserID)
	if target == "" {
		return entity.SwipeResponse{}, errors.Wrap(entity.ErrValidation, "swiped_user_id is required")
	}
	if target == caller.ID {
		return entity.SwipeResponse{}, errors.Wrap(entity.ErrValidation, "cannot swipe on yourself")
	}
	if !req.Action.Valid() {
		return entity.SwipeResponse{}, errors.Wrapf(entity.ErrValidation, "unknown action %q", req.Action)
	}

	now := m.now()
	statDate, ttl := m.today(now)
	limit := m.dailyLimit(caller, now)

	// fast path, the transaction re-checks against the locked row
	if limit > 0 {
		used, err := m.matchRepo.GetTodaySwipeCount(ctx, caller.ID, statDate, ttl)
		if err != nil {
			return entity.SwipeResponse{}, err
		}
		if used >= limit {
			return entity.SwipeResponse{}, entity.ErrLimitReached
		}
	}

	result, err := m.matchRepo.RecordSwipe(ctx, matchRepo.SwipeParams{
		SwiperID:   caller.ID,
		SwipedID:   target,
		Action:     req.Action,
		StatDate:   statDate,
		DailyLimit: limit,
	})
	if err != nil {
		return entity.SwipeResponse{}, err
	}

	m.matchRepo.SetTodaySwipeCount(ctx, caller.ID, statDate, result.SwipesUsed, ttl)

	logger.Log.WithFields(logrus.Fields{
		"swiper_id": caller.ID,
		"swiped_id": target,
		"action":    req.Action,
		"is_match":  result.IsMatch,
	}).Info("swipe recorded")

	return entity.SwipeResponse{Success: true, IsMatch: result.IsMatch, Action: req.Action}, nil
}

func (m *matchUseCase) SwipeStats(ctx context.Context, caller *entity.User) (entity.SwipeStatsResponse, error) {
	now := m.now()
	statDate, _ := m.today(now)

	stat, err := m.matchRepo.GetDailyStat(ctx, caller.ID, statDate)
	if err != nil {
		return entity.SwipeStatsResponse{}, err
	}

	resp := entity.SwipeStatsResponse{
		Date:           statDate,
		SwipesUsed:     stat.SwipesUsed,
		SuperlikesUsed: stat.SuperlikesUsed,
	}
	if limit := m.dailyLimit(caller, now); limit > 0 {
		remaining := limit - stat.SwipesUsed
		if remaining < 0 {
			remaining = 0
		}
		resp.Limit = &limit
		resp.Remaining = &remaining
	}
	return resp, nil
}

func (m *matchUseCase) GetDatingProfiles(ctx context.Context, caller *entity.User, limit int) ([]entity.DiscoverProfile, error) {
	if limit <= 0 {
		limit = DefaultDiscoverLimit
	}
	if limit > MaxDiscoverLimit {
		limit = MaxDiscoverLimit
	}

	users, err := m.matchRepo.GetDiscoverProfiles(ctx, caller.ID, limit)
	if err != nil {
		return nil, err
	}

	profiles := make([]entity.DiscoverProfile, 0, len(users))
	for i := range users {
		u := &users[i]
		profiles = append(profiles, entity.DiscoverProfile{
			ID:              u.ID,
			FirstName:       u.FirstName,
			LastName:        u.LastName,
			Gender:          u.Gender,
			ProfilePhotoURL: m.signer.SignOptional(ctx, u.ProfilePhotoPath),
			GalleryURLs:     m.signer.SignURLs(ctx, u.GalleryPaths()),
		})
	}
	return profiles, nil
}

func (m *matchUseCase) GetMatches(ctx context.Context, caller *entity.User) ([]entity.MatchView, error) {
	matches, err := m.matchRepo.GetMatches(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(matches))
	for i := range matches {
		if other, ok := matches[i].OtherUserID(caller.ID); ok {
			ids = append(ids, other)
		}
	}

	users, err := m.userRepo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]entity.MatchView, 0, len(matches))
	for i := range matches {
		other, _ := matches[i].OtherUserID(caller.ID)
		u, ok := users[other]
		if !ok {
			continue
		}
		views = append(views, entity.MatchView{
			MatchID:         matches[i].ID,
			UserID:          u.ID,
			Name:            u.FullName(),
			ProfilePhotoURL: m.signer.SignOptional(ctx, u.ProfilePhotoPath),
			MatchedAt:       matches[i].CreatedAt,
		})
	}
	return views, nil
}

// dailyLimit is the caller's allowance for today. Expired premium counts as free.
func (m *matchUseCase) dailyLimit(caller *entity.User, now time.Time) int {
	premium := caller.AccountStatus.IsPremium() &&
		(caller.PremiumExpiresAt == nil || caller.PremiumExpiresAt.After(now))
	if premium {
		return m.settings.PremiumDailyLimit
	}
	return m.settings.FreeDailyLimit
}

// today returns the stat date in the configured zone and the time left until it ends.
func (m *matchUseCase) today(now time.Time) (string, time.Duration) {
	local := now.In(m.settings.Location)
	startOfTomorrow := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, m.settings.Location)
	return local.Format(statDateLayout), startOfTomorrow.Sub(local)
}
