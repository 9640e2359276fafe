package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	matchRepo "github.com/ghaniswara/dharmasaathi/internal/repository/match"
	userRepo "github.com/ghaniswara/dharmasaathi/internal/repository/user"
	"github.com/ghaniswara/dharmasaathi/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC)

func newMaintenance(t *testing.T, settings Settings) (*Maintenance, *gorm.DB) {
	t.Helper()
	db := testhelper.NewTestDB(t)
	rdb, _ := testhelper.NewTestRedis(t)
	m, err := New(userRepo.New(db), matchRepo.NewMatchRepo(db, rdb), settings)
	require.NoError(t, err)
	m.now = func() time.Time { return fixedNow }
	return m, db
}

func accountStatus(t *testing.T, db *gorm.DB, id string) entity.AccountStatus {
	t.Helper()
	var u entity.User
	require.NoError(t, db.First(&u, "id = ?", id).Error)
	return u.AccountStatus
}

func TestSweepPremium(t *testing.T) {
	m, db := newMaintenance(t, Settings{})
	expired := testhelper.CreateUser(t, db, testhelper.WithPremium("Monthly", fixedNow.Add(-time.Minute)))
	current := testhelper.CreateUser(t, db, testhelper.WithPremium("Annual", fixedNow.AddDate(0, 6, 0)))

	require.NoError(t, m.SweepPremium(context.Background()))

	assert.Equal(t, entity.AccountFree, accountStatus(t, db, expired.ID))
	assert.Equal(t, entity.AccountPremium, accountStatus(t, db, current.ID))
}

func TestPruneDailyStats(t *testing.T) {
	m, db := newMaintenance(t, Settings{RetentionDays: 7})
	u := testhelper.CreateUser(t, db)
	for _, d := range []string{"2026-10-01", "2026-10-10", "2026-10-11", "2026-10-18"} {
		require.NoError(t, db.Create(&entity.DailyStat{UserID: u.ID, StatDate: d}).Error)
	}

	require.NoError(t, m.PruneDailyStats(context.Background()))

	var left []string
	require.NoError(t, db.Model(&entity.DailyStat{}).Order("stat_date").Pluck("stat_date", &left).Error)
	assert.Equal(t, []string{"2026-10-11", "2026-10-18"}, left)
}

func TestStartRunsJobsImmediately(t *testing.T) {
	m, db := newMaintenance(t, Settings{SweepInterval: time.Hour})
	expired := testhelper.CreateUser(t, db, testhelper.WithPremium("Monthly", fixedNow.Add(-time.Hour)))

	require.NoError(t, m.Start())
	defer func() { assert.NoError(t, m.Shutdown()) }()

	assert.Eventually(t, func() bool {
		var u entity.User
		if err := db.First(&u, "id = ?", expired.ID).Error; err != nil {
			return false
		}
		return u.AccountStatus == entity.AccountFree
	}, 2*time.Second, 20*time.Millisecond)
}
