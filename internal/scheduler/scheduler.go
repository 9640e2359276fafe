package scheduler

import (
	"context"
	"time"

	"github.com/ghaniswara/dharmasaathi/internal/logger"
	matchRepo "github.com/ghaniswara/dharmasaathi/internal/repository/match"
	userRepo "github.com/ghaniswara/dharmasaathi/internal/repository/user"
	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const pruneInterval = 24 * time.Hour

type Settings struct {
	SweepInterval time.Duration
	RetentionDays int
	Location      *time.Location
}

// Maintenance runs the periodic premium sweep and daily stat pruning.
type Maintenance struct {
	sched     gocron.Scheduler
	userRepo  userRepo.IUserRepo
	matchRepo matchRepo.IMatchRepo
	settings  Settings
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func New(userRepo userRepo.IUserRepo, matchRepo matchRepo.IMatchRepo, settings Settings) (*Maintenance, error) {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.SweepInterval <= 0 {
		settings.SweepInterval = time.Hour
	}
	if settings.RetentionDays <= 0 {
		settings.RetentionDays = 30
	}

	sched, err := gocron.NewScheduler(gocron.WithLocation(settings.Location))
	if err != nil {
		return nil, errors.Wrap(err, "create scheduler")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Maintenance{
		sched:     sched,
		userRepo:  userRepo,
		matchRepo: matchRepo,
		settings:  settings,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

func (m *Maintenance) Start() error {
	jobs := []struct {
		name     string
		interval time.Duration
		run      func(context.Context) error
	}{
		{"premium-sweep", m.settings.SweepInterval, m.SweepPremium},
		{"daily-stat-prune", pruneInterval, m.PruneDailyStats},
	}

	for _, job := range jobs {
		_, err := m.sched.NewJob(
			gocron.DurationJob(job.interval),
			gocron.NewTask(func() {
				if err := job.run(m.ctx); err != nil {
					logger.Log.WithError(err).WithField("job", job.name).Error("maintenance job failed")
				}
			}),
			gocron.WithName(job.name),
			gocron.WithStartAt(gocron.WithStartImmediately()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return errors.Wrapf(err, "schedule %s", job.name)
		}
	}

	m.sched.Start()
	return nil
}

func (m *Maintenance) Shutdown() error {
	m.cancel()
	return m.sched.Shutdown()
}

// SweepPremium downgrades users whose premium expiry has passed.
func (m *Maintenance) SweepPremium(ctx context.Context) error {
	n, err := m.userRepo.DowngradeExpiredPremium(ctx, m.now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Log.WithField("users", n).Info("expired premium downgraded")
	}
	return nil
}

// PruneDailyStats deletes daily stat rows older than the retention window.
func (m *Maintenance) PruneDailyStats(ctx context.Context) error {
	cutoff := m.now().In(m.settings.Location).AddDate(0, 0, -m.settings.RetentionDays).Format("2006-01-02")
	n, err := m.matchRepo.DeleteDailyStatsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	logger.Log.WithFields(logrus.Fields{"cutoff": cutoff, "rows": n}).Info("daily stats pruned")
	return nil
}
