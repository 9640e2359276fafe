package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ghaniswara/dharmasaathi/internal/config"
	"github.com/ghaniswara/dharmasaathi/internal/datastore/postgres"
	"github.com/ghaniswara/dharmasaathi/internal/datastore/razorpay"
	redisClient "github.com/ghaniswara/dharmasaathi/internal/datastore/redis"
	"github.com/ghaniswara/dharmasaathi/internal/datastore/storage"
	"github.com/ghaniswara/dharmasaathi/internal/logger"
	"github.com/ghaniswara/dharmasaathi/internal/middleware"
	adminRepo "github.com/ghaniswara/dharmasaathi/internal/repository/admin"
	matchRepo "github.com/ghaniswara/dharmasaathi/internal/repository/match"
	paymentRepo "github.com/ghaniswara/dharmasaathi/internal/repository/payment"
	userRepo "github.com/ghaniswara/dharmasaathi/internal/repository/user"
	routesAPI "github.com/ghaniswara/dharmasaathi/internal/routes/api"
	"github.com/ghaniswara/dharmasaathi/internal/scheduler"
	adminUseCase "github.com/ghaniswara/dharmasaathi/internal/usecase/admin"
	authUseCase "github.com/ghaniswara/dharmasaathi/internal/usecase/auth"
	"github.com/ghaniswara/dharmasaathi/internal/usecase/match"
	paymentUseCase "github.com/ghaniswara/dharmasaathi/internal/usecase/payment"
	"github.com/ghaniswara/dharmasaathi/pkg/jwt"
	"github.com/ghaniswara/dharmasaathi/pkg/validator"
	"github.com/labstack/echo"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the infrastructure clients the server is built from.
type Dependencies struct {
	DB        *gorm.DB
	Redis     *redisClient.RedisClient
	Signer    storage.IPhotoSigner
	Processor razorpay.IClient
	// optional, defaults to the JWT resolver
	Resolver middleware.IdentityResolver
}

type Server struct {
	writer      io.Writer
	httpServer  *http.Server
	database    *gorm.DB
	maintenance *scheduler.Maintenance
}

func NewServer(cfg config.IConfig, deps Dependencies, w io.Writer) (*Server, error) {
	location := cfg.Location()

	users := userRepo.New(deps.DB)
	matches := matchRepo.NewMatchRepo(deps.DB, deps.Redis)
	tokens := jwt.NewManager(cfg.Get("JWT_SECRET"), cfg.GetDuration("JWT_TTL", 24*time.Hour))

	resolver := deps.Resolver
	if resolver == nil {
		resolver = middleware.NewJWTResolver(tokens, users)
	}

	cases := routesAPI.UseCases{
		Auth: authUseCase.New(users, tokens),
		Match: match.NewMatchUseCase(users, matches, deps.Signer, match.Settings{
			FreeDailyLimit:    cfg.GetInt("FREE_DAILY_SWIPE_LIMIT", 10),
			PremiumDailyLimit: cfg.GetInt("PREMIUM_DAILY_SWIPE_LIMIT", 0),
			Location:          location,
		}),
		Payment: paymentUseCase.New(paymentRepo.New(deps.DB), deps.Processor),
		Admin: adminUseCase.New(adminRepo.New(deps.DB), users, deps.Redis, deps.Signer,
			cfg.GetDuration("ADMIN_STATS_TTL", time.Minute), location),
	}

	maintenance, err := scheduler.New(users, matches, scheduler.Settings{
		SweepInterval: cfg.GetDuration("PREMIUM_SWEEP_INTERVAL", time.Hour),
		RetentionDays: cfg.GetInt("DAILY_STAT_RETENTION_DAYS", 30),
		Location:      location,
	})
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLogger())

	server := &Server{
		writer: w,
		httpServer: &http.Server{
			Addr:    ":" + cfg.Get("PORT"),
			Handler: e,
		},
		database:    deps.DB,
		maintenance: maintenance,
	}

	server.RegisterRoutes(e)
	routesAPI.InitRoutes(e, cases, resolver)
	return server, nil
}

func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.handleHealthCheck)
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) StartServer() error {
	if err := s.maintenance.Start(); err != nil {
		return err
	}
	fmt.Fprintf(s.writer, "Server starting on %s\n", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.maintenance.Shutdown(); err != nil {
		logger.Log.WithError(err).Warn("scheduler shutdown failed")
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthCheck(c echo.Context) error {
	sqlDB, err := s.database.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Connect opens every external dependency described by cfg.
func Connect(ctx context.Context, cfg config.IConfig) (Dependencies, error) {
	db, err := postgres.InitializeDB(cfg)
	if err != nil {
		return Dependencies{}, err
	}

	if cfg.GetBool("MIGRATE_ON_START", false) {
		sqlDB, err := db.DB()
		if err != nil {
			return Dependencies{}, err
		}
		if err := postgres.RunMigrations(sqlDB, cfg.Get("MIGRATIONS_DIR")); err != nil {
			return Dependencies{}, err
		}
	}

	rdb, err := redisClient.Connect(cfg)
	if err != nil {
		return Dependencies{}, err
	}

	signer, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		return Dependencies{}, err
	}

	return Dependencies{
		DB:        db,
		Redis:     rdb,
		Signer:    signer,
		Processor: razorpay.NewFromConfig(cfg),
	}, nil
}

// Run starts the API for the environment named by args[1] (DEV by default)
// and blocks until ctx is cancelled or the process is signalled.
func Run(ctx context.Context, w io.Writer, args []string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	env := "DEV"
	if len(args) > 1 {
		env = strings.ToUpper(args[1])
	}

	cfg, err := config.NewConfig(env)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	logger.Init(cfg.Get("LOG_LEVEL"), cfg.Get("LOG_FORMAT"), w)

	if cfg.Get("JWT_SECRET") == "" {
		return errors.Errorf("%s_JWT_SECRET is not set", env)
	}

	deps, err := Connect(ctx, cfg)
	if err != nil {
		return err
	}

	server, err := NewServer(cfg, deps, w)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.StartServer(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	return server.Shutdown(shutdownCtx)
}
