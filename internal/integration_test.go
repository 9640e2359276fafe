package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ghaniswara/dharmasaathi/internal/config"
	"github.com/ghaniswara/dharmasaathi/internal/datastore/postgres"
	"github.com/ghaniswara/dharmasaathi/internal/datastore/razorpay"
	redisClient "github.com/ghaniswara/dharmasaathi/internal/datastore/redis"
	"github.com/ghaniswara/dharmasaathi/internal/datastore/storage"
	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/ghaniswara/dharmasaathi/pkg/http_util"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/ory/dockertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const integrationPaymentSecret = "rzp_integration_secret"

type integrationEnv struct {
	baseURL string
	db      *gorm.DB
}

// setupIntegration starts Postgres and Redis containers, migrates the schema and serves the API.
func setupIntegration(t *testing.T) integrationEnv {
	t.Helper()
	if os.Getenv("DOCKER_TESTS") != "1" {
		t.Skip("set DOCKER_TESTS=1 to run the docker backed integration test")
	}

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "could not connect to docker")
	pool.MaxWait = 120 * time.Second

	dbResource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "14",
		Env: []string{
			"POSTGRES_USER=dharma",
			"POSTGRES_PASSWORD=dharma",
			"POSTGRES_DB=dharmasaathi",
		},
	})
	require.NoError(t, err, "could not start postgres")
	t.Cleanup(func() { _ = pool.Purge(dbResource) })

	redisResource, err := pool.RunWithOptions(&dockertest.RunOptions{Repository: "redis", Tag: "7"})
	require.NoError(t, err, "could not start redis")
	t.Cleanup(func() { _ = pool.Purge(redisResource) })

	cfg := config.NewStaticConfig("TEST", map[string]string{
		"POSTGRES_HOST":             "localhost",
		"POSTGRES_PORT":             dbResource.GetPort("5432/tcp"),
		"POSTGRES_USER":             "dharma",
		"POSTGRES_PASSWORD":         "dharma",
		"POSTGRES_DB_NAME":          "dharmasaathi",
		"DB_LOG_LEVEL":              "silent",
		"REDIS_HOST":                "localhost",
		"REDIS_PORT":                redisResource.GetPort("6379/tcp"),
		"JWT_SECRET":                "integration-secret",
		"FREE_DAILY_SWIPE_LIMIT":    "3",
		"STORAGE_ENDPOINT":          "http://localhost:9000",
		"STORAGE_ACCESS_KEY_ID":     "minio",
		"STORAGE_SECRET_ACCESS_KEY": "minio-secret",
		"TIMEZONE":                  "UTC",
	})

	var db *gorm.DB
	require.NoError(t, pool.Retry(func() error {
		var err error
		db, err = postgres.InitializeDB(cfg)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	}), "could not connect to postgres")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, postgres.RunMigrations(sqlDB, "migrations"))

	var rdb *redisClient.RedisClient
	require.NoError(t, pool.Retry(func() error {
		var err error
		rdb, err = redisClient.Connect(cfg)
		return err
	}), "could not connect to redis")

	signer, err := storage.NewFromConfig(context.Background(), cfg)
	require.NoError(t, err)

	server, err := NewServer(cfg, Dependencies{
		DB:        db,
		Redis:     rdb,
		Signer:    signer,
		Processor: razorpay.New("http://unused", "rzp_key", integrationPaymentSecret, nil),
	}, &bytes.Buffer{})
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return integrationEnv{baseURL: ts.URL, db: db}
}

func (env integrationEnv) post(t *testing.T, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, env.baseURL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return env.send(t, req)
}

func (env integrationEnv) get(t *testing.T, path, token string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, env.baseURL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return env.send(t, req)
}

func (env integrationEnv) send(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

// signUpAndIn registers a fresh user, marks them verified and returns their id and token.
func (env integrationEnv) signUpAndIn(t *testing.T) (string, string) {
	t.Helper()
	username := uuid.NewString()[:12]
	email := username + "@example.com"
	password := "Pw-" + uuid.NewString()[:10]

	status, body := env.post(t, "/api/auth/sign-up", "", entity.CreateUserRequest{
		FirstName: faker.FirstName(),
		LastName:  faker.LastName(),
		Email:     email,
		Username:  username,
		Password:  password,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	signUp, err := http_util.DecodeBody(body, http_util.HTTPResponse[entity.SignUpResponse]{})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&entity.User{}).Where("id = ?", signUp.Data.ID).
		Updates(map[string]interface{}{"verification_status": entity.VerificationVerified, "onboarding_completed": true}).Error)

	status, body = env.post(t, "/api/auth/sign-in", "", entity.SignInRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, status, string(body))
	signIn, err := http_util.DecodeBody(body, http_util.HTTPResponse[entity.SignInResponse]{})
	require.NoError(t, err)

	return signUp.Data.ID, signIn.Data.Token
}

func TestIntegration(t *testing.T) {
	env := setupIntegration(t)

	t.Run("mutual like creates one match", func(t *testing.T) {
		aID, aToken := env.signUpAndIn(t)
		bID, bToken := env.signUpAndIn(t)

		status, body := env.post(t, "/api/swipe", aToken, entity.SwipeRequest{SwipedUserID: bID, Action: entity.ActionLike})
		require.Equal(t, http.StatusOK, status, string(body))

		status, body = env.post(t, "/api/swipe", bToken, entity.SwipeRequest{SwipedUserID: aID, Action: entity.ActionLike})
		require.Equal(t, http.StatusOK, status, string(body))
		var resp entity.SwipeResponse
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.True(t, resp.IsMatch)

		status, _ = env.post(t, "/api/swipe", aToken, entity.SwipeRequest{SwipedUserID: bID, Action: entity.ActionLike})
		assert.Equal(t, http.StatusBadRequest, status)

		status, body = env.get(t, "/api/matches", aToken)
		require.Equal(t, http.StatusOK, status)
		var matches entity.MatchListResponse
		require.NoError(t, json.Unmarshal(body, &matches))
		require.Len(t, matches.Matches, 1)
		assert.Equal(t, bID, matches.Matches[0].UserID)
	})

	t.Run("simultaneous opposite likes still match", func(t *testing.T) {
		for round := 0; round < 5; round++ {
			aID, aToken := env.signUpAndIn(t)
			bID, bToken := env.signUpAndIn(t)

			var wg sync.WaitGroup
			statuses := make([]int, 2)
			for i, call := range []struct{ token, target string }{{aToken, bID}, {bToken, aID}} {
				wg.Add(1)
				go func() {
					defer wg.Done()
					statuses[i], _ = env.post(t, "/api/swipe", call.token, entity.SwipeRequest{SwipedUserID: call.target, Action: entity.ActionLike})
				}()
			}
			wg.Wait()
			require.Equal(t, []int{http.StatusOK, http.StatusOK}, statuses)

			var matches int64
			require.NoError(t, env.db.Model(&entity.Match{}).
				Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", aID, bID, bID, aID).
				Count(&matches).Error)
			assert.Equal(t, int64(1), matches)

			var swipes []entity.SwipeAction
			require.NoError(t, env.db.Where("swiper_id IN ?", []string{aID, bID}).Find(&swipes).Error)
			require.Len(t, swipes, 2)
			for _, sw := range swipes {
				assert.True(t, sw.IsMatch, "swipe %s -> %s", sw.SwiperID, sw.SwipedID)
			}
		}
	})

	t.Run("concurrent swipes respect the daily limit", func(t *testing.T) {
		_, token := env.signUpAndIn(t)
		targets := make([]string, 8)
		for i := range targets {
			targets[i], _ = env.signUpAndIn(t)
		}

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			statuses = map[int]int{}
		)
		for _, target := range targets {
			wg.Add(1)
			go func(target string) {
				defer wg.Done()
				status, _ := env.post(t, "/api/swipe", token, entity.SwipeRequest{SwipedUserID: target, Action: entity.ActionDislike})
				mu.Lock()
				statuses[status]++
				mu.Unlock()
			}(target)
		}
		wg.Wait()

		assert.Equal(t, 3, statuses[http.StatusOK], fmt.Sprint(statuses))
		assert.Equal(t, 5, statuses[http.StatusTooManyRequests], fmt.Sprint(statuses))
	})

	t.Run("verified payment grants superlikes once", func(t *testing.T) {
		userID, token := env.signUpAndIn(t)
		orderID, paymentID := "order_"+uuid.NewString()[:8], "pay_"+uuid.NewString()[:8]
		req := map[string]interface{}{
			"order_id":   orderID,
			"payment_id": paymentID,
			"signature":  razorpay.Signature(integrationPaymentSecret, orderID, paymentID),
			"item_type":  "superlike",
			"item_name":  "3 Superlikes",
			"amount":     149,
			"count":      3,
		}

		for i := 0; i < 2; i++ {
			status, body := env.post(t, "/api/payments/verify", token, req)
			require.Equal(t, http.StatusOK, status, string(body))
		}

		var user entity.User
		require.NoError(t, env.db.First(&user, "id = ?", userID).Error)
		assert.Equal(t, 3, user.SuperLikesCount)
	})
}
