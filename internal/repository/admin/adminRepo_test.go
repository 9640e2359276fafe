package adminRepo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/ghaniswara/dharmasaathi/internal/testhelper"
	"github.com/stretchr/testify/require"
	"gotest.tools/assert"
)

func defaultQuery() UserQuery {
	return UserQuery{Page: 1, Limit: 20, Filter: "all", SortBy: "created_at", SortOrder: "desc"}
}

func TestListUsers_Pagination(t *testing.T) {
	db := testhelper.NewTestDB(t)
	repo := New(db)
	testhelper.PopulateUsers(t, db, 45)

	q := defaultQuery()
	q.Page = 2
	users, total, err := repo.ListUsers(context.Background(), q)
	assert.NilError(t, err)
	assert.Equal(t, total, int64(45))
	assert.Equal(t, len(users), 20)

	q.Page = 3
	users, _, err = repo.ListUsers(context.Background(), q)
	assert.NilError(t, err)
	assert.Equal(t, len(users), 5)
}

func TestListUsers_Filters(t *testing.T) {
	db := testhelper.NewTestDB(t)
	repo := New(db)

	testhelper.CreateUser(t, db, testhelper.WithFields(func(u *entity.User) {
		u.FirstName = "Meera"
		u.Gender = "Female"
		u.ProfilePhotoPath = "m/p.jpg"
	}))
	testhelper.CreateUser(t, db, testhelper.WithFields(func(u *entity.User) {
		u.FirstName = "Arjun"
		u.Gender = "male"
		u.IsActive = false
		u.VerificationStatus = entity.VerificationPending
		u.OnboardingCompleted = false
	}))
	testhelper.CreateUser(t, db, testhelper.WithPremium("Monthly", time.Now().Add(time.Hour)), testhelper.WithFields(func(u *entity.User) {
		u.FirstName = "Kavya"
		u.Email = "kavya.MEERA@example.com"
	}))

	cases := []struct {
		name  string
		apply func(*UserQuery)
		want  int
	}{
		{"all", func(q *UserQuery) {}, 3},
		{"search is case insensitive across name and email", func(q *UserQuery) { q.Search = "meera" }, 2},
		{"inactive", func(q *UserQuery) { q.Filter = "inactive" }, 1},
		{"active", func(q *UserQuery) { q.Filter = "active" }, 2},
		{"pending", func(q *UserQuery) { q.Filter = "pending" }, 1},
		{"premium", func(q *UserQuery) { q.Filter = "premium" }, 1},
		{"gender", func(q *UserQuery) { q.GenderFilter = "female" }, 2},
		{"with photo", func(q *UserQuery) { q.PhotoFilter = "with_photo" }, 1},
		{"without photo", func(q *UserQuery) { q.PhotoFilter = "without_photo" }, 2},
		{"incomplete", func(q *UserQuery) { q.ProfileCompletionFilter = "incomplete" }, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := defaultQuery()
			tc.apply(&q)
			users, total, err := repo.ListUsers(context.Background(), q)
			assert.NilError(t, err)
			assert.Equal(t, int(total), tc.want)
			assert.Equal(t, len(users), tc.want)
		})
	}
}

func TestListUsers_Sort(t *testing.T) {
	db := testhelper.NewTestDB(t)
	repo := New(db)
	for _, name := range []string{"Chitra", "Anil", "Bela"} {
		testhelper.CreateUser(t, db, testhelper.WithFields(func(u *entity.User) { u.FirstName = name }))
	}

	q := defaultQuery()
	q.SortBy, q.SortOrder = "first_name", "asc"
	users, _, err := repo.ListUsers(context.Background(), q)
	assert.NilError(t, err)
	assert.Equal(t, users[0].FirstName, "Anil")
	assert.Equal(t, users[2].FirstName, "Chitra")
}

func TestListUsers_SearchMatchesWildcardsLiterally(t *testing.T) {
	db := testhelper.NewTestDB(t)
	repo := New(db)
	for i, name := range []string{"Meera", "Arjun", "50%Off", "Ravi_K", `Back\slash`} {
		testhelper.CreateUser(t, db, testhelper.WithFields(func(u *entity.User) {
			u.FirstName, u.LastName = name, "Test"
			u.Email = fmt.Sprintf("member%d@example.com", i)
		}))
	}

	cases := []struct {
		search string
		want   string
	}{
		{"%", "50%Off"},
		{"_", "Ravi_K"},
		{`\`, `Back\slash`},
	}
	for _, tc := range cases {
		t.Run(tc.search, func(t *testing.T) {
			q := defaultQuery()
			q.Search = tc.search
			users, total, err := repo.ListUsers(context.Background(), q)
			assert.NilError(t, err)
			assert.Equal(t, int(total), 1)
			assert.Equal(t, users[0].FirstName, tc.want)
		})
	}
}

func TestStats(t *testing.T) {
	db := testhelper.NewTestDB(t)
	repo := New(db)
	a := testhelper.CreateUser(t, db, testhelper.WithPremium("Monthly", time.Now().Add(time.Hour)))
	b := testhelper.CreateUser(t, db, testhelper.WithVerification(entity.VerificationRejected))
	testhelper.CreateUser(t, db, testhelper.WithVerification(entity.VerificationPending))

	m := entity.NewMatch(a.ID, b.ID)
	require.NoError(t, db.Create(&m).Error)
	require.NoError(t, db.Create(&entity.DailyStat{UserID: a.ID, StatDate: "2026-10-18", SwipesUsed: 3}).Error)
	require.NoError(t, db.Create(&entity.DailyStat{UserID: b.ID, StatDate: "2026-10-18", SwipesUsed: 2}).Error)
	require.NoError(t, db.Create(&entity.DailyStat{UserID: b.ID, StatDate: "2026-10-17", SwipesUsed: 9}).Error)
	require.NoError(t, db.Create(&entity.Transaction{UserID: a.ID, OrderID: "o1", PaymentID: "p1", Amount: 49900, Currency: "INR", Status: entity.TransactionCaptured, ItemType: entity.ItemPlan}).Error)
	require.NoError(t, db.Create(&entity.Transaction{UserID: a.ID, OrderID: "o2", PaymentID: "p2", Amount: 9900, Currency: "INR", Status: entity.TransactionCaptured, ItemType: entity.ItemSuperlike}).Error)

	stats, err := repo.Stats(context.Background(), "2026-10-18")
	assert.NilError(t, err)
	assert.DeepEqual(t, stats, entity.AdminStats{
		TotalUsers:   3,
		Verified:     1,
		Pending:      1,
		Rejected:     1,
		Premium:      1,
		Active:       3,
		TotalMatches: 1,
		SwipesToday:  5,
		RevenueMinor: 59800,
	})
}
