package paymentUseCase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ghaniswara/dharmasaathi/internal/datastore/razorpay"
	"github.com/ghaniswara/dharmasaathi/internal/entity"
	paymentRepo "github.com/ghaniswara/dharmasaathi/internal/repository/payment"
	"github.com/ghaniswara/dharmasaathi/internal/testhelper"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "rzp_test_secret"

var fixedNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func newUseCase(t *testing.T, processorURL string) (*paymentUseCase, *gorm.DB) {
	t.Helper()
	db := testhelper.NewTestDB(t)
	uc := New(paymentRepo.New(db), razorpay.New(processorURL, "rzp_test_key", secret, nil)).(*paymentUseCase)
	uc.now = func() time.Time { return fixedNow }
	return uc, db
}

func verifyRequest(orderID, paymentID string, item entity.ItemType, name string, count int) entity.VerifyPaymentRequest {
	return entity.VerifyPaymentRequest{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: razorpay.Signature(secret, orderID, paymentID),
		ItemType:  item,
		ItemName:  name,
		Amount:    decimal.RequireFromString("499.00"),
		Count:     count,
	}
}

func reload(t *testing.T, db *gorm.DB, id string) entity.User {
	t.Helper()
	var u entity.User
	require.NoError(t, db.First(&u, "id = ?", id).Error)
	return u
}

func countTransactions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&entity.Transaction{}).Count(&n).Error)
	return n
}

func TestVerifyPayment_PlanExpiry(t *testing.T) {
	cases := []struct {
		plan string
		want time.Time
	}{
		{"Annual Premium", fixedNow.AddDate(1, 0, 0)},
		{"Monthly Premium", fixedNow.AddDate(0, 1, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.plan, func(t *testing.T) {
			uc, db := newUseCase(t, "http://unused")
			u := testhelper.CreateUser(t, db)

			resp, err := uc.VerifyPayment(context.Background(), &u, verifyRequest("order_1", "pay_1", entity.ItemPlan, tc.plan, 0))
			require.NoError(t, err)
			assert.True(t, resp.Verified)
			assert.NotEmpty(t, resp.TransactionID)

			got := reload(t, db, u.ID)
			assert.Equal(t, entity.AccountPremium, got.AccountStatus)
			assert.Equal(t, tc.plan, got.PremiumPlan)
			require.NotNil(t, got.PremiumExpiresAt)
			assert.True(t, tc.want.Equal(*got.PremiumExpiresAt), "expiry %v want %v", got.PremiumExpiresAt, tc.want)

			var txn entity.Transaction
			require.NoError(t, db.First(&txn).Error)
			assert.Equal(t, int64(49900), txn.Amount)
			assert.Equal(t, "INR", txn.Currency)
			assert.Equal(t, entity.TransactionCaptured, txn.Status)
		})
	}
}

func TestVerifyPayment_TamperedSignature(t *testing.T) {
	uc, db := newUseCase(t, "http://unused")
	u := testhelper.CreateUser(t, db)

	req := verifyRequest("order_1", "pay_1", entity.ItemSuperlike, "5 Superlikes", 5)
	req.PaymentID = "pay_2"

	resp, err := uc.VerifyPayment(context.Background(), &u, req)
	assert.True(t, errors.Is(err, entity.ErrInvalidSignature))
	assert.False(t, resp.Verified)
	assert.Equal(t, int64(0), countTransactions(t, db))
	assert.Equal(t, 0, reload(t, db, u.ID).SuperLikesCount)
}

func TestVerifyPayment_CountsAndIdempotency(t *testing.T) {
	uc, db := newUseCase(t, "http://unused")
	u := testhelper.CreateUser(t, db)
	ctx := context.Background()

	_, err := uc.VerifyPayment(ctx, &u, verifyRequest("order_s", "pay_s", entity.ItemSuperlike, "5 Superlikes", 5))
	require.NoError(t, err)
	_, err = uc.VerifyPayment(ctx, &u, verifyRequest("order_h", "pay_h", entity.ItemHighlight, "Highlight", 0))
	require.NoError(t, err)

	replay, err := uc.VerifyPayment(ctx, &u, verifyRequest("order_s", "pay_s", entity.ItemSuperlike, "5 Superlikes", 5))
	require.NoError(t, err)
	assert.True(t, replay.Verified)
	assert.True(t, replay.AlreadyIssued)

	got := reload(t, db, u.ID)
	assert.Equal(t, 5, got.SuperLikesCount)
	assert.Equal(t, 1, got.MessageHighlightsCount)
	assert.Equal(t, int64(2), countTransactions(t, db))

	other := testhelper.CreateUser(t, db)
	_, err = uc.VerifyPayment(ctx, &other, verifyRequest("order_s", "pay_s", entity.ItemSuperlike, "5 Superlikes", 5))
	assert.True(t, errors.Is(err, entity.ErrAlreadyExists))
}

func TestVerifyPayment_Validation(t *testing.T) {
	uc, db := newUseCase(t, "http://unused")
	u := testhelper.CreateUser(t, db)
	ctx := context.Background()

	unknown := verifyRequest("order_1", "pay_1", "boost", "", 1)
	_, err := uc.VerifyPayment(ctx, &u, unknown)
	assert.True(t, errors.Is(err, entity.ErrValidation))

	missing := verifyRequest("order_1", "pay_1", entity.ItemPlan, "Monthly", 0)
	missing.OrderID = ""
	_, err = uc.VerifyPayment(ctx, &u, missing)
	assert.True(t, errors.Is(err, entity.ErrValidation))

	assert.Equal(t, int64(0), countTransactions(t, db))
}

func TestToMinorUnits(t *testing.T) {
	n, err := ToMinorUnits(decimal.RequireFromString("499.99"))
	require.NoError(t, err)
	assert.Equal(t, int64(49999), n)

	n, err = ToMinorUnits(decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), n)

	_, err = ToMinorUnits(decimal.RequireFromString("1.999"))
	assert.True(t, errors.Is(err, entity.ErrValidation))

	_, err = ToMinorUnits(decimal.Zero)
	assert.True(t, errors.Is(err, entity.ErrValidation))
}

func TestCreateOrder(t *testing.T) {
	var received razorpay.OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(razorpay.Order{
			ID: "order_abc", Amount: received.Amount, Currency: received.Currency,
			Receipt: received.Receipt, Status: "created", Notes: received.Notes,
		})
	}))
	defer srv.Close()

	uc, db := newUseCase(t, srv.URL)
	u := testhelper.CreateUser(t, db)

	order, err := uc.CreateOrder(context.Background(), &u, entity.CreateOrderRequest{
		Amount: decimal.RequireFromString("299.5"),
		Notes:  map[string]string{"plan": "Monthly"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(29950), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.NotEmpty(t, order.Receipt)
	assert.Equal(t, u.ID, received.Notes["user_id"])
	assert.Equal(t, "Monthly", received.Notes["plan"])
}

func TestCreateOrder_ProcessorFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	uc, db := newUseCase(t, srv.URL)
	u := testhelper.CreateUser(t, db)

	_, err := uc.CreateOrder(context.Background(), &u, entity.CreateOrderRequest{Amount: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, razorpay.ErrProcessor))
}
