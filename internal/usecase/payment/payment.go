package paymentUseCase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ghaniswara/dharmasaathi/internal/datastore/razorpay"
	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/ghaniswara/dharmasaathi/internal/logger"
	paymentRepo "github.com/ghaniswara/dharmasaathi/internal/repository/payment"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const defaultCurrency = "INR"

type IPaymentUseCase interface {
	CreateOrder(ctx context.Context, caller *entity.User, req entity.CreateOrderRequest) (entity.OrderResponse, error)
	VerifyPayment(ctx context.Context, caller *entity.User, req entity.VerifyPaymentRequest) (entity.VerifyPaymentResponse, error)
}

type paymentUseCase struct {
	repo      paymentRepo.IPaymentRepo
	processor razorpay.IClient
	now       func() time.Time
}

func New(repo paymentRepo.IPaymentRepo, processor razorpay.IClient) IPaymentUseCase {
	return &paymentUseCase{
		repo:      repo,
		processor: processor,
		now:       time.Now,
	}
}

// ToMinorUnits converts a positive major unit amount with at most two decimals.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, errors.Wrap(entity.ErrValidation, "amount must be positive")
	}
	minor := amount.Shift(2)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, errors.Wrap(entity.ErrValidation, "amount has more than two decimal places")
	}
	return minor.IntPart(), nil
}

// PlanExpiry is one year out for annual plans and one month out otherwise.
func PlanExpiry(planName string, now time.Time) time.Time {
	if strings.Contains(strings.ToLower(planName), "annual") {
		return now.AddDate(1, 0, 0)
	}
	return now.AddDate(0, 1, 0)
}

func (p *paymentUseCase) CreateOrder(ctx context.Context, caller *entity.User, req entity.CreateOrderRequest) (entity.OrderResponse, error) {
	amount, err := ToMinorUnits(req.Amount)
	if err != nil {
		return entity.OrderResponse{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	receipt := req.Receipt
	if receipt == "" {
		receipt = "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
	}
	notes := make(map[string]string, len(req.Notes)+1)
	for k, v := range req.Notes {
		notes[k] = v
	}
	notes["user_id"] = caller.ID

	order, err := p.processor.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return entity.OrderResponse{}, errors.Wrap(err, "create order")
	}

	return entity.OrderResponse{
		ID:       order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   order.Status,
		Notes:    order.Notes,
	}, nil
}

func (p *paymentUseCase) VerifyPayment(ctx context.Context, caller *entity.User, req entity.VerifyPaymentRequest) (entity.VerifyPaymentResponse, error) {
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return entity.VerifyPaymentResponse{}, errors.Wrap(entity.ErrValidation, "order_id, payment_id and signature are required")
	}

	if !p.processor.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		logger.Log.WithFields(logrus.Fields{"user_id": caller.ID, "order_id": req.OrderID}).Warn("payment signature mismatch")
		return entity.VerifyPaymentResponse{}, entity.ErrInvalidSignature
	}

	if !req.ItemType.Valid() {
		return entity.VerifyPaymentResponse{}, errors.Wrapf(entity.ErrValidation, "unknown item type %q", req.ItemType)
	}

	amount, err := ToMinorUnits(req.Amount)
	if err != nil {
		return entity.VerifyPaymentResponse{}, err
	}

	if existing, err := p.repo.GetByPaymentID(ctx, req.PaymentID); err != nil {
		return entity.VerifyPaymentResponse{}, errors.Wrap(err, "idempotency lookup")
	} else if existing != nil {
		return p.alreadyProcessed(caller, existing)
	}

	count := req.Count
	if count <= 0 {
		count = 1
	}
	now := p.now().UTC()
	grant := paymentRepo.Entitlement{ItemType: req.ItemType, PlanName: req.ItemName, Count: count}
	if req.ItemType == entity.ItemPlan {
		grant.ExpiresAt = PlanExpiry(req.ItemName, now)
		grant.Count = 0
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"count":       grant.Count,
		"item_name":   req.ItemName,
		"verified_at": now.Format(time.RFC3339),
	})
	if err != nil {
		return entity.VerifyPaymentResponse{}, err
	}

	txn, err := p.repo.RecordPayment(ctx, entity.Transaction{
		UserID:    caller.ID,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Amount:    amount,
		Currency:  currency,
		Status:    entity.TransactionCaptured,
		ItemType:  req.ItemType,
		ItemName:  req.ItemName,
		Metadata:  datatypes.JSON(metadata),
	}, grant)
	if errors.Is(err, entity.ErrAlreadyExists) {
		existing, lookupErr := p.repo.GetByPaymentID(ctx, req.PaymentID)
		if lookupErr != nil || existing == nil {
			return entity.VerifyPaymentResponse{}, errors.Wrap(err, "reload recorded payment")
		}
		return p.alreadyProcessed(caller, existing)
	}
	if err != nil {
		return entity.VerifyPaymentResponse{}, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":    caller.ID,
		"payment_id": req.PaymentID,
		"item_type":  req.ItemType,
		"amount":     amount,
	}).Info("payment verified")

	return entity.VerifyPaymentResponse{Verified: true, TransactionID: txn.ID, ItemType: string(txn.ItemType)}, nil
}

// alreadyProcessed answers a replayed verification without granting anything again.
func (p *paymentUseCase) alreadyProcessed(caller *entity.User, existing *entity.Transaction) (entity.VerifyPaymentResponse, error) {
	if existing.UserID != caller.ID {
		return entity.VerifyPaymentResponse{}, errors.Wrap(entity.ErrAlreadyExists, "payment belongs to another user")
	}
	return entity.VerifyPaymentResponse{
		Verified:      true,
		TransactionID: existing.ID,
		ItemType:      string(existing.ItemType),
		AlreadyIssued: true,
	}, nil
}
