package paymentRepo

import (
	"context"
	"time"

	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entitlement is what a captured payment grants the paying user.
type Entitlement struct {
	ItemType  entity.ItemType
	PlanName  string
	ExpiresAt time.Time
	Count     int
}

type IPaymentRepo interface {
	GetByPaymentID(ctx context.Context, paymentID string) (*entity.Transaction, error)
	RecordPayment(ctx context.Context, txn entity.Transaction, grant Entitlement) (*entity.Transaction, error)
}

type PaymentRepo struct {
	db *gorm.DB
}

func New(db *gorm.DB) IPaymentRepo {
	return &PaymentRepo{db: db}
}

// GetByPaymentID returns nil without error when the payment was never recorded.
func (r *PaymentRepo) GetByPaymentID(ctx context.Context, paymentID string) (*entity.Transaction, error) {
	var txn entity.Transaction
	res := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).Limit(1).Find(&txn)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "get transaction")
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &txn, nil
}

// RecordPayment inserts the transaction and applies the entitlement in one
// database transaction. A payment id that is already recorded yields ErrAlreadyExists.
func (r *PaymentRepo) RecordPayment(ctx context.Context, txn entity.Transaction, grant Entitlement) (*entity.Transaction, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user entity.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", txn.UserID).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(entity.ErrUserNotFound, "payer")
		}
		if err != nil {
			return errors.Wrap(err, "lock payer")
		}

		if err := tx.Create(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.Wrap(entity.ErrAlreadyExists, "payment "+txn.PaymentID)
			}
			return errors.Wrap(err, "insert transaction")
		}

		if err := applyEntitlement(tx, txn.UserID, grant); err != nil {
			return errors.Wrap(err, "apply entitlement")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func applyEntitlement(tx *gorm.DB, userID string, grant Entitlement) error {
	user := tx.Model(&entity.User{}).Where("id = ?", userID)

	switch grant.ItemType {
	case entity.ItemPlan:
		expiresAt := grant.ExpiresAt
		return user.Updates(map[string]interface{}{
			"account_status":     entity.AccountPremium,
			"premium_plan":       grant.PlanName,
			"premium_expires_at": &expiresAt,
		}).Error
	case entity.ItemSuperlike:
		return user.UpdateColumn("super_likes_count", gorm.Expr("super_likes_count + ?", grant.Count)).Error
	case entity.ItemHighlight:
		return user.UpdateColumn("message_highlights_count", gorm.Expr("message_highlights_count + ?", grant.Count)).Error
	}
	return errors.Wrapf(entity.ErrValidation, "unknown item type %q", grant.ItemType)
}
