package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SwipeAction struct {
	ID        string    `gorm:"primaryKey;type:varchar(36);column:id" json:"id"`
	SwiperID  string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_swipe_pair,priority:1;column:swiper_id" json:"swiper_id"`
	SwipedID  string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_swipe_pair,priority:2;index;column:swiped_id" json:"swiped_id"`
	Action    Action    `gorm:"type:varchar(16);not null;column:action" json:"action"`
	IsMatch   bool      `gorm:"not null;default:false;column:is_match" json:"is_match"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (SwipeAction) TableName() string { return "swipe_actions" }

func (s *SwipeAction) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

type Action string

const (
	ActionLike      Action = "like"
	ActionDislike   Action = "dislike"
	ActionSuperLike Action = "superlike"
)

func (a Action) Valid() bool {
	switch a {
	case ActionLike, ActionDislike, ActionSuperLike:
		return true
	}
	return false
}

// IsPositive reports whether the action expresses interest and can form a match.
func (a Action) IsPositive() bool {
	return a == ActionLike || a == ActionSuperLike
}

func (a Action) String() string {
	return string(a)
}

// Match rows always hold User1ID < User2ID.
type Match struct {
	ID        string    `gorm:"primaryKey;type:varchar(36);column:id" json:"id"`
	User1ID   string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_match_pair,priority:1;column:user1_id" json:"user1_id"`
	User2ID   string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_match_pair,priority:2;index;column:user2_id" json:"user2_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Match) TableName() string { return "matches" }

func (m *Match) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// NewMatch orders the pair lexicographically so a pair maps to a single row.
func NewMatch(a, b string) Match {
	if a > b {
		a, b = b, a
	}
	return Match{User1ID: a, User2ID: b}
}

func (m *Match) OtherUserID(userID string) (string, bool) {
	switch userID {
	case m.User1ID:
		return m.User2ID, true
	case m.User2ID:
		return m.User1ID, true
	}
	return "", false
}

type DailyStat struct {
	ID             uint   `gorm:"primaryKey;column:id"`
	UserID         string `gorm:"type:varchar(36);not null;uniqueIndex:ux_daily_stat,priority:1;column:user_id"`
	StatDate       string `gorm:"type:varchar(10);not null;uniqueIndex:ux_daily_stat,priority:2;index;column:stat_date"`
	SwipesUsed     int    `gorm:"not null;default:0;column:swipes_used"`
	SuperlikesUsed int    `gorm:"not null;default:0;column:superlikes_used"`
}

func (DailyStat) TableName() string { return "user_daily_stats" }

type ItemType string

const (
	ItemPlan      ItemType = "plan"
	ItemSuperlike ItemType = "superlike"
	ItemHighlight ItemType = "highlight"
)

func (i ItemType) Valid() bool {
	switch i {
	case ItemPlan, ItemSuperlike, ItemHighlight:
		return true
	}
	return false
}

const TransactionCaptured = "captured"

type Transaction struct {
	ID        string         `gorm:"primaryKey;type:varchar(36);column:id" json:"id"`
	UserID    string         `gorm:"type:varchar(36);not null;index;column:user_id" json:"user_id"`
	OrderID   string         `gorm:"not null;column:order_id" json:"order_id"`
	PaymentID string         `gorm:"not null;uniqueIndex;column:payment_id" json:"payment_id"`
	Amount    int64          `gorm:"not null;column:amount" json:"amount"`
	Currency  string         `gorm:"not null;default:INR;column:currency" json:"currency"`
	Status    string         `gorm:"not null;column:status" json:"status"`
	ItemType  ItemType       `gorm:"not null;column:item_type" json:"item_type"`
	ItemName  string         `gorm:"column:item_name" json:"item_name"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }

func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Models lists every persisted type, in dependency order, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{&User{}, &SwipeAction{}, &Match{}, &DailyStat{}, &Transaction{}}
}
