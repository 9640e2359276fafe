package entity

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type CreateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	Gender    string `json:"gender"`
}

func (r *CreateUserRequest) Validate(ctx context.Context) (problems map[string][]string) {
	problems = make(map[string][]string)

	if r.FirstName == "" {
		problems["FirstName"] = append(problems["FirstName"], "First name is required")
	}
	if r.Email == "" {
		problems["Email"] = append(problems["Email"], "Email is required")
	} else if !emailRegex.MatchString(r.Email) {
		problems["Email"] = append(problems["Email"], "Invalid email format")
	}

	if r.Username == "" {
		problems["Username"] = append(problems["Username"], "Username is required")
	}

	if len(r.Username) > 16 {
		problems["Username"] = append(problems["Username"], "User name is too long")
	}

	if r.Password == "" {
		problems["Password"] = append(problems["Password"], "Password is required")
	}

	// bcrypt truncates beyond 72 bytes and the hash input is password+email
	if len([]byte(r.Password+r.Email)) > 72 {
		problems["Password"] = append(problems["Password"], "Password and email together should not exceed 72 bytes")
	}

	return problems
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

func (r *SignInRequest) Validate(ctx context.Context) (problems map[string][]string) {
	problems = make(map[string][]string)

	if r.Email == "" && r.Username == "" {
		problems["Email/Username"] = append(problems["Email/Username"], "Either Email or Username is required")
	}

	if r.Email != "" && !emailRegex.MatchString(r.Email) {
		problems["Email"] = append(problems["Email"], "Invalid email format")
	}

	if r.Password == "" {
		problems["Password"] = append(problems["Password"], "Password is required")
	}

	return problems
}

type SwipeRequest struct {
	SwipedUserID string `json:"swiped_user_id" validate:"required"`
	Action       Action `json:"action" validate:"required,oneof=like dislike superlike"`
}

type DiscoverRequest struct {
	Limit int `query:"limit"`
}

// Amounts are in major units and accept JSON numbers or numeric strings.
type CreateOrderRequest struct {
	Amount   decimal.Decimal   `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

type VerifyPaymentRequest struct {
	OrderID   string          `json:"order_id" validate:"required"`
	PaymentID string          `json:"payment_id" validate:"required"`
	Signature string          `json:"signature" validate:"required"`
	ItemType  ItemType        `json:"item_type" validate:"required"`
	ItemName  string          `json:"item_name"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Count     int             `json:"count" validate:"gte=0"`
}

// AdminUserQuery holds the dashboard listing parameters. Zero values take defaults.
type AdminUserQuery struct {
	Page                    int    `query:"page"`
	Limit                   int    `query:"limit"`
	Search                  string `query:"search"`
	Filter                  string `query:"filter"`
	SortBy                  string `query:"sort_by"`
	SortOrder               string `query:"sort_order"`
	GenderFilter            string `query:"gender_filter"`
	PhotoFilter             string `query:"photo_filter"`
	ProfileCompletionFilter string `query:"profile_completion_filter"`
	IncludeStats            bool   `query:"include_stats"`
}

type UpdateVerificationRequest struct {
	Status VerificationStatus `json:"verification_status" validate:"required,oneof=pending verified rejected"`
}
