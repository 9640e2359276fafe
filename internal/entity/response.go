package entity

import "time"

type SignUpResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type SignInResponse struct {
	Token string `json:"token"`
}

type SwipeResponse struct {
	Success bool   `json:"success"`
	IsMatch bool   `json:"is_match"`
	Action  Action `json:"action"`
}

type SwipeStatsResponse struct {
	Date           string `json:"date"`
	SwipesUsed     int    `json:"swipes_used"`
	SuperlikesUsed int    `json:"superlikes_used"`
	// nil means unlimited
	Limit     *int `json:"limit"`
	Remaining *int `json:"remaining"`
}

type DiscoverProfile struct {
	ID              string   `json:"id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Gender          string   `json:"gender"`
	ProfilePhotoURL *string  `json:"profile_photo_url"`
	GalleryURLs     []string `json:"gallery_urls"`
}

type DiscoverResponse struct {
	Profiles []DiscoverProfile `json:"profiles"`
}

type MatchView struct {
	MatchID         string    `json:"match_id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	ProfilePhotoURL *string   `json:"profile_photo_url"`
	MatchedAt       time.Time `json:"matched_at"`
}

type MatchListResponse struct {
	Matches []MatchView `json:"matches"`
}

type OrderResponse struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type VerifyPaymentResponse struct {
	Verified      bool   `json:"verified"`
	TransactionID string `json:"transaction_id,omitempty"`
	ItemType      string `json:"item_type,omitempty"`
	AlreadyIssued bool   `json:"already_processed,omitempty"`
}

// AdminUser is the dashboard view of a user. Fields are filled with copier by name.
type AdminUser struct {
	ID                     string     `json:"id"`
	Email                  string     `json:"email"`
	Username               string     `json:"username"`
	FirstName              string     `json:"first_name"`
	LastName               string     `json:"last_name"`
	Gender                 string     `json:"gender"`
	Role                   string     `json:"role"`
	VerificationStatus     string     `json:"verification_status"`
	AccountStatus          string     `json:"account_status"`
	PremiumPlan            string     `json:"premium_plan"`
	PremiumExpiresAt       *time.Time `json:"premium_expires_at"`
	SuperLikesCount        int        `json:"super_likes_count"`
	MessageHighlightsCount int        `json:"message_highlights_count"`
	OnboardingCompleted    bool       `json:"onboarding_completed"`
	IsActive               bool       `json:"is_active"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
	ProfilePhotoURL        *string    `json:"profile_photo_url"`
	GalleryURLs            []string   `json:"gallery_urls"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

type AdminStats struct {
	TotalUsers    int64  `json:"total_users"`
	Verified      int64  `json:"verified"`
	Pending       int64  `json:"pending"`
	Rejected      int64  `json:"rejected"`
	Premium       int64  `json:"premium"`
	Active        int64  `json:"active"`
	TotalMatches  int64  `json:"total_matches"`
	SwipesToday   int64  `json:"swipes_today"`
	RevenueMinor  int64  `json:"revenue"`
	RevenueAmount string `json:"revenue_display"`
}

type AdminDashboardResponse struct {
	Users      []AdminUser `json:"users"`
	Pagination Pagination  `json:"pagination"`
	Stats      *AdminStats `json:"stats,omitempty"`
}
