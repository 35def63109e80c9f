// File: internal/user/model.go
package user

import (
	"time"

	"barter_backend/internal/common"
	"barter_backend/internal/shared"

	"github.com/google/uuid"
)

// User represents the user model in the database.
type User struct {
	common.BaseModel
	Username          string  `gorm:"type:varchar(150);not null;uniqueIndex"`
	Email             *string `gorm:"type:varchar(255);uniqueIndex"` // Pointer to allow NULL
	PasswordHash      *string `gorm:"type:varchar(255)"`             // NULL for OAuth-only accounts
	FirstName         *string `gorm:"type:varchar(100)"`
	LastName          *string `gorm:"type:varchar(100)"`
	Bio               *string `gorm:"type:text"`
	Location          *string `gorm:"type:varchar(255)"`
	Phone             *string `gorm:"type:varchar(50)"`
	ProfilePictureURL *string `gorm:"type:text"`
	AuthProvider      string  `gorm:"type:varchar(50);not null;default:'email'"`
	ProviderID        *string `gorm:"type:varchar(255);index:idx_auth_provider_provider_id,unique"`
	IsEmailVerified   bool    `gorm:"not null;default:false"`
	Role              string  `gorm:"type:varchar(50);not null;default:'user'"`
	LastLoginAt       *time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// GetID implements shared.UserDataForToken.
func (u *User) GetID() uuid.UUID { return u.ID }

// GetEmail implements shared.UserDataForToken.
func (u *User) GetEmail() *string { return u.Email }

// GetRole implements shared.UserDataForToken.
func (u *User) GetRole() string { return u.Role }

// DBToShared converts a GORM User to the cross-package shared.User.
func DBToShared(u *User) *shared.User {
	if u == nil {
		return nil
	}
	return &shared.User{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Role:              u.Role,
		Bio:               u.Bio,
		Location:          u.Location,
		Phone:             u.Phone,
		ProfilePictureURL: u.ProfilePictureURL,
		AuthProvider:      u.AuthProvider,
		IsEmailVerified:   u.IsEmailVerified,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
		LastLoginAt:       u.LastLoginAt,
	}
}

// --- DTOs ---

// CreateUserRequest defines the structure for creating a new user.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"` // bcrypt max is 72 bytes
	FirstName string `json:"first_name,omitempty" binding:"omitempty,max=100"`
	LastName  string `json:"last_name,omitempty" binding:"omitempty,max=100"`
}

// UpdateProfileRequest defines the mutable profile fields.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,max=100"`
	Bio       *string `json:"bio,omitempty" binding:"omitempty,max=2000"`
	Location  *string `json:"location,omitempty" binding:"omitempty,max=255"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,max=50"`
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID                uuid.UUID  `json:"id"`
	Username          string     `json:"username"`
	Email             *string    `json:"email,omitempty"`
	FirstName         *string    `json:"first_name,omitempty"`
	LastName          *string    `json:"last_name,omitempty"`
	Bio               *string    `json:"bio,omitempty"`
	Location          *string    `json:"location,omitempty"`
	Phone             *string    `json:"phone,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	AuthProvider      string     `json:"auth_provider"`
	IsEmailVerified   bool       `json:"is_email_verified"`
	Role              string     `json:"role"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
}

// ToUserResponse converts a shared.User to a UserResponse DTO.
// When private is false, contact fields are withheld.
func ToUserResponse(u *shared.User, private bool) UserResponse {
	resp := UserResponse{
		ID:                u.ID,
		Username:          u.Username,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Bio:               u.Bio,
		Location:          u.Location,
		ProfilePictureURL: u.ProfilePictureURL,
		AuthProvider:      u.AuthProvider,
		IsEmailVerified:   u.IsEmailVerified,
		Role:              u.Role,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
		LastLoginAt:       u.LastLoginAt,
	}
	if private {
		resp.Email = u.Email
		resp.Phone = u.Phone
	}
	return resp
}

// UserStatsResponse mirrors the public profile statistics.
type UserStatsResponse struct {
	Username        string  `json:"username"`
	TotalOffers     int64   `json:"total_offers"`
	ActiveOffers    int64   `json:"active_offers"`
	CompletedTrades int64   `json:"completed_trades"`
	ReviewsCount    int64   `json:"reviews_count"`
	AverageRating   float64 `json:"average_rating"`
	JoinedDate      string  `json:"joined_date"`
}
