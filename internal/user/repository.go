// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barter_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for users.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByProvider(ctx context.Context, provider, providerID string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.ErrConflict.WithDetails("A user with this username or email already exists.")
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var usr User
	err := r.db.WithContext(ctx).First(&usr, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, fmt.Errorf("finding user by id %s: %w", id, err)
	}
	return &usr, nil
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var usr User
	err := r.db.WithContext(ctx).First(&usr, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, fmt.Errorf("finding user by email: %w", err)
	}
	return &usr, nil
}

func (r *gormRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var usr User
	err := r.db.WithContext(ctx).First(&usr, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, fmt.Errorf("finding user by username %q: %w", username, err)
	}
	return &usr, nil
}

func (r *gormRepository) FindByProvider(ctx context.Context, provider, providerID string) (*User, error) {
	var usr User
	err := r.db.WithContext(ctx).
		First(&usr, "auth_provider = ? AND provider_id = ?", provider, providerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, fmt.Errorf("finding user by provider %s: %w", provider, err)
	}
	return &usr, nil
}

func (r *gormRepository) Update(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.ErrConflict.WithDetails("A user with this username or email already exists.")
		}
		return fmt.Errorf("updating user %s: %w", user.ID, err)
	}
	return nil
}

// UpdateFields updates only the given columns, leaving the rest untouched.
func (r *gormRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("updating user fields for %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("User not found.")
	}
	return nil
}

func (r *gormRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
	if err != nil {
		return fmt.Errorf("updating last login for %s: %w", id, err)
	}
	return nil
}
