// File: internal/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"barter_backend/internal/common"
	"barter_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// OfferCounter reports offer counts for a user's public statistics.
type OfferCounter interface {
	CountForOwner(ctx context.Context, ownerID uuid.UUID) (total int64, active int64, err error)
}

// TradeCounter reports completed trade counts for a user.
type TradeCounter interface {
	CountCompletedForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ReviewAggregator reports the review count and average rating a user has received.
type ReviewAggregator interface {
	RatingSummaryForUser(ctx context.Context, userID uuid.UUID) (count int64, average float64, err error)
}

// StatsSources bundles the per-domain counters behind the public stats endpoint.
// The concrete implementations live in the offer, trade and review packages.
type StatsSources struct {
	Offers  OfferCounter
	Trades  TradeCounter
	Reviews ReviewAggregator
}

// Service defines the operations the user domain exposes.
type Service interface {
	shared.Service
	shared.OAuthUserProvider

	Register(ctx context.Context, req CreateUserRequest) (*shared.User, error)
	Login(ctx context.Context, email, password string) (*shared.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*shared.User, error)
	GetUserStats(ctx context.Context, username string) (*UserStatsResponse, error)
}

type service struct {
	repo   Repository
	stats  StatsSources
	logger *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, stats StatsSources, logger *zap.Logger) Service {
	return &service{repo: repo, stats: stats, logger: logger.Named("UserService")}
}

func (s *service) Register(ctx context.Context, req CreateUserRequest) (*shared.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, common.ErrConflict.WithDetails("This username is already taken.")
	} else if !isNotFound(err) {
		return nil, err
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, common.ErrConflict.WithDetails("An account with this email already exists.")
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	hashStr := string(hash)

	usr := &User{
		Username:     username,
		Email:        &email,
		PasswordHash: &hashStr,
		AuthProvider: "email",
		Role:         common.RoleUser,
	}
	if req.FirstName != "" {
		usr.FirstName = &req.FirstName
	}
	if req.LastName != "" {
		usr.LastName = &req.LastName
	}

	if err := s.repo.Create(ctx, usr); err != nil {
		return nil, err
	}
	s.logger.Info("User registered", zap.String("userID", usr.ID.String()), zap.String("username", usr.Username))
	return DBToShared(usr), nil
}

// Login verifies credentials and returns the user. Failures are deliberately
// indistinguishable between unknown email and wrong password.
func (s *service) Login(ctx context.Context, email, password string) (*shared.User, error) {
	usr, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if isNotFound(err) {
			return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
		}
		return nil, err
	}
	if usr.PasswordHash == nil {
		// OAuth-only account; no password to check.
		return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*usr.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, usr.ID, now); err != nil {
		s.logger.Warn("Failed to record last login", zap.String("userID", usr.ID.String()), zap.Error(err))
	}
	usr.LastLoginAt = &now
	return DBToShared(usr), nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	usr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return DBToShared(usr), nil
}

func (s *service) GetUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	usr, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	return DBToShared(usr), nil
}

func (s *service) GetUserByUsername(ctx context.Context, username string) (*shared.User, error) {
	usr, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return DBToShared(usr), nil
}

// FindOrCreateOrLinkOAuthUser resolves an OAuth profile to a local account:
// match on provider identity first, then link by verified email, otherwise
// create a fresh account with a username derived from the email. The
// returned flag reports whether a new account was created.
func (s *service) FindOrCreateOrLinkOAuthUser(ctx context.Context, profile shared.OAuthUserProfile) (*shared.User, bool, error) {
	if usr, err := s.repo.FindByProvider(ctx, profile.Provider, profile.ProviderID); err == nil {
		now := time.Now().UTC()
		if lerr := s.repo.UpdateLastLogin(ctx, usr.ID, now); lerr != nil {
			s.logger.Warn("Failed to record last login", zap.String("userID", usr.ID.String()), zap.Error(lerr))
		}
		usr.LastLoginAt = &now
		return DBToShared(usr), false, nil
	} else if !isNotFound(err) {
		return nil, false, err
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if usr, err := s.repo.FindByEmail(ctx, email); err == nil {
		usr.AuthProvider = profile.Provider
		usr.ProviderID = &profile.ProviderID
		if profile.EmailVerified {
			usr.IsEmailVerified = true
		}
		if usr.ProfilePictureURL == nil && profile.PictureURL != "" {
			pic := profile.PictureURL
			usr.ProfilePictureURL = &pic
		}
		now := time.Now().UTC()
		usr.LastLoginAt = &now
		if uerr := s.repo.Update(ctx, usr); uerr != nil {
			return nil, false, uerr
		}
		s.logger.Info("Linked OAuth identity to existing account",
			zap.String("userID", usr.ID.String()), zap.String("provider", profile.Provider))
		return DBToShared(usr), false, nil
	} else if !isNotFound(err) {
		return nil, false, err
	}

	username, err := s.uniqueUsernameFromEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	now := time.Now().UTC()
	usr := &User{
		Username:        username,
		Email:           &email,
		AuthProvider:    profile.Provider,
		ProviderID:      &profile.ProviderID,
		IsEmailVerified: profile.EmailVerified,
		Role:            common.RoleUser,
		LastLoginAt:     &now,
	}
	if profile.FirstName != "" {
		usr.FirstName = &profile.FirstName
	}
	if profile.LastName != "" {
		usr.LastName = &profile.LastName
	}
	if profile.PictureURL != "" {
		pic := profile.PictureURL
		usr.ProfilePictureURL = &pic
	}
	if err := s.repo.Create(ctx, usr); err != nil {
		return nil, false, err
	}
	s.logger.Info("User created via OAuth",
		zap.String("userID", usr.ID.String()), zap.String("provider", profile.Provider))
	return DBToShared(usr), true, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*shared.User, error) {
	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
			return nil, err
		}
	}
	return s.GetUserByID(ctx, userID)
}

func (s *service) GetUserStats(ctx context.Context, username string) (*UserStatsResponse, error) {
	usr, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	total, active, err := s.stats.Offers.CountForOwner(ctx, usr.ID)
	if err != nil {
		return nil, err
	}
	completed, err := s.stats.Trades.CountCompletedForUser(ctx, usr.ID)
	if err != nil {
		return nil, err
	}
	reviews, avg, err := s.stats.Reviews.RatingSummaryForUser(ctx, usr.ID)
	if err != nil {
		return nil, err
	}

	return &UserStatsResponse{
		Username:        usr.Username,
		TotalOffers:     total,
		ActiveOffers:    active,
		CompletedTrades: completed,
		ReviewsCount:    reviews,
		AverageRating:   avg,
		JoinedDate:      usr.CreatedAt.UTC().Format("2006-01-02"),
	}, nil
}

// uniqueUsernameFromEmail derives a username from the email local part,
// appending a numeric suffix until it is free.
func (s *service) uniqueUsernameFromEmail(ctx context.Context, email string) (string, error) {
	base := email
	if at := strings.Index(email, "@"); at > 0 {
		base = email[:at]
	}
	if len(base) < 3 {
		base = base + "user"
	}
	candidate := base
	for i := 0; i < 50; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}
		_, err := s.repo.FindByUsername(ctx, candidate)
		if isNotFound(err) {
			return candidate, nil
		}
		if err != nil && !isNotFound(err) {
			return "", err
		}
	}
	return "", common.ErrConflict.WithDetails("Could not derive a unique username.")
}

func isNotFound(err error) bool {
	var apiErr *common.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == common.ErrNotFound.StatusCode
}
