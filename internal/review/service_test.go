// File: internal/review/service_test.go
package review

import (
	"context"
	"testing"
	"time"

	"barter_backend/internal/common"
	"barter_backend/internal/notification"
	"barter_backend/internal/shared"
	"barter_backend/internal/trade"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockReviewRepository is a mock type for review.Repository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, r *Review, n *notification.Notification) error {
	args := m.Called(ctx, r, n)
	return args.Error(0)
}

func (m *MockReviewRepository) ExistsForTrade(ctx context.Context, reviewerID, reviewedUserID, tradeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, reviewerID, reviewedUserID, tradeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) ListForUser(ctx context.Context, reviewedUserID uuid.UUID) ([]Review, error) {
	args := m.Called(ctx, reviewedUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Review), args.Error(1)
}

func (m *MockReviewRepository) RatingSummaryForUser(ctx context.Context, reviewedUserID uuid.UUID) (int64, float64, error) {
	args := m.Called(ctx, reviewedUserID)
	return args.Get(0).(int64), args.Get(1).(float64), args.Error(2)
}

// MockTradeRepository is a mock type for trade.Repository
type MockTradeRepository struct {
	mock.Mock
}

func (m *MockTradeRepository) Create(ctx context.Context, t *trade.Trade, n *notification.Notification) error {
	args := m.Called(ctx, t, n)
	return args.Error(0)
}

func (m *MockTradeRepository) FindByID(ctx context.Context, id uuid.UUID, preload bool) (*trade.Trade, error) {
	args := m.Called(ctx, id, preload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Trade), args.Error(1)
}

func (m *MockTradeRepository) ListForUser(ctx context.Context, userID uuid.UUID, filter trade.ListFilter) ([]trade.Trade, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]trade.Trade), args.Get(1).(int64), args.Error(2)
}

func (m *MockTradeRepository) Transition(ctx context.Context, params trade.TransitionParams) (*trade.Trade, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Trade), args.Error(1)
}

func (m *MockTradeRepository) CountCompletedForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTradeRepository) FindStalePending(ctx context.Context, olderThan time.Time) ([]trade.Trade, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Trade), args.Error(1)
}

// MockUserService is a mock type for shared.Service
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.User), args.Error(1)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.User), args.Error(1)
}

func (m *MockUserService) GetUserByUsername(ctx context.Context, username string) (*shared.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.User), args.Error(1)
}

type reviewServiceMocks struct {
	repo      *MockReviewRepository
	tradeRepo *MockTradeRepository
	users     *MockUserService
}

func newTestReviewService(t *testing.T) (Service, *reviewServiceMocks) {
	t.Helper()
	mocks := &reviewServiceMocks{
		repo:      new(MockReviewRepository),
		tradeRepo: new(MockTradeRepository),
		users:     new(MockUserService),
	}
	svc := NewService(mocks.repo, mocks.tradeRepo, mocks.users, zap.NewNop())
	return svc, mocks
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	if assert.True(t, ok, "expected an API error, got %v", err) {
		assert.Equal(t, status, apiErr.StatusCode)
	}
}

func TestCreateReview_SelfReviewForbidden(t *testing.T) {
	svc, mocks := newTestReviewService(t)
	reviewerID := uuid.New()

	mocks.users.On("GetUserByUsername", mock.Anything, "alice").
		Return(&shared.User{ID: reviewerID, Username: "alice"}, nil)

	_, err := svc.Create(context.Background(), reviewerID, "alice", CreateReviewRequest{Rating: 5})

	assertStatus(t, err, 403)
	mocks.repo.AssertNotCalled(t, "Create")
}

func TestCreateReview_TradeMustBeCompleted(t *testing.T) {
	svc, mocks := newTestReviewService(t)
	reviewerID := uuid.New()
	reviewedID := uuid.New()
	tradeID := uuid.New()

	mocks.users.On("GetUserByUsername", mock.Anything, "bob").
		Return(&shared.User{ID: reviewedID, Username: "bob"}, nil)
	pending := &trade.Trade{InitiatorID: reviewerID, ResponderID: reviewedID, Status: trade.StatusPending}
	pending.ID = tradeID
	mocks.tradeRepo.On("FindByID", mock.Anything, tradeID, false).Return(pending, nil)

	tradeRef := tradeID.String()
	_, err := svc.Create(context.Background(), reviewerID, "bob", CreateReviewRequest{Rating: 4, TradeID: &tradeRef})

	assertStatus(t, err, 422)
}

func TestCreateReview_ReviewerMustBeParty(t *testing.T) {
	svc, mocks := newTestReviewService(t)
	reviewedID := uuid.New()
	tradeID := uuid.New()

	mocks.users.On("GetUserByUsername", mock.Anything, "bob").
		Return(&shared.User{ID: reviewedID, Username: "bob"}, nil)
	done := &trade.Trade{InitiatorID: uuid.New(), ResponderID: reviewedID, Status: trade.StatusCompleted}
	done.ID = tradeID
	mocks.tradeRepo.On("FindByID", mock.Anything, tradeID, false).Return(done, nil)

	tradeRef := tradeID.String()
	_, err := svc.Create(context.Background(), uuid.New(), "bob", CreateReviewRequest{Rating: 4, TradeID: &tradeRef})

	assertStatus(t, err, 403)
}

func TestCreateReview_ReviewedMustBeCounterparty(t *testing.T) {
	svc, mocks := newTestReviewService(t)
	reviewerID := uuid.New()
	reviewedID := uuid.New()
	tradeID := uuid.New()

	mocks.users.On("GetUserByUsername", mock.Anything, "bob").
		Return(&shared.User{ID: reviewedID, Username: "bob"}, nil)
	// Completed trade, but bob was not the counterparty.
	done := &trade.Trade{InitiatorID: reviewerID, ResponderID: uuid.New(), Status: trade.StatusCompleted}
	done.ID = tradeID
	mocks.tradeRepo.On("FindByID", mock.Anything, tradeID, false).Return(done, nil)

	tradeRef := tradeID.String()
	_, err := svc.Create(context.Background(), reviewerID, "bob", CreateReviewRequest{Rating: 4, TradeID: &tradeRef})

	assertStatus(t, err, 422)
}

func TestCreateReview_DuplicatePerTradeConflicts(t *testing.T) {
	svc, mocks := newTestReviewService(t)
	reviewerID := uuid.New()
	reviewedID := uuid.New()
	tradeID := uuid.New()

	mocks.users.On("GetUserByUsername", mock.Anything, "bob").
		Return(&shared.User{ID: reviewedID, Username: "bob"}, nil)
	done := &trade.Trade{InitiatorID: reviewerID, ResponderID: reviewedID, Status: trade.StatusCompleted}
	done.ID = tradeID
	mocks.tradeRepo.On("FindByID", mock.Anything, tradeID, false).Return(done, nil)
	mocks.repo.On("ExistsForTrade", mock.Anything, reviewerID, reviewedID, tradeID).Return(true, nil)

	tradeRef := tradeID.String()
	_, err := svc.Create(context.Background(), reviewerID, "bob", CreateReviewRequest{Rating: 4, TradeID: &tradeRef})

	assertStatus(t, err, 409)
}

func TestCreateReview_VerifiedTradeReview(t *testing.T) {
	svc, mocks := newTestReviewService(t)
	reviewerID := uuid.New()
	reviewedID := uuid.New()
	tradeID := uuid.New()

	mocks.users.On("GetUserByUsername", mock.Anything, "bob").
		Return(&shared.User{ID: reviewedID, Username: "bob"}, nil)
	mocks.users.On("GetUserByID", mock.Anything, reviewerID).
		Return(&shared.User{ID: reviewerID, Username: "alice"}, nil)
	done := &trade.Trade{InitiatorID: reviewerID, ResponderID: reviewedID, Status: trade.StatusCompleted}
	done.ID = tradeID
	mocks.tradeRepo.On("FindByID", mock.Anything, tradeID, false).Return(done, nil)
	mocks.repo.On("ExistsForTrade", mock.Anything, reviewerID, reviewedID, tradeID).Return(false, nil)

	var created *Review
	mocks.repo.On("Create", mock.Anything, mock.AnythingOfType("*review.Review"), mock.AnythingOfType("*notification.Notification")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*Review)
			created.ID = uuid.New()
			n := args.Get(2).(*notification.Notification)
			assert.Equal(t, reviewedID, n.RecipientID)
			assert.Equal(t, notification.TypeNewReview, n.Type)
		}).Return(nil)

	tradeRef := tradeID.String()
	resp, err := svc.Create(context.Background(), reviewerID, "bob", CreateReviewRequest{
		Rating:  5,
		Comment: "Smooth trade, would swap again.",
		TradeID: &tradeRef,
	})

	assert.NoError(t, err)
	assert.True(t, resp.IsVerifiedTrade)
	if assert.NotNil(t, created) {
		assert.True(t, created.IsVerifiedTrade)
		assert.Equal(t, tradeID, *created.TradeID)
	}
}

func TestCreateReview_StandaloneReviewUnverified(t *testing.T) {
	svc, mocks := newTestReviewService(t)
	reviewerID := uuid.New()
	reviewedID := uuid.New()

	mocks.users.On("GetUserByUsername", mock.Anything, "bob").
		Return(&shared.User{ID: reviewedID, Username: "bob"}, nil)
	mocks.users.On("GetUserByID", mock.Anything, reviewerID).
		Return(&shared.User{ID: reviewerID, Username: "alice"}, nil)

	var created *Review
	mocks.repo.On("Create", mock.Anything, mock.AnythingOfType("*review.Review"), mock.AnythingOfType("*notification.Notification")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*Review)
			created.ID = uuid.New()
		}).Return(nil)

	resp, err := svc.Create(context.Background(), reviewerID, "bob", CreateReviewRequest{Rating: 3})

	assert.NoError(t, err)
	assert.False(t, resp.IsVerifiedTrade)
	if assert.NotNil(t, created) {
		assert.Nil(t, created.TradeID)
	}
	mocks.tradeRepo.AssertNotCalled(t, "FindByID")
}
