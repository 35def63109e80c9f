// File: internal/trade/service_test.go
package trade

import (
	"context"
	"testing"
	"time"

	"barter_backend/internal/common"
	"barter_backend/internal/config"
	"barter_backend/internal/notification"
	"barter_backend/internal/offer"
	"barter_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockTradeRepository is a mock type for trade.Repository
type MockTradeRepository struct {
	mock.Mock
}

func (m *MockTradeRepository) Create(ctx context.Context, t *Trade, n *notification.Notification) error {
	args := m.Called(ctx, t, n)
	return args.Error(0)
}

func (m *MockTradeRepository) FindByID(ctx context.Context, id uuid.UUID, preload bool) (*Trade, error) {
	args := m.Called(ctx, id, preload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Trade), args.Error(1)
}

func (m *MockTradeRepository) ListForUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Trade, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Trade), args.Get(1).(int64), args.Error(2)
}

func (m *MockTradeRepository) Transition(ctx context.Context, params TransitionParams) (*Trade, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Trade), args.Error(1)
}

func (m *MockTradeRepository) CountCompletedForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTradeRepository) FindStalePending(ctx context.Context, olderThan time.Time) ([]Trade, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Trade), args.Error(1)
}

// MockOfferRepository is a mock type for offer.Repository
type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOfferRepository) FindByID(ctx context.Context, id uuid.UUID, preload bool) (*offer.Offer, error) {
	args := m.Called(ctx, id, preload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockOfferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOfferRepository) Search(ctx context.Context, query offer.SearchQuery) ([]offer.Offer, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]offer.Offer), args.Get(1).(int64), args.Error(2)
}

func (m *MockOfferRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]offer.Offer, error) {
	args := m.Called(ctx, ownerID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOfferRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockOfferRepository) CountTradesReferencing(ctx context.Context, offerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, offerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOfferRepository) TradeCountsForOffer(ctx context.Context, offerID uuid.UUID) (int64, int64, error) {
	args := m.Called(ctx, offerID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockOfferRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]offer.Offer, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]offer.Offer), args.Error(1)
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

// --- Test setup ---

type tradeServiceMocks struct {
	repo      *MockTradeRepository
	offerRepo *MockOfferRepository
	users     *MockUserService
}

func newTestTradeService(t *testing.T) (Service, *tradeServiceMocks) {
	t.Helper()
	mocks := &tradeServiceMocks{
		repo:      new(MockTradeRepository),
		offerRepo: new(MockOfferRepository),
		users:     new(MockUserService),
	}
	cfg := &config.Config{
		ImageBaseURL:           "http://localhost:8080/images",
		PendingTradeMaxAgeDays: 14,
	}
	svc := NewService(mocks.repo, mocks.offerRepo, mocks.users, cfg, zap.NewNop())
	return svc, mocks
}

func sharedUser(id uuid.UUID, username string) *shared.User {
	return &shared.User{ID: id, Username: username}
}

func assertAPIErrorStatus(t *testing.T, err error, status int) {
	t.Helper()
	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	if assert.True(t, ok, "expected an API error, got %v", err) {
		assert.Equal(t, status, apiErr.StatusCode)
	}
}

// --- Propose ---

func TestPropose_OwnOfferForbidden(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	initiatorID := uuid.New()
	targetOffer := &offer.Offer{OwnerID: initiatorID, IsActive: true}
	targetOffer.ID = uuid.New()

	mocks.offerRepo.On("FindByID", mock.Anything, targetOffer.ID, false).Return(targetOffer, nil)

	_, err := svc.Propose(context.Background(), initiatorID, ProposeTradeRequest{
		TargetOfferID: targetOffer.ID.String(),
	})

	assertAPIErrorStatus(t, err, 403)
	mocks.repo.AssertNotCalled(t, "Create")
}

func TestPropose_InactiveOfferRejected(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	targetOffer := &offer.Offer{OwnerID: uuid.New(), IsActive: false}
	targetOffer.ID = uuid.New()

	mocks.offerRepo.On("FindByID", mock.Anything, targetOffer.ID, false).Return(targetOffer, nil)

	_, err := svc.Propose(context.Background(), uuid.New(), ProposeTradeRequest{
		TargetOfferID: targetOffer.ID.String(),
	})

	assertAPIErrorStatus(t, err, 422)
}

func TestPropose_Success(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	initiatorID := uuid.New()
	responderID := uuid.New()
	targetOffer := &offer.Offer{OwnerID: responderID, IsActive: true}
	targetOffer.ID = uuid.New()

	mocks.offerRepo.On("FindByID", mock.Anything, targetOffer.ID, false).Return(targetOffer, nil)
	mocks.users.On("GetUserByID", mock.Anything, initiatorID).Return(sharedUser(initiatorID, "alice"), nil)

	var createdTrade *Trade
	mocks.repo.On("Create", mock.Anything, mock.AnythingOfType("*trade.Trade"), mock.AnythingOfType("*notification.Notification")).
		Run(func(args mock.Arguments) {
			createdTrade = args.Get(1).(*Trade)
			createdTrade.ID = uuid.New()
			n := args.Get(2).(*notification.Notification)
			assert.Equal(t, responderID, n.RecipientID)
			assert.Equal(t, notification.TypeTradeProposed, n.Type)
		}).Return(nil)
	mocks.repo.On("FindByID", mock.Anything, mock.AnythingOfType("uuid.UUID"), true).
		Return(&Trade{InitiatorID: initiatorID, ResponderID: responderID, Status: StatusPending}, nil)

	resp, err := svc.Propose(context.Background(), initiatorID, ProposeTradeRequest{
		TargetOfferID:     targetOffer.ID.String(),
		AdditionalMessage: "I have a bike to swap.",
	})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	if assert.NotNil(t, createdTrade) {
		assert.Equal(t, StatusPending, createdTrade.Status)
		assert.Equal(t, responderID, createdTrade.ResponderID)
		assert.Nil(t, createdTrade.InitiatorOfferID)
		assert.Contains(t, createdTrade.Message, "interested in your offer")
		assert.Contains(t, createdTrade.Message, "I have a bike to swap.")
	}
}

func TestPropose_PurchaseRequiresPrice(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	targetOffer := &offer.Offer{OwnerID: uuid.New(), IsActive: true}
	targetOffer.ID = uuid.New()

	mocks.offerRepo.On("FindByID", mock.Anything, targetOffer.ID, false).Return(targetOffer, nil)

	_, err := svc.Propose(context.Background(), uuid.New(), ProposeTradeRequest{
		TargetOfferID: targetOffer.ID.String(),
		WantsToBuy:    true,
	})

	assertAPIErrorStatus(t, err, 422)
}

// --- AcceptWithOffer ---

func TestAcceptWithOffer_Success(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	initiatorID := uuid.New()
	responderID := uuid.New()
	tradeID := uuid.New()
	chosenID := uuid.New()

	pending := &Trade{InitiatorID: initiatorID, ResponderID: responderID, Status: StatusPending}
	pending.ID = tradeID
	chosen := &offer.Offer{OwnerID: initiatorID, IsActive: true, Title: "Old guitar"}
	chosen.ID = chosenID

	mocks.repo.On("FindByID", mock.Anything, tradeID, false).Return(pending, nil)
	mocks.offerRepo.On("FindByID", mock.Anything, chosenID, false).Return(chosen, nil)
	mocks.users.On("GetUserByID", mock.Anything, responderID).Return(sharedUser(responderID, "bob"), nil)

	accepted := &Trade{InitiatorID: initiatorID, ResponderID: responderID, Status: StatusAccepted, InitiatorOfferID: &chosenID}
	accepted.ID = tradeID
	mocks.repo.On("Transition", mock.Anything, mock.MatchedBy(func(p TransitionParams) bool {
		return p.TradeID == tradeID &&
			p.ExpectedStatus == StatusPending &&
			p.NewStatus == StatusAccepted &&
			p.SetInitiatorOffer != nil && *p.SetInitiatorOffer == chosenID &&
			p.Notification != nil &&
			p.Notification.RecipientID == initiatorID &&
			p.Notification.Type == notification.TypeTradeAccepted
	})).Return(accepted, nil)

	resp, err := svc.AcceptWithOffer(context.Background(), tradeID, responderID, chosenID)

	assert.NoError(t, err)
	assert.Equal(t, StatusAccepted, resp.Status)
}

func TestAcceptWithOffer_InitiatorCannotAccept(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	initiatorID := uuid.New()
	tradeID := uuid.New()
	pending := &Trade{InitiatorID: initiatorID, ResponderID: uuid.New(), Status: StatusPending}
	pending.ID = tradeID

	mocks.repo.On("FindByID", mock.Anything, tradeID, false).Return(pending, nil)

	_, err := svc.AcceptWithOffer(context.Background(), tradeID, initiatorID, uuid.New())

	assertAPIErrorStatus(t, err, 403)
	mocks.repo.AssertNotCalled(t, "Transition")
}

func TestAcceptWithOffer_ChosenOfferMustBelongToInitiator(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	responderID := uuid.New()
	tradeID := uuid.New()
	chosenID := uuid.New()
	pending := &Trade{InitiatorID: uuid.New(), ResponderID: responderID, Status: StatusPending}
	pending.ID = tradeID
	chosen := &offer.Offer{OwnerID: uuid.New(), IsActive: true} // some third user's offer
	chosen.ID = chosenID

	mocks.repo.On("FindByID", mock.Anything, tradeID, false).Return(pending, nil)
	mocks.offerRepo.On("FindByID", mock.Anything, chosenID, false).Return(chosen, nil)

	_, err := svc.AcceptWithOffer(context.Background(), tradeID, responderID, chosenID)

	assertAPIErrorStatus(t, err, 422)
	mocks.repo.AssertNotCalled(t, "Transition")
}

func TestAcceptWithOffer_ConcurrentResolutionConflicts(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	initiatorID := uuid.New()
	responderID := uuid.New()
	tradeID := uuid.New()
	chosenID := uuid.New()

	pending := &Trade{InitiatorID: initiatorID, ResponderID: responderID, Status: StatusPending}
	pending.ID = tradeID
	chosen := &offer.Offer{OwnerID: initiatorID, IsActive: true}
	chosen.ID = chosenID

	mocks.repo.On("FindByID", mock.Anything, tradeID, false).Return(pending, nil)
	mocks.offerRepo.On("FindByID", mock.Anything, chosenID, false).Return(chosen, nil)
	mocks.users.On("GetUserByID", mock.Anything, responderID).Return(sharedUser(responderID, "bob"), nil)
	// Another request resolved the trade between our read and the locked
	// re-check inside the repository.
	mocks.repo.On("Transition", mock.Anything, mock.Anything).Return(nil, common.ErrConflict.WithDetails("The trade was modified concurrently; it is now 'rejected'."))

	_, err := svc.AcceptWithOffer(context.Background(), tradeID, responderID, chosenID)

	assertAPIErrorStatus(t, err, 409)
}

// --- AcceptAsPurchase ---

func TestAcceptAsPurchase_RequiresPurchaseOption(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	responderID := uuid.New()
	tradeID := uuid.New()
	pending := &Trade{InitiatorID: uuid.New(), ResponderID: responderID, Status: StatusPending, WantsToBuy: false}
	pending.ID = tradeID

	mocks.repo.On("FindByID", mock.Anything, tradeID, false).Return(pending, nil)

	_, err := svc.AcceptAsPurchase(context.Background(), tradeID, responderID)

	assertAPIErrorStatus(t, err, 422)
}

func TestAcceptAsPurchase_ClearsInitiatorOffer(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	initiatorID := uuid.New()
	responderID := uuid.New()
	tradeID := uuid.New()
	price := 120.0
	pending := &Trade{InitiatorID: initiatorID, ResponderID: responderID, Status: StatusPending, WantsToBuy: true, PurchasePrice: &price}
	pending.ID = tradeID

	mocks.repo.On("FindByID", mock.Anything, tradeID, false).Return(pending, nil)
	mocks.users.On("GetUserByID", mock.Anything, responderID).Return(sharedUser(responderID, "bob"), nil)

	accepted := &Trade{InitiatorID: initiatorID, ResponderID: responderID, Status: StatusAccepted, WantsToBuy: true, PurchasePrice: &price}
	accepted.ID = tradeID
	mocks.repo.On("Transition", mock.Anything, mock.MatchedBy(func(p TransitionParams) bool {
		return p.NewStatus == StatusAccepted &&
			p.ClearInitiatorOffer &&
			p.SetInitiatorOffer == nil &&
			p.Notification.RecipientID == initiatorID
	})).Return(accepted, nil)

	resp, err := svc.AcceptAsPurchase(context.Background(), tradeID, responderID)

	assert.NoError(t, err)
	assert.Equal(t, StatusAccepted, resp.Status)
	assert.Nil(t, resp.InitiatorOffer)
}

// --- Reject ---

func TestReject_NotifiesInitiator(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	initiatorID := uuid.New()
	responderID := uuid.New()
	tradeID := uuid.New()
	pending := &Trade{InitiatorID: initiatorID, ResponderID: responderID, Status: StatusPending}
	pending.ID = tradeID

	mocks.repo.On("FindByID", mock.Anything, tradeID, false).Return(pending, nil)
	mocks.users.On("GetUserByID", mock.Anything, responderID).Return(sharedUser(responderID, "bob"), nil)

	rejected := &Trade{InitiatorID: initiatorID, ResponderID: responderID, Status: StatusRejected}
	rejected.ID = tradeID
	mocks.repo.On("Transition", mock.Anything, mock.MatchedBy(func(p TransitionParams) bool {
		return p.NewStatus == StatusRejected &&
			p.Notification.RecipientID == initiatorID &&
			p.Notification.Type == notification.TypeTradeRejected
	})).Return(rejected, nil)

	resp, err := svc.Reject(context.Background(), tradeID, responderID)

	assert.NoError(t, err)
	assert.Equal(t, StatusRejected, resp.Status)
}

// --- Complete ---

func TestComplete_DeactivatesBothOffersAndNotifiesOtherParty(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	initiatorID := uuid.New()
	responderID := uuid.New()
	tradeID := uuid.New()
	initiatorOfferID := uuid.New()
	targetOfferID := uuid.New()

	accepted := &Trade{
		InitiatorID:      initiatorID,
		ResponderID:      responderID,
		InitiatorOfferID: &initiatorOfferID,
		TargetOfferID:    targetOfferID,
		Status:           StatusAccepted,
	}
	accepted.ID = tradeID

	mocks.repo.On("FindByID", mock.Anything, tradeID, false).Return(accepted, nil)
	mocks.users.On("GetUserByID", mock.Anything, responderID).Return(sharedUser(responderID, "bob"), nil)

	completed := &Trade{InitiatorID: initiatorID, ResponderID: responderID, Status: StatusCompleted}
	completed.ID = tradeID
	mocks.repo.On("Transition", mock.Anything, mock.MatchedBy(func(p TransitionParams) bool {
		return p.ExpectedStatus == StatusAccepted &&
			p.NewStatus == StatusCompleted &&
			len(p.DeactivateOfferIDs) == 2 &&
			p.Notification.RecipientID == initiatorID && // responder completed, initiator notified
			p.Notification.Type == notification.TypeTradeCompleted
	})).Return(completed, nil)

	resp, err := svc.Complete(context.Background(), tradeID, responderID)

	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)
}

func TestComplete_PurchaseOnlyDeactivatesTargetOffer(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	initiatorID := uuid.New()
	responderID := uuid.New()
	tradeID := uuid.New()
	targetOfferID := uuid.New()

	accepted := &Trade{
		InitiatorID:   initiatorID,
		ResponderID:   responderID,
		TargetOfferID: targetOfferID,
		Status:        StatusAccepted,
		WantsToBuy:    true,
	}
	accepted.ID = tradeID

	mocks.repo.On("FindByID", mock.Anything, tradeID, false).Return(accepted, nil)
	mocks.users.On("GetUserByID", mock.Anything, initiatorID).Return(sharedUser(initiatorID, "alice"), nil)

	completed := &Trade{InitiatorID: initiatorID, ResponderID: responderID, Status: StatusCompleted}
	completed.ID = tradeID
	mocks.repo.On("Transition", mock.Anything, mock.MatchedBy(func(p TransitionParams) bool {
		return len(p.DeactivateOfferIDs) == 1 &&
			p.DeactivateOfferIDs[0] == targetOfferID &&
			p.Notification.RecipientID == responderID // initiator completed, responder notified
	})).Return(completed, nil)

	_, err := svc.Complete(context.Background(), tradeID, initiatorID)

	assert.NoError(t, err)
}

func TestComplete_AlreadyCompletedConflicts(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	initiatorID := uuid.New()
	tradeID := uuid.New()
	done := &Trade{InitiatorID: initiatorID, ResponderID: uuid.New(), Status: StatusCompleted}
	done.ID = tradeID

	mocks.repo.On("FindByID", mock.Anything, tradeID, false).Return(done, nil)

	_, err := svc.Complete(context.Background(), tradeID, initiatorID)

	assertAPIErrorStatus(t, err, 409)
	mocks.repo.AssertNotCalled(t, "Transition")
}

func TestComplete_OutsiderForbidden(t *testing.T) {
	svc, mocks := newTestTradeService(t)
	tradeID := uuid.New()
	accepted := &Trade{InitiatorID: uuid.New(), ResponderID: uuid.New(), Status: StatusAccepted}
	accepted.ID = tradeID

	mocks.repo.On("FindByID", mock.Anything, tradeID, false).Return(accepted, nil)

	_, err := svc.Complete(context.Background(), tradeID, uuid.New())

	assertAPIErrorStatus(t, err, 403)
}

// --- ExpireStalePending ---

func TestExpireStalePending_SkipsLostRaces(t *testing.T) {
	svc, mocks := newTestTradeService(t)

	staleA := Trade{InitiatorID: uuid.New(), ResponderID: uuid.New(), Status: StatusPending}
	staleA.ID = uuid.New()
	staleB := Trade{InitiatorID: uuid.New(), ResponderID: uuid.New(), Status: StatusPending}
	staleB.ID = uuid.New()

	mocks.repo.On("FindStalePending", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]Trade{staleA, staleB}, nil)

	rejectedA := staleA
	rejectedA.Status = StatusRejected
	mocks.repo.On("Transition", mock.Anything, mock.MatchedBy(func(p TransitionParams) bool {
		return p.TradeID == staleA.ID && p.NewStatus == StatusRejected
	})).Return(&rejectedA, nil)
	// The second one was accepted in the meantime.
	mocks.repo.On("Transition", mock.Anything, mock.MatchedBy(func(p TransitionParams) bool {
		return p.TradeID == staleB.ID
	})).Return(nil, common.ErrConflict.WithDetails("The trade was modified concurrently; it is now 'accepted'."))

	expired, err := svc.ExpireStalePending(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, expired)
}
