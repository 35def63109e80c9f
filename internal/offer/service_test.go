// File: internal/offer/service_test.go
package offer

import (
	"context"
	"testing"

	"barter_backend/internal/category"
	"barter_backend/internal/common"
	"barter_backend/internal/config"
	"barter_backend/internal/filestorage"
	platformES "barter_backend/internal/platform/elasticsearch"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockOfferRepository is a mock type for offer.Repository
type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) Create(ctx context.Context, o *Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOfferRepository) FindByID(ctx context.Context, id uuid.UUID, preload bool) (*Offer, error) {
	args := m.Called(ctx, id, preload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Offer), args.Error(1)
}

func (m *MockOfferRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockOfferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOfferRepository) Search(ctx context.Context, query SearchQuery) ([]Offer, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Offer), args.Get(1).(int64), args.Error(2)
}

func (m *MockOfferRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]Offer, error) {
	args := m.Called(ctx, ownerID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Offer), args.Error(1)
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

func (m *MockOfferRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]Offer, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Offer), args.Error(1)
}

// MockCategoryRepository is a mock type for category.Repository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, cat *category.Category) error {
	args := m.Called(ctx, cat)
	return args.Error(0)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*category.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context, includeInactive bool) ([]category.Category, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]category.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, cat *category.Category) error {
	args := m.Called(ctx, cat)
	return args.Error(0)
}

func (m *MockCategoryRepository) CountActiveOffers(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

// MockIndexer is a mock type for offer.Indexer
type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) IndexOffer(ctx context.Context, o *Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockIndexer) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type offerServiceMocks struct {
	repo         *MockOfferRepository
	categoryRepo *MockCategoryRepository
	indexer      *MockIndexer
}

// newTestOfferService builds a service with a nil ES wrapper, so search
// exercises the database path.
func newTestOfferService(t *testing.T) (Service, *offerServiceMocks) {
	t.Helper()
	mocks := &offerServiceMocks{
		repo:         new(MockOfferRepository),
		categoryRepo: new(MockCategoryRepository),
		indexer:      new(MockIndexer),
	}
	files, err := filestorage.NewService(t.TempDir(), zap.NewNop())
	assert.NoError(t, err)
	cfg := &config.Config{ImageBaseURL: "http://localhost:8080/images"}
	svc := NewService(mocks.repo, mocks.categoryRepo, files, mocks.indexer, (*platformES.ESClientWrapper)(nil), cfg, zap.NewNop())
	return svc, mocks
}

func requireAPIStatus(t *testing.T, err error, status int) {
	t.Helper()
	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	if assert.True(t, ok, "expected an API error, got %v", err) {
		assert.Equal(t, status, apiErr.StatusCode)
	}
}

// --- Delete ---

func TestDeleteOffer_OnlyOwner(t *testing.T) {
	svc, mocks := newTestOfferService(t)
	offerID := uuid.New()
	o := &Offer{OwnerID: uuid.New(), IsActive: true}
	o.ID = offerID

	mocks.repo.On("FindByID", mock.Anything, offerID, false).Return(o, nil)

	err := svc.Delete(context.Background(), offerID, uuid.New())

	requireAPIStatus(t, err, 403)
	mocks.repo.AssertNotCalled(t, "Delete")
}

func TestDeleteOffer_BlockedWhileTradeReferencesIt(t *testing.T) {
	svc, mocks := newTestOfferService(t)
	ownerID := uuid.New()
	offerID := uuid.New()
	o := &Offer{OwnerID: ownerID, IsActive: true}
	o.ID = offerID

	mocks.repo.On("FindByID", mock.Anything, offerID, false).Return(o, nil)
	mocks.repo.On("Delete", mock.Anything, offerID).
		Return(common.ErrConflict.WithDetails("This offer is part of an ongoing trade and cannot be deleted."))

	err := svc.Delete(context.Background(), offerID, ownerID)

	requireAPIStatus(t, err, 409)
	mocks.indexer.AssertNotCalled(t, "DeleteOffer")
}

func TestDeleteOffer_RemovesIndexEntry(t *testing.T) {
	svc, mocks := newTestOfferService(t)
	ownerID := uuid.New()
	offerID := uuid.New()
	o := &Offer{OwnerID: ownerID, IsActive: true}
	o.ID = offerID

	mocks.repo.On("FindByID", mock.Anything, offerID, false).Return(o, nil)
	mocks.repo.On("Delete", mock.Anything, offerID).Return(nil)
	mocks.indexer.On("DeleteOffer", mock.Anything, offerID).Return(nil)

	err := svc.Delete(context.Background(), offerID, ownerID)

	assert.NoError(t, err)
	mocks.indexer.AssertCalled(t, "DeleteOffer", mock.Anything, offerID)
}

// --- View counter ---

func TestGetByID_NonOwnerViewCounts(t *testing.T) {
	svc, mocks := newTestOfferService(t)
	offerID := uuid.New()
	o := &Offer{OwnerID: uuid.New(), Title: "Old lamp", IsActive: true, ViewsCount: 3}
	o.ID = offerID

	mocks.repo.On("FindByID", mock.Anything, offerID, true).Return(o, nil)
	mocks.repo.On("IncrementViews", mock.Anything, offerID).Return(nil)

	resp, err := svc.GetByID(context.Background(), offerID, uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, int64(4), resp.ViewsCount)
	mocks.repo.AssertCalled(t, "IncrementViews", mock.Anything, offerID)
}

func TestGetByID_OwnerViewDoesNotCount(t *testing.T) {
	svc, mocks := newTestOfferService(t)
	ownerID := uuid.New()
	offerID := uuid.New()
	o := &Offer{OwnerID: ownerID, Title: "Old lamp", IsActive: true, ViewsCount: 3}
	o.ID = offerID

	mocks.repo.On("FindByID", mock.Anything, offerID, true).Return(o, nil)

	resp, err := svc.GetByID(context.Background(), offerID, ownerID)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), resp.ViewsCount)
	mocks.repo.AssertNotCalled(t, "IncrementViews")
}

// --- Update / reactivation guard ---

func TestUpdateOffer_CannotReactivateTradedOffer(t *testing.T) {
	svc, mocks := newTestOfferService(t)
	ownerID := uuid.New()
	offerID := uuid.New()
	o := &Offer{OwnerID: ownerID, IsActive: false}
	o.ID = offerID

	mocks.repo.On("FindByID", mock.Anything, offerID, false).Return(o, nil)
	// One completed trade consumed this offer.
	mocks.repo.On("TradeCountsForOffer", mock.Anything, offerID).Return(int64(2), int64(1), nil)

	active := true
	_, err := svc.Update(context.Background(), offerID, ownerID, UpdateOfferRequest{IsActive: &active}, nil)

	requireAPIStatus(t, err, 409)
	mocks.repo.AssertNotCalled(t, "UpdateFields")
}

func TestUpdateOffer_ReactivateWithoutCompletedTrades(t *testing.T) {
	svc, mocks := newTestOfferService(t)
	ownerID := uuid.New()
	offerID := uuid.New()
	o := &Offer{OwnerID: ownerID, IsActive: false}
	o.ID = offerID

	mocks.repo.On("FindByID", mock.Anything, offerID, false).Return(o, nil)
	mocks.repo.On("TradeCountsForOffer", mock.Anything, offerID).Return(int64(1), int64(0), nil)
	mocks.repo.On("UpdateFields", mock.Anything, offerID, mock.MatchedBy(func(fields map[string]interface{}) bool {
		v, ok := fields["is_active"].(bool)
		return ok && v
	})).Return(nil)
	reloaded := &Offer{OwnerID: ownerID, IsActive: true}
	reloaded.ID = offerID
	mocks.repo.On("FindByID", mock.Anything, offerID, true).Return(reloaded, nil)
	mocks.indexer.On("IndexOffer", mock.Anything, reloaded).Return(nil)

	active := true
	resp, err := svc.Update(context.Background(), offerID, ownerID, UpdateOfferRequest{IsActive: &active}, nil)

	assert.NoError(t, err)
	assert.True(t, resp.IsActive)
}

func TestUpdateOffer_OnlyOwner(t *testing.T) {
	svc, mocks := newTestOfferService(t)
	offerID := uuid.New()
	o := &Offer{OwnerID: uuid.New(), IsActive: true}
	o.ID = offerID

	mocks.repo.On("FindByID", mock.Anything, offerID, false).Return(o, nil)

	title := "New title"
	_, err := svc.Update(context.Background(), offerID, uuid.New(), UpdateOfferRequest{Title: &title}, nil)

	requireAPIStatus(t, err, 403)
	mocks.repo.AssertNotCalled(t, "UpdateFields")
}

// --- Search ---

func TestSearch_UsesDatabaseWhenSearchBackendDisabled(t *testing.T) {
	svc, mocks := newTestOfferService(t)

	match := Offer{OwnerID: uuid.New(), Title: "Mountain bike", IsActive: true}
	match.ID = uuid.New()
	mocks.repo.On("Search", mock.Anything, mock.MatchedBy(func(q SearchQuery) bool {
		return q.Term == "bike" && q.Page == common.DefaultPage && q.PageSize == common.DefaultPageSize
	})).Return([]Offer{match}, int64(1), nil)

	results, pagination, err := svc.Search(context.Background(), SearchQuery{Term: "bike"})

	assert.NoError(t, err)
	if assert.Len(t, results, 1) {
		assert.Equal(t, "Mountain bike", results[0].Title)
	}
	assert.Equal(t, int64(1), pagination.TotalItems)
}

// --- Stats ---

func TestGetStats_OwnerOnly(t *testing.T) {
	svc, mocks := newTestOfferService(t)
	offerID := uuid.New()
	o := &Offer{OwnerID: uuid.New(), Title: "Old lamp", IsActive: true, ViewsCount: 12}
	o.ID = offerID

	mocks.repo.On("FindByID", mock.Anything, offerID, false).Return(o, nil)

	_, err := svc.GetStats(context.Background(), offerID, uuid.New())

	requireAPIStatus(t, err, 403)
}

func TestGetStats_ReportsViewsAndTrades(t *testing.T) {
	svc, mocks := newTestOfferService(t)
	ownerID := uuid.New()
	offerID := uuid.New()
	o := &Offer{OwnerID: ownerID, Title: "Old lamp", IsActive: true, ViewsCount: 12}
	o.ID = offerID

	mocks.repo.On("FindByID", mock.Anything, offerID, false).Return(o, nil)
	mocks.repo.On("TradeCountsForOffer", mock.Anything, offerID).Return(int64(3), int64(1), nil)

	stats, err := svc.GetStats(context.Background(), offerID, ownerID)

	assert.NoError(t, err)
	assert.Equal(t, int64(12), stats.ViewsCount)
	assert.Equal(t, int64(3), stats.TradesCount)
	assert.Equal(t, int64(1), stats.CompletedTrades)
}
