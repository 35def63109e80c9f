// File: internal/auth/handler_test.go
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"barter_backend/internal/common"
	"barter_backend/internal/shared"
	"barter_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// The user service must keep satisfying the handler's login seam.
var _ UserLoginService = (user.Service)(nil)

// MockUserLoginService is a mock type for auth.UserLoginService
type MockUserLoginService struct {
	mock.Mock
}

func (m *MockUserLoginService) Login(ctx context.Context, email, password string) (*shared.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.User), args.Error(1)
}

func (m *MockUserLoginService) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.User), args.Error(1)
}

// MockTokenService is a mock type for shared.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(userData shared.UserDataForToken) (string, time.Time, error) {
	args := m.Called(userData)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) GenerateRefreshToken(userData shared.UserDataForToken) (string, time.Time, error) {
	args := m.Called(userData)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*shared.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Claims), args.Error(1)
}

func (m *MockTokenService) ParseRefreshToken(refreshTokenString string) (*shared.Claims, error) {
	args := m.Called(refreshTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Claims), args.Error(1)
}

// MockOAuthService is a mock type for auth.OAuthService
type MockOAuthService struct {
	mock.Mock
}

func (m *MockOAuthService) GetGoogleLoginURL(c *gin.Context) (string, error) {
	args := m.Called(c)
	return args.String(0), args.Error(1)
}

func (m *MockOAuthService) HandleGoogleCallback(c *gin.Context, code string, state string) (*shared.User, *shared.TokenResponse, error) {
	args := m.Called(c, code, state)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*shared.User), args.Get(1).(*shared.TokenResponse), args.Error(2)
}

func newTestAuthRouter(t *testing.T) (*gin.Engine, *MockUserLoginService, *MockTokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	users := new(MockUserLoginService)
	tokens := new(MockTokenService)
	h := NewHandler(users, tokens, new(MockOAuthService), zap.NewNop())

	router := gin.New()
	h.RegisterRoutes(router.Group("/auth"))
	return router, users, tokens
}

func TestLogin_ReturnsUserAndTokenPair(t *testing.T) {
	router, users, tokens := newTestAuthRouter(t)

	email := "alice@example.com"
	usr := &shared.User{ID: uuid.New(), Username: "alice", Email: &email, Role: common.RoleUser}
	users.On("Login", mock.Anything, "alice@example.com", "correct-horse").Return(usr, nil)
	tokens.On("GenerateAccessToken", mock.Anything).Return("access-token", time.Now().Add(15*time.Minute), nil)
	tokens.On("GenerateRefreshToken", mock.Anything).Return("refresh-token", time.Now().Add(7*24*time.Hour), nil)

	body := `{"email":"alice@example.com","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Tokens shared.TokenResponse `json:"tokens"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "access-token", resp.Data.Tokens.AccessToken)
	assert.Equal(t, "refresh-token", resp.Data.Tokens.RefreshToken)
	assert.Equal(t, "Bearer", resp.Data.Tokens.TokenType)
}

func TestLogin_BadCredentialsPassThrough(t *testing.T) {
	router, users, tokens := newTestAuthRouter(t)

	users.On("Login", mock.Anything, "alice@example.com", "wrong").
		Return(nil, common.ErrUnauthorized.WithDetails("Invalid email or password."))

	body := `{"email":"alice@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	tokens.AssertNotCalled(t, "GenerateAccessToken")
}
