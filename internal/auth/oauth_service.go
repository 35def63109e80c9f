// File: internal/auth/oauth_service.go
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"barter_backend/internal/common"
	"barter_backend/internal/config"
	"barter_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// OAuthService defines the interface for OAuth operations.
type OAuthService interface {
	GetGoogleLoginURL(c *gin.Context) (string, error)
	HandleGoogleCallback(c *gin.Context, code string, state string) (*shared.User, *shared.TokenResponse, error)
}

type oauthService struct {
	cfg               *config.Config
	oauthUserProvider shared.OAuthUserProvider
	tokenService      shared.TokenService
	logger            *zap.Logger
}

// NewOAuthService creates a new OAuth service.
func NewOAuthService(
	cfg *config.Config,
	oauthUserProvider shared.OAuthUserProvider,
	tokenService shared.TokenService,
	logger *zap.Logger,
) OAuthService {
	return &oauthService{
		cfg:               cfg,
		oauthUserProvider: oauthUserProvider,
		tokenService:      tokenService,
		logger:            logger.Named("OAuthService"),
	}
}

func getGoogleOAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

// loggingRoundTripper logs every OAuth HTTP exchange. It replaces the
// runtime patching of provider internals that debugging of this flow
// has historically tempted: observability is wired in at the client
// boundary, through the standard extension point.
type loggingRoundTripper struct {
	next   http.RoundTripper
	logger *zap.Logger
}

func (rt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	res, err := rt.next.RoundTrip(req)
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.Duration("duration", time.Since(start)),
	}
	if res != nil {
		fields = append(fields, zap.Int("status_code", res.StatusCode))
	}
	if err != nil {
		rt.logger.Error("OAuth HTTP exchange failed", append(fields, zap.Error(err))...)
		return res, err
	}
	rt.logger.Debug("OAuth HTTP exchange", fields...)
	return res, nil
}

// oauthHTTPClient returns the HTTP client used for token exchange and
// userinfo calls, with debug logging attached when configured.
func (s *oauthService) oauthHTTPClient() *http.Client {
	if !s.cfg.OAuthDebugLogging {
		return http.DefaultClient
	}
	return &http.Client{
		Transport: &loggingRoundTripper{next: http.DefaultTransport, logger: s.logger},
		Timeout:   15 * time.Second,
	}
}

func generateAndSetOAuthState(c *gin.Context, cfg *config.Config) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate OAuth state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)
	c.SetCookie(cfg.OAuthStateCookieName, state, cfg.OAuthCookieMaxAgeSecs, "/", "", false, true)
	return state, nil
}

func getOAuthStateCookie(c *gin.Context, cfg *config.Config) (string, error) {
	return c.Cookie(cfg.OAuthStateCookieName)
}

// GetGoogleLoginURL generates the URL for Google OAuth login.
func (s *oauthService) GetGoogleLoginURL(c *gin.Context) (string, error) {
	state, err := generateAndSetOAuthState(c, s.cfg)
	if err != nil {
		s.logger.Error("Failed to generate OAuth state for Google", zap.Error(err))
		return "", common.ErrInternalServer.WithDetails("Could not initiate Google login.")
	}
	googleCfg := getGoogleOAuthConfig(s.cfg)
	authURL := googleCfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	return authURL, nil
}

// HandleGoogleCallback processes the callback from Google.
func (s *oauthService) HandleGoogleCallback(c *gin.Context, code string, state string) (*shared.User, *shared.TokenResponse, error) {
	storedState, err := getOAuthStateCookie(c, s.cfg)
	if err != nil {
		s.logger.Warn("Missing stored OAuth state on Google callback", zap.Error(err))
		return nil, nil, common.ErrBadRequest.WithDetails("Invalid session or state mismatch.")
	}
	if state != storedState {
		s.logger.Warn("Google OAuth state mismatch")
		return nil, nil, common.ErrBadRequest.WithDetails("OAuth state mismatch.")
	}

	googleCfg := getGoogleOAuthConfig(s.cfg)
	ctx := context.WithValue(c.Request.Context(), oauth2.HTTPClient, s.oauthHTTPClient())

	token, err := googleCfg.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("Failed to exchange Google auth code for token", zap.Error(err))
		return nil, nil, common.ErrServiceUnavailable.WithDetails("Could not exchange Google auth code.")
	}
	if !token.Valid() {
		return nil, nil, common.ErrServiceUnavailable.WithDetails("Received invalid token from Google.")
	}

	client := googleCfg.Client(ctx, token)
	userInfoResp, err := client.Get(googleUserInfoURL)
	if err != nil {
		s.logger.Error("Failed to fetch user info from Google", zap.Error(err))
		return nil, nil, common.ErrServiceUnavailable.WithDetails("Could not fetch user info from Google.")
	}
	defer userInfoResp.Body.Close()

	if userInfoResp.StatusCode != http.StatusOK {
		s.logger.Error("Google user info request failed", zap.Int("status", userInfoResp.StatusCode))
		return nil, nil, common.ErrServiceUnavailable.WithDetails("Google user info request failed.")
	}

	var googleUser struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(userInfoResp.Body).Decode(&googleUser); err != nil {
		s.logger.Error("Failed to decode Google user info", zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not decode Google user info.")
	}

	usr, wasCreated, err := s.oauthUserProvider.FindOrCreateOrLinkOAuthUser(c.Request.Context(), shared.OAuthUserProfile{
		Provider:      "google",
		ProviderID:    googleUser.Sub,
		Email:         googleUser.Email,
		FirstName:     googleUser.GivenName,
		LastName:      googleUser.FamilyName,
		PictureURL:    googleUser.Picture,
		EmailVerified: googleUser.EmailVerified,
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("Google OAuth login processed",
		zap.String("userID", usr.ID.String()),
		zap.Bool("wasCreated", wasCreated),
	)

	tokens, err := generateTokenPair(s.tokenService, usr)
	if err != nil {
		return nil, nil, err
	}
	return usr, tokens, nil
}

// tokenUserData adapts shared.User to shared.UserDataForToken.
type tokenUserData struct{ u *shared.User }

func (d tokenUserData) GetID() uuid.UUID  { return d.u.ID }
func (d tokenUserData) GetEmail() *string { return d.u.Email }
func (d tokenUserData) GetRole() string   { return d.u.Role }

// generateTokenPair issues an access/refresh token pair for a user.
func generateTokenPair(ts shared.TokenService, usr *shared.User) (*shared.TokenResponse, error) {
	data := tokenUserData{u: usr}
	accessToken, expiresAt, err := ts.GenerateAccessToken(data)
	if err != nil {
		return nil, common.ErrInternalServer.WithDetails("Could not generate access token.")
	}
	refreshToken, _, err := ts.GenerateRefreshToken(data)
	if err != nil {
		return nil, common.ErrInternalServer.WithDetails("Could not generate refresh token.")
	}
	return &shared.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}
