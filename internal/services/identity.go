package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/hoshichaam/movie_bff_go/internal/models"
	"github.com/hoshichaam/movie_bff_go/pkg/authutil"
)

const (
	DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	DefaultSecureTokenURL     = "https://securetoken.googleapis.com/v1"
	identityService           = "identity"
)

var adminScopes = []string{
	"https://www.googleapis.com/auth/identitytoolkit",
	"https://www.googleapis.com/auth/cloud-platform",
}

// TokenVerifier is the provider primitive behind Verify.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, raw string) (*IDTokenClaims, error)
}

type IdentityConfig struct {
	APIKey         string
	ProjectID      string
	ToolkitURL     string
	SecureTokenURL string
	Timeout        time.Duration
}

// IdentityClient delegates sign-up, sign-in, token refresh and token
// verification to the identity provider. It keeps no state of its own.
type IdentityClient struct {
	apiKey         string
	projectID      string
	toolkitURL     string
	secureTokenURL string
	client         *http.Client
	admin          *http.Client
	verifier       TokenVerifier
}

// NewAdminHTTPClient builds an HTTP client authorized with the service
// account credentials and reports the project they belong to.
func NewAdminHTTPClient(ctx context.Context, credentialsJSON []byte, timeout time.Duration) (*http.Client, string, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, adminScopes...)
	if err != nil {
		return nil, "", fmt.Errorf("load service account credentials: %w", err)
	}
	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = timeout
	return client, creds.ProjectID, nil
}

func NewIdentityClient(cfg IdentityConfig, admin *http.Client, verifier TokenVerifier) (*IdentityClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("identity project id is not configured")
	}
	if cfg.ToolkitURL == "" {
		cfg.ToolkitURL = DefaultIdentityToolkitURL
	}
	if cfg.SecureTokenURL == "" {
		cfg.SecureTokenURL = DefaultSecureTokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &IdentityClient{
		apiKey:         strings.TrimSpace(cfg.APIKey),
		projectID:      cfg.ProjectID,
		toolkitURL:     strings.TrimRight(cfg.ToolkitURL, "/"),
		secureTokenURL: strings.TrimRight(cfg.SecureTokenURL, "/"),
		client:         &http.Client{Timeout: cfg.Timeout},
		admin:          admin,
		verifier:       verifier,
	}, nil
}

// providerError is the error document of the identity REST endpoints.
type providerError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// errorCode extracts the documented code from messages such as
// "TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account ...".
func (p providerError) errorCode() string {
	code, _, _ := strings.Cut(p.Error.Message, ":")
	return strings.TrimSpace(code)
}

// Register creates the account. The first name becomes the display name.
func (s *IdentityClient) Register(ctx context.Context, in models.RegisterRequest) (models.AccountRecord, error) {
	payload := map[string]any{
		"email":       in.Email,
		"password":    in.Password,
		"displayName": strings.TrimSpace(in.FirstName),
	}
	endpoint := fmt.Sprintf("%s/projects/%s/accounts", s.toolkitURL, url.PathEscape(s.projectID))

	var out struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		DisplayName   string `json:"displayName"`
		EmailVerified bool   `json:"emailVerified"`
		Disabled      bool   `json:"disabled"`
	}
	if _, err := s.postJSON(ctx, s.admin, endpoint, payload, &out); err != nil {
		slog.Error("identity register failed", "email", authutil.MaskEmail(in.Email), "error", err)
		return models.AccountRecord{}, ErrRegistration{Err: err}
	}
	email := out.Email
	if email == "" {
		email = in.Email
	}
	return models.AccountRecord{
		UID:           out.LocalID,
		Email:         email,
		DisplayName:   out.DisplayName,
		EmailVerified: out.EmailVerified,
		Disabled:      out.Disabled,
	}, nil
}

// Login signs in with email and password.
func (s *IdentityClient) Login(ctx context.Context, in models.LoginRequest) (models.AuthToken, error) {
	payload := map[string]any{
		"email":             in.Email,
		"password":          in.Password,
		"returnSecureToken": true,
	}
	endpoint := s.toolkitURL + "/accounts:signInWithPassword?key=" + url.QueryEscape(s.apiKey)

	var out models.AuthToken
	perr, err := s.postJSON(ctx, s.client, endpoint, payload, &out)
	if err == nil {
		return out, nil
	}
	if perr == nil {
		return models.AuthToken{}, err
	}
	switch perr.errorCode() {
	case "EMAIL_NOT_FOUND":
		return models.AuthToken{}, ErrCredential{Kind: ErrUserNotFound}
	case "INVALID_PASSWORD":
		return models.AuthToken{}, ErrCredential{Kind: ErrInvalidPassword}
	default:
		slog.Warn("identity login rejected", "email", authutil.MaskEmail(in.Email), "code", perr.errorCode())
		return models.AuthToken{}, ErrUpstream{Service: identityService, Status: perr.Error.Code, Msg: perr.Error.Message}
	}
}

// Refresh exchanges a refresh token for a new session. The provider answers
// in snake_case; the result is returned with the AuthToken field names.
func (s *IdentityClient) Refresh(ctx context.Context, refreshToken string) (models.AuthToken, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	endpoint := s.secureTokenURL + "/token?key=" + url.QueryEscape(s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return models.AuthToken{}, fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var out struct {
		IDToken      string         `json:"id_token"`
		RefreshToken string         `json:"refresh_token"`
		ExpiresIn    models.Seconds `json:"expires_in"`
	}
	perr, err := s.do(s.client, req, &out)
	if err != nil {
		if perr != nil {
			switch perr.errorCode() {
			case "INVALID_REFRESH_TOKEN", "TOKEN_EXPIRED":
				return models.AuthToken{}, ErrCredential{
					Kind: ErrInvalidRefreshToken,
					Msg:  fmt.Sprintf("invalid refresh token: %s", refreshToken),
				}
			}
		}
		slog.Error("identity refresh failed", "token", authutil.ShortToken(refreshToken), "error", err)
		failed := ErrUpstream{Service: identityService, Msg: "failed to refresh token"}
		var up ErrUpstream
		if errors.As(err, &up) && up.Status == http.StatusGatewayTimeout {
			failed.Status = up.Status
		}
		return models.AuthToken{}, failed
	}
	return models.AuthToken{
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
	}, nil
}

// Verify reports whether the bearer token is a valid ID token. The reason
// for a rejection is logged and never returned.
func (s *IdentityClient) Verify(ctx context.Context, token string) bool {
	if s.verifier == nil {
		return false
	}
	claims, err := s.verifier.VerifyIDToken(ctx, token)
	if err != nil {
		slog.Debug("token verification failed", "token", authutil.ShortToken(token), "error", err)
		return false
	}
	slog.Debug("token verified", "uid", claims.Subject)
	return true
}

func (s *IdentityClient) postJSON(ctx context.Context, client *http.Client, endpoint string, payload, out any) (*providerError, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return s.do(client, req, out)
}

// do runs one round trip. A non-nil providerError accompanies every
// non-success answer the provider explained.
func (s *IdentityClient) do(client *http.Client, req *http.Request, out any) (*providerError, error) {
	if client == nil {
		return nil, ErrUpstream{Service: identityService, Msg: "client not configured"}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, transportError(identityService, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, transportError(identityService, err)
	}
	if resp.StatusCode >= 300 {
		var perr providerError
		if err := sonic.Unmarshal(raw, &perr); err != nil || perr.Error.Message == "" {
			return nil, ErrUpstream{Service: identityService, Status: resp.StatusCode, Msg: "request failed"}
		}
		if perr.Error.Code == 0 {
			perr.Error.Code = resp.StatusCode
		}
		return &perr, ErrUpstream{Service: identityService, Status: perr.Error.Code, Msg: perr.Error.Message}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrUpstream{Service: identityService, Msg: "empty response"}
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return nil, ErrUpstream{Service: identityService, Msg: "malformed response"}
	}
	return nil, nil
}
