package services

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCertsURL    = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
	defaultCertsMaxAge = time.Hour
	issuerPrefix       = "https://securetoken.google.com/"
)

var (
	ErrUnknownKeyID = errors.New("unknown key ID")
	ErrNoSubject    = errors.New("token has no subject")
)

// IDTokenClaims are the claims the identity provider puts into an ID token.
type IDTokenClaims struct {
	jwt.RegisteredClaims
	AuthTime int64  `json:"auth_time"`
	Email    string `json:"email,omitempty"`
}

// IDTokenVerifier checks RS256 ID tokens against the provider's published
// x509 certificates. Certificates are refetched once their max-age lapses.
type IDTokenVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client
	now       func() time.Time

	mu     sync.RWMutex
	keys   map[string]*rsa.PublicKey
	expiry time.Time
	group  singleflight.Group
}

func NewIDTokenVerifier(projectID, certsURL string, timeout time.Duration) *IDTokenVerifier {
	if certsURL == "" {
		certsURL = DefaultCertsURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &IDTokenVerifier{
		projectID: projectID,
		certsURL:  certsURL,
		client:    &http.Client{Timeout: timeout},
		now:       time.Now,
	}
}

// VerifyIDToken validates signature, issuer, audience, expiry and subject.
func (v *IDTokenVerifier) VerifyIDToken(ctx context.Context, raw string) (*IDTokenClaims, error) {
	claims := &IDTokenClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(issuerPrefix+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: missing kid header", ErrUnknownKeyID)
		}
		keys, err := v.publicKeys(ctx)
		if err != nil {
			return nil, err
		}
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKeyID, kid)
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" || len(claims.Subject) > 128 {
		return nil, ErrNoSubject
	}
	if claims.AuthTime > v.now().Unix() {
		return nil, fmt.Errorf("auth_time is in the future")
	}
	return claims, nil
}

func (v *IDTokenVerifier) publicKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	v.mu.RLock()
	keys, expiry := v.keys, v.expiry
	v.mu.RUnlock()
	if keys != nil && v.now().Before(expiry) {
		return keys, nil
	}

	res, err, _ := v.group.Do("certs", func() (any, error) {
		return v.fetchKeys(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.(map[string]*rsa.PublicKey), nil
}

func (v *IDTokenVerifier) fetchKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch certificates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch certificates: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read certificates: %w", err)
	}

	var certs map[string]string
	if err := sonic.Unmarshal(body, &certs); err != nil {
		return nil, fmt.Errorf("parse certificates: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pem := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("parse certificate %s: %w", kid, err)
		}
		keys[kid] = key
	}

	v.mu.Lock()
	v.keys = keys
	v.expiry = v.now().Add(maxAge(resp.Header.Get("Cache-Control")))
	v.mu.Unlock()
	return keys, nil
}

// maxAge reads max-age from a Cache-Control header.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultCertsMaxAge
}
