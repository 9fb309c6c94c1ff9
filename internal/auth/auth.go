// Package auth obtains Google Sheets access tokens. Tokens are kept in a
// cache.Store with a soft expiry shorter than their real lifetime, and a miss
// runs an explicit consent step.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/alexanderramin/mediasheet/internal/cache"
)

// DefaultTokenTTL is how long a token is reused before consent is asked
// again. Google access tokens live an hour.
const DefaultTokenTTL = 50 * time.Minute

const defaultCacheKey = "auth:sheets:token"

var (
	// ErrAuthorization is the parent of every authorization failure.
	ErrAuthorization = errors.New("authorization failed")

	// ErrConsentBlocked means the consent step could not be shown at all.
	ErrConsentBlocked = fmt.Errorf("%w: consent step blocked", ErrAuthorization)

	// ErrConsentDenied means the user declined or returned no code.
	ErrConsentDenied = fmt.Errorf("%w: consent denied", ErrAuthorization)

	// ErrConsentRequired is returned by non-interactive callers on a cache miss.
	ErrConsentRequired = fmt.Errorf("%w: no cached token and consent is not available", ErrAuthorization)
)

// Consent asks the user to grant access at authURL and returns the
// authorization code. It may block until the user answers.
type Consent interface {
	RequestCode(ctx context.Context, authURL string) (string, error)
}

type ConsentFunc func(ctx context.Context, authURL string) (string, error)

func (f ConsentFunc) RequestCode(ctx context.Context, authURL string) (string, error) {
	return f(ctx, authURL)
}

// NoConsent fails every consent request; used by the HTTP server.
var NoConsent Consent = ConsentFunc(func(context.Context, string) (string, error) {
	return "", ErrConsentRequired
})

// Exchanger swaps an authorization code for a token. *oauth2.Config
// satisfies it.
type Exchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

type Options struct {
	TTL      time.Duration
	CacheKey string
	Logger   *zap.Logger
}

type Authorizer struct {
	oauth   Exchanger
	store   cache.Store
	consent Consent
	ttl     time.Duration
	key     string
	logger  *zap.Logger
}

func NewAuthorizer(oauth Exchanger, store cache.Store, consent Consent, opts Options) *Authorizer {
	a := &Authorizer{
		oauth:   oauth,
		store:   store,
		consent: consent,
		ttl:     opts.TTL,
		key:     opts.CacheKey,
		logger:  opts.Logger,
	}
	if a.ttl <= 0 {
		a.ttl = DefaultTokenTTL
	}
	if a.key == "" {
		a.key = defaultCacheKey
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.consent == nil {
		a.consent = NoConsent
	}
	return a
}

// LoadOAuthConfig reads a Google OAuth client file and requests the
// spreadsheets scope.
func LoadOAuthConfig(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading oauth client file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing oauth client file: %w", err)
	}
	return cfg, nil
}

// Token returns a cached token or runs the consent step on a miss.
func (a *Authorizer) Token(ctx context.Context) (*oauth2.Token, error) {
	tok, ok, err := a.cached(ctx)
	if err != nil {
		a.logger.Warn("token cache read failed, asking for consent", zap.Error(err))
	}
	if ok {
		return tok, nil
	}
	return a.Login(ctx)
}

// TokenSource wraps Token for API clients.
func (a *Authorizer) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.StaticTokenSource(tok), nil
}

// HasCachedToken reports whether a usable token is cached.
func (a *Authorizer) HasCachedToken(ctx context.Context) bool {
	_, ok, err := a.cached(ctx)
	return ok && err == nil
}

// Login always runs the consent step and caches the new token.
func (a *Authorizer) Login(ctx context.Context) (*oauth2.Token, error) {
	state := uuid.NewString()
	url := a.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)

	a.logger.Info("requesting spreadsheet consent")
	code, err := a.consent.RequestCode(ctx, url)
	if err != nil {
		if errors.Is(err, ErrAuthorization) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrConsentBlocked, err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrConsentDenied
	}

	tok, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchanging authorization code: %w", ErrAuthorization, err)
	}
	if !tok.Valid() {
		return nil, fmt.Errorf("%w: received an invalid token", ErrAuthorization)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return nil, fmt.Errorf("encoding token: %w", err)
	}
	if err := a.store.Set(ctx, a.key, data, a.ttl); err != nil {
		a.logger.Warn("token could not be cached", zap.Error(err))
	}
	return tok, nil
}

// Logout drops the cached token.
func (a *Authorizer) Logout(ctx context.Context) error {
	if err := a.store.Invalidate(ctx, a.key); err != nil {
		return fmt.Errorf("clearing cached token: %w", err)
	}
	return nil
}

func (a *Authorizer) cached(ctx context.Context) (*oauth2.Token, bool, error) {
	data, ok, err := a.store.Get(ctx, a.key)
	if err != nil || !ok {
		return nil, false, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, false, fmt.Errorf("decoding cached token: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, false, nil
	}
	return &tok, true, nil
}
