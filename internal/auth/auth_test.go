package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/alexanderramin/mediasheet/internal/cache"
)

type fakeExchanger struct {
	codes     []string
	exchanged int
	err       error
}

func (f *fakeExchanger) AuthCodeURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://accounts.example/auth?state=" + state
}

func (f *fakeExchanger) Exchange(_ context.Context, code string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	f.codes = append(f.codes, code)
	if f.err != nil {
		return nil, f.err
	}
	f.exchanged++
	return &oauth2.Token{AccessToken: "token-" + code, Expiry: time.Now().Add(time.Hour)}, nil
}

type countingConsent struct {
	code  string
	err   error
	calls int
	urls  []string
}

func (c *countingConsent) RequestCode(_ context.Context, url string) (string, error) {
	c.calls++
	c.urls = append(c.urls, url)
	return c.code, c.err
}

func TestToken_CachesUntilSoftExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := cache.NewMemoryStore().WithClock(func() time.Time { return now })
	consent := &countingConsent{code: "abc"}
	a := NewAuthorizer(&fakeExchanger{}, store, consent, Options{})

	tok, err := a.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-abc", tok.AccessToken)
	assert.Contains(t, consent.urls[0], "state=")

	_, err = a.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, consent.calls, "second call should hit the cache")
	assert.True(t, a.HasCachedToken(ctx))

	now = now.Add(DefaultTokenTTL)
	assert.False(t, a.HasCachedToken(ctx))
	_, err = a.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, consent.calls, "expired entry should trigger consent again")
}

func TestToken_ConsentFailuresAreClassified(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		consent Consent
		target  error
	}{
		{"blocked", &countingConsent{err: errors.New("no terminal attached")}, ErrConsentBlocked},
		{"denied", &countingConsent{code: "  "}, ErrConsentDenied},
		{"non-interactive", NoConsent, ErrConsentRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAuthorizer(&fakeExchanger{}, cache.NewMemoryStore(), tc.consent, Options{})
			_, err := a.Token(ctx)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.target)
			assert.ErrorIs(t, err, ErrAuthorization)
		})
	}
}

func TestToken_ExchangeFailure(t *testing.T) {
	ex := &fakeExchanger{err: errors.New("invalid_grant")}
	a := NewAuthorizer(ex, cache.NewMemoryStore(), &countingConsent{code: "abc"}, Options{})

	_, err := a.Token(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthorization)
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.Equal(t, []string{"abc"}, ex.codes)
}

func TestLogout_ForcesConsent(t *testing.T) {
	ctx := context.Background()
	consent := &countingConsent{code: "abc"}
	a := NewAuthorizer(&fakeExchanger{}, cache.NewMemoryStore(), consent, Options{TTL: time.Hour})

	_, err := a.Token(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Logout(ctx))
	assert.False(t, a.HasCachedToken(ctx))

	_, err = a.TokenSource(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, consent.calls)
}
