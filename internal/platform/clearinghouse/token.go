package clearinghouse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// refreshSkew is how long before expiry a cached token is considered
// stale: a refresh fires when expires_at <= now + 60s.
const refreshSkew = 60 * time.Second

// tokenCache holds the OAuth2 client-credentials token for the process.
// The mutex is held across the refresh HTTP call so only one refresh is
// ever in flight; readers block briefly during refresh but never see a
// stale-expired token.
type tokenCache struct {
	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time

	now func() time.Time // injectable clock for tests
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a valid bearer token, refreshing through fetch when the
// cached one expires within the skew window. force discards the cache
// first (used after a 401).
func (tc *tokenCache) token(ctx context.Context, force bool, fetch func(context.Context) (tokenResponse, error)) (string, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if force {
		tc.accessToken = ""
	}
	if tc.accessToken != "" && tc.expiresAt.After(tc.now().Add(refreshSkew)) {
		return tc.accessToken, nil
	}

	resp, err := fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token in response", ErrAuth)
	}
	tc.accessToken = resp.AccessToken
	tc.expiresAt = tc.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	return tc.accessToken, nil
}

// fetchToken posts the client-credentials grant to the token endpoint.
func (c *Client) fetchToken(ctx context.Context) (tokenResponse, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"scope":         {"claims preauth payments"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return tokenResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tokenResponse{}, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return tokenResponse{}, fmt.Errorf("decode token response: %w", err)
	}
	return tr, nil
}
