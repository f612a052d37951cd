package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fiadolabs/fiado/internal/clock"
)

const tokenScopes = "cob.write cob.read pix.write pix.read webhook.write webhook.read"

// renewWindow forces a refresh while the cached token still has less than
// this much validity left, so in-flight requests never carry an expired token.
const renewWindow = 60 * time.Second

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// tokenSource caches the OAuth2 client-credentials token process-wide.
type tokenSource struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client
	clock        clock.Clock

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newTokenSource(cfg Config, client *http.Client, clk clock.Clock) *tokenSource {
	return &tokenSource{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		client:       client,
		clock:        clk,
	}
}

// Token returns the cached access token, fetching a fresh one when absent or
// inside the renew window. Concurrent callers serialize on the fetch.
func (t *tokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if t.token != "" && t.expiresAt.Sub(now) > renewWindow {
		return t.token, nil
	}

	token, expiresIn, err := t.fetch(ctx)
	if err != nil {
		return "", err
	}

	t.token = token
	t.expiresAt = now.Add(time.Duration(expiresIn) * time.Second)
	return t.token, nil
}

func (t *tokenSource) fetch(ctx context.Context) (string, int64, error) {
	if t.clientID == "" || t.clientSecret == "" {
		return "", 0, ErrMissingCredentials
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", t.clientID)
	form.Set("client_secret", t.clientSecret)
	form.Set("scope", tokenScopes)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/oauth/v2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("fetch token: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= http.StatusBadRequest {
		return "", 0, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", 0, fmt.Errorf("decode token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", 0, fmt.Errorf("token response missing access_token")
	}
	if parsed.ExpiresIn <= 0 {
		parsed.ExpiresIn = 300
	}

	return parsed.AccessToken, parsed.ExpiresIn, nil
}
