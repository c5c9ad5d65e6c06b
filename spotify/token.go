package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"songnote/errors"
)

// DefaultAuthURL is the client-credentials token endpoint of the music service.
const DefaultAuthURL = "https://accounts.spotify.com/api/token"

// Tokener supplies a bearer token for the external metadata service.
type Tokener interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// TokenSource lazily exchanges a fixed client id/secret pair for a bearer
// token and caches it for the remainder of the process lifetime. There is
// no expiry tracking: a cached token is reused until Invalidate is called
// or the process restarts. A failed exchange leaves the cache empty, so
// the next call retries.
//
// Concurrent first calls coalesce behind the mutex: only one exchange is
// in flight, the others wait and read the cached result.
type TokenSource struct {
	authURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	log          *slog.Logger

	mu    sync.Mutex
	token string
}

func NewTokenSource(authURL, clientID, clientSecret string, httpClient *http.Client, log *slog.Logger) *TokenSource {
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	return &TokenSource{
		authURL:      authURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		log:          log,
	}
}

func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" {
		return t.token, nil
	}

	token, err := t.exchange(ctx)
	if err != nil {
		return "", err
	}
	t.token = token
	t.log.Debug("Credential exchange succeeded")
	return token, nil
}

// Invalidate drops the cached token so the next Token call re-exchanges.
func (t *TokenSource) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = ""
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (t *TokenSource) exchange(ctx context.Context) (string, error) {
	basic := base64.StdEncoding.EncodeToString([]byte(t.clientID + ":" + t.clientSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.authURL,
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", errors.ErrCredential, err)
	}
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrCredential, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("%w: unexpected status %d: %s", errors.ErrCredential, res.StatusCode, string(buf))
	}

	var payload tokenResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", errors.ErrCredential, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token in response", errors.ErrCredential)
	}
	return payload.AccessToken, nil
}
