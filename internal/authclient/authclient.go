package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hirepath/api-gateway/models"
)

// Status tags the outcome of a session lookup.
type Status string

const (
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// SessionResult is the tagged result of resolving a session cookie against
// the auth server. A normal auth failure is data, not an error: callers get
// the unauthenticated variant with the upstream body as detail.
type SessionResult struct {
	Status Status
	User   *models.User
	Token  string // the raw session token, forwarded into pipeline events
	Err    string
}

// Authenticated reports whether the lookup produced a usable user.
func (r SessionResult) Authenticated() bool {
	return r.Status == StatusAuthenticated && r.User != nil
}

// Client resolves session tokens against the external auth server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the auth server at baseURL. Every call is bounded
// by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sessionResponse struct {
	Session struct {
		User models.User `json:"user"`
	} `json:"session"`
}

// Session validates a session token. A non-200 from the auth server or a
// transport failure yields the unauthenticated variant, never an error.
func (c *Client) Session(ctx context.Context, token string) SessionResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/session", nil)
	if err != nil {
		return SessionResult{Status: StatusUnauthenticated, Err: err.Error()}
	}
	req.Header.Set("Cookie", fmt.Sprintf("session_id=%s;", token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SessionResult{Status: StatusUnauthenticated, Err: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return SessionResult{Status: StatusUnauthenticated, Err: string(body)}
	}

	var parsed sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return SessionResult{Status: StatusUnauthenticated, Err: fmt.Sprintf("invalid session response: %v", err)}
	}

	user := parsed.Session.User
	return SessionResult{Status: StatusAuthenticated, User: &user, Token: token}
}
