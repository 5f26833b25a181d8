// Package gateway implements the HTTP client for the remote counseling
// backend, including the lenient positional parsing of its responses.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/mindwell/mindwell/internal/models"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultResourceTimeout = 60 * time.Second
	userAgent              = "Mindwell CLI/1.0"
)

// httpDoer abstracts the HTTP client, enabling test fakes.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the counseling backend. Authentication is ambient: the
// cookie jar carries the session cookies captured at login. Parsing is kept
// pure; the Client mutates no shared state beyond its jar.
type Client struct {
	baseURL   string
	timeout   time.Duration
	http      httpDoer
	authToken string
	authID    string
}

// Opts holds parameters for creating a Client.
type Opts struct {
	// BaseURL is the API root, e.g. https://w-psycholog.example/API.
	BaseURL string
	// Timeout bounds each request (default 30s).
	Timeout time.Duration
	// ResourceTimeout bounds the whole exchange including body (default 60s).
	ResourceTimeout time.Duration
	// HTTPClient injects a fake client for tests.
	HTTPClient httpDoer
	// AuthToken and AuthID seed the session cookies, letting a new process
	// resume an earlier login.
	AuthToken string
	AuthID    string
}

// New creates a Client.
func New(opts Opts) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("gateway: base URL is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.ResourceTimeout == 0 {
		opts.ResourceTimeout = defaultResourceTimeout
	}

	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		timeout:   opts.Timeout,
		http:      opts.HTTPClient,
		authToken: opts.AuthToken,
		authID:    opts.AuthID,
	}
	if c.http == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("gateway: cookie jar: %w", err)
		}
		c.http = &http.Client{Timeout: opts.ResourceTimeout, Jar: jar}
	}
	return c, nil
}

// FetchSessions retrieves the session history. A 404 means no history yet
// and yields an empty list, not an error.
func (c *Client) FetchSessions(ctx context.Context) ([]models.Session, error) {
	resp, body, err := c.do(ctx, http.MethodGet, "/Session/History", nil)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return parseSessionHistory(body)
	case http.StatusNotFound:
		return nil, nil
	case http.StatusUnauthorized:
		return nil, &Error{Kind: KindUnauthorized, StatusCode: resp.StatusCode, Message: "authorization required"}
	case http.StatusForbidden:
		return nil, &Error{Kind: KindForbidden, StatusCode: resp.StatusCode, Message: "access to session history is forbidden"}
	default:
		return nil, &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "failed to load session history"}
	}
}

// FetchProfile retrieves the account summary.
func (c *Client) FetchProfile(ctx context.Context) (*models.UserProfile, error) {
	resp, body, err := c.do(ctx, http.MethodGet, "/Account/About", nil)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return parseProfile(body)
	case http.StatusUnauthorized:
		return nil, &Error{Kind: KindUnauthorized, StatusCode: resp.StatusCode, Message: "authorization required"}
	default:
		return nil, &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "failed to load profile"}
	}
}

// AddMoodRecord posts a mood record upstream.
func (c *Client) AddMoodRecord(ctx context.Context, mood models.MoodLevel, note string) error {
	payload := map[string]any{
		"mood":      mood.Slug(),
		"score":     mood.Score(),
		"note":      strings.TrimSpace(note),
		"timestamp": time.Now().Format(time.RFC3339),
	}
	resp, _, err := c.do(ctx, http.MethodPost, "/Mood/Add", payload)
	if err != nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusUnauthorized:
		return &Error{Kind: KindUnauthorized, StatusCode: resp.StatusCode, Message: "authorization required"}
	case http.StatusBadRequest:
		return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "invalid mood data"}
	default:
		return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "failed to save mood record"}
	}
}

// OpenSession opens (or resumes) a chat session. isNew is wire-encoded as
// the integer 1.
func (c *Client) OpenSession(ctx context.Context) (*models.SessionInfo, error) {
	resp, body, err := c.do(ctx, http.MethodPatch, "/Session", nil)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var raw struct {
			ID    int `json:"id"`
			IsNew int `json:"isNew"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, &Error{Kind: KindDecoding, Message: fmt.Sprintf("malformed session response: %v", err)}
		}
		return &models.SessionInfo{ID: raw.ID, IsNew: raw.IsNew == 1}, nil
	case http.StatusUnauthorized:
		return nil, &Error{Kind: KindUnauthorized, StatusCode: resp.StatusCode, Message: "authorization required"}
	default:
		return nil, &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "failed to open session"}
	}
}

// Login authenticates with the backend. On success the session cookies are
// captured by the jar and the authToken/id cookie values are returned.
func (c *Client) Login(ctx context.Context, login, password string) (*models.LoginResult, error) {
	payload := map[string]string{
		"login":    strings.TrimSpace(login),
		"password": password,
	}
	resp, _, err := c.do(ctx, http.MethodPost, "/Account/Authorization", payload)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		result := &models.LoginResult{}
		for _, cookie := range resp.Cookies() {
			switch cookie.Name {
			case "authToken":
				result.Token = cookie.Value
			case "id":
				result.ID = cookie.Value
			}
		}
		return result, nil
	case http.StatusUnauthorized:
		return nil, &Error{Kind: KindUnauthorized, StatusCode: resp.StatusCode, Message: "invalid login or password"}
	case http.StatusTooManyRequests:
		return nil, &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "too many login attempts, try again later"}
	default:
		if resp.StatusCode >= 500 {
			return nil, &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "server temporarily unavailable"}
		}
		return nil, &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "login failed"}
	}
}

// Register creates a new account. fields carries the registration form;
// login, email and phone are trimmed before sending.
func (c *Client) Register(ctx context.Context, fields map[string]string) error {
	payload := make(map[string]string, len(fields))
	for k, v := range fields {
		payload[k] = v
	}
	for _, k := range []string{"login", "email", "phone"} {
		if v, ok := payload[k]; ok {
			payload[k] = strings.TrimSpace(v)
		}
	}

	resp, _, err := c.do(ctx, http.MethodPost, "/Account/Registration", payload)
	if err != nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		return nil
	case http.StatusConflict:
		return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "an account with this login already exists"}
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "registration data was rejected"}
	default:
		return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "registration failed"}
	}
}

// ConfirmPayment starts a purchase for the given package index. A 202
// response carries the payment redirect URL; a 200 means the payment
// completed immediately.
func (c *Client) ConfirmPayment(ctx context.Context, packageIndex int) (string, error) {
	resp, body, err := c.do(ctx, http.MethodPost, "/Session", map[string]int{"index": packageIndex})
	if err != nil {
		return "", err
	}

	switch resp.StatusCode {
	case http.StatusAccepted:
		var raw struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return "", &Error{Kind: KindDecoding, Message: fmt.Sprintf("malformed payment response: %v", err)}
		}
		return raw.URL, nil
	case http.StatusOK:
		return "", nil
	case http.StatusUnauthorized:
		return "", &Error{Kind: KindUnauthorized, StatusCode: resp.StatusCode, Message: "authorization required"}
	case http.StatusBadRequest:
		return "", &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "invalid package parameters"}
	case http.StatusForbidden:
		return "", &Error{Kind: KindForbidden, StatusCode: resp.StatusCode, Message: "purchase not permitted"}
	case http.StatusNotFound:
		return "", &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "package not found"}
	default:
		return "", &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "payment failed"}
	}
}

// MoodStatistics retrieves the server-computed mood aggregates. A 404 yields
// zero-valued statistics, not an error.
func (c *Client) MoodStatistics(ctx context.Context) (*models.MoodStatistics, error) {
	resp, body, err := c.do(ctx, http.MethodGet, "/Mood/Statistics", nil)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var raw struct {
			TotalSessions     int     `json:"totalSessions"`
			AverageScore      float64 `json:"averageScore"`
			StreakDays        int     `json:"streakDays"`
			SessionsThisMonth int     `json:"sessionsThisMonth"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, &Error{Kind: KindDecoding, Message: fmt.Sprintf("malformed statistics response: %v", err)}
		}
		return &models.MoodStatistics{
			TotalSessions:     raw.TotalSessions,
			AverageScore:      raw.AverageScore,
			StreakDays:        raw.StreakDays,
			SessionsThisMonth: raw.SessionsThisMonth,
		}, nil
	case http.StatusNotFound:
		return &models.MoodStatistics{}, nil
	case http.StatusUnauthorized:
		return nil, &Error{Kind: KindUnauthorized, StatusCode: resp.StatusCode, Message: "authorization required"}
	default:
		return nil, &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "failed to load mood statistics"}
	}
}

// do issues one request and reads the full body. Transport failures are
// classified into the network error kinds.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("gateway: encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.AddCookie(&http.Cookie{Name: "authToken", Value: c.authToken})
	}
	if c.authID != "" {
		req.AddCookie(&http.Cookie{Name: "id", Value: c.authID})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, classifyTransportError(err)
	}
	return resp, body, nil
}

// classifyTransportError distinguishes timeouts from connectivity failures
// so the store can produce the right user-facing message.
func classifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindNetworkTimeout, Message: "request timed out"}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindNetworkTimeout, Message: "request timed out"}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: KindNetworkConnectivity, Message: "host unreachable: " + dnsErr.Name}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &Error{Kind: KindNetworkConnectivity, Message: "connection failed: " + opErr.Op}
	}
	return &Error{Kind: KindNetworkOther, Message: err.Error()}
}
