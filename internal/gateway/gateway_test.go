package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mindwell/mindwell/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Opts{BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Opts{}); err == nil {
		t.Fatal("expected error for missing base URL")
	}
}

func TestFetchSessions_OK(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Session/History" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"content":[[5,"2025-07-04",3],[13,"2025-07-06",1]]}`))
	}))

	sessions, err := c.FetchSessions(context.Background())
	if err != nil {
		t.Fatalf("FetchSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len = %d, want 2", len(sessions))
	}
	if sessions[0].ID != 13 {
		t.Errorf("first session = %d, want newest (13)", sessions[0].ID)
	}
}

func TestFetchSessions_NotFoundIsEmpty(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	sessions, err := c.FetchSessions(context.Background())
	if err != nil {
		t.Fatalf("404 must not be an error, got %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("len = %d, want 0", len(sessions))
	}
}

func TestFetchSessions_Unauthorized(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.FetchSessions(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("err = %v, want unauthorized kind", err)
	}
}

func TestFetchSessions_Forbidden(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := c.FetchSessions(context.Background())
	if ErrKind(err) != KindForbidden {
		t.Fatalf("kind = %v, want KindForbidden", ErrKind(err))
	}
}

func TestFetchSessions_ServerError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.FetchSessions(context.Background())
	var ge *Error
	if !errors.As(err, &ge) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if ge.Kind != KindServer || ge.StatusCode != http.StatusBadGateway {
		t.Errorf("got kind=%v status=%d", ge.Kind, ge.StatusCode)
	}
}

func TestLogin_CapturesCookies(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["login"] != "anna" {
			t.Errorf("login = %q (whitespace should be trimmed)", body["login"])
		}
		http.SetCookie(w, &http.Cookie{Name: "authToken", Value: "tok-1"})
		http.SetCookie(w, &http.Cookie{Name: "id", Value: "42"})
	}))

	res, err := c.Login(context.Background(), "  anna  ", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "tok-1" || res.ID != "42" {
		t.Errorf("result = %+v", res)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.Login(context.Background(), "anna", "wrong")
	if !IsUnauthorized(err) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.Login(context.Background(), "anna", "pw")
	var ge *Error
	if !errors.As(err, &ge) || ge.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("err = %v, want 429 server error", err)
	}
}

func TestAddMoodRecord_Body(t *testing.T) {
	var got map[string]any
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))

	if err := c.AddMoodRecord(context.Background(), models.MoodVeryGood, "  great  "); err != nil {
		t.Fatalf("AddMoodRecord: %v", err)
	}
	if got["mood"] != "very_happy" {
		t.Errorf("mood = %v", got["mood"])
	}
	if got["score"] != float64(5) {
		t.Errorf("score = %v", got["score"])
	}
	if got["note"] != "great" {
		t.Errorf("note = %v (should be trimmed)", got["note"])
	}
	if _, ok := got["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestOpenSession_IsNewEncoding(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		w.Write([]byte(`{"id":17,"isNew":1}`))
	}))

	info, err := c.OpenSession(context.Background())
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if info.ID != 17 || !info.IsNew {
		t.Errorf("info = %+v", info)
	}
}

func TestConfirmPayment_RedirectURL(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"url":"https://pay.example/p/1"}`))
	}))

	url, err := c.ConfirmPayment(context.Background(), 2)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if url != "https://pay.example/p/1" {
		t.Errorf("url = %q", url)
	}
}

func TestMoodStatistics_NotFoundIsZero(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	stats, err := c.MoodStatistics(context.Background())
	if err != nil {
		t.Fatalf("MoodStatistics: %v", err)
	}
	if *stats != (models.MoodStatistics{}) {
		t.Errorf("stats = %+v, want zero value", stats)
	}
}

// --- transport classification ---

type failingDoer struct {
	err error
}

func (f *failingDoer) Do(*http.Request) (*http.Response, error) { return nil, f.err }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify_Timeout(t *testing.T) {
	c, err := New(Opts{BaseURL: "http://example.test", HTTPClient: &failingDoer{err: timeoutErr{}}})
	if err != nil {
		t.Fatal(err)
	}
	_, ferr := c.FetchSessions(context.Background())
	if ErrKind(ferr) != KindNetworkTimeout {
		t.Errorf("kind = %v, want KindNetworkTimeout", ErrKind(ferr))
	}
}

func TestClassify_DNS(t *testing.T) {
	c, err := New(Opts{BaseURL: "http://example.test", HTTPClient: &failingDoer{
		err: &net.DNSError{Err: "no such host", Name: "example.test"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	_, ferr := c.FetchSessions(context.Background())
	if ErrKind(ferr) != KindNetworkConnectivity {
		t.Errorf("kind = %v, want KindNetworkConnectivity", ErrKind(ferr))
	}
}

func TestClassify_Other(t *testing.T) {
	c, err := New(Opts{BaseURL: "http://example.test", HTTPClient: &failingDoer{err: errors.New("boom")}})
	if err != nil {
		t.Fatal(err)
	}
	_, ferr := c.FetchSessions(context.Background())
	if ErrKind(ferr) != KindNetworkOther {
		t.Errorf("kind = %v, want KindNetworkOther", ErrKind(ferr))
	}
}

func TestSeededAuthCookies(t *testing.T) {
	var gotToken, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("authToken"); err == nil {
			gotToken = cookie.Value
		}
		if cookie, err := r.Cookie("id"); err == nil {
			gotID = cookie.Value
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(Opts{BaseURL: srv.URL, AuthToken: "tok-1", AuthID: "42", HTTPClient: srv.Client()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.FetchSessions(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotToken != "tok-1" || gotID != "42" {
		t.Errorf("cookies seen by server = %q/%q, want tok-1/42", gotToken, gotID)
	}
}
