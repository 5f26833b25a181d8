package main

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mindwell/mindwell/internal/devserver"
)

// startEnv stands up a mock backend and writes a config file pointing at it,
// with storage in a temp dir. Returns the config path.
func startEnv(t *testing.T) string {
	t.Helper()

	db, err := devserver.OpenSQLite(filepath.Join(t.TempDir(), "dev.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := devserver.SeedDemo(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := httptest.NewServer(devserver.NewRouter(db))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mindwell.yaml")
	cfg := fmt.Sprintf("server:\n  base_url: %s/API\nstorage:\n  path: %s\n", srv.URL, filepath.Join(dir, "data"))
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

// run executes one CLI invocation and returns its combined output.
func run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("mw %s: %v\noutput: %s", strings.Join(args, " "), err, buf.String())
	}
	return buf.String()
}

func TestLoginThenSessions(t *testing.T) {
	cfg := startEnv(t)

	out := run(t, "login", "-c", cfg, "-u", "demo", "-p", "demo")
	if !strings.Contains(out, "Signed in as demo") {
		t.Errorf("login output = %q", out)
	}

	out = run(t, "sessions", "-c", cfg)
	if !strings.Contains(out, "No sessions yet") {
		t.Errorf("sessions output = %q", out)
	}
}

func TestMoodAddListDelete(t *testing.T) {
	cfg := startEnv(t)
	run(t, "login", "-c", cfg, "-u", "demo", "-p", "demo")

	out := run(t, "mood", "add", "5", "-c", cfg, "-n", "sunny")
	if !strings.Contains(out, "Recorded Very good") {
		t.Errorf("add output = %q", out)
	}

	out = run(t, "mood", "list", "-c", cfg)
	if !strings.Contains(out, "Very good") || !strings.Contains(out, "sunny") {
		t.Errorf("list output = %q", out)
	}

	// The list line carries the 8-char id prefix after the mood title.
	var id string
	for _, field := range strings.Fields(out) {
		if len(field) == 8 && !strings.Contains(field, ":") {
			id = field
			break
		}
	}
	if id == "" {
		t.Fatalf("no id prefix found in %q", out)
	}

	out = run(t, "mood", "delete", id, "-c", cfg)
	if !strings.Contains(out, "Deleted") {
		t.Errorf("delete output = %q", out)
	}

	out = run(t, "mood", "list", "-c", cfg)
	if !strings.Contains(out, "No mood entries") {
		t.Errorf("list after delete = %q", out)
	}
}

func TestMoodEntriesSurviveRemoteSessions(t *testing.T) {
	cfg := startEnv(t)
	run(t, "login", "-c", cfg, "-u", "demo", "-p", "demo")
	run(t, "mood", "add", "4", "-c", cfg)

	// Refreshing the remote history must not disturb local journal entries.
	run(t, "sessions", "-c", cfg, "--refresh")

	out := run(t, "mood", "list", "-c", cfg)
	if !strings.Contains(out, "Good") {
		t.Errorf("journal entry lost after refresh: %q", out)
	}
}

func TestBalanceBuy(t *testing.T) {
	cfg := startEnv(t)
	run(t, "login", "-c", cfg, "-u", "demo", "-p", "demo")

	out := run(t, "balance", "buy", "sessions_7pack", "-c", cfg)
	if !strings.Contains(out, "balance is now 7") {
		t.Errorf("buy output = %q", out)
	}

	out = run(t, "balance", "-c", cfg)
	if !strings.Contains(out, "Local balance: 7") {
		t.Errorf("balance output = %q", out)
	}

	// The mock backend credited its side too.
	out = run(t, "profile", "-c", cfg)
	if !strings.Contains(out, "10 session(s) on the server") { // seeded 3 + 7
		t.Errorf("profile output = %q", out)
	}
}

func TestProfile(t *testing.T) {
	cfg := startEnv(t)
	run(t, "login", "-c", cfg, "-u", "demo", "-p", "demo")

	out := run(t, "profile", "-c", cfg)
	if !strings.Contains(out, "Demo User") {
		t.Errorf("profile output = %q", out)
	}
}

func TestRemoteStats(t *testing.T) {
	cfg := startEnv(t)
	run(t, "login", "-c", cfg, "-u", "demo", "-p", "demo")
	run(t, "mood", "add", "4", "-c", cfg)

	out := run(t, "stats", "-c", cfg, "--remote")
	if !strings.Contains(out, "Sessions:   1") {
		t.Errorf("remote stats output = %q", out)
	}
}

func TestChatOpensAndResumes(t *testing.T) {
	cfg := startEnv(t)
	run(t, "login", "-c", cfg, "-u", "demo", "-p", "demo")

	out := run(t, "chat", "-c", cfg, "--mood", "4")
	if !strings.Contains(out, "Started session") {
		t.Errorf("chat output = %q", out)
	}

	out = run(t, "chat", "-c", cfg)
	if !strings.Contains(out, "Resumed session") {
		t.Errorf("second chat output = %q", out)
	}
}

func TestLogoutDropsAuth(t *testing.T) {
	cfg := startEnv(t)
	run(t, "login", "-c", cfg, "-u", "demo", "-p", "demo")
	run(t, "logout", "-c", cfg)

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"profile", "-c", cfg})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected profile to fail after logout")
	}
}

func TestFirstLoginShowsDisclaimerOnce(t *testing.T) {
	cfg := startEnv(t)

	out := run(t, "login", "-c", cfg, "-u", "demo", "-p", "demo")
	if !strings.Contains(out, "not a medical service") {
		t.Errorf("first login missing disclaimer: %q", out)
	}

	out = run(t, "login", "-c", cfg, "-u", "demo", "-p", "demo")
	if strings.Contains(out, "not a medical service") {
		t.Errorf("disclaimer repeated on second login: %q", out)
	}

	// Signing out does not reset the machine-level notice.
	run(t, "logout", "-c", cfg)
	out = run(t, "login", "-c", cfg, "-u", "demo", "-p", "demo")
	if strings.Contains(out, "not a medical service") {
		t.Errorf("disclaimer repeated after logout/login: %q", out)
	}
}

func TestMoodAddMirrorLandsBeforeExit(t *testing.T) {
	cfg := startEnv(t)
	run(t, "login", "-c", cfg, "-u", "demo", "-p", "demo")

	// The add command must not return until the upstream mirror attempt has
	// finished, so the very next invocation already sees the remote copy.
	run(t, "mood", "add", "5", "-c", cfg)

	out := run(t, "stats", "-c", cfg, "--remote")
	if !strings.Contains(out, "Sessions:   1") {
		t.Errorf("remote stats after mood add = %q, want the mirrored session", out)
	}
}
