package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jobnexus/jobboard/pkg/logger"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	user := map[string]string{"id": "5", "email": "erin@example.com", "firstName": "Erin", "lastName": "Lee", "role": "employer"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok-5", "user": user})
		case "/api/auth/me":
			if r.Header.Get("Authorization") != "Bearer tok-5" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Token is not valid"})
				return
			}
			_ = json.NewEncoder(w).Encode(user)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	logger.Reset()
	t.Cleanup(logger.Reset)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func TestJobctl_LoginWhoamiVisitLogout(t *testing.T) {
	srv := newAPI(t)
	creds := filepath.Join(t.TempDir(), "credentials.json")
	base := []string{"--server", srv.URL, "--credentials", creds}

	out, err := runCLI(t, "secret\n", append(base, "login", "erin@example.com")...)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "logged in as erin@example.com (employer)") {
		t.Fatalf("unexpected login output: %q", out)
	}
	if !strings.Contains(out, "redirect /dashboard/recruiter") {
		t.Fatalf("expected employer home, got %q", out)
	}

	out, err = runCLI(t, "", append(base, "whoami")...)
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.HasPrefix(out, "5\temployer\tErin Lee\n") {
		t.Fatalf("unexpected whoami output: %q", out)
	}

	out, err = runCLI(t, "", append(base, "visit", "/jobs", "/dashboard/jobs", "/dashboard/users")...)
	if err != nil {
		t.Fatalf("visit: %v", err)
	}
	want := "/jobs\trender\n/dashboard/jobs\trender\n/dashboard/users\tredirect /dashboard\n"
	if out != want {
		t.Fatalf("visit output:\n got %q\nwant %q", out, want)
	}

	out, err = runCLI(t, "", append(base, "logout")...)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if out != "/\n" {
		t.Fatalf("logout should print the landing path, got %q", out)
	}
	if _, err := os.Stat(creds); !os.IsNotExist(err) {
		t.Fatalf("credentials file should be gone, stat err = %v", err)
	}

	out, err = runCLI(t, "", append(base, "visit", "/dashboard")...)
	if err != nil {
		t.Fatalf("visit: %v", err)
	}
	if out != "/dashboard\tredirect /login\n" {
		t.Fatalf("logged out visit: %q", out)
	}
}

func TestJobctl_BadPasswordShowsServerMessage(t *testing.T) {
	srv := newAPI(t)
	creds := filepath.Join(t.TempDir(), "credentials.json")

	_, err := runCLI(t, "nope\n", "--server", srv.URL, "--credentials", creds, "login", "erin@example.com")
	if err == nil || err.Error() != "Invalid credentials" {
		t.Fatalf("expected server message, got %v", err)
	}
	if _, statErr := os.Stat(creds); !os.IsNotExist(statErr) {
		t.Fatal("failed login must not write credentials")
	}
}

func TestJobctl_WhoamiLoggedOut(t *testing.T) {
	srv := newAPI(t)
	creds := filepath.Join(t.TempDir(), "credentials.json")

	_, err := runCLI(t, "", "--server", srv.URL, "--credentials", creds, "whoami")
	if err == nil || err.Error() != "not logged in" {
		t.Fatalf("expected not logged in, got %v", err)
	}
}

func TestJobctl_UnknownCommand(t *testing.T) {
	_, err := runCLI(t, "", "--credentials", filepath.Join(t.TempDir(), "c.json"), "fly")
	if err == nil || !strings.Contains(err.Error(), `unknown command "fly"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}
