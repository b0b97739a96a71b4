package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON(struct {
			A int `json:"a"`
		}{A: 1})
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Fatalf("unexpected json output:\n%s", out)
	}
}

func TestListPendingPrintsMovements(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"movements":[{"id":"mov-1","kind":"income","amount":"120.50","reason":"weekly dues"}],"total":1}`))
	}))
	defer server.Close()

	origURL, origToken, origTimeout := baseURL, token, timeout
	baseURL, token, timeout = server.URL, "tok-1", 5*time.Second
	defer func() { baseURL, token, timeout = origURL, origToken, origTimeout }()

	out := captureOutput(t, func() {
		listPending()
	})

	if gotAuth != "Bearer tok-1" {
		t.Fatalf("expected bearer token header, got %q", gotAuth)
	}
	if gotPath != "/api/v1/movements/?state=pending" {
		t.Fatalf("unexpected request path: %q", gotPath)
	}
	if !strings.Contains(out, "Pending movements: 1") || !strings.Contains(out, "weekly dues") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestHashPasswordCmd(t *testing.T) {
	orig := bcryptGenerate
	bcryptGenerate = func(p []byte, cost int) ([]byte, error) {
		return []byte("hashed-value"), nil
	}
	defer func() { bcryptGenerate = orig }()

	cmd := hashPasswordCmd()
	cmd.SetArgs([]string{"secret"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if strings.TrimSpace(out) != "hashed-value" {
		t.Fatalf("expected hashed-value, got %q", out)
	}
}
