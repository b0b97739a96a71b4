package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:   "falls back to remote addr",
			remote: "10.0.0.1:5000",
			want:   "10.0.0.1:5000",
		},
		{
			name:    "prefers forwarded-for first hop",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"},
			remote:  "10.0.0.1:5000",
			want:    "203.0.113.7",
		},
		{
			name:    "uses real-ip when no forwarded-for",
			headers: map[string]string{"X-Real-IP": "198.51.100.4"},
			remote:  "10.0.0.1:5000",
			want:    "198.51.100.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := getIP(req); got != tt.want {
				t.Fatalf("getIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterBlocksAndRecovers(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doReq := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/movements/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := doReq(); rec.Code != http.StatusOK {
		t.Fatalf("expected first request allowed, got %d", rec.Code)
	}

	rec := doReq()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request limited, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on limited response")
	}

	// Cleanup resets per-IP state, so the next request is allowed again
	rl.CleanupLimiters()
	if rec := doReq(); rec.Code != http.StatusOK {
		t.Fatalf("expected request allowed after cleanup, got %d", rec.Code)
	}
}
