package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"quran-mood-gateway/pkg/logging/logging"
)

func TestResolveClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:    "first forwarded address",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1", "X-Real-IP": "198.51.100.1"},
			remote:  "10.0.0.2:5555",
			want:    "203.0.113.7",
		},
		{
			name:    "skips junk in forwarded list",
			headers: map[string]string{"X-Forwarded-For": "unknown, 2001:db8::1"},
			remote:  "10.0.0.2:5555",
			want:    "2001:db8::1",
		},
		{
			name: "later forwarded hop beats real ip",
			headers: map[string]string{
				"X-Forwarded-For": "unknown, 203.0.113.9",
				"X-Real-IP":       "198.51.100.1",
			},
			remote: "10.0.0.2:5555",
			want:   "203.0.113.9",
		},
		{
			name:    "real ip before cloudflare",
			headers: map[string]string{"X-Real-IP": "198.51.100.1", "CF-Connecting-IP": "198.51.100.2"},
			remote:  "10.0.0.2:5555",
			want:    "198.51.100.1",
		},
		{
			name:    "cloudflare",
			headers: map[string]string{"CF-Connecting-IP": "198.51.100.2", "X-Client-IP": "198.51.100.3"},
			remote:  "10.0.0.2:5555",
			want:    "198.51.100.2",
		},
		{
			name:    "true client ip",
			headers: map[string]string{"True-Client-IP": "198.51.100.4"},
			remote:  "10.0.0.2:5555",
			want:    "198.51.100.4",
		},
		{
			name:    "x client ip",
			headers: map[string]string{"X-Client-IP": "198.51.100.5"},
			remote:  "10.0.0.2:5555",
			want:    "198.51.100.5",
		},
		{
			name:   "remote address",
			remote: "192.0.2.10:41000",
			want:   "192.0.2.10",
		},
		{
			name:   "unparseable",
			remote: "pipe",
			want:   "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ResolveClientIP(r); got != tt.want {
				t.Fatalf("ResolveClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIPMiddleware(t *testing.T) {
	var got string
	h := ClientIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIPFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got != "203.0.113.9" {
		t.Fatalf("client ip = %q", got)
	}
}

func TestMaxBodySize(t *testing.T) {
	h := MaxBodySize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("small body: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("much too large")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("declared large body: status %d", rec.Code)
	}

	// unknown length is cut off while reading
	r := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(strings.NewReader("much too large")))
	r.ContentLength = -1
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("streamed large body: status %d", rec.Code)
	}
}

func TestTimeout(t *testing.T) {
	slow := Timeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	}))

	rec := httptest.NewRecorder()
	slow.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "late") {
		t.Fatalf("late write leaked into response: %s", rec.Body.String())
	}

	fast := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "1")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("done"))
	}))

	rec = httptest.NewRecorder()
	fast.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusCreated || rec.Body.String() != "done" || rec.Header().Get("X-Test") != "1" {
		t.Fatalf("fast handler: %d %q %v", rec.Code, rec.Body.String(), rec.Header())
	}
}

func TestRecoverer(t *testing.T) {
	h := LoggingContext(zaptest.NewLogger(t))(Recoverer()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if logging.L(r.Context()) == nil {
			t.Error("missing request logger")
		}
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"INTERNAL"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
