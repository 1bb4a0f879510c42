package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/firegate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestIPKeyExtractor(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"remote addr", nil, "192.168.1.1"},
		{"forwarded for wins", map[string]string{
			"X-Forwarded-For": "203.0.113.1, 192.168.1.1",
			"X-Real-IP":       "203.0.113.2",
		}, "203.0.113.1"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.2"}, "203.0.113.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.IPKeyExtractor(req))
		})
	}
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"tags value with field", `{"username":" Station7 ","password":"x"}`, "username=station7"},
		{"missing field", `{"password":"x"}`, ""},
		{"blank field", `{"username":"  "}`, ""},
		{"not json", "username=alice", ""},
		{"not a string", `{"username":42}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			require.Equal(t, tt.want, httpx.JSONFieldKeyExtractor("username")(req))

			rest, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			require.Equal(t, tt.body, string(rest), "body must reach the handler unchanged")
		})
	}
}

func TestJSONFieldKeyExtractorKeepsLargeBody(t *testing.T) {
	body := `{"username":"alice","padding":"` + strings.Repeat("x", 100<<10) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	// The field sits inside the peeked prefix, the rest must still follow it.
	require.Equal(t, "username=alice", httpx.JSONFieldKeyExtractor("username")(req))

	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	require.Len(t, rest, len(body))
	require.Equal(t, body, string(rest))
	require.NoError(t, req.Body.Close())
}

func TestPathValueKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/personnel/login", nil)
	require.Equal(t, "", httpx.PathValueKeyExtractor("kind")(req))

	req.SetPathValue("kind", "personnel")
	require.Equal(t, "kind=personnel", httpx.PathValueKeyExtractor("kind")(req))
}

func TestCompositeKeyExtractorSkipsEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"service_number":"FP-100"}`))
	req.RemoteAddr = "192.168.1.1:12345"

	extractor := httpx.CompositeKeyExtractor(":",
		httpx.IPKeyExtractor,
		httpx.JSONFieldKeyExtractor("username"),
		httpx.JSONFieldKeyExtractor("service_number"),
	)
	require.Equal(t, "192.168.1.1:service_number=fp-100", extractor(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}

	get := func(h http.Handler, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("blocks once the burst is spent", func(t *testing.T) {
		h := httpx.RateLimitByIP(config)(okHandler)
		for range 2 {
			require.Equal(t, http.StatusOK, get(h, "192.168.1.1:1").Code)
		}

		rec := get(h, "192.168.1.1:1")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")

		require.Equal(t, http.StatusOK, get(h, "192.168.1.2:1").Code, "other IPs keep their own bucket")
	})

	t.Run("empty key is exempt", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(config, func(*http.Request) string { return "" })(okHandler)
		for range 5 {
			require.Equal(t, http.StatusOK, get(h, "192.168.1.1:1").Code)
		}
	})
}

func TestRateLimitByIPPathAndJSONField(t *testing.T) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}

	mux := http.NewServeMux()
	mux.Handle("POST /auth/{kind}/login",
		httpx.RateLimitByIPPathAndJSONField(config, "kind", "username", "service_number")(okHandler))

	login := func(kind, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/"+kind+"/login", strings.NewReader(body))
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec.Code
	}

	for range 2 {
		require.Equal(t, http.StatusOK, login("superadmin", `{"username":"alice"}`))
	}
	require.Equal(t, http.StatusTooManyRequests, login("superadmin", `{"username":"alice"}`))

	require.Equal(t, http.StatusOK, login("superadmin", `{"username":"bob"}`), "other names keep their bucket")
	require.Equal(t, http.StatusOK, login("general", `{"username":"alice"}`), "other kinds keep their bucket")
	require.Equal(t, http.StatusOK, login("personnel", `{"service_number":"alice"}`))

	// Same kind, same value, different field.
	require.Equal(t, http.StatusOK, login("superadmin", `{"service_number":"alice"}`))
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	tests := []struct {
		name string
		env  map[string]string
		want httpx.RateLimitConfig
	}{
		{"defaults", nil, def},
		{"overrides", map[string]string{
			"RATELIMIT_TEST_REQUESTS":   "200",
			"RATELIMIT_TEST_WINDOW_SEC": "30",
			"RATELIMIT_TEST_BURST":      "250",
		}, httpx.RateLimitConfig{RequestsPerWindow: 200, Window: 30 * time.Second, Burst: 250}},
		{"partial override", map[string]string{"RATELIMIT_TEST_BURST": "100"},
			httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 100}},
		{"invalid and non-positive keep defaults", map[string]string{
			"RATELIMIT_TEST_REQUESTS":   "invalid",
			"RATELIMIT_TEST_WINDOW_SEC": "-10",
			"RATELIMIT_TEST_BURST":      "0",
		}, def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			require.Equal(t, tt.want, httpx.ParseRateLimitFromEnv("TEST", def))
		})
	}
}
