package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"horse.fit/trendwatch/internal/globaltime"
)

func TestParsePositiveInt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw      string
		fallback int
		want     int
	}{
		{"", 5, 5},
		{"  ", 5, 5},
		{"3", 5, 3},
		{"0", 5, 5},
		{"-2", 5, 5},
		{"abc", 5, 5},
		{" 12 ", 5, 12},
	}

	for _, tc := range cases {
		if got := parsePositiveInt(tc.raw, tc.fallback); got != tc.want {
			t.Fatalf("parsePositiveInt(%q, %d) = %d, want %d", tc.raw, tc.fallback, got, tc.want)
		}
	}
}

func TestNewServerAppliesDefaults(t *testing.T) {
	t.Parallel()

	server := NewServer(nil, zerolog.Nop(), Options{})
	if server.opts.Host != "0.0.0.0" {
		t.Fatalf("host = %q, want 0.0.0.0", server.opts.Host)
	}
	if server.opts.Port != 8090 {
		t.Fatalf("port = %d, want 8090", server.opts.Port)
	}
	if server.opts.ReadTimeout != 10*time.Second {
		t.Fatalf("read timeout = %s", server.opts.ReadTimeout)
	}
	if server.opts.ShutdownTimeout != 10*time.Second {
		t.Fatalf("shutdown timeout = %s", server.opts.ShutdownTimeout)
	}
}

func TestHandleHealthEnvelope(t *testing.T) {
	globaltime.SetMockTime(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	defer globaltime.ResetTime()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	server := NewServer(nil, zerolog.Nop(), Options{})
	if err := server.handleHealth(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Status string `json:"status"`
		Data   struct {
			Service string    `json:"service"`
			Time    time.Time `json:"time"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "success" {
		t.Fatalf("status = %q, want success", body.Status)
	}
	if body.Data.Service != "trendwatch" {
		t.Fatalf("service = %q, want trendwatch", body.Data.Service)
	}
	if !body.Data.Time.Equal(globaltime.UTC()) {
		t.Fatalf("time = %s, want mocked now", body.Data.Time)
	}
}

func TestFailEnvelope(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := fail(c, http.StatusBadRequest, "since is required (YYYY-MM-DD)", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body jsendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "fail" {
		t.Fatalf("status = %q, want fail", body.Status)
	}
	if body.Message == "" {
		t.Fatalf("message missing from fail envelope")
	}
}
