package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestCatalogStateString(t *testing.T) {
	tests := []struct {
		state    CatalogState
		expected string
	}{
		{CatalogEmpty, "empty"},
		{CatalogStaleCheck, "stale-check"},
		{CatalogFresh, "fresh"},
		{CatalogState(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("CatalogState.String() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestCacheRecordFreshness(t *testing.T) {
	captured := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := NewCacheRecord(captured, "abc", nil)

	if rec.Timestamp != captured.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", rec.Timestamp, captured.UnixMilli())
	}
	if !rec.CreatedAt().Equal(captured) {
		t.Errorf("CreatedAt() = %v, want %v", rec.CreatedAt(), captured)
	}

	ttl := 24 * time.Hour
	if !rec.IsFresh(captured.Add(time.Hour), ttl) {
		t.Error("record one hour old should be fresh")
	}
	if rec.IsFresh(captured.Add(ttl), ttl) {
		t.Error("record exactly ttl old should not be fresh")
	}
	if got := rec.Age(captured.Add(90 * time.Minute)); got != 90*time.Minute {
		t.Errorf("Age() = %v, want 90m", got)
	}
}

func TestCacheRecordJSONShape(t *testing.T) {
	rec := CacheRecord{Timestamp: 1700000000000, DataHash: "deadbeef", Breeds: []EnrichedBreed{{ID: 1, Name: "Akita"}}}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	for _, field := range []string{`"timestamp":1700000000000`, `"dataHash":"deadbeef"`, `"breeds":[`, `"image_url"`, `"life_span"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("encoded record %s missing %s", data, field)
		}
	}
}

func TestErrorMatching(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewUpstreamError("wiki.summary", http.StatusInternalServerError, cause)

	if !errors.Is(err, ErrUpstream) {
		t.Error("errors.Is(err, ErrUpstream) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("upstream error should not match ErrNotFound")
	}

	wrapped := fmt.Errorf("lookup: %w", err)
	var typed *Error
	if !errors.As(wrapped, &typed) {
		t.Fatal("errors.As did not find *Error")
	}
	if typed.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", typed.Status)
	}
	if !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("Error() = %q, want status in message", err.Error())
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("lookup", "empty"), http.StatusBadRequest},
		{"not found", NewNotFoundError("wiki.summary", "missing"), http.StatusNotFound},
		{"timeout", NewTimeoutError("narrative", nil), http.StatusGatewayTimeout},
		{"parse", NewParseError("chat", errors.New("bad json")), http.StatusBadGateway},
		{"upstream", NewUpstreamError("dogapi", 500, nil), http.StatusBadGateway},
		{"no catalog", fmt.Errorf("%w: %w", ErrNoCatalog, errors.New("down")), http.StatusServiceUnavailable},
		{"no catalog after upstream 404", fmt.Errorf("%w: %w", ErrNoCatalog, NewNotFoundError("dogapi.breeds", "gone")), http.StatusServiceUnavailable},
		{"no catalog after timeout", fmt.Errorf("%w: %w", ErrNoCatalog, NewTimeoutError("dogapi.breeds", nil)), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsFallbackEligible(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", NewNotFoundError("wiki", ""), true},
		{"upstream", NewUpstreamError("wiki", 503, nil), true},
		{"validation", NewValidationError("wiki", "not a dog"), false},
		{"parse", NewParseError("wiki", nil), false},
		{"plain", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFallbackEligible(tt.err); got != tt.want {
				t.Errorf("IsFallbackEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheError(t *testing.T) {
	err := NewCacheError("get", "dog_breeds_cache", "redis", ErrCacheMiss)

	if !IsCacheMiss(err) {
		t.Error("IsCacheMiss() = false for wrapped miss")
	}
	want := "cache get on redis [dog_breeds_cache]: cache: key not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	noKey := NewCacheError("close", "", "file", ErrClosed)
	if noKey.Error() != "cache close on file: cache: backend closed" {
		t.Errorf("Error() = %q", noKey.Error())
	}
}

func TestSecretString(t *testing.T) {
	s := NewSecretString("sk-live-123")

	if s.Value() != "sk-live-123" {
		t.Errorf("Value() = %q", s.Value())
	}
	if s.String() != "[REDACTED]" {
		t.Errorf("String() = %q, want [REDACTED]", s.String())
	}
	if s.LogValue().Kind() != slog.KindString || s.LogValue().String() != "[REDACTED]" {
		t.Errorf("LogValue() = %v", s.LogValue())
	}

	data, err := json.Marshal(struct {
		Key SecretString `json:"key"`
	}{s})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"key":"[REDACTED]"}` {
		t.Errorf("Marshal() = %s", data)
	}

	var decoded struct {
		Key SecretString `json:"key"`
	}
	if err := json.Unmarshal([]byte(`{"key":"plain"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Key.Value() != "plain" {
		t.Errorf("decoded Value() = %q", decoded.Key.Value())
	}

	var empty SecretString
	if !empty.IsEmpty() || empty.String() != "" {
		t.Error("zero SecretString should be empty and print as empty")
	}
}

func TestHealthReportDerive(t *testing.T) {
	tests := []struct {
		name      string
		available bool
		state     CatalogState
		want      HealthStatus
	}{
		{"fresh and available", true, CatalogFresh, HealthStatusHealthy},
		{"stale", true, CatalogStaleCheck, HealthStatusDegraded},
		{"backend down", false, CatalogFresh, HealthStatusDegraded},
		{"empty", true, CatalogEmpty, HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := HealthReport{
				Cache:   CacheHealth{Available: tt.available},
				Catalog: CatalogHealth{State: tt.state.String()},
			}
			r.Derive()
			if r.Status != tt.want {
				t.Errorf("Status = %s, want %s", r.Status, tt.want)
			}
		})
	}
}

func TestMetricsSnapshotRatios(t *testing.T) {
	s := MetricsSnapshot{CacheHits: 3, CacheMisses: 1, UpstreamRequests: 4, UpstreamErrors: 1}

	if got := s.CacheHitRatio(); got != 0.75 {
		t.Errorf("CacheHitRatio() = %v, want 0.75", got)
	}
	if got := s.UpstreamErrorRatio(); got != 0.25 {
		t.Errorf("UpstreamErrorRatio() = %v, want 0.25", got)
	}

	var zero MetricsSnapshot
	if zero.CacheHitRatio() != 0 || zero.UpstreamErrorRatio() != 0 {
		t.Error("zero snapshot ratios should be 0")
	}
}
