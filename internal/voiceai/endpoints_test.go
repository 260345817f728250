package voiceai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"leadcenter/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.VoiceAIConfig{
		BaseURL:           baseURL,
		AssistantID:       "asst-1",
		PageLimit:         50,
		EnhanceBatchSize:  2,
		EnhanceBatchDelay: time.Millisecond,
		RequestTimeout:    2 * time.Second,
	}, nil)
}

func TestFetchRawPayload_V2WinsImmediately(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"c1"}]}`))
	}))
	defer srv.Close()

	payload, err := newTestClient(srv.URL).FetchRawPayload(context.Background(), "key-1", time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !payload.FromV2 {
		t.Fatalf("expected v2 source")
	}
	if gotPath != "/assistant/asst-1/calls" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer key-1" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if len(ExtractRecords(payload.Body)) != 1 {
		t.Fatalf("expected body to carry 1 record")
	}
}

func TestFetchRawPayload_FallsBackToFirstWorkingLegacyEndpoint(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	var legacyQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/api/calls":
			legacyQuery = r.URL.RawQuery
			w.Write([]byte(`{"calls":[{"id":"c1"}]}`))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	payload, err := newTestClient(srv.URL).FetchRawPayload(context.Background(), "key-1", start, end)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if payload.FromV2 {
		t.Fatalf("expected legacy source")
	}
	if payload.Endpoint != "api-calls" {
		t.Fatalf("expected api-calls endpoint, got %q", payload.Endpoint)
	}

	want := []string{"/assistant/asst-1/calls", "/v1/calls", "/api/calls"}
	if len(paths) != len(want) {
		t.Fatalf("expected probe order %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("probe %d: expected %q, got %q", i, want[i], paths[i])
		}
	}

	q := legacyQuery
	for _, param := range []string{"assistantId=asst-1", "limit=50", "createdAtGe=", "createdAtLe="} {
		if !strings.Contains(q, param) {
			t.Fatalf("expected query to carry %q, got %q", param, q)
		}
	}
}

func TestFetchRawPayload_DateParamsOmittedForDateBlindEndpoints(t *testing.T) {
	var callLogsQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/call-logs" {
			callLogsQuery = r.URL.RawQuery
			w.Write([]byte(`[]`))
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchRawPayload(context.Background(), "key-1", time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if strings.Contains(callLogsQuery, "createdAtGe") {
		t.Fatalf("date-blind endpoint must not receive date params, got %q", callLogsQuery)
	}
	if !strings.Contains(callLogsQuery, "assistantId=asst-1") {
		t.Fatalf("expected assistant filter, got %q", callLogsQuery)
	}
}

func TestFetchRawPayload_ExhaustionRunsDiscoveryAndReturnsLastError(t *testing.T) {
	var mu sync.Mutex
	probed := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		probed[r.URL.Path] = true
		mu.Unlock()
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchRawPayload(context.Background(), "key-1", time.Now().Add(-time.Hour), time.Now())
	if err == nil {
		t.Fatalf("expected error on exhaustion")
	}
	if !probed["/me"] {
		t.Fatalf("expected auth-check discovery probe")
	}
	if !probed["/"] {
		t.Fatalf("expected api-root discovery probe")
	}
}

func TestFetchCallDetail_ReturnsObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/call/c1" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"id":"c1","transcript":"hello"}`))
	}))
	defer srv.Close()

	detail, err := newTestClient(srv.URL).FetchCallDetail(context.Background(), "key-1", "c1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if detail["transcript"] != "hello" {
		t.Fatalf("unexpected detail %+v", detail)
	}
}
