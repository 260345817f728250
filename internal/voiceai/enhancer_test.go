package voiceai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"leadcenter/internal/calllog"
)

func TestEnhanceRecords_FillsMissingFieldsOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/call/") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Write([]byte(`{
			"id": "c1",
			"analysis": {"successEvaluation": "true"},
			"transcript": "detail transcript",
			"customer": {"number": "+15550001"}
		}`))
	}))
	defer srv.Close()

	records := []calllog.RawRecord{{
		"id":         "c1",
		"transcript": "summary transcript",
	}}

	out := newTestClient(srv.URL).EnhanceRecords(context.Background(), "key-1", records)
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	if !out[0].HasSuccessEvaluation() {
		t.Fatalf("expected success evaluation merged in")
	}
	if !out[0].HasCustomerNumber() {
		t.Fatalf("expected customer number merged in")
	}
	if out[0]["transcript"] != "summary transcript" {
		t.Fatalf("present field must not be overwritten, got %v", out[0]["transcript"])
	}
}

func TestEnhanceRecords_CompleteRecordsSkipLookup(t *testing.T) {
	var mu sync.Mutex
	lookups := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		lookups++
		mu.Unlock()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	records := []calllog.RawRecord{{
		"id":       "c1",
		"analysis": map[string]any{"successEvaluation": "false"},
		"customer": map[string]any{"number": "+15550001"},
	}}

	newTestClient(srv.URL).EnhanceRecords(context.Background(), "key-1", records)
	if lookups != 0 {
		t.Fatalf("expected no detail lookups, got %d", lookups)
	}
}

func TestEnhanceRecords_LookupFailureKeepsOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	records := []calllog.RawRecord{
		{"id": "c1", "status": "ended"},
		{"id": "c2", "status": "ended"},
	}

	out := newTestClient(srv.URL).EnhanceRecords(context.Background(), "key-1", records)
	if len(out) != 2 {
		t.Fatalf("expected both records kept, got %d", len(out))
	}
	for i, rec := range out {
		if rec["status"] != "ended" {
			t.Fatalf("record %d mutated: %+v", i, rec)
		}
	}
}

func TestEnhanceRecords_RecordsWithoutIDSkipped(t *testing.T) {
	var mu sync.Mutex
	lookups := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		lookups++
		mu.Unlock()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	newTestClient(srv.URL).EnhanceRecords(context.Background(), "key-1", []calllog.RawRecord{{"status": "ended"}})
	if lookups != 0 {
		t.Fatalf("expected no lookups for id-less records, got %d", lookups)
	}
}

func TestMergeDetail_DoesNotTouchUnrelatedKeys(t *testing.T) {
	base := calllog.RawRecord{"id": "c1", "cost": 0.5}
	detail := calllog.RawRecord{"cost": 9.9, "ended_reason": "customer-hangup"}

	merged := mergeDetail(base, detail)
	if merged["cost"] != 0.5 {
		t.Fatalf("unrelated present key overwritten: %v", merged["cost"])
	}
	if merged["ended_reason"] != "customer-hangup" {
		t.Fatalf("expected ended reason merged, got %v", merged["ended_reason"])
	}
	if base.HasEndedReason() {
		t.Fatalf("merge must not mutate the input record")
	}
}
