package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newInferenceServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		switch r.URL.Path {
		case "/facts":
			_, _ = w.Write([]byte(`{"facts":[{"statement":"Fund II closed at $80M.","category":"financial","confidence":0.95}]}`))
		case "/format":
			_, _ = w.Write([]byte(`{"format":"Summary: fund news"}`))
		case "/analyze":
			_, _ = w.Write([]byte(`{"readabilityScore":71.5}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestClientCalls(t *testing.T) {
	t.Parallel()

	server := newInferenceServer(t)
	defer server.Close()

	client := NewClient(server.URL, "secret")
	ctx := context.Background()

	facts, err := client.ExtractFacts(ctx, "Fund II closed at $80M.")
	if err != nil {
		t.Fatalf("ExtractFacts error: %v", err)
	}
	if len(facts) != 1 || facts[0].Category != "financial" || facts[0].Confidence != 0.95 {
		t.Fatalf("unexpected facts: %+v", facts)
	}

	format, err := client.GenerateAIFormat(ctx, "body")
	if err != nil {
		t.Fatalf("GenerateAIFormat error: %v", err)
	}
	if format != "Summary: fund news" {
		t.Fatalf("unexpected format: %q", format)
	}

	report, err := client.AnalyzeContent(ctx, "body")
	if err != nil {
		t.Fatalf("AnalyzeContent error: %v", err)
	}
	if report.ReadabilityScore != 71.5 {
		t.Fatalf("unexpected readability: %.1f", report.ReadabilityScore)
	}
}

func TestClientReportsStatus(t *testing.T) {
	t.Parallel()

	server := newInferenceServer(t)
	defer server.Close()

	client := NewClient(server.URL, "wrong")
	if _, err := client.ExtractFacts(context.Background(), "body"); err == nil {
		t.Fatalf("expected error for unauthorized response")
	}
}
