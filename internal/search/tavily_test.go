package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Iron-Ham/sift/internal/errors"
)

func TestTavily_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tv-key" {
			t.Errorf("Authorization = %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["query"] != "rust vs go" || body["search_depth"] != "basic" {
			t.Errorf("body = %v", body)
		}
		fmt.Fprint(w, `{"results":[{"title":"T","url":"https://t","content":"snippet"}]}`)
	}))
	defer srv.Close()

	results, err := NewTavily("tv-key", WithBaseURL(srv.URL)).Search(context.Background(), "rust vs go")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Snippet != "snippet" {
		t.Errorf("results = %+v", results)
	}
}

func TestTavily_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tv := NewTavily("k", WithBaseURL(srv.URL))
	tv.retryWait = time.Millisecond

	_, err := tv.Search(context.Background(), "q")
	if !errors.Is(err, errors.ErrSearchRateLimited) {
		t.Errorf("error = %v, want ErrSearchRateLimited", err)
	}
	if got := calls.Load(); got != tavilyMaxAttempts {
		t.Errorf("calls = %d, want %d", got, tavilyMaxAttempts)
	}
}

func TestTavily_MissingKey(t *testing.T) {
	_, err := NewTavily(" ").Search(context.Background(), "q")
	if !errors.Is(err, errors.ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}
