package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIEmbedder_EmbedBatch(t *testing.T) {
	var gotBody struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}
	var gotAuth string
	srv := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		// out of order on purpose; placement must follow "index"
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-ada-002",
			"data": [
				{"object": "embedding", "index": 1, "embedding": [0, 1]},
				{"object": "embedding", "index": 0, "embedding": [1, 0]}
			],
			"usage": {"prompt_tokens": 4, "total_tokens": 4}
		}`))
	})

	e, err := NewOpenAIEmbedder(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]float32{{1, 0}, {0, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if gotBody.Model != DefaultOpenAIModel {
		t.Errorf("model = %s", gotBody.Model)
	}
	if !reflect.DeepEqual(gotBody.Input, []string{"first", "second"}) {
		t.Errorf("input = %v", gotBody.Input)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if e.Model() != DefaultOpenAIModel {
		t.Errorf("Model() = %s", e.Model())
	}
}

func TestOpenAIEmbedder_ServerErrorNoRetry(t *testing.T) {
	calls := 0
	srv := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit"}}`))
	})
	e, err := NewOpenAIEmbedder(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.EmbedBatch(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestOpenAIEmbedder_CountMismatch(t *testing.T) {
	srv := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"m","data":[{"object":"embedding","index":0,"embedding":[1]}],"usage":{"prompt_tokens":1,"total_tokens":1}}`))
	})
	e, _ := NewOpenAIEmbedder(OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/"})
	if _, err := e.EmbedBatch(context.Background(), []string{"a", "b"}); !errors.Is(err, ErrResultCount) {
		t.Errorf("expected ErrResultCount, got %v", err)
	}
}

func TestOpenAIEmbedder_EmptyBatch(t *testing.T) {
	e, _ := NewOpenAIEmbedder(OpenAIConfig{APIKey: "k", BaseURL: "http://127.0.0.1:1/"})
	got, err := e.EmbedBatch(context.Background(), nil)
	if err != nil || got != nil {
		t.Errorf("empty batch: %v %v", got, err)
	}
}

func TestOpenAIEmbedder_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIEmbedder(OpenAIConfig{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}
