package embedding

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperjump/resumerank/internal/contentkey"
	"github.com/hyperjump/resumerank/internal/storage"
)

func newSQLiteStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "data", "embeddings.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCachedEmbedder_OrderWithMixedHits(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEmbedder(8)
	ce := NewCachedEmbedder(mock, newSQLiteStore(t))

	// warm the cache with the middle input only
	if _, err := ce.GetEmbeddings(ctx, []string{"b"}, true); err != nil {
		t.Fatal(err)
	}
	got, err := ce.GetEmbeddings(ctx, []string{"a", "b", "c"}, true)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := mock.EmbedBatch(ctx, []string{"a", "b", "c"})
	if !reflect.DeepEqual(got, want) {
		t.Error("output vector i should correspond to input i")
	}
	batches := mock.Batches()
	if len(batches) != 3 {
		t.Fatalf("expected 3 provider calls (warm, misses, reference), got %d", len(batches))
	}
	if !reflect.DeepEqual(batches[1], []string{"a", "c"}) {
		t.Errorf("only misses should be sent, in original order; got %v", batches[1])
	}
}

func TestCachedEmbedder_SecondCallIsFree(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEmbedder(4)
	ce := NewCachedEmbedder(mock, newSQLiteStore(t))
	inputs := []string{"Engineer at Acme.", "Manager at Initech.\nShipped things."}

	first, err := ce.GetEmbeddings(ctx, inputs, true)
	if err != nil {
		t.Fatal(err)
	}
	calls := mock.Calls()
	second, err := ce.GetEmbeddings(ctx, inputs, true)
	if err != nil {
		t.Fatal(err)
	}
	if mock.Calls() != calls {
		t.Errorf("second call made %d remote calls, want 0", mock.Calls()-calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("cached vectors should equal computed vectors")
	}
	st := ce.Stats()
	if st.Hits != 2 || st.Misses != 2 || st.RemoteCalls != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestCachedEmbedder_DuplicateInputsOneRemoteText(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEmbedder(4)
	ce := NewCachedEmbedder(mock, newSQLiteStore(t))

	got, err := ce.GetEmbeddings(ctx, []string{"Engineer at Acme", "Engineer at Acme"}, true)
	if err != nil {
		t.Fatal(err)
	}
	batches := mock.Batches()
	if len(batches) != 1 || len(batches[0]) != 1 {
		t.Fatalf("expected one call with one text, got %v", batches)
	}
	if !reflect.DeepEqual(got[0], got[1]) {
		t.Error("identical inputs should produce equal outputs")
	}
}

func TestCachedEmbedder_DuplicateOutputsDoNotAlias(t *testing.T) {
	ctx := context.Background()
	ce := NewCachedEmbedder(NewMockEmbedder(4), newSQLiteStore(t))

	got, err := ce.GetEmbeddings(ctx, []string{"Engineer at Acme", "Engineer at Acme"}, true)
	if err != nil {
		t.Fatal(err)
	}
	before := got[1][0]
	got[0][0] = 42
	if got[1][0] != before {
		t.Errorf("mutating out[0] changed out[1]: %v", got[1])
	}

	again, err := ce.GetEmbeddings(ctx, []string{"Engineer at Acme"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if again[0][0] != before {
		t.Errorf("mutating a result changed the cached vector: %v", again[0])
	}
}

func TestCachedEmbedder_NormalizesBeforeHashingAndSending(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEmbedder(4)
	store := newSQLiteStore(t)
	ce := NewCachedEmbedder(mock, store)

	if _, err := ce.GetEmbeddings(ctx, []string{"  Engineer\nat Acme \n"}, true); err != nil {
		t.Fatal(err)
	}
	if b := mock.Batches(); b[0][0] != "Engineer at Acme" {
		t.Errorf("provider received %q", b[0][0])
	}
	if _, ok, _ := store.Lookup(ctx, contentkey.Key("Engineer at Acme")); !ok {
		t.Error("entry should be stored under the normalized key")
	}
	if _, err := ce.GetEmbeddings(ctx, []string{"Engineer at Acme"}, true); err != nil {
		t.Fatal(err)
	}
	if mock.Calls() != 1 {
		t.Error("whitespace variant should hit the cache")
	}
}

func TestCachedEmbedder_CacheDisabled(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEmbedder(4)
	store := newSQLiteStore(t)
	ce := NewCachedEmbedder(mock, store)

	if _, err := ce.GetEmbeddings(ctx, []string{"q", "q"}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := ce.GetEmbeddings(ctx, []string{"q"}, false); err != nil {
		t.Fatal(err)
	}
	if mock.Calls() != 2 {
		t.Errorf("every uncached call should reach the provider, got %d calls", mock.Calls())
	}
	if b := mock.Batches(); len(b[0]) != 2 {
		t.Errorf("uncached inputs are all misses, got batch %v", b[0])
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Errorf("uncached calls must not write the cache, found %d entries", n)
	}
}

func TestCachedEmbedder_NilStore(t *testing.T) {
	mock := NewMockEmbedder(4)
	ce := NewCachedEmbedder(mock, nil)
	got, err := ce.GetEmbeddings(context.Background(), []string{"x"}, true)
	if err != nil || len(got) != 1 {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestCachedEmbedder_EmptyInputs(t *testing.T) {
	mock := NewMockEmbedder(4)
	ce := NewCachedEmbedder(mock, newSQLiteStore(t))
	for _, useCache := range []bool{true, false} {
		got, err := ce.GetEmbeddings(context.Background(), nil, useCache)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("expected no vectors, got %d", len(got))
		}
	}
	if mock.Calls() != 0 {
		t.Errorf("empty input should make no remote call, got %d", mock.Calls())
	}
}

func TestCachedEmbedder_Batching(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEmbedder(4)
	ce := NewCachedEmbedder(mock, newSQLiteStore(t), WithMaxBatchSize(2))

	inputs := []string{"a", "b", "c", "d", "e"}
	got, err := ce.GetEmbeddings(ctx, inputs, true)
	if err != nil {
		t.Fatal(err)
	}
	batches := mock.Batches()
	if len(batches) != 3 {
		t.Fatalf("expected 3 chunks, got %v", batches)
	}
	if !reflect.DeepEqual(batches[2], []string{"e"}) {
		t.Errorf("last chunk = %v", batches[2])
	}
	want, _ := NewMockEmbedder(4).EmbedBatch(ctx, inputs)
	if !reflect.DeepEqual(got, want) {
		t.Error("chunked results should be concatenated in order")
	}
}

func TestCachedEmbedder_ProviderErrorPropagates(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEmbedder(4)
	store := newSQLiteStore(t)
	ce := NewCachedEmbedder(mock, store)
	boom := errors.New("rate limited")
	mock.FailWith(boom)

	if _, err := ce.GetEmbeddings(ctx, []string{"a", "b"}, true); !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Errorf("failed batch must not write partial results, found %d", n)
	}
}

type shortEmbedder struct{ *MockEmbedder }

func (s shortEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out, err := s.MockEmbedder.EmbedBatch(ctx, texts)
	if err != nil || len(out) == 0 {
		return out, err
	}
	return out[:len(out)-1], nil
}

func TestCachedEmbedder_ResultCountMismatch(t *testing.T) {
	ce := NewCachedEmbedder(shortEmbedder{NewMockEmbedder(4)}, newSQLiteStore(t))
	_, err := ce.GetEmbeddings(context.Background(), []string{"a", "b"}, true)
	if !errors.Is(err, ErrResultCount) {
		t.Errorf("expected ErrResultCount, got %v", err)
	}
}

type namedEmbedder struct {
	*MockEmbedder
	name string
}

func (n namedEmbedder) Model() string { return n.name }

func TestCachedEmbedder_ModelMismatch(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	old := namedEmbedder{NewMockEmbedder(4), "model-v1"}
	if _, err := NewCachedEmbedder(old, store).GetEmbeddings(ctx, []string{"x"}, true); err != nil {
		t.Fatal(err)
	}

	t.Run("lenient serves stale entry", func(t *testing.T) {
		cur := namedEmbedder{NewMockEmbedder(4), "model-v2"}
		ce := NewCachedEmbedder(cur, store)
		if _, err := ce.GetEmbeddings(ctx, []string{"x"}, true); err != nil {
			t.Fatal(err)
		}
		if cur.Calls() != 0 {
			t.Error("lenient mode should serve the cached vector")
		}
		if ce.Stats().StaleHits != 1 {
			t.Errorf("stale hit should be counted: %+v", ce.Stats())
		}
	})

	t.Run("strict re-embeds", func(t *testing.T) {
		cur := namedEmbedder{NewMockEmbedder(4), "model-v2"}
		ce := NewCachedEmbedder(cur, store, WithStrictModel(true))
		if _, err := ce.GetEmbeddings(ctx, []string{"x"}, true); err != nil {
			t.Fatal(err)
		}
		if cur.Calls() != 1 {
			t.Errorf("strict mode should re-embed, got %d calls", cur.Calls())
		}
		e, _, _ := store.Lookup(ctx, contentkey.Key("x"))
		if e.Model != "model-v2" {
			t.Errorf("entry should be rewritten with the new model, got %q", e.Model)
		}
	})
}
