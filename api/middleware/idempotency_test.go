package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type fakeIdempotencyStore struct {
	values map[string]string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{values: map[string]string{}}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "test:idem:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func idempotentRouter(store *fakeIdempotencyStore, hits *atomic.Int64) http.Handler {
	r := chi.NewRouter()
	r.Use(Idempotency(store, time.Hour, authTestLogger()))
	r.Post("/api/v1/orders", func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":1}}`))
	})
	return r
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	var hits atomic.Int64
	router := idempotentRouter(store, &hits)

	body := `{"title":"vinyl banner"}`
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		req.Header.Set("Idempotency-Key", "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := send()
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}

	second := send()
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatal("replay must return the original body")
	}
	if hits.Load() != 1 {
		t.Fatalf("handler must run once, ran %d times", hits.Load())
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newFakeIdempotencyStore()
	var hits atomic.Int64
	router := idempotentRouter(store, &hits)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"title":"a"}`))
	req.Header.Set("Idempotency-Key", "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"title":"b"}`))
	req.Header.Set("Idempotency-Key", "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key, got %d", w.Code)
	}
}

func TestIdempotencySkipsWithoutKey(t *testing.T) {
	store := newFakeIdempotencyStore()
	var hits atomic.Int64
	router := idempotentRouter(store, &hits)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"title":"a"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
	}
	if hits.Load() != 2 {
		t.Fatalf("handler must run per request without a key, ran %d times", hits.Load())
	}
}
