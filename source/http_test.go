package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	c "github.com/unkn0wn-root/fallcache/codec"
)

type user struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newHTTPSource(t *testing.T, url string, mod func(*HTTPConfig[user])) *HTTP[user] {
	t.Helper()
	cfg := HTTPConfig[user]{
		URL:   url,
		Codec: c.JSON[[]user]{},
	}
	if mod != nil {
		mod(&cfg)
	}
	h, err := NewHTTP[user](cfg)
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	return h
}

func TestHTTPFetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1","name":"Ann"},{"id":"2","name":"Bob"}]`))
	}))
	defer srv.Close()

	h := newHTTPSource(t, srv.URL, nil)
	got, err := h.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Ann" || got[1].Name != "Bob" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestHTTPNonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	h := newHTTPSource(t, srv.URL, nil)
	if _, err := h.FetchAll(context.Background()); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestHTTPBadBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	h := newHTTPSource(t, srv.URL, nil)
	if _, err := h.FetchAll(context.Background()); err == nil {
		t.Fatalf("expected error for undecodable body")
	}
}

func TestHTTPBodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"1","name":"Ann"},{"id":"2","name":"Bob"}]`))
	}))
	defer srv.Close()

	h := newHTTPSource(t, srv.URL, func(cfg *HTTPConfig[user]) { cfg.MaxBody = 8 })
	if _, err := h.FetchAll(context.Background()); err == nil {
		t.Fatalf("expected error when body exceeds cap")
	}
}

func TestHTTPSendsHeaders(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	h := newHTTPSource(t, srv.URL, func(cfg *HTTPConfig[user]) {
		cfg.Header = http.Header{"Authorization": []string{"Bearer tok"}}
	})
	if _, err := h.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("auth header not sent, got %q", gotAuth)
	}
}
