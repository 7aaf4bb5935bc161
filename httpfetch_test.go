package pinpoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestHTTPFetcher(t *testing.T) {
	t.Run("fetches and decodes a config", func(t *testing.T) {
		var gotPath, gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.EscapedPath()
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"samplingRate": 0.5, "variablesToLog": ["x"]}`))
		}))
		defer server.Close()

		fetch := HTTPFetcher(server.URL, "secret-token", server.Client())
		raw, err := fetch(context.Background(), "checkout/total")
		if err != nil {
			t.Fatalf("fetching : %v", err)
		}

		if gotPath != "/api/configs/checkout%2Ftotal" {
			t.Fatalf("wanted the key path-escaped\ngot: %s", gotPath)
		}
		if gotAuth != "Bearer secret-token" {
			t.Fatalf("wanted bearer auth\ngot: %q", gotAuth)
		}

		want := map[string]any{"samplingRate": 0.5, "variablesToLog": []any{"x"}}
		if !reflect.DeepEqual(raw, want) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, raw)
		}
	})

	t.Run("404 means no config, not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		fetch := HTTPFetcher(server.URL, "", server.Client())
		raw, err := fetch(context.Background(), "missing")
		if err != nil {
			t.Fatalf("wanted nil error for 404\ngot: %v", err)
		}
		if raw != nil {
			t.Fatalf("wanted nil config for 404\ngot: %v", raw)
		}
	})

	t.Run("server errors propagate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		fetch := HTTPFetcher(server.URL, "", server.Client())
		if _, err := fetch(context.Background(), "K"); err == nil {
			t.Fatalf("wanted an error for a 500\ngot: nil")
		}
	})

	t.Run("no auth header without an api key", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		fetch := HTTPFetcher(server.URL, "", server.Client())
		if _, err := fetch(context.Background(), "K"); err != nil {
			t.Fatalf("fetching : %v", err)
		}
		if gotAuth != "" {
			t.Fatalf("wanted no auth header\ngot: %q", gotAuth)
		}
	})

	t.Run("canceled context aborts the request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fetch := HTTPFetcher(server.URL, "", server.Client())
		if _, err := fetch(ctx, "K"); err == nil {
			t.Fatalf("wanted an error for a canceled context\ngot: nil")
		}
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}))
		defer server.Close()

		fetch := HTTPFetcher(server.URL, "", server.Client())
		if _, err := fetch(context.Background(), "K"); err == nil {
			t.Fatalf("wanted a decode error\ngot: nil")
		}
	})
}
