package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("default base = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("example.com")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Host != "example.com" {
		t.Fatalf("bare host parsed as %q", u.String())
	}

	u, err = parseBaseURL("http://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatal("expected error for base without host")
	}
}

func TestClient_RefreshPrices(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath, gotContentType, gotUserAgent string
	var gotBody refreshRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id":"A","currentPriceText":"$15.00","originalPriceText":"$30.00"},
			{"id":"B","currentPriceText":"$9.99"}
		]`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	updates, err := c.RefreshPrices(context.Background(), []string{"A", "B"})
	if err != nil {
		t.Fatalf("RefreshPrices returned error: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/products/refresh" {
		t.Fatalf("request = %s %s, want POST /products/refresh", gotMethod, gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q", gotContentType)
	}
	if !strings.HasPrefix(gotUserAgent, "salecheck/") {
		t.Fatalf("User-Agent = %q", gotUserAgent)
	}
	if len(gotBody.IDs) != 2 || gotBody.IDs[0] != "A" || gotBody.IDs[1] != "B" {
		t.Fatalf("request ids = %#v", gotBody.IDs)
	}
	if len(updates) != 2 {
		t.Fatalf("updates = %#v, want 2 entries", updates)
	}
	if updates[0].OriginalPriceText != "$30.00" || updates[1].OriginalPriceText != "" {
		t.Fatalf("original prices = %q, %q", updates[0].OriginalPriceText, updates[1].OriginalPriceText)
	}
	if updates[1].CurrentPriceText != "$9.99" {
		t.Fatalf("current price = %q", updates[1].CurrentPriceText)
	}
}

func TestClient_ProductByURLEncodesQuery(t *testing.T) {
	t.Parallel()

	const page = "https://www.amazon.com/dp/B0TEST?ref=a&b=c"
	var gotURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/by_url" {
			http.NotFound(w, r)
			return
		}
		gotURL = r.URL.Query().Get("url")
		_ = json.NewEncoder(w).Encode(productEntry{
			ID:                " B0TEST ",
			Title:             "Kettle",
			CurrentPriceText:  "$20.00",
			OriginalPriceText: "$25.00",
		})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	rec, err := c.ProductByURL(context.Background(), page)
	if err != nil {
		t.Fatalf("ProductByURL returned error: %v", err)
	}
	if gotURL != page {
		t.Fatalf("server saw url=%q, want %q", gotURL, page)
	}
	if rec.ID != "B0TEST" || rec.Title != "Kettle" || rec.OriginalPriceText != "$25.00" {
		t.Fatalf("record = %#v", rec)
	}
	if rec.CustomTitle != nil || rec.IsUnreadDrop {
		t.Fatalf("resolved record should carry no user state: %#v", rec)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: ErrRemoteUnavailable,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			want: ErrRemoteUnavailable,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"id":`)
			},
			want: ErrMalformedResponse,
		},
		{
			name: "object instead of array",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"id":"A"}`)
			},
			want: ErrMalformedResponse,
		},
		{
			name: "null body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `null`)
			},
			want: ErrMalformedResponse,
		},
		{
			name: "trailing data",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `[{"id":"A","currentPriceText":"$15"}] trailing`)
			},
			want: ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c, err := NewClient(server.URL, time.Second)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			_, err = c.RefreshPrices(context.Background(), []string{"A"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClient_TimeoutIsRemoteUnavailable(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	c, err := NewClient(server.URL, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.RefreshPrices(context.Background(), []string{"A"})
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("error = %v, want ErrRemoteUnavailable", err)
	}
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	c, err := NewClient(addr, time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.ProductByURL(context.Background(), "https://www.amazon.com/dp/X"); !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("error = %v, want ErrRemoteUnavailable", err)
	}
}
