package browserpool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidateExtractsMetadataOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head>
			<title>Example Page</title>
			<meta name="description" content="An example page">
			<link rel="icon" href="/favicon.ico">
		</head><body>hello</body></html>`))
	}))
	defer srv.Close()

	pool := New(2)
	result, err := pool.Validate(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid result, got %+v", result)
	}
	if result.Metadata.Title != "Example Page" {
		t.Fatalf("got title %q", result.Metadata.Title)
	}
	if result.Metadata.Description != "An example page" {
		t.Fatalf("got description %q", result.Metadata.Description)
	}
	if result.Metadata.Favicon != "/favicon.ico" {
		t.Fatalf("got favicon %q", result.Metadata.Favicon)
	}
}

func TestValidateClassifiesHTTP404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found"))
	}))
	defer srv.Close()

	pool := New(2)
	result, err := pool.Validate(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid || result.Reason != ReasonHTTP4xx {
		t.Fatalf("got %+v, want HTTP_4XX", result)
	}
}

func TestValidateDetectsErrorPageHeuristic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Access Denied</body></html>"))
	}))
	defer srv.Close()

	pool := New(2)
	result, err := pool.Validate(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid || result.Reason != ReasonErrorPageDetected {
		t.Fatalf("got %+v, want ERROR_PAGE_DETECTED", result)
	}
}

func TestValidateCachesResultPerURL(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`<html><head><title>Cached Page</title></head></html>`))
	}))
	defer srv.Close()

	pool := New(2)
	first, err := pool.Validate(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := pool.Validate(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 1 {
		t.Fatalf("got %d requests to server, want 1 (second Validate should hit cache)", hits)
	}
	if first.Metadata.Title != second.Metadata.Title {
		t.Fatalf("cached result mismatch: %+v vs %+v", first, second)
	}
}

func TestValidateClassifiesHTTP500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	pool := New(1)
	result, err := pool.Validate(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid || result.Reason != ReasonHTTP5xx {
		t.Fatalf("got %+v, want HTTP_5XX", result)
	}
}
