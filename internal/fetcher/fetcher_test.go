package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotReferer = r.Header.Get("Referer")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	res, err := New().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if gotUA != browserUserAgent {
		t.Fatalf("User-Agent = %q, want browser identity", gotUA)
	}
	if gotAccept == "" || gotReferer == "" {
		t.Fatalf("missing Accept/Referer headers: accept=%q referer=%q", gotAccept, gotReferer)
	}
}

func TestGetRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("<html>recovered</html>"))
	}))
	defer srv.Close()

	res, err := New().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get should succeed on second attempt: %v", err)
	}
	if string(res.Body) != "<html>recovered</html>" {
		t.Fatalf("unexpected body: %q", res.Body)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("server calls = %d, want 2", n)
	}
}

func TestGetExhaustsRetriesAndReturnsFetchError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New().Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected error after retry exhaustion")
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
	if fe.URL != srv.URL {
		t.Fatalf("FetchError.URL = %q, want %q", fe.URL, srv.URL)
	}
	if n := atomic.LoadInt32(&calls); n != defaultRetries {
		t.Fatalf("server calls = %d, want %d", n, defaultRetries)
	}
}

func TestGetHonorsContextDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := New().Get(ctx, srv.URL)
	if err == nil {
		t.Fatalf("expected error with cancelled context")
	}
	// 不应把 1.2s 的退避等完
	if time.Since(start) > time.Second {
		t.Fatalf("Get did not abort backoff on context cancel")
	}
}
