package sessions

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(srv.URL, 2*time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create session client: %v", err)
	}
	return client
}

func TestResolve_Authenticated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions/verify" {
			t.Errorf("path = %s, want /sessions/verify", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("authorization header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userId":"u1","name":"Jane Doe","email":"jane@example.com","isAdmin":true}`))
	})

	session, err := client.Resolve(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if session.UserID != "u1" || session.Name != "Jane Doe" || !session.IsAdmin {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestResolve_EmptyTokenIsAnonymous(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("provider should not be called for empty token")
	})

	if _, err := client.Resolve(context.Background(), "  "); err != ErrAnonymous {
		t.Fatalf("err = %v, want ErrAnonymous", err)
	}
}

func TestResolve_RejectedToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	})

	if _, err := client.Resolve(context.Background(), "expired"); err != ErrAnonymous {
		t.Fatalf("err = %v, want ErrAnonymous", err)
	}
}

func TestResolve_MissingUserIDIsAnonymous(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"ghost"}`))
	})

	if _, err := client.Resolve(context.Background(), "tok-2"); err != ErrAnonymous {
		t.Fatalf("err = %v, want ErrAnonymous", err)
	}
}

func TestResolve_ProviderFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := client.Resolve(context.Background(), "tok-3"); err == nil || err == ErrAnonymous {
		t.Fatalf("err = %v, want transport failure", err)
	}
}
