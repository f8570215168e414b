package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPlayerFromLocation(t *testing.T) {
	cases := []struct {
		loc  string
		want PlayerID
		ok   bool
	}{
		{"/player/abc", "abc", true},
		{"http://host:3000/player/xyz/", "xyz", true},
		{"/player/", "", false},
		{"/other/abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := playerFromLocation(tc.loc)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: expected %q, got %q (%v)", tc.loc, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error, got %q", tc.loc, got)
		}
	}
}

func TestJoinNavigatorPublishesSession(t *testing.T) {
	var joins int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		joins++
		id := "first"
		if joins > 1 {
			id = "second"
		}
		w.Header().Set("Location", "/player/"+id)
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	nav, err := NewJoinNavigator(srv.URL, Viewport{Width: 100, Height: 40}, time.Second)
	if err != nil {
		t.Fatalf("new navigator: %v", err)
	}
	ctx := context.Background()

	sess, err := nav.Join(ctx)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if sess.PlayerID != "first" || sess.Viewport.Width != 100 {
		t.Fatalf("unexpected session %+v", sess)
	}

	if err := nav.Navigate(ctx, "/"); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	select {
	case next := <-nav.Sessions():
		if next.PlayerID != "second" {
			t.Fatalf("expected new player after navigation, got %q", next.PlayerID)
		}
	default:
		t.Fatalf("expected a published session")
	}
}

func TestJoinNavigatorRequiresRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	nav, err := NewJoinNavigator(srv.URL, Viewport{}, time.Second)
	if err != nil {
		t.Fatalf("new navigator: %v", err)
	}
	if err := nav.Navigate(context.Background(), "/"); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport failure for non-redirect, got %v", err)
	}
	select {
	case s := <-nav.Sessions():
		t.Fatalf("unexpected session %+v", s)
	default:
	}
}
