package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parking-garage/tui/internal/session"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	s, err := session.NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func storedSession() session.Session {
	return session.Session{
		Token: "t1",
		Profile: session.Profile{
			ID:    "1",
			Email: "driver@example.com",
			Name:  "Test Driver",
			Role:  session.RoleUser,
		},
	}
}

func newTestClient(t *testing.T, store *session.Store, mode AuthMode, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Mode: mode, Logger: zerolog.Nop()}, store)
}

func TestBearerTokenAttached(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set(storedSession()))

	var gotAuth string
	c := newTestClient(t, store, AuthBoth, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("[]"))
	})

	_, err := c.AvailableSpots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", gotAuth)
}

func TestNoBearerWhenStoreEmpty(t *testing.T) {
	store := newTestStore(t)

	var gotAuth string
	c := newTestClient(t, store, AuthBoth, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("[]"))
	})

	_, err := c.Cars(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestCookieCapturedAndReplayed(t *testing.T) {
	store := newTestStore(t)

	var secondCookie string
	calls := 0
	c := newTestClient(t, store, AuthBoth, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.SetCookie(w, &http.Cookie{Name: "garage_session", Value: "abc"})
		} else {
			secondCookie = r.Header.Get("Cookie")
		}
		w.Write([]byte("[]"))
	})

	ctx := context.Background()
	_, err := c.Cars(ctx)
	require.NoError(t, err)
	_, err = c.Cars(ctx)
	require.NoError(t, err)

	assert.Equal(t, "garage_session=abc", secondCookie)
}

func TestCookieNotSharedAcrossClients(t *testing.T) {
	store := newTestStore(t)

	var gotCookie string
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		http.SetCookie(w, &http.Cookie{Name: "garage_session", Value: "abc"})
		w.Write([]byte("[]"))
	}

	c1 := newTestClient(t, store, AuthBoth, handler)
	_, err := c1.Cars(context.Background())
	require.NoError(t, err)

	// A fresh client starts with no cookie: capture is per process
	// lifetime (here, per instance), never persisted.
	c2 := newTestClient(t, store, AuthBoth, handler)
	gotCookie = "unset"
	_, err = c2.Cars(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotCookie)
}

func TestUnauthorizedClearsSessionBeforeReturning(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set(storedSession()))

	c := newTestClient(t, store, AuthBoth, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/parking/spots/available" {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}
		w.Write([]byte("[]"))
	})

	_, err := c.AvailableSpots(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	// No explicit logout happened, yet the session is gone.
	_, ok := store.Get()
	assert.False(t, ok, "401 must clear the persisted session")
	assert.Empty(t, store.Token())

	// A request made with a fresh gateway attaches no token.
	var gotAuth string
	fresh := newTestClient(t, store, AuthBoth, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("[]"))
	})
	_, err = fresh.Cars(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestUnauthorizedDropsCookie(t *testing.T) {
	store := newTestStore(t)

	calls := 0
	var lastCookie string
	c := newTestClient(t, store, AuthBoth, func(w http.ResponseWriter, r *http.Request) {
		calls++
		lastCookie = r.Header.Get("Cookie")
		switch calls {
		case 1:
			http.SetCookie(w, &http.Cookie{Name: "garage_session", Value: "abc"})
			w.Write([]byte("[]"))
		case 2:
			http.Error(w, "expired", http.StatusUnauthorized)
		default:
			w.Write([]byte("[]"))
		}
	})

	ctx := context.Background()
	_, err := c.Cars(ctx)
	require.NoError(t, err)
	_, err = c.Cars(ctx)
	require.True(t, IsUnauthorized(err))
	_, err = c.Cars(ctx)
	require.NoError(t, err)

	assert.Empty(t, lastCookie, "cookie must be dropped after 401")
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   ErrorKind
	}{
		{"not found", http.StatusNotFound, KindNotFound},
		{"server error", http.StatusInternalServerError, KindServer},
		{"bad gateway", http.StatusBadGateway, KindServer},
		{"teapot", http.StatusTeapot, KindUnknown},
		{"conflict", http.StatusConflict, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			c := newTestClient(t, store, AuthBoth, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			})

			err := c.StartParking(context.Background(), 1, 2)
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.want, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestNetworkErrorClassified(t *testing.T) {
	store := newTestStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening any more

	c := New(Config{BaseURL: srv.URL, Logger: zerolog.Nop()}, store)
	_, err := c.Cars(context.Background())
	assert.True(t, IsNetwork(err))
}

func TestNonUnauthorizedFailureKeepsSession(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set(storedSession()))

	c := newTestClient(t, store, AuthBoth, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Cars(context.Background())
	require.Error(t, err)
	_, ok := store.Get()
	assert.True(t, ok, "only 401 clears the session")
}

func TestAuthModeTokenOnlySkipsCookie(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set(storedSession()))

	calls := 0
	var gotCookie, gotAuth string
	c := newTestClient(t, store, AuthToken, func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotCookie = r.Header.Get("Cookie")
		gotAuth = r.Header.Get("Authorization")
		http.SetCookie(w, &http.Cookie{Name: "garage_session", Value: "abc"})
		w.Write([]byte("[]"))
	})

	ctx := context.Background()
	_, err := c.Cars(ctx)
	require.NoError(t, err)
	_, err = c.Cars(ctx)
	require.NoError(t, err)

	assert.Empty(t, gotCookie, "token mode must not send the captured cookie")
	assert.Equal(t, "Bearer t1", gotAuth)
}

func TestAuthModeCookieOnlySkipsBearer(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set(storedSession()))

	var gotAuth string
	c := newTestClient(t, store, AuthCookie, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("[]"))
	})

	_, err := c.Cars(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestLoginDoesNotWriteStore(t *testing.T) {
	store := newTestStore(t)

	c := newTestClient(t, store, AuthBoth, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok","user":"Test Driver","userId":1,"isAdmin":false,"token":"t-new"}`))
	})

	resp, err := c.Login(context.Background(), "driver@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "t-new", resp.Token)

	_, ok := store.Get()
	assert.False(t, ok, "the gateway never writes a session; the login caller does")
}

func TestRequestIDSent(t *testing.T) {
	store := newTestStore(t)

	ids := map[string]bool{}
	c := newTestClient(t, store, AuthBoth, func(w http.ResponseWriter, r *http.Request) {
		ids[r.Header.Get("X-Request-ID")] = true
		w.Write([]byte("[]"))
	})

	ctx := context.Background()
	_, err := c.Cars(ctx)
	require.NoError(t, err)
	_, err = c.Cars(ctx)
	require.NoError(t, err)

	delete(ids, "")
	assert.Len(t, ids, 2, "every request carries a fresh X-Request-ID")
}

func TestTypedDecoding(t *testing.T) {
	store := newTestStore(t)

	c := newTestClient(t, store, AuthBoth, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/parking/spots/available":
			w.Write([]byte(`[{"id":3,"floorNumber":"2","spotNumber":"B12","isOccupied":false}]`))
		case "/statistics/summary":
			w.Write([]byte(`{"totalParkings":7,"totalParkingTime":5400,"totalFee":1250.5}`))
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()
	spots, err := c.AvailableSpots(ctx)
	require.NoError(t, err)
	require.Len(t, spots, 1)
	assert.Equal(t, "B12", spots[0].SpotNumber)
	assert.False(t, spots[0].IsOccupied)

	sum, err := c.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, sum.TotalParkings)
	assert.InDelta(t, 1250.5, sum.TotalFee, 0.001)
}

func TestProfileFromLogin(t *testing.T) {
	resp := &LoginResponse{User: "Test Driver", UserID: 42, IsAdmin: true, Token: "t"}
	p := ProfileFromLogin(resp, "driver@example.com")

	assert.Equal(t, "42", p.ID)
	assert.Equal(t, "driver@example.com", p.Email)
	assert.Equal(t, "Test Driver", p.Name)
	assert.Equal(t, session.RoleAdmin, p.Role)

	// Blank display name falls back to the typed email.
	p = ProfileFromLogin(&LoginResponse{UserID: 1}, "driver@example.com")
	assert.Equal(t, "driver@example.com", p.Name)
	assert.Equal(t, session.RoleUser, p.Role)
}
