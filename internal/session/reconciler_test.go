package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(t *testing.T, interval time.Duration) (*Reconciler, *Store, *Bus) {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	b := NewBus()
	return NewReconciler(s, b, interval, zerolog.Nop()), s, b
}

func TestRecheckEmptyStore(t *testing.T) {
	r, _, _ := newTestReconciler(t, time.Minute)

	st := r.Recheck()
	assert.Equal(t, StateUnauthenticated, st.Kind)
	assert.Equal(t, st, r.State())
}

func TestRecheckIdempotent(t *testing.T) {
	r, s, _ := newTestReconciler(t, time.Minute)
	require.NoError(t, s.Set(Session{Token: "t1", Profile: testProfile()}))

	first := r.Recheck()
	second := r.Recheck()
	assert.Equal(t, first, second, "recheck with no intervening mutation must be stable")
}

func TestRecheckFailsClosedOnPartialSession(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, tokenFile), []byte("t1"), 0o600))

	r := NewReconciler(s, NewBus(), time.Minute, zerolog.Nop())
	st := r.Recheck()
	assert.Equal(t, StateUnauthenticated, st.Kind, "token without profile is not a login")
}

func TestLoginEventTriggersRecheck(t *testing.T) {
	r, s, b := newTestReconciler(t, time.Minute)
	r.Start(context.Background())
	defer r.Stop()

	assert.Equal(t, StateUnauthenticated, r.State().Kind)

	p := testProfile()
	require.NoError(t, s.Set(Session{Token: "t1", Profile: p}))
	b.Publish(Event{Type: EventLogin, Profile: p})

	st := r.State()
	assert.Equal(t, StateAuthenticated, st.Kind)
	assert.Equal(t, "1", st.Profile.ID)
}

func TestLoginEventProfileIsAdvisory(t *testing.T) {
	r, s, b := newTestReconciler(t, time.Minute)
	r.Start(context.Background())
	defer r.Stop()

	// The event claims a different user than the store holds; the store
	// is the source of truth.
	stored := testProfile()
	require.NoError(t, s.Set(Session{Token: "t1", Profile: stored}))
	b.Publish(Event{Type: EventLogin, Profile: Profile{ID: "999", Email: "liar@example.com"}})

	st := r.State()
	require.Equal(t, StateAuthenticated, st.Kind)
	assert.Equal(t, stored.Email, st.Profile.Email)
}

func TestLogoutEventShortCircuits(t *testing.T) {
	r, s, b := newTestReconciler(t, time.Minute)
	require.NoError(t, s.Set(Session{Token: "t1", Profile: testProfile()}))
	r.Start(context.Background())
	defer r.Stop()
	require.Equal(t, StateAuthenticated, r.State().Kind)

	// The store still holds a session: logout is unconditional and must
	// not re-read it.
	b.Publish(Event{Type: EventLogout})
	assert.Equal(t, StateUnauthenticated, r.State().Kind)
}

func TestLoginThenLogoutSequence(t *testing.T) {
	r, s, b := newTestReconciler(t, time.Minute)
	r.Start(context.Background())
	defer r.Stop()

	p := testProfile()
	require.NoError(t, s.Set(Session{Token: "t1", Profile: p}))
	b.Publish(Event{Type: EventLogin, Profile: p})
	require.Equal(t, StateAuthenticated, r.State().Kind)

	require.NoError(t, s.Clear())
	b.Publish(Event{Type: EventLogout})

	assert.Equal(t, StateUnauthenticated, r.State().Kind)
	_, ok := s.Get()
	assert.False(t, ok, "store must hold no token and no user after logout")
	assert.Equal(t, StateUnauthenticated, r.Recheck().Kind)
}

func TestPollingConvergesWithoutEvents(t *testing.T) {
	r, s, _ := newTestReconciler(t, 10*time.Millisecond)
	r.Start(context.Background())
	defer r.Stop()
	require.Equal(t, StateUnauthenticated, r.State().Kind)

	// Mutate the store behind the reconciler's back, publish nothing.
	require.NoError(t, s.Set(Session{Token: "t1", Profile: testProfile()}))

	assert.Eventually(t, func() bool {
		return r.State().Kind == StateAuthenticated
	}, time.Second, 2*time.Millisecond, "polling must converge on external store changes")

	require.NoError(t, s.Clear())
	assert.Eventually(t, func() bool {
		return r.State().Kind == StateUnauthenticated
	}, time.Second, 2*time.Millisecond)
}

func TestStopReleasesSubscriptionAndTicker(t *testing.T) {
	r, s, b := newTestReconciler(t, 10*time.Millisecond)
	r.Start(context.Background())
	require.Equal(t, 1, b.subscriberCount())

	r.Stop()
	assert.Equal(t, 0, b.subscriberCount(), "Stop must release the bus subscription")

	// A stopped reconciler no longer reacts to store changes.
	require.NoError(t, s.Set(Session{Token: "t1", Profile: testProfile()}))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateUnauthenticated, r.State().Kind)
}

func TestChangesSignalCoalesces(t *testing.T) {
	r, s, b := newTestReconciler(t, time.Minute)
	r.Start(context.Background())
	defer r.Stop()

	// Initial recheck moved Unknown -> Unauthenticated.
	select {
	case <-r.Changes():
	default:
		t.Fatal("expected a change signal after Start")
	}

	p := testProfile()
	require.NoError(t, s.Set(Session{Token: "t1", Profile: p}))
	b.Publish(Event{Type: EventLogin, Profile: p})
	b.Publish(Event{Type: EventLogin, Profile: p}) // duplicate delivery is harmless

	select {
	case <-r.Changes():
	default:
		t.Fatal("expected a change signal after login")
	}
	select {
	case <-r.Changes():
		t.Fatal("unchanged state must not signal again")
	default:
	}
}
