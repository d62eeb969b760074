package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultRecheckInterval is the polling fallback period. Events normally
// drive state changes; the ticker only covers missed or lost events.
const DefaultRecheckInterval = 2 * time.Second

// StateKind is the reconciled auth state.
type StateKind int

const (
	// StateUnknown exists only before the first recheck completes.
	// The navigator renders nothing for it.
	StateUnknown StateKind = iota
	StateUnauthenticated
	StateAuthenticated
)

func (k StateKind) String() string {
	switch k {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is the reconciler's output. Profile is only meaningful when
// Kind is StateAuthenticated.
type State struct {
	Kind    StateKind
	Profile Profile
}

// Reconciler derives the current auth state from the store. It rechecks
// on Start, on every bus event, and on a fixed interval as a safety net
// against missed events. Recheck is idempotent and fails closed: any
// missing or malformed store data yields StateUnauthenticated, never an
// error.
type Reconciler struct {
	store    *Store
	bus      *Bus
	interval time.Duration
	log      zerolog.Logger

	mu    sync.Mutex
	state State

	sub     Subscription
	cancel  context.CancelFunc
	done    chan struct{}
	changes chan struct{}
}

// NewReconciler wires a reconciler to the store and bus. A non-positive
// interval selects DefaultRecheckInterval.
func NewReconciler(store *Store, bus *Bus, interval time.Duration, log zerolog.Logger) *Reconciler {
	if interval <= 0 {
		interval = DefaultRecheckInterval
	}
	return &Reconciler{
		store:    store,
		bus:      bus,
		interval: interval,
		log:      log,
		state:    State{Kind: StateUnknown},
		changes:  make(chan struct{}, 1),
	}
}

// Start subscribes to the bus, performs the initial recheck synchronously
// so State is decided before Start returns, and launches the polling
// ticker. Call Stop to release both.
func (r *Reconciler) Start(ctx context.Context) {
	r.sub = r.bus.Subscribe(r.onEvent)
	r.Recheck()

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.poll(ctx)
}

// Stop releases the bus subscription and cancels the ticker. Safe to
// call once after Start; the reconciler must not be restarted.
func (r *Reconciler) Stop() {
	r.bus.Unsubscribe(r.sub)
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

// Recheck reads the store and transitions to Authenticated only when a
// complete, parsable session is present. It returns the resulting state.
func (r *Reconciler) Recheck() State {
	next := State{Kind: StateUnauthenticated}
	if sess, ok := r.store.Get(); ok {
		next = State{Kind: StateAuthenticated, Profile: sess.Profile}
	}
	r.setState(next)
	return next
}

// State returns the last reconciled state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Changes returns a coalescing signal channel: a receive means the state
// may have changed since the caller last read State(). Dropped signals
// are harmless because the ticker re-delivers.
func (r *Reconciler) Changes() <-chan struct{} {
	return r.changes
}

func (r *Reconciler) poll(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Recheck()
		}
	}
}

func (r *Reconciler) onEvent(ev Event) {
	switch ev.Type {
	case EventLogout:
		// Logout is unconditional; skip the store read.
		r.setState(State{Kind: StateUnauthenticated})
	case EventLogin:
		r.Recheck()
	}
}

func (r *Reconciler) setState(next State) {
	r.mu.Lock()
	changed := r.state != next
	r.state = next
	r.mu.Unlock()

	if !changed {
		return
	}
	r.log.Debug().Stringer("state", next.Kind).Str("user", next.Profile.Email).Msg("auth state changed")
	select {
	case r.changes <- struct{}{}:
	default:
	}
}
