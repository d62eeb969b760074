package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/parking-garage/tui/internal/session"
)

// AuthMode selects which credential the gateway attaches. The backend's
// auth scheme is decided once at startup, not probed per request.
type AuthMode string

const (
	AuthToken  AuthMode = "token"  // bearer token only
	AuthCookie AuthMode = "cookie" // captured session cookie only
	AuthBoth   AuthMode = "both"   // attach whichever is available
)

// DefaultTimeout bounds every request; there are no retries.
const DefaultTimeout = 10 * time.Second

// Config carries the gateway's startup knobs.
type Config struct {
	BaseURL string        // e.g. "http://192.168.0.15:5025/api"
	Mode    AuthMode      // defaults to AuthBoth
	Timeout time.Duration // defaults to DefaultTimeout
	Logger  zerolog.Logger
}

// Client makes REST calls to the parking-garage backend with credentials
// attached. It reads the bearer token from the session store on every
// request, keeps any captured session cookie in process memory only, and
// clears both when the backend answers 401. It never writes a session:
// login and logout callers own the store.
type Client struct {
	baseURL string
	mode    AuthMode
	store   *session.Store
	client  *http.Client
	log     zerolog.Logger

	mu     sync.Mutex
	cookie string // latest Set-Cookie value, not persisted
}

// New creates a gateway over the given session store.
func New(cfg Config, store *session.Store) *Client {
	if cfg.Mode == "" {
		cfg.Mode = AuthBoth
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		mode:    cfg.Mode,
		store:   store,
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     cfg.Logger,
	}
}

// --- Auth ---

// Login posts credentials. The caller persists the session and publishes
// the login event; the gateway itself stores nothing on success.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/users/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the backend to end the session. The caller clears the
// store regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/users/logout", nil, nil)
}

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/register", body, nil)
}

// --- Users ---

// CurrentUser fetches the caller's profile.
func (c *Client) CurrentUser(ctx context.Context) (*session.Profile, error) {
	var p session.Profile
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UserByID fetches another user's profile. Admin-only on the backend.
func (c *Client) UserByID(ctx context.Context, id int) (*session.Profile, error) {
	var p session.Profile
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile replaces the caller's profile fields.
func (c *Client) UpdateProfile(ctx context.Context, p session.Profile) error {
	return c.do(ctx, http.MethodPut, "/users/profile", p, nil)
}

// --- Cars ---

// Cars lists the caller's vehicles.
func (c *Client) Cars(ctx context.Context) ([]Car, error) {
	var out []Car
	if err := c.do(ctx, http.MethodGet, "/cars", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddCar registers a vehicle.
func (c *Client) AddCar(ctx context.Context, car Car) (*Car, error) {
	var out Car
	if err := c.do(ctx, http.MethodPost, "/cars", car, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCar edits a vehicle.
func (c *Client) UpdateCar(ctx context.Context, id int, car Car) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/cars/%d", id), car, nil)
}

// DeleteCar removes a vehicle.
func (c *Client) DeleteCar(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cars/%d", id), nil, nil)
}

// --- Parking ---

// Spots lists every spot in the garage.
func (c *Client) Spots(ctx context.Context) ([]ParkingSpot, error) {
	var out []ParkingSpot
	if err := c.do(ctx, http.MethodGet, "/parking/spots", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AvailableSpots lists unoccupied spots.
func (c *Client) AvailableSpots(ctx context.Context) ([]ParkingSpot, error) {
	var out []ParkingSpot
	if err := c.do(ctx, http.MethodGet, "/parking/spots/available", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartParking puts a car on a spot.
func (c *Client) StartParking(ctx context.Context, carID, spotID int) error {
	body := map[string]int{"carId": carID, "parkingSpotId": spotID}
	return c.do(ctx, http.MethodPost, "/parking/start", body, nil)
}

// EndParking takes a car off its spot.
func (c *Client) EndParking(ctx context.Context, carID int) error {
	body := map[string]int{"carId": carID}
	return c.do(ctx, http.MethodPost, "/parking/end", body, nil)
}

// ParkedCars lists the caller's currently parked cars.
func (c *Client) ParkedCars(ctx context.Context) ([]Car, error) {
	var out []Car
	if err := c.do(ctx, http.MethodGet, "/parking/my", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParkingStatus fetches the spot a car occupies.
func (c *Client) ParkingStatus(ctx context.Context, carID int) (*ParkingSpot, error) {
	var out ParkingSpot
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/parking/status/%d", carID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Statistics ---

// History fetches the caller's parking history.
func (c *Client) History(ctx context.Context) ([]ParkingHistory, error) {
	var out []ParkingHistory
	if err := c.do(ctx, http.MethodGet, "/statistics/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary fetches the all-time aggregate.
func (c *Client) Summary(ctx context.Context) (*StatisticsSummary, error) {
	var out StatisticsSummary
	if err := c.do(ctx, http.MethodGet, "/statistics/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StatisticsByCar fetches per-vehicle aggregates.
func (c *Client) StatisticsByCar(ctx context.Context) ([]CarStatistics, error) {
	var out []CarStatistics
	if err := c.do(ctx, http.MethodGet, "/statistics/by-car", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MonthlyStatistics fetches per-month aggregates.
func (c *Client) MonthlyStatistics(ctx context.Context) ([]MonthlyStatistics, error) {
	var out []MonthlyStatistics
	if err := c.do(ctx, http.MethodGet, "/statistics/monthly", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Invoices ---

// Invoices lists the caller's invoices.
func (c *Client) Invoices(ctx context.Context) ([]Invoice, error) {
	var out []Invoice
	if err := c.do(ctx, http.MethodGet, "/invoices", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Invoice fetches one invoice.
func (c *Client) Invoice(ctx context.Context, id int) (*Invoice, error) {
	var out Invoice
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/invoices/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Reservations ---

// MyReservations lists the caller's reservations.
func (c *Client) MyReservations(ctx context.Context) ([]Reservation, error) {
	var out []Reservation
	if err := c.do(ctx, http.MethodGet, "/reservations/my", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateReservation claims a spot for a time window.
func (c *Client) CreateReservation(ctx context.Context, carID, spotID int, start, end time.Time) (*Reservation, error) {
	body := map[string]any{
		"carId":         carID,
		"parkingSpotId": spotID,
		"startTime":     start.UTC().Format(time.RFC3339),
		"endTime":       end.UTC().Format(time.RFC3339),
	}
	var out Reservation
	if err := c.do(ctx, http.MethodPost, "/reservations", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reservation fetches one reservation.
func (c *Client) Reservation(ctx context.Context, id int) (*Reservation, error) {
	var out Reservation
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/reservations/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelReservation revokes a reservation.
func (c *Client) CancelReservation(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/reservations/%d", id), nil, nil)
}

// --- Plumbing ---

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindUnknown, Op: op, Err: err}
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return &Error{Kind: KindUnknown, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.attachCredentials(req)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Str("op", op).Err(err).Msg("request failed")
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.captureCookie(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		// The backend rejected our credentials: drop the local session
		// before the caller hears about it.
		c.dropSession(op)
		return &Error{Kind: KindUnauthorized, Status: resp.StatusCode, Op: op, Message: readBody(resp)}
	}
	if resp.StatusCode >= 300 {
		msg := readBody(resp)
		c.log.Warn().Str("op", op).Int("status", resp.StatusCode).Msg("request rejected")
		return &Error{Kind: classify(resp.StatusCode), Status: resp.StatusCode, Op: op, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindUnknown, Status: resp.StatusCode, Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

func (c *Client) attachCredentials(req *http.Request) {
	if c.mode == AuthToken || c.mode == AuthBoth {
		if token := c.store.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if c.mode == AuthCookie || c.mode == AuthBoth {
		c.mu.Lock()
		cookie := c.cookie
		c.mu.Unlock()
		if cookie != "" {
			req.Header.Set("Cookie", cookie)
		}
	}
}

// captureCookie keeps the latest session cookie in memory for reuse
// within this process. It is never persisted.
func (c *Client) captureCookie(resp *http.Response) {
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return
	}
	pairs := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		pairs = append(pairs, ck.Name+"="+ck.Value)
	}
	c.mu.Lock()
	c.cookie = strings.Join(pairs, "; ")
	c.mu.Unlock()
}

// dropSession clears the in-memory cookie and the persisted session.
// This is the sole automatic session-termination path besides an
// explicit logout.
func (c *Client) dropSession(op string) {
	c.mu.Lock()
	c.cookie = ""
	c.mu.Unlock()
	if err := c.store.Clear(); err != nil {
		c.log.Error().Str("op", op).Err(err).Msg("clearing session after 401 failed")
		return
	}
	c.log.Info().Str("op", op).Msg("session cleared after 401")
}

func readBody(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return strings.TrimSpace(string(data))
}
