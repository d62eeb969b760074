// Package client provides the REST gateway to the parking-garage backend.
// Types mirror the backend wire protocol without importing backend packages.
package client

import (
	"strconv"
	"time"

	"github.com/parking-garage/tui/internal/session"
)

// LoginResponse is the backend's answer to POST /users/login. The shape
// is legacy: the user comes back as a display string plus flags, not as
// a profile object, and the token is absent when the backend runs in
// cookie mode.
type LoginResponse struct {
	Message   string `json:"message"`
	User      string `json:"user"`
	UserID    int    `json:"userId"`
	IsAdmin   bool   `json:"isAdmin"`
	Token     string `json:"token,omitempty"`
	LoginTime string `json:"loginTime,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// ProfileFromLogin builds the persisted profile snapshot from a login
// response. The response's user field is a display string that is not
// always the email, so the email the user typed is carried in as the
// authoritative value.
func ProfileFromLogin(resp *LoginResponse, email string) session.Profile {
	role := session.RoleUser
	if resp.IsAdmin {
		role = session.RoleAdmin
	}
	name := resp.User
	if name == "" {
		name = email
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return session.Profile{
		ID:        strconv.Itoa(resp.UserID),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Car is a registered vehicle.
type Car struct {
	ID           int    `json:"id"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Year         int    `json:"year,omitempty"`
	LicensePlate string `json:"licensePlate"`
	IsParked     bool   `json:"isParked,omitempty"`
}

// ParkingSpot is a single numbered spot on a garage floor.
type ParkingSpot struct {
	ID          int    `json:"id"`
	FloorNumber string `json:"floorNumber"`
	SpotNumber  string `json:"spotNumber"`
	IsOccupied  bool   `json:"isOccupied"`
	CarID       int    `json:"carId,omitempty"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
}

// ParkingHistory is one completed (or still running) parking session.
type ParkingHistory struct {
	ID                int     `json:"id"`
	StartTime         string  `json:"startTime"`
	EndTime           string  `json:"endTime,omitempty"`
	FloorNumber       string  `json:"floorNumber"`
	SpotNumber        string  `json:"spotNumber"`
	Fee               float64 `json:"fee"`
	CarID             int     `json:"carId"`
	CarBrand          string  `json:"carBrand,omitempty"`
	CarModel          string  `json:"carModel,omitempty"`
	LicensePlate      string  `json:"licensePlate,omitempty"`
	DurationFormatted string  `json:"durationFormatted,omitempty"`
}

// Invoice bills one parking-history entry.
type Invoice struct {
	ID               int             `json:"id"`
	InvoiceNumber    string          `json:"invoiceNumber"`
	IssueDate        string          `json:"issueDate"`
	DueDate          string          `json:"dueDate"`
	Total            float64         `json:"total"`
	IsPaid           bool            `json:"isPaid"`
	ParkingHistoryID int             `json:"parkingHistoryId"`
	ParkingHistory   *ParkingHistory `json:"parkingHistory,omitempty"`
}

// Reservation is a future claim on a spot.
type Reservation struct {
	ID          int             `json:"id"`
	StartTime   string          `json:"startTime"`
	EndTime     string          `json:"endTime"`
	Status      string          `json:"status"`
	TotalFee    float64         `json:"totalFee"`
	FloorNumber string          `json:"floorNumber"`
	SpotNumber  string          `json:"spotNumber"`
	Car         *ReservationCar `json:"car,omitempty"`
	CreatedAt   string          `json:"createdAt,omitempty"`
}

// ReservationCar is the trimmed car embedded in a reservation.
type ReservationCar struct {
	ID           int    `json:"id"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	LicensePlate string `json:"licensePlate"`
}

// StatisticsSummary aggregates the user's whole parking record.
type StatisticsSummary struct {
	TotalParkings    int     `json:"totalParkings"`
	TotalParkingTime int     `json:"totalParkingTime"` // seconds
	TotalFee         float64 `json:"totalFee"`
}

// CarStatistics aggregates per vehicle.
type CarStatistics struct {
	LicensePlate     string  `json:"licensePlate"`
	TotalParkings    int     `json:"totalParkings"`
	TotalParkingTime int     `json:"totalParkingTime"` // seconds
	TotalFee         float64 `json:"totalFee"`
}

// MonthlyStatistics aggregates per calendar month.
type MonthlyStatistics struct {
	Month        string  `json:"month"` // "2026-08"
	ParkingCount int     `json:"parkingCount"`
	TotalTime    int     `json:"totalTime"` // seconds
	TotalFee     float64 `json:"totalFee"`
}
