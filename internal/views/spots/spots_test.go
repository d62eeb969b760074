package spots

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parking-garage/tui/internal/client"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func loadedModel() Model {
	m := New(nil)
	m, _ = m.Update(LoadedMsg{
		Spots: []client.ParkingSpot{
			{ID: 1, FloorNumber: "1", SpotNumber: "A1"},
			{ID: 2, FloorNumber: "1", SpotNumber: "A2", IsOccupied: true},
			{ID: 3, FloorNumber: "2", SpotNumber: "B1"},
		},
		Cars: []client.Car{
			{ID: 10, Brand: "Toyota", Model: "Corolla", LicensePlate: "AB-123"},
		},
	})
	return m
}

func TestSelectionWraps(t *testing.T) {
	m := loadedModel()

	for i := 0; i < 3; i++ {
		m, _ = m.Update(keyMsg("j"))
	}
	if m.spotIdx != 0 {
		t.Errorf("spotIdx after wrapping down = %d, want 0", m.spotIdx)
	}

	m, _ = m.Update(keyMsg("k"))
	if m.spotIdx != 2 {
		t.Errorf("spotIdx after wrapping up = %d, want 2", m.spotIdx)
	}
}

func TestChooseOccupiedSpotRejected(t *testing.T) {
	m := loadedModel()

	m, _ = m.Update(keyMsg("j")) // A2, occupied
	m, _ = m.Update(keyMsg("enter"))

	if m.step != stepSpots {
		t.Errorf("step = %d, want stepSpots", m.step)
	}
	if m.errMsg == "" {
		t.Error("choosing an occupied spot should set an error")
	}
}

func TestChooseFreeSpotAsksForCar(t *testing.T) {
	m := loadedModel()

	m, _ = m.Update(keyMsg("enter"))
	if m.step != stepCars {
		t.Fatalf("step = %d, want stepCars", m.step)
	}
	if m.chosenSpot.ID != 1 {
		t.Errorf("chosenSpot.ID = %d, want 1", m.chosenSpot.ID)
	}
	if !strings.Contains(m.View(), "Park which car") {
		t.Error("car picker should be rendered")
	}

	m, _ = m.Update(keyMsg("esc"))
	if m.step != stepSpots {
		t.Errorf("esc should return to the spot list, step = %d", m.step)
	}
}

func TestChooseWithoutCarsRejected(t *testing.T) {
	m := New(nil)
	m, _ = m.Update(LoadedMsg{
		Spots: []client.ParkingSpot{{ID: 1, FloorNumber: "1", SpotNumber: "A1"}},
	})

	m, _ = m.Update(keyMsg("enter"))
	if m.step != stepSpots {
		t.Errorf("step = %d, want stepSpots", m.step)
	}
	if m.errMsg == "" {
		t.Error("choosing a spot with no cars should set an error")
	}
}

func TestLoadErrorShown(t *testing.T) {
	m := New(nil)
	m, _ = m.Update(LoadedMsg{Err: &client.Error{Kind: client.KindNetwork, Message: "connection refused"}})

	if m.loading {
		t.Error("loading should be cleared after an error")
	}
	if !strings.Contains(m.View(), "connection refused") {
		t.Error("load error should be rendered")
	}
}

func TestSelectionClampedAfterReload(t *testing.T) {
	m := loadedModel()
	m.spotIdx = 2

	m, _ = m.Update(LoadedMsg{
		Spots: []client.ParkingSpot{{ID: 1, FloorNumber: "1", SpotNumber: "A1"}},
	})
	if m.spotIdx != 0 {
		t.Errorf("spotIdx after shrinking reload = %d, want 0", m.spotIdx)
	}
}
