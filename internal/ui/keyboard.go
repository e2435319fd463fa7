package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/haystack-game/haystack-client/internal/game"
	"github.com/haystack-game/haystack-client/internal/geo"
)

// handleKey routes key presses by screen and phase. It returns whether
// the key was consumed; unconsumed keys fall through to the text input.
func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return true, m.quit()
	case tea.KeyEsc:
		return m.handleEsc()
	case tea.KeyEnter:
		return m.handleEnter()
	}

	if m.screen == ScreenRoom {
		return m.handleRoomKey(msg)
	}
	return false, nil
}

func (m *Model) quit() tea.Cmd {
	if m.joined != nil {
		m.joined.Leave()
	} else {
		m.transport.Close()
	}
	return tea.Quit
}

func (m *Model) handleEsc() (bool, tea.Cmd) {
	// Mid-game the room screen swallows ESC so a reflex press does not
	// abandon the session.
	if m.screen == ScreenRoom && m.sync != nil && m.sync.State().GameActive {
		return true, nil
	}
	return true, m.quit()
}

func (m *Model) handleEnter() (bool, tea.Cmd) {
	switch m.screen {
	case ScreenName:
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			return true, nil
		}
		m.playerName = name
		m.errText = ""
		m.screen = ScreenHome
		m.focusHomeInput()
		return true, nil

	case ScreenHome:
		code := normalizeRoomCode(m.input.Value())
		m.errText = ""
		m.screen = ScreenJoining
		m.input.Blur()
		return true, m.joinCmd(code, m.playerName)

	case ScreenRoom:
		return m.handleRoomEnter()
	}
	return false, nil
}

func (m *Model) handleRoomEnter() (bool, tea.Cmd) {
	switch m.machine.Phase() {
	case game.PhaseLobby:
		// A late joiner sits in the lobby phase while a game runs; Enter
		// must not start another one.
		if m.sync.State().GameActive {
			return true, nil
		}
		if err := m.machine.StartGame(m.sync.State().SettingRounds); err != nil {
			m.errText = fmt.Sprintf("Could not start the game: %v", err)
		}
		return true, nil

	case game.PhaseRoundPrepare:
		if err := m.machine.StartRound(); err != nil {
			m.errText = fmt.Sprintf("Could not start the round: %v", err)
		}
		return true, nil

	case game.PhaseRoundActive:
		point, err := parseLatLng(m.input.Value())
		if err != nil {
			m.errText = err.Error()
			return true, nil
		}
		m.errText = ""
		m.input.Reset()
		if err := m.machine.SubmitGuess(point); err != nil {
			m.errText = fmt.Sprintf("Could not submit the guess: %v", err)
		}
		return true, nil

	case game.PhaseRoundComplete:
		if err := m.machine.SendScores(); err != nil {
			m.errText = fmt.Sprintf("Could not publish the scores: %v", err)
		}
		return true, nil
	}
	return true, nil
}

func (m *Model) handleRoomKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if m.machine.Phase() == game.PhaseLobby && m.sync.IsAdmin() {
		switch key {
		case "+", "=":
			m.adjustRounds(1)
			return true, nil
		case "-", "_":
			m.adjustRounds(-1)
			return true, nil
		}
	}

	switch key {
	case "ctrl+f":
		_ = m.machine.FinishRound()
		return true, nil
	case "ctrl+x":
		_ = m.machine.CancelGame()
		return true, nil
	}
	return false, nil
}

func (m *Model) adjustRounds(delta int) {
	rounds := m.sync.State().SettingRounds + delta
	if rounds < 1 {
		rounds = 1
	}
	if rounds > 20 {
		rounds = 20
	}
	_ = m.machine.UpdateSettings(rounds)
}

// parseLatLng reads a "lat, lng" pair. Latitude must be a real
// latitude; longitude is unconstrained, the engine wraps it later.
func parseLatLng(s string) (geo.LatLng, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.LatLng{}, fmt.Errorf("enter a guess as: lat, lng")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.LatLng{}, fmt.Errorf("latitude %q is not a number", strings.TrimSpace(parts[0]))
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.LatLng{}, fmt.Errorf("longitude %q is not a number", strings.TrimSpace(parts[1]))
	}

	if lat < -90 || lat > 90 {
		return geo.LatLng{}, fmt.Errorf("latitude must be between -90 and 90")
	}
	return geo.LatLng{Lat: lat, Lng: lng}, nil
}
