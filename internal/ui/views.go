package ui

import (
	"fmt"
	"strings"

	"github.com/haystack-game/haystack-client/internal/game"
	"github.com/haystack-game/haystack-client/internal/protocol"
	"github.com/haystack-game/haystack-client/internal/room"
)

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.screen {
	case ScreenConnecting:
		content = m.connectingView()
	case ScreenName:
		content = m.nameView()
	case ScreenHome:
		content = m.homeView()
	case ScreenJoining:
		content = m.joiningView()
	case ScreenRoom:
		content = m.roomView()
	}

	var b strings.Builder
	if notices := m.noticesView(); notices != "" {
		b.WriteString(notices)
		b.WriteString("\n\n")
	}
	b.WriteString(content)
	if m.errText != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(m.errText))
	}
	return docStyle.Render(b.String())
}

func (m *Model) noticesView() string {
	if len(m.notices) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.notices))
	for _, n := range m.notices {
		switch n.level {
		case room.NoticeSuccess:
			lines = append(lines, successStyle.Render("✔ "+n.text))
		case room.NoticeWarning:
			lines = append(lines, warningStyle.Render("! "+n.text))
		case room.NoticeDanger:
			lines = append(lines, dangerStyle.Render("✖ "+n.text))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) connectingView() string {
	return titleStyle("Haystack") + "\n\nConnecting to the server..."
}

func (m *Model) nameView() string {
	var b strings.Builder
	b.WriteString(titleStyle("Haystack"))
	b.WriteString("\n\nWhat should we call you?\n\n")
	b.WriteString(m.input.View())
	b.WriteString(promptStyle.Render("\nEnter to continue · ESC to quit"))
	return b.String()
}

func (m *Model) homeView() string {
	var b strings.Builder
	b.WriteString(titleStyle("Haystack"))
	b.WriteString(fmt.Sprintf("\n\nHello, %s!\n\n", viewerStyle.Render(m.playerName)))
	b.WriteString("Enter a room code to join friends, or press Enter\nwith an empty field to open a new room.\n\n")
	b.WriteString(m.input.View())
	b.WriteString(promptStyle.Render("\nESC to quit"))
	return b.String()
}

func (m *Model) joiningView() string {
	return titleStyle("Haystack") + "\n\nJoining..."
}

func (m *Model) roomView() string {
	switch m.machine.Phase() {
	case game.PhaseRoundPrepare:
		return m.prepareView()
	case game.PhaseRoundActive:
		return m.guessView()
	case game.PhaseRoundComplete:
		return m.revealView()
	case game.PhaseShowScores:
		return m.scoresView()
	default:
		// A game running with the machine still in the lobby means this
		// client joined mid-game and is waiting for the next lifecycle
		// message.
		if m.sync.State().GameActive {
			return m.gameInProgressView()
		}
		return m.lobbyView()
	}
}

func (m *Model) gameInProgressView() string {
	var b strings.Builder
	b.WriteString(titleStyle("Room " + m.joined.ID))
	b.WriteString("\n\nA game is in progress.\n\n")
	b.WriteString(m.rosterView())
	b.WriteString("\n")
	if m.sync.IsInGame() {
		b.WriteString(promptStyle.Render("Rejoining the round..."))
	} else {
		b.WriteString(promptStyle.Render("You can play from the next game · ESC is disabled mid-game"))
	}
	return b.String()
}

func (m *Model) lobbyView() string {
	state := m.sync.State()

	var b strings.Builder
	b.WriteString(titleStyle("Room " + m.joined.ID))
	b.WriteString("\n\n")
	b.WriteString(m.rosterView())
	b.WriteString(fmt.Sprintf("\n\nRounds: %d\n", state.SettingRounds))

	if m.sync.IsAdmin() {
		b.WriteString(promptStyle.Render("+/- rounds · Enter to start the game · ESC to quit"))
	} else {
		b.WriteString(promptStyle.Render("Waiting for the admin to start · ESC to quit"))
	}
	return b.String()
}

func (m *Model) rosterView() string {
	players := m.sync.Players()
	lines := make([]string, 0, len(players))
	for _, p := range players {
		lines = append(lines, m.rosterLine(p))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) rosterLine(p protocol.PlayerState) string {
	var marks []string
	if p.Admin {
		marks = append(marks, AdminIcon)
	}
	if p.DisconnectedCurrently {
		marks = append(marks, DisconnectIcon)
	}
	if m.sync.State().GameActive && p.InGame {
		if p.RoundDone {
			marks = append(marks, DoneIcon)
		} else {
			marks = append(marks, PendingIcon)
		}
	}

	name := p.Name
	if p.ID == m.sync.SessionID() {
		name = viewerStyle.Render(name + " (you)")
	}

	line := fmt.Sprintf("%-24s %5d pts", name, p.Score)
	if len(marks) > 0 {
		line += "  " + strings.Join(marks, " ")
	}
	if p.DisconnectedCurrently {
		line = subtleStyle.Render(line)
	}
	return line
}

func (m *Model) prepareView() string {
	state := m.sync.State()

	var b strings.Builder
	b.WriteString(titleStyle(fmt.Sprintf("Round %d of %d", m.currentRound, state.SettingRounds)))
	b.WriteString("\n\n")
	b.WriteString(m.rosterView())
	b.WriteString("\n")
	if m.sync.IsAdmin() && m.sync.IsInGame() {
		b.WriteString(promptStyle.Render("Enter to start the round · Ctrl+X to cancel the game"))
	} else {
		b.WriteString(promptStyle.Render("Waiting for the round to start..."))
	}
	return b.String()
}

func (m *Model) guessView() string {
	state := m.sync.State()

	var b strings.Builder
	b.WriteString(titleStyle("Find: " + state.CurrentTarget))
	b.WriteString("\n\n")
	b.WriteString(m.rosterView())
	b.WriteString("\n\nWhere is it?\n\n")
	b.WriteString(m.input.View())

	if pending, ok := m.machine.PendingGuess(); ok {
		b.WriteString(subtleStyle.Render(
			fmt.Sprintf("\nYour marker: %.4f, %.4f (submit again to move it)", pending.Lat, pending.Lng)))
	}

	hint := "Enter to guess"
	if m.sync.IsAdmin() && m.sync.IsInGame() {
		hint += " · Ctrl+F to end the round · Ctrl+X to cancel the game"
	}
	b.WriteString(promptStyle.Render("\n" + hint))
	return b.String()
}

func (m *Model) revealView() string {
	var b strings.Builder
	b.WriteString(titleStyle(m.reveal.Target))
	b.WriteString(fmt.Sprintf("\n\nwas at %.4f, %.4f\n\n",
		m.reveal.TargetLatLng.Lat, m.reveal.TargetLatLng.Lng))

	rows := make([]string, 0, len(m.reveal.Guesses)+1)
	rows = append(rows, headerStyle.Render(fmt.Sprintf("%-20s %12s %8s", "Player", "Distance", "Points")))
	for _, g := range m.reveal.Guesses {
		rows = append(rows, fmt.Sprintf("%-20s %9.1f km %8d", g.Player.Name, g.Distance/1000, g.Score))
	}
	b.WriteString(boxStyle.Render(strings.Join(rows, "\n")))

	if m.sync.IsAdmin() && m.sync.IsInGame() {
		b.WriteString(promptStyle.Render("\nEnter to show the standings"))
	}
	return b.String()
}

func (m *Model) scoresView() string {
	var b strings.Builder
	b.WriteString(titleStyle("Standings"))
	b.WriteString("\n\n")

	rows := make([]string, 0, len(m.scoreRows))
	for i, p := range m.scoreRows {
		name := p.Name
		if p.ID == m.sync.SessionID() {
			name = viewerStyle.Render(name)
		}
		rows = append(rows, fmt.Sprintf("%2d. %-20s %6d", i+1, name, p.Score))
	}
	b.WriteString(boxStyle.Render(strings.Join(rows, "\n")))
	b.WriteString(promptStyle.Render("\nThe next round starts shortly..."))
	return b.String()
}
