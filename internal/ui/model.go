// Package ui is the terminal front end: a Bubble Tea model that owns
// the transport, drives the room engine from the update loop, and
// renders one view per round phase. Every engine callback runs inside
// Update, so model state needs no locking.
package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/haystack-game/haystack-client/internal/apperrors"
	"github.com/haystack-game/haystack-client/internal/game"
	"github.com/haystack-game/haystack-client/internal/protocol"
	"github.com/haystack-game/haystack-client/internal/room"
	"github.com/haystack-game/haystack-client/internal/session"
)

// Screens outside a joined room. Inside a room the machine's phase
// selects the view instead.
type Screen int

const (
	ScreenConnecting Screen = iota
	ScreenName
	ScreenHome
	ScreenJoining
	ScreenRoom
)

const noticeTTL = 5 * time.Second

// Transport is what the model needs from the connection layer. The
// websocket client satisfies it; tests substitute a scripted fake.
type Transport interface {
	room.Transport
	Connect() error
	IsConnected() bool
}

// ConnectedMsg reports a successful dial.
type ConnectedMsg struct{}

// ConnectionErrorMsg reports a failed dial or a dead connection.
type ConnectionErrorMsg struct {
	Err error
}

// JoinedMsg delivers the room handle once matchmaking succeeds.
type JoinedMsg struct {
	Room *room.Room
}

// JoinFailedMsg delivers the classified matchmaking error.
type JoinFailedMsg struct {
	Err error
}

// ServerMessage wraps one inbound engine message for the update loop.
type ServerMessage struct {
	Msg *protocol.Message
}

// AsyncNotice carries a notice emitted off the update loop, such as
// the connector's session-expired notice during a join.
type AsyncNotice struct {
	Level room.NoticeLevel
	Text  string
}

// NoticeExpiredMsg removes a notice after its display time.
type NoticeExpiredMsg struct {
	ID int
}

type notice struct {
	id    int
	level room.NoticeLevel
	text  string
}

// Model is the root Bubble Tea model.
type Model struct {
	transport Transport
	store     *session.Store
	stored    *session.Session

	screen     Screen
	playerName string
	errText    string

	joined  *room.Room
	sync    *room.Sync
	machine *game.Machine

	// Latest per-phase payloads, captured by machine callbacks for the
	// views.
	currentRound int
	reveal       game.Reveal
	scoreRows    []protocol.PlayerState

	notices      []notice
	nextNoticeID int
	// Notice ids at or below this already have an expiry tick scheduled.
	tickedNoticeID int

	// asyncNotices bridges callbacks running outside Update into the
	// message loop.
	asyncNotices chan tea.Msg

	input  textinput.Model
	width  int
	height int
}

// NewModel creates the root model. stored may be nil when no previous
// session exists.
func NewModel(transport Transport, store *session.Store, stored *session.Session) *Model {
	ti := textinput.New()
	ti.CharLimit = 40
	ti.Width = 30

	m := &Model{
		transport:    transport,
		store:        store,
		stored:       stored,
		screen:       ScreenConnecting,
		input:        ti,
		asyncNotices: make(chan tea.Msg, 10),
	}
	if stored != nil {
		m.playerName = stored.PlayerName
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.connectCmd(),
		textinput.Blink,
		m.listenAsyncNotices(),
	)
}

func (m *Model) connectCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.transport.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

// joinCmd runs matchmaking off the update loop; it is the only place
// the transport is read outside listenCmd, and the two never overlap.
func (m *Model) joinCmd(roomID, playerName string) tea.Cmd {
	connector := room.NewConnector(m.transport, m.stored)
	connector.OnNotice = func(level room.NoticeLevel, text string) {
		select {
		case m.asyncNotices <- AsyncNotice{Level: level, Text: text}:
		default:
		}
	}

	return func() tea.Msg {
		var (
			r   *room.Room
			err error
		)
		if roomID == "" {
			r, err = connector.CreateRoom(context.Background(), playerName)
		} else {
			r, err = connector.JoinRoom(context.Background(), roomID, playerName)
		}
		if err != nil {
			return JoinFailedMsg{Err: err}
		}
		return JoinedMsg{Room: r}
	}
}

// listenCmd waits for the next server message. Re-issued after every
// delivery so the engine dispatches strictly from the update loop.
func (m *Model) listenCmd() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.transport.Receive(context.Background())
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

func (m *Model) listenAsyncNotices() tea.Cmd {
	return func() tea.Msg {
		return <-m.asyncNotices
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		handled, cmd := m.handleKey(msg)
		if handled {
			return m, cmd
		}

	case ConnectedMsg:
		m.screen = ScreenName
		m.input.Placeholder = "Your name..."
		m.input.SetValue(m.playerName)
		m.input.Focus()

	case ConnectionErrorMsg:
		if m.screen == ScreenConnecting {
			m.errText = "Could not reach the server. Press ESC to quit."
		} else {
			m.errText = "Connection lost. Press ESC to quit."
		}

	case JoinedMsg:
		cmds = append(cmds, m.enterRoom(msg.Room)...)

	case JoinFailedMsg:
		m.handleJoinFailure(msg.Err)

	case ServerMessage:
		m.joined.Dispatch(msg.Msg)
		cmds = append(cmds, m.scheduleNoticeExpiries()...)
		if m.transport.IsConnected() {
			cmds = append(cmds, m.listenCmd())
		}

	case AsyncNotice:
		m.pushNotice(msg.Level, msg.Text)
		cmds = append(cmds, m.scheduleNoticeExpiries()...)
		cmds = append(cmds, m.listenAsyncNotices())

	case NoticeExpiredMsg:
		m.expireNotice(msg.ID)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// enterRoom wires the engine to the model. The callbacks only mutate
// model fields; they run synchronously inside Dispatch.
func (m *Model) enterRoom(r *room.Room) []tea.Cmd {
	m.joined = r
	m.sync = room.NewSync(r)
	m.sync.OnNotice = m.pushNotice
	m.sync.OnReady = func() {
		if m.sync.State().GameActive && !m.sync.IsInGame() {
			m.pushNotice(room.NoticeWarning, "A game is in progress, you can play from the next one")
		}
	}

	m.machine = game.NewMachine(m.sync)
	m.machine.OnRoundPrepared = func(round int) {
		m.currentRound = round
	}
	m.machine.OnRoundStarted = func(string) {
		m.input.Reset()
		m.input.Placeholder = "lat, lng"
		m.input.Focus()
	}
	m.machine.OnRoundCompleted = func(rv game.Reveal) {
		m.reveal = rv
	}
	m.machine.OnScores = func(rows []protocol.PlayerState) {
		m.scoreRows = rows
	}
	m.machine.OnLobby = func() {
		m.reveal = game.Reveal{}
		m.scoreRows = nil
		m.input.Blur()
	}

	if err := m.store.Save(session.Session{
		RoomID:     r.ID,
		SessionID:  r.SessionID,
		PlayerName: m.playerName,
	}); err != nil {
		m.pushNotice(room.NoticeWarning, "Could not save the session for reconnecting")
	}

	m.screen = ScreenRoom
	m.errText = ""
	m.input.Blur()

	cmds := []tea.Cmd{m.listenCmd()}
	return append(cmds, m.scheduleNoticeExpiries()...)
}

func (m *Model) handleJoinFailure(err error) {
	switch {
	case errors.Is(err, apperrors.ErrRoomNotFound):
		m.errText = "Room not found"
		m.screen = ScreenHome
		m.focusHomeInput()
	case errors.Is(err, apperrors.ErrUsernameTaken):
		m.errText = "That name is taken in this room, pick another"
		m.screen = ScreenName
		m.input.Placeholder = "Your name..."
		m.input.SetValue(m.playerName)
		m.input.Focus()
	default:
		m.errText = "Joining failed, try again"
		m.screen = ScreenHome
		m.focusHomeInput()
	}
}

func (m *Model) focusHomeInput() {
	m.input.Reset()
	m.input.Placeholder = "Room code, or Enter for a new room"
	m.input.Focus()
}

func (m *Model) pushNotice(level room.NoticeLevel, text string) {
	m.nextNoticeID++
	m.notices = append(m.notices, notice{id: m.nextNoticeID, level: level, text: text})
}

// scheduleNoticeExpiries issues one expiry tick per notice pushed since
// the last call.
func (m *Model) scheduleNoticeExpiries() []tea.Cmd {
	var cmds []tea.Cmd
	for _, n := range m.notices {
		if n.id <= m.tickedNoticeID {
			continue
		}
		id := n.id
		cmds = append(cmds, tea.Tick(noticeTTL, func(time.Time) tea.Msg {
			return NoticeExpiredMsg{ID: id}
		}))
	}
	m.tickedNoticeID = m.nextNoticeID
	return cmds
}

func (m *Model) expireNotice(id int) {
	for i, n := range m.notices {
		if n.id == id {
			m.notices = append(m.notices[:i], m.notices[i+1:]...)
			return
		}
	}
}

func normalizeRoomCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
