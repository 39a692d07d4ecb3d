// Package tui renders a game in the terminal with bubbletea and turns key
// presses into slot actions for human players.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/game"
)

var _ game.Display = (*Board)(nil)

// gridColumns is the number of cards per row.
const gridColumns = 4

// Classic card glyphs indexed by [shape][shading].
var shapeGlyphs = [][]string{
	{"◆", "◈", "◇"},
	{"●", "◍", "○"},
	{"■", "▣", "□"},
}

// KeyFunc receives a human key press for player on slot and reports whether
// the player accepted it.
type KeyFunc func(player, slot int) bool

// refreshMsg tells the model to re-read the board.
type refreshMsg struct{}

// GameOverMsg is sent when Game.Run returns.
type GameOverMsg struct {
	Err error
}

// Model is the bubbletea model for one game.
type Model struct {
	board  *Board
	keys   Keymap
	onKey  KeyFunc
	onQuit func()
	logger *log.Logger

	logViewport viewport.Model
	view        BoardView
	err         error
	rejected    int

	width    int
	height   int
	quitting bool
}

// NewModel creates the model. onKey is called for every bound key, onQuit
// when the user leaves; either may be nil.
func NewModel(logger *log.Logger, board *Board, keys Keymap, onKey KeyFunc, onQuit func()) *Model {
	vp := viewport.New(40, 5)
	vp.SetContent("")
	return &Model{
		board:       board,
		keys:        keys,
		onKey:       onKey,
		onQuit:      onQuit,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		view:        board.Snapshot(),
	}
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

// waitForChange returns a command that blocks until the board changes.
func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.board.Changed():
		case <-m.board.Closed():
		}
		return refreshMsg{}
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.refresh()
		if m.view.Over {
			return m, nil
		}
		return m, m.waitForChange()

	case GameOverMsg:
		m.err = msg.Err
		m.board.Close()
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)
		m.resizeLog()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			if m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		case "pgup", "pgdown", "home", "end":
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return m, cmd
		}
		m.press(msg.String())
		return m, nil
	}
	return m, nil
}

// press routes a key to its player. Rejected presses are expected while the
// dealer deals or the player is frozen, so they are only counted.
func (m *Model) press(key string) {
	target, ok := m.keys[key]
	if !ok || m.onKey == nil || m.view.Over {
		return
	}
	if !m.onKey(target.Player, target.Slot) {
		m.rejected++
		m.logger.Debug("Key rejected", "key", key, "player", target.Player, "slot", target.Slot)
	}
}

func (m *Model) refresh() {
	m.view = m.board.Snapshot()
	m.logViewport.SetContent(strings.Join(m.view.Log, "\n"))
	m.logViewport.GotoBottom()
}

func (m *Model) resizeLog() {
	w := max(m.width-4, 10)
	h := max(m.height-lipgloss.Height(m.renderGrid())-8, 3)
	m.logViewport.Width = w
	m.logViewport.Height = h
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.renderGrid(),
		m.renderScores(),
		PaneStyle.Render(m.logViewport.View()),
		m.renderHelp(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	title := HeaderStyle.Render("setforbots")
	var clock string
	switch m.view.Mode {
	case game.TimerCountdown:
		text := formatClock(m.view.Countdown, m.view.Warn)
		if m.view.Warn {
			clock = ErrorStyle.Render(text)
		} else {
			clock = SuccessStyle.Render(text)
		}
	case game.TimerElapsed:
		clock = InfoStyle.Render(formatClock(m.view.Elapsed, false))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", clock)
}

// formatClock shows whole seconds, and hundredths inside the warning window.
func formatClock(d time.Duration, precise bool) string {
	if precise {
		return fmt.Sprintf("%5.2fs", d.Seconds())
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func (m *Model) renderGrid() string {
	var rows []string
	for start := 0; start < len(m.view.Slots); start += gridColumns {
		end := min(start+gridColumns, len(m.view.Slots))
		cells := make([]string, 0, end-start)
		for slot := start; slot < end; slot++ {
			cells = append(cells, m.renderSlot(slot))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderSlot(slot int) string {
	card := m.view.Slots[slot]

	var keys []string
	for p := range m.view.Tokens {
		if key, ok := m.keys.KeyFor(p, slot); ok {
			keys = append(keys, key)
		}
	}
	hint := KeyHintStyle.Render(strings.Join(keys, " "))

	if !card.Valid() {
		return EmptySlotStyle.Render("\n" + hint)
	}

	var tokens strings.Builder
	for p, row := range m.view.Tokens {
		if row[slot] {
			tokens.WriteString(tokenStyle(p).Render(fmt.Sprintf("%d", p+1)))
		}
	}
	return CardStyle.Render(renderCard(m.view.Encoding, card) + "\n" + tokens.String() + "\n" + hint)
}

// renderCard draws classic cards as coloured glyphs and any other encoding
// as its feature digits.
func renderCard(enc cards.Encoding, card cards.Card) string {
	if enc != cards.Classic {
		return enc.Describe(card)
	}
	f := enc.Features(card)
	count, shape, colour, shading := f[0]+1, f[1], f[2], f[3]
	glyph := strings.Repeat(shapeGlyphs[shape][shading], count)
	return lipgloss.NewStyle().Foreground(featureColors[colour]).Render(glyph)
}

func (m *Model) renderScores() string {
	var b strings.Builder
	for p, name := range m.view.Names {
		if p > 0 {
			b.WriteString("   ")
		}
		b.WriteString(tokenStyle(p).Render(fmt.Sprintf("%d", p+1)))
		b.WriteString(PlayerInfoStyle.Render(fmt.Sprintf(" %s: %d", name, m.view.Scores[p])))
		if f := m.view.Freezes[p]; f > 0 {
			b.WriteString(WarningStyle.Render(fmt.Sprintf(" (frozen %.1fs)", f.Seconds())))
		}
	}
	return b.String()
}

func (m *Model) renderHelp() string {
	switch {
	case m.err != nil:
		return ErrorStyle.Render(fmt.Sprintf("Game failed: %v", m.err)) + InfoStyle.Render(" • Esc to exit")
	case m.view.Over:
		return SuccessStyle.Render("Game over") + InfoStyle.Render(" • Esc to exit")
	case len(m.keys) == 0:
		return InfoStyle.Render("Watching AI players • PgUp/PgDn scroll log • Esc to quit")
	default:
		return InfoStyle.Render("Press a slot's key to place or lift a token • PgUp/PgDn scroll log • Esc to quit")
	}
}

// Rejected returns how many key presses players refused.
func (m *Model) Rejected() int {
	return m.rejected
}
