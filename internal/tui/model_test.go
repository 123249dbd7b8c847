package tui

import (
	"sort"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwijaya/concentor/internal/game"
)

var testTiming = game.Timing{
	Preview: 1500 * time.Millisecond,
	Hide:    1500 * time.Millisecond,
	Tick:    time.Second,
}

// newTestModel deals [A,A,B,B] and starts the round.
func newTestModel(t *testing.T) *Model {
	t.Helper()

	round, err := game.NewRound(
		[]game.CardFace{{ID: "Ace-of-clubs"}, {ID: "King-of-hearts"}},
		game.WithShuffler(func(tiles []game.Tile) {
			sort.SliceStable(tiles, func(i, j int) bool { return tiles[i].Face.ID < tiles[j].Face.ID })
		}),
	)
	require.NoError(t, err)

	m := NewModel(round, testTiming, zerolog.Nop())
	require.NotNil(t, m.Init())
	return m
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (m *Model) send(msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func endPreview(t *testing.T, m *Model) {
	t.Helper()
	m.send(previewDoneMsg{gen: m.round.Generation()})
	require.Equal(t, game.Idle, m.round.Phase())
}

func TestPreviewLocksInput(t *testing.T) {
	m := newTestModel(t)

	m.send(key(tea.KeyEnter))
	assert.Equal(t, game.Previewing, m.round.Phase())
	assert.Contains(t, m.View(), "A♣")

	endPreview(t, m)
	assert.NotContains(t, m.View(), "A♣")
}

func TestCursorStaysOnBoard(t *testing.T) {
	m := newTestModel(t)

	m.send(key(tea.KeyLeft))
	m.send(key(tea.KeyUp))
	assert.Equal(t, 0, m.cursor)

	for i := 0; i < 10; i++ {
		m.send(key(tea.KeyRight))
	}
	assert.Equal(t, 3, m.cursor)

	m.send(runes("h"))
	assert.Equal(t, 2, m.cursor)
	m.send(key(tea.KeyDown))
	assert.Equal(t, 2, m.cursor)
}

func TestMatchAndWin(t *testing.T) {
	m := newTestModel(t)
	endPreview(t, m)

	m.send(key(tea.KeyEnter))
	m.send(key(tea.KeyRight))
	m.send(key(tea.KeySpace))
	assert.Equal(t, 1, m.round.Snapshot().Matches)

	m.send(tickMsg{gen: m.round.Generation()})
	m.send(key(tea.KeyRight))
	m.send(key(tea.KeyEnter))
	m.send(runes("l"))
	m.send(key(tea.KeyEnter))

	require.Equal(t, game.Won, m.round.Phase())
	assert.Contains(t, m.View(), "You won! Time: 1s Errors: 0")

	assert.Nil(t, m.send(tickMsg{gen: m.round.Generation()}))
	assert.Equal(t, uint(1), m.round.Elapsed())
}

func TestMismatchHidesOnTimer(t *testing.T) {
	m := newTestModel(t)
	endPreview(t, m)

	m.send(key(tea.KeyEnter))
	m.send(key(tea.KeyRight))
	m.send(key(tea.KeyRight))
	cmd := m.send(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, game.Resolving, m.round.Phase())
	assert.Contains(t, m.View(), "Errors: 1")

	m.send(hideMsg{gen: m.round.Generation()})
	assert.Equal(t, game.Idle, m.round.Phase())
	for _, tile := range m.round.Tiles() {
		assert.False(t, tile.Revealed)
	}
}

func TestRestartIgnoresStaleTimers(t *testing.T) {
	m := newTestModel(t)

	assert.Nil(t, m.send(runes("r")), "restart is locked during the preview")

	endPreview(t, m)
	old := m.round.Generation()
	m.send(key(tea.KeyEnter))
	m.send(key(tea.KeyRight))
	m.send(key(tea.KeyRight))
	m.send(key(tea.KeyEnter))
	require.Equal(t, game.Resolving, m.round.Phase())

	require.NotNil(t, m.send(runes("r")))
	assert.Equal(t, game.Previewing, m.round.Phase())
	assert.Equal(t, uint(0), m.round.Errors())

	m.send(hideMsg{gen: old})
	m.send(tickMsg{gen: old})
	assert.Equal(t, game.Previewing, m.round.Phase())
	assert.Equal(t, uint(0), m.round.Elapsed())
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)

	cmd := m.send(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
