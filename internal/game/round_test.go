package game

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	faceA = CardFace{ID: "A"}
	faceB = CardFace{ID: "B"}
)

// sortedShuffler deals [A,A,B,B] from the two-face catalog.
func sortedShuffler(tiles []Tile) {
	sort.SliceStable(tiles, func(i, j int) bool {
		return tiles[i].Face.ID < tiles[j].Face.ID
	})
}

func newSmallRound(t *testing.T) (*Round, uint64) {
	t.Helper()
	r, err := NewRound([]CardFace{faceA, faceB}, WithShuffler(sortedShuffler))
	require.NoError(t, err)
	gen := r.Start()
	return r, gen
}

func readyRound(t *testing.T) (*Round, uint64) {
	t.Helper()
	r, gen := newSmallRound(t)
	require.True(t, r.OnPreviewTimeout(gen))
	return r, gen
}

func TestStartPreviewsAllTiles(t *testing.T) {
	r, gen := newSmallRound(t)

	assert.Equal(t, Previewing, r.Phase())
	assert.False(t, r.InputEnabled())
	assert.False(t, r.RestartEnabled())
	for _, tile := range r.Tiles() {
		assert.True(t, tile.Revealed)
	}

	require.True(t, r.OnPreviewTimeout(gen))
	assert.Equal(t, Idle, r.Phase())
	assert.True(t, r.InputEnabled())
	assert.True(t, r.RestartEnabled())
	for _, tile := range r.Tiles() {
		assert.False(t, tile.Revealed)
	}
}

func TestSelectWhileLockedIsIgnored(t *testing.T) {
	r, _ := newSmallRound(t)
	before := r.Snapshot()

	assert.Equal(t, Rejected, r.Select(0))
	assert.Equal(t, before, r.Snapshot())
}

func TestWinScenario(t *testing.T) {
	r, gen := readyRound(t)

	assert.Equal(t, Revealed, r.Select(0))
	assert.Equal(t, OneSelected, r.Phase())

	assert.Equal(t, Matched, r.Select(1))
	tiles := r.Tiles()
	assert.True(t, tiles[0].Matched)
	assert.True(t, tiles[1].Matched)
	assert.Equal(t, uint(0), r.Errors())
	assert.Equal(t, Idle, r.Phase())
	_, won := r.Result()
	assert.False(t, won)

	require.True(t, r.OnTick(gen))
	require.True(t, r.OnTick(gen))

	assert.Equal(t, Revealed, r.Select(2))
	assert.Equal(t, Completed, r.Select(3))
	assert.Equal(t, Won, r.Phase())

	res, won := r.Result()
	require.True(t, won)
	assert.Equal(t, Result{Elapsed: 2, Errors: 0}, res)
	assert.False(t, r.Running())
	assert.True(t, r.RestartEnabled())

	// Nothing moves once the round is won.
	assert.False(t, r.OnTick(gen))
	assert.Equal(t, uint(2), r.Elapsed())
	assert.Equal(t, Rejected, r.Select(0))
}

func TestMismatchScenario(t *testing.T) {
	r, gen := readyRound(t)

	assert.Equal(t, Revealed, r.Select(0))
	assert.Equal(t, Mismatched, r.Select(2))
	assert.Equal(t, uint(1), r.Errors())
	assert.Equal(t, Resolving, r.Phase())
	assert.False(t, r.InputEnabled())

	tiles := r.Tiles()
	assert.True(t, tiles[0].Revealed)
	assert.True(t, tiles[2].Revealed)

	// A third pick while the pair is on display is ignored.
	assert.Equal(t, Rejected, r.Select(1))
	assert.Equal(t, []int{0, 2}, r.selection())

	require.True(t, r.OnHideTimeout(gen))
	assert.Equal(t, Idle, r.Phase())
	assert.True(t, r.InputEnabled())
	assert.Empty(t, r.selection())
	for _, tile := range r.Tiles() {
		assert.False(t, tile.Revealed)
		assert.False(t, tile.Matched)
	}

	_, won := r.Result()
	assert.False(t, won)
}

func TestSelectRejectsInvalidTiles(t *testing.T) {
	r, _ := readyRound(t)

	assert.Equal(t, Rejected, r.Select(-1))
	assert.Equal(t, Rejected, r.Select(4))

	require.Equal(t, Revealed, r.Select(0))
	assert.Equal(t, Rejected, r.Select(0), "same tile twice")
	assert.Equal(t, OneSelected, r.Phase())

	require.Equal(t, Matched, r.Select(1))
	assert.Equal(t, Rejected, r.Select(0), "matched tile")
	assert.Equal(t, Rejected, r.Select(1), "matched tile")
	assert.Equal(t, Idle, r.Phase())
}

func TestWinRequiresEveryPair(t *testing.T) {
	r, err := NewRound(Catalog, WithRand(rand.New(rand.NewSource(3))))
	require.NoError(t, err)
	gen := r.Start()
	require.True(t, r.OnPreviewTimeout(gen))

	positions := make(map[string][]int)
	for i, tile := range r.Tiles() {
		positions[tile.Face.ID] = append(positions[tile.Face.ID], i)
	}
	require.Len(t, positions, len(Catalog))

	for n, face := range Catalog {
		pair := positions[face.ID]
		require.Equal(t, Revealed, r.Select(pair[0]))

		want := Matched
		if n == len(Catalog)-1 {
			want = Completed
		}
		require.Equal(t, want, r.Select(pair[1]), face.ID)

		_, won := r.Result()
		assert.Equal(t, n == len(Catalog)-1, won, "after %d matches", n+1)
	}

	snap := r.Snapshot()
	assert.Equal(t, len(Catalog), snap.Matches)
	require.NotNil(t, snap.Result)
	assert.Equal(t, uint(0), snap.Result.Errors)
}

func TestRestart(t *testing.T) {
	r, err := NewRound(Catalog, WithRand(rand.New(rand.NewSource(11))))
	require.NoError(t, err)
	gen := r.Start()

	_, ok := r.Restart()
	assert.False(t, ok, "restart is locked during the first preview")

	require.True(t, r.OnPreviewTimeout(gen))
	require.True(t, r.OnTick(gen))
	require.True(t, r.OnTick(gen))

	tiles := r.Tiles()
	second := -1
	for i := 1; i < len(tiles); i++ {
		if tiles[i].Face != tiles[0].Face {
			second = i
			break
		}
	}
	require.Equal(t, Revealed, r.Select(0))
	require.Equal(t, Mismatched, r.Select(second))
	require.Equal(t, uint(1), r.Errors())

	newGen, ok := r.Restart()
	require.True(t, ok)
	assert.Greater(t, newGen, gen)
	assert.Equal(t, uint(0), r.Errors())
	assert.Equal(t, uint(0), r.Elapsed())
	assert.Empty(t, r.selection())
	assert.Equal(t, Previewing, r.Phase())
	assert.False(t, r.RestartEnabled())
	assert.True(t, r.Running())

	counts := faceCounts(r.Tiles())
	for _, face := range Catalog {
		assert.Equal(t, 2, counts[face.ID])
	}

	// Timers armed for the previous round no longer apply.
	assert.False(t, r.OnHideTimeout(gen))
	assert.False(t, r.OnPreviewTimeout(gen))
	assert.False(t, r.OnTick(gen))
	assert.Equal(t, Previewing, r.Phase())
	assert.Equal(t, uint(0), r.Elapsed())

	assert.True(t, r.OnPreviewTimeout(newGen))
	assert.True(t, r.RestartEnabled())
}

func TestRestartAfterWinRestartsTheClock(t *testing.T) {
	r, gen := readyRound(t)
	require.Equal(t, Revealed, r.Select(0))
	require.Equal(t, Matched, r.Select(1))
	require.Equal(t, Revealed, r.Select(2))
	require.Equal(t, Completed, r.Select(3))
	require.False(t, r.OnTick(gen))

	newGen, ok := r.Restart()
	require.True(t, ok)
	assert.True(t, r.Running())
	assert.True(t, r.OnTick(newGen))
	assert.Equal(t, uint(1), r.Elapsed())

	_, won := r.Result()
	assert.False(t, won)
}

func TestSnapshotHidesFaceDownCards(t *testing.T) {
	r, _ := readyRound(t)
	require.Equal(t, Revealed, r.Select(3))

	snap := r.Snapshot()
	require.Len(t, snap.Tiles, 4)
	for i, v := range snap.Tiles {
		assert.Equal(t, i, v.Index)
		if i == 3 {
			require.NotNil(t, v.Face)
			assert.Equal(t, faceB, *v.Face)
			continue
		}
		assert.Nil(t, v.Face)
	}
	assert.Equal(t, OneSelected, snap.Phase)
	assert.True(t, snap.InputEnabled)
}

func TestNewRoundRejectsEmptyCatalog(t *testing.T) {
	_, err := NewRound(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}
