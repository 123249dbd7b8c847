package game

// Tile is one clickable grid cell holding a single card instance.
type Tile struct {
	Face     CardFace `json:"face"`
	Revealed bool     `json:"revealed"`
	Matched  bool     `json:"matched"`
}

// Selectable reports whether the tile may be picked by the player.
func (t Tile) Selectable() bool {
	return !t.Matched && !t.Revealed
}

// Board holds the mutable state of one round.
type Board struct {
	Tiles        []Tile
	Errors       uint
	Elapsed      uint
	Selection    []int
	InputEnabled bool
}

func newBoard(tiles []Tile) Board {
	return Board{
		Tiles:     tiles,
		Selection: make([]int, 0, 2),
	}
}

func (b *Board) revealAll() {
	for i := range b.Tiles {
		b.Tiles[i].Revealed = true
	}
}

// hideUnmatched turns every tile that is not part of a matched pair face-down.
func (b *Board) hideUnmatched() {
	for i := range b.Tiles {
		if !b.Tiles[i].Matched {
			b.Tiles[i].Revealed = false
		}
	}
}

func (b *Board) allMatched() bool {
	for _, t := range b.Tiles {
		if !t.Matched {
			return false
		}
	}
	return true
}

// Matches returns how many pairs have been matched so far.
func (b *Board) Matches() int {
	n := 0
	for _, t := range b.Tiles {
		if t.Matched {
			n++
		}
	}
	return n / 2
}
