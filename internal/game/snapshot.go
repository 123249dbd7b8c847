package game

// TileView is the client-facing representation of a tile. Face is only set
// while the tile is face-up.
type TileView struct {
	Index    int       `json:"index"`
	Face     *CardFace `json:"face,omitempty"`
	Revealed bool      `json:"revealed"`
	Matched  bool      `json:"matched"`
}

// Snapshot is a read-only view of a round for presentation adapters.
type Snapshot struct {
	Generation     uint64     `json:"round"`
	Phase          Phase      `json:"phase"`
	Tiles          []TileView `json:"tiles"`
	Rows           int        `json:"rows"`
	Columns        int        `json:"columns"`
	Errors         uint       `json:"errors"`
	Elapsed        uint       `json:"elapsed"`
	Matches        int        `json:"matches"`
	InputEnabled   bool       `json:"inputEnabled"`
	RestartEnabled bool       `json:"restartEnabled"`
	Result         *Result    `json:"result,omitempty"`
}

// Snapshot captures the current round state.
func (r *Round) Snapshot() Snapshot {
	views := make([]TileView, len(r.board.Tiles))
	for i, t := range r.board.Tiles {
		v := TileView{
			Index:    i,
			Revealed: t.Revealed,
			Matched:  t.Matched,
		}
		if t.Revealed || t.Matched {
			face := t.Face
			v.Face = &face
		}
		views[i] = v
	}

	s := Snapshot{
		Generation:     r.generation,
		Phase:          r.phase,
		Tiles:          views,
		Rows:           Rows,
		Columns:        Columns,
		Errors:         r.board.Errors,
		Elapsed:        r.board.Elapsed,
		Matches:        r.board.Matches(),
		InputEnabled:   r.board.InputEnabled,
		RestartEnabled: r.restartEnabled,
	}
	if r.result != nil {
		res := *r.result
		s.Result = &res
	}
	return s
}
