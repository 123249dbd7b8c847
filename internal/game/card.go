package game

import (
	"strings"
)

// Board geometry and card size are fixed for every round.
const (
	Rows       = 4
	Columns    = 5
	CardWidth  = 120
	CardHeight = 164
)

// BackIdentifier names the image shown for a face-down tile.
const BackIdentifier = "Playing-card-back-cover"

// CardFace is one named card type. Every round holds exactly two tiles per face.
type CardFace struct {
	ID string `json:"id"`
}

func (c CardFace) String() string {
	return c.ID
}

// Label returns a short rank and suit label, e.g. "A♣" for "Ace-of-clubs".
func (c CardFace) Label() string {
	rank, suit, ok := strings.Cut(c.ID, "-of-")
	if !ok || rank == "" {
		return c.ID
	}

	var symbol string
	switch s := strings.ToLower(suit); {
	case strings.HasPrefix(s, "club"):
		symbol = "♣"
	case strings.HasPrefix(s, "diamond"):
		symbol = "♦"
	case strings.HasPrefix(s, "heart"):
		symbol = "♥"
	case strings.HasPrefix(s, "spade"):
		symbol = "♠"
	default:
		symbol = "?"
	}

	return rank[:1] + symbol
}

// Red reports whether the face belongs to a red suit.
func (c CardFace) Red() bool {
	id := strings.ToLower(c.ID)
	return strings.Contains(id, "heart") || strings.Contains(id, "diamond")
}

// Catalog is the static list of unique card faces used by every round.
var Catalog = []CardFace{
	{ID: "Ace-of-clubs"},
	{ID: "Ace-of-diamonds"},
	{ID: "Ace-of-hearts"},
	{ID: "Ace-of-spade"},
	{ID: "Jack-of-Hearts"},
	{ID: "Jack-of-Spades"},
	{ID: "King-of-diamonds"},
	{ID: "King-of-spades"},
	{ID: "Queen-of-clubs"},
	{ID: "Queen-of-diamonds"},
}
