package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

var (
	// ErrEmptyCatalog is returned when a deck is requested from no faces.
	ErrEmptyCatalog = errors.New("card catalog is empty")
	// ErrInvalidCatalog is returned for blank or duplicated face identifiers.
	ErrInvalidCatalog = errors.New("card catalog is invalid")
)

// Shuffler reorders tiles in place.
type Shuffler func(tiles []Tile)

// RandomShuffler returns a uniform Fisher-Yates shuffler driven by r.
func RandomShuffler(r *rand.Rand) Shuffler {
	return func(tiles []Tile) {
		for i := len(tiles) - 1; i > 0; i-- {
			j := r.Intn(i + 1)
			tiles[i], tiles[j] = tiles[j], tiles[i]
		}
	}
}

// ValidateCatalog checks that the catalog is non-empty and every identifier is
// present and unique.
func ValidateCatalog(catalog []CardFace) error {
	if len(catalog) == 0 {
		return ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(catalog))
	for i, face := range catalog {
		if strings.TrimSpace(face.ID) == "" {
			return fmt.Errorf("%w: blank identifier at position %d", ErrInvalidCatalog, i)
		}
		if _, dup := seen[face.ID]; dup {
			return fmt.Errorf("%w: duplicate identifier %q", ErrInvalidCatalog, face.ID)
		}
		seen[face.ID] = struct{}{}
	}
	return nil
}

// Pairs returns two face-down tiles per catalog entry, in catalog order
// repeated twice.
func Pairs(catalog []CardFace) ([]Tile, error) {
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	tiles := make([]Tile, 0, 2*len(catalog))
	for copyIndex := 0; copyIndex < 2; copyIndex++ {
		for _, face := range catalog {
			tiles = append(tiles, Tile{Face: face})
		}
	}
	return tiles, nil
}

// BuildDeck expands the catalog into a duplicated deck shuffled with r.
func BuildDeck(catalog []CardFace, r *rand.Rand) ([]Tile, error) {
	return BuildDeckWith(catalog, RandomShuffler(r))
}

// BuildDeckWith expands the catalog into a duplicated deck ordered by shuffle.
func BuildDeckWith(catalog []CardFace, shuffle Shuffler) ([]Tile, error) {
	tiles, err := Pairs(catalog)
	if err != nil {
		return nil, err
	}
	shuffle(tiles)
	return tiles, nil
}
