// Package assets bundles the card images shown by the presentation adapters.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/calvinwijaya/concentor/internal/game"
)

//go:embed cards/*.svg
var FS embed.FS

const (
	cardDir     = "cards"
	ext         = ".svg"
	ContentType = "image/svg+xml"
)

// Set holds one image per card face plus the card back.
type Set struct {
	images map[string][]byte
}

// Load reads the bundled images for every face in catalog.
func Load(catalog []game.CardFace) (*Set, error) {
	return LoadFS(FS, catalog)
}

// LoadFS reads cards/<id>.svg from fsys for the card back and every face in
// catalog. Every missing or unreadable image is reported.
func LoadFS(fsys fs.FS, catalog []game.CardFace) (*Set, error) {
	names := make([]string, 0, len(catalog)+1)
	for _, face := range catalog {
		names = append(names, face.ID)
	}
	names = append(names, game.BackIdentifier)

	var result *multierror.Error
	set := &Set{images: make(map[string][]byte, len(names))}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(cardDir, name+ext))
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("image not found: %s: %w", name, err))
			continue
		}
		if len(data) == 0 {
			result = multierror.Append(result, fmt.Errorf("image is empty: %s", name))
			continue
		}
		set.images[name] = data
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return set, nil
}

// Image returns the image for a face identifier or the card back.
func (s *Set) Image(name string) ([]byte, bool) {
	data, ok := s.images[name]
	return data, ok
}

// Names lists every loaded image in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.images))
	for name := range s.images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
