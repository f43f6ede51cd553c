// Package tile contains the domino tiles and the trains they are placed on.
package tile

import (
	"fmt"

	"github.com/google/uuid"
)

type (
	// ID is the stable opaque identifier of a tile.  Clients reference
	// tiles by id across state snapshots so hands are never inferable
	// from identifiers.
	ID string

	// Tile is a domino: an unordered pair of pip counts.
	Tile struct {
		ID    ID  `json:"id"`
		Left  int `json:"left"`
		Right int `json:"right"`
	}

	// Placed is a tile on a train along with its orientation: the Tail
	// pip is exposed at the free end, the other pip joined the train.
	Placed struct {
		Tile Tile `json:"tile"`
		Tail int  `json:"tail"`
	}
)

// New creates a tile with the pip counts, assigning it a new id.
func New(left, right int) (*Tile, error) {
	if left < 0 || right < 0 {
		return nil, fmt.Errorf("negative pip count: (%v,%v)", left, right)
	}
	t := Tile{
		ID:    ID(uuid.NewString()),
		Left:  left,
		Right: right,
	}
	return &t, nil
}

// Value is the sum of the pip counts.
func (t Tile) Value() int {
	return t.Left + t.Right
}

// IsDouble indicates whether both halves have the same pip count.
func (t Tile) IsDouble() bool {
	return t.Left == t.Right
}

// Matches indicates whether either half has the pip count.
func (t Tile) Matches(pip int) bool {
	return t.Left == pip || t.Right == pip
}

// OtherSide returns the pip count of the half opposite the one matching pip.
// For a double both halves are the same, so the pip itself is returned.
func (t Tile) OtherSide(pip int) int {
	if t.Left == pip {
		return t.Right
	}
	return t.Left
}

// String returns the tile in [left|right] form.
func (t Tile) String() string {
	return fmt.Sprintf("[%v|%v]", t.Left, t.Right)
}
