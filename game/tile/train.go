package tile

import (
	"fmt"

	"github.com/trainyard-games/mexican-train/game/player"
)

type (
	// Kind distinguishes the communal mexican train from players' personal trains.
	Kind string

	// Train is an ordered sequence of placed tiles extending from the engine.
	Train struct {
		// Kind is personal or mexican.
		Kind Kind `json:"kind"`
		// Owner is the seat whose train this is.  Empty for the mexican train.
		Owner player.SeatID `json:"owner,omitempty"`
		// Tiles are the placed tiles in play order.
		Tiles []Placed `json:"tiles"`
		// Open indicates players other than the owner may place here.
		// The mexican train is always open.
		Open bool `json:"open"`
		// UnsatisfiedDouble indicates the last placed tile is a double
		// that no later tile on this train has matched.
		UnsatisfiedDouble bool `json:"unsatisfiedDouble"`
	}
)

const (
	// Personal is the kind of train owned by one seat.
	Personal Kind = "personal"
	// Mexican is the kind of the communal train.
	Mexican Kind = "mexican"
)

// NewPersonalTrain creates the closed, empty train for a seat.
func NewPersonalTrain(owner player.SeatID) *Train {
	return &Train{
		Kind:  Personal,
		Owner: owner,
	}
}

// NewMexicanTrain creates the communal train, which is always open.
func NewMexicanTrain() *Train {
	return &Train{
		Kind: Mexican,
		Open: true,
	}
}

// HeadValue is the pip count the next tile must match: the engine pip if the
// train is empty, otherwise the exposed tail of the last placed tile.
func (tr *Train) HeadValue(enginePip int) int {
	if len(tr.Tiles) == 0 {
		return enginePip
	}
	return tr.Tiles[len(tr.Tiles)-1].Tail
}

// CanAccept indicates whether the tile touches the train's head value.
func (tr *Train) CanAccept(t Tile, enginePip int) bool {
	return t.Matches(tr.HeadValue(enginePip))
}

// Place orients the tile so its matching pip joins the train and exposes the
// other pip as the new tail, which is returned.  Placing a double marks the
// train's double obligation; placing a non-double clears it.
func (tr *Train) Place(t Tile, enginePip int) (int, error) {
	head := tr.HeadValue(enginePip)
	if !t.Matches(head) {
		return 0, fmt.Errorf("tile %v does not match train head %v", t, head)
	}
	tail := t.OtherSide(head)
	tr.Tiles = append(tr.Tiles, Placed{
		Tile: t,
		Tail: tail,
	})
	tr.UnsatisfiedDouble = t.IsDouble()
	return tail, nil
}
