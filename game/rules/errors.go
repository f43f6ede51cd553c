package rules

// Error is a tagged rules failure.  Errors are reported to the offending
// client and never change game state.
type Error string

const (
	// ErrNotYourTurn is returned when the caller is not the seated current player.
	ErrNotYourTurn Error = "not_your_turn"
	// ErrTileNotInHand is returned when the tile id is not held by the player.
	ErrTileNotInHand Error = "tile_not_in_hand"
	// ErrIllegalDestination is returned when the tile does not match the
	// destination head, the destination is a closed foreign train, or a
	// pending double restricts play to other trains.
	ErrIllegalDestination Error = "illegal_destination"
	// ErrMustPlayNotDraw is returned when a draw is attempted while a legal move exists.
	ErrMustPlayNotDraw Error = "must_play_not_draw"
	// ErrGameOver is returned when a move or draw is attempted after the game ended.
	ErrGameOver Error = "game_over"
)

// Error returns the tag of the failure.
func (e Error) Error() string {
	return string(e)
}
