package game

// Info describes a match for the lobby listing.
type Info struct {
	// ID is unique among the matches that currently exist.
	ID ID `json:"id,omitempty"`
	// Name is the display name the host gave the match.
	Name string `json:"name,omitempty"`
	// Host is the display name of the player who created the match.
	Host string `json:"host,omitempty"`
	// Status is the lifecycle state of the match.
	Status Status `json:"status,omitempty"`
	// Players is the display names of the seated players, in seating order.
	Players []string `json:"players,omitempty"`
	// MaxPlayers is the seat limit of the match.
	MaxPlayers int `json:"maxPlayers,omitempty"`
	// GameNumber is the 1-based number of the game currently being played.
	GameNumber int `json:"gameNumber,omitempty"`
	// GamesToPlay is the number of games in the match.
	GamesToPlay int `json:"gamesToPlay,omitempty"`
	// CreatedAt is the match's creation time in seconds since the unix epoch.
	CreatedAt int64 `json:"createdAt,omitempty"`
}

// CanJoin indicates whether a player can take a seat in the match.
// Seats are open before the match starts; after that, only players who
// already hold a seat can rejoin.
func (i Info) CanJoin(playerName string) bool {
	if i.Status == Waiting && len(i.Players) < i.MaxPlayers {
		return true
	}
	for _, n := range i.Players {
		if n == playerName {
			return true
		}
	}
	return false
}
