package tile

// NewSet creates the full double-maxPip set of (maxPip+1)(maxPip+2)/2 tiles,
// each with a fresh id, ordered low to high.
func NewSet(maxPip int) []Tile {
	set := make([]Tile, 0, (maxPip+1)*(maxPip+2)/2)
	for left := 0; left <= maxPip; left++ {
		for right := left; right <= maxPip; right++ {
			t, _ := New(left, right) // pips are non-negative
			set = append(set, *t)
		}
	}
	return set
}

// PipSum is the total pip count of the tiles.
func PipSum(tiles []Tile) int {
	sum := 0
	for _, t := range tiles {
		sum += t.Value()
	}
	return sum
}
