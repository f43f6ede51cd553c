package ai

import (
	"math/rand"
	"sort"

	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/game/rules"
	"github.com/trainyard-games/mexican-train/game/tile"
	"github.com/trainyard-games/mexican-train/server/log"
)

// Tactician chooses moves for one computer seat by scoring every legal
// move with its strategy's tactic mix.
type Tactician struct {
	strategy Strategy
	rand     *rand.Rand
	log      log.Logger
}

// maxChainDepth bounds the chain-length recursion over the remaining hand.
const maxChainDepth = 5

// tacticContext is the shared state tactics score moves against.
type tacticContext struct {
	game   *rules.Game
	seat   player.SeatID
	hand   []tile.Tile
	moves  []rules.Move
	scores []float64
	weight float64
	rand   *rand.Rand
}

// tacticFuncs maps tactic names to their scoring functions.
var tacticFuncs = map[string]func(*tacticContext){
	"random":               tacticRandom,
	"maximize_pips":        tacticMaximizePips,
	"minimize_pips":        tacticMinimizePips,
	"prefer_own_train":     tacticPreferOwnTrain,
	"prefer_mexican_train": tacticPreferMexicanTrain,
	"prefer_open_trains":   tacticPreferOpenTrains,
	"block_opponents":      tacticBlockOpponents,
	"preserve_doubles":     tacticPreserveDoubles,
	"dump_doubles":         tacticDumpDoubles,
	"endgame_awareness":    tacticEndgameAwareness,
	"hand_composition":     tacticHandComposition,
	"chain_length":         tacticChainLength,
}

// New creates a tactician playing the strategy with a seeded source of
// randomness, so games replay deterministically under test.
func New(strategy Strategy, seed int64, l log.Logger) *Tactician {
	tactics := make([]TacticRef, len(strategy.Tactics))
	copy(tactics, strategy.Tactics)
	sort.SliceStable(tactics, func(i, j int) bool {
		return tactics[i].Priority < tactics[j].Priority
	})
	strategy.Tactics = tactics
	return &Tactician{
		strategy: strategy,
		rand:     rand.New(rand.NewSource(seed)),
		log:      l,
	}
}

// ChooseMove picks the highest-scoring legal move for the seat.  The second
// return is false when the seat has no legal move and must draw.
func (ai *Tactician) ChooseMove(g *rules.Game, seat player.SeatID) (rules.Move, bool) {
	moves := g.ValidMoves(seat)
	if len(moves) == 0 {
		return rules.Move{}, false
	}
	if len(ai.strategy.Tactics) == 0 {
		return moves[ai.rand.Intn(len(moves))], true
	}
	ctx := tacticContext{
		game:   g,
		seat:   seat,
		hand:   g.Hand(seat),
		moves:  moves,
		scores: make([]float64, len(moves)),
		rand:   ai.rand,
	}
	for _, ref := range ai.strategy.Tactics {
		fn, ok := tacticFuncs[ref.Name]
		if !ok {
			ai.log.Printf("ai strategy %q references unknown tactic %q", ai.strategy.Name, ref.Name)
			continue
		}
		ctx.weight = ref.Weight
		fn(&ctx)
	}
	best := 0
	for i, score := range ctx.scores[1:] {
		if score > ctx.scores[best] { // ties keep the earlier move
			best = i + 1
		}
	}
	return moves[best], true
}

func tacticRandom(ctx *tacticContext) {
	for i := range ctx.scores {
		ctx.scores[i] += ctx.weight * ctx.rand.Float64()
	}
}

// maxLegalValue is the highest tile value among the legal moves.
func maxLegalValue(ctx *tacticContext) int {
	max := 0
	for _, m := range ctx.moves {
		if v := m.Tile.Value(); v > max {
			max = v
		}
	}
	return max
}

func tacticMaximizePips(ctx *tacticContext) {
	max := maxLegalValue(ctx)
	if max == 0 {
		return
	}
	for i, m := range ctx.moves {
		ctx.scores[i] += ctx.weight * float64(m.Tile.Value()) / float64(max)
	}
}

func tacticMinimizePips(ctx *tacticContext) {
	max := maxLegalValue(ctx)
	if max == 0 {
		return
	}
	for i, m := range ctx.moves {
		ctx.scores[i] += ctx.weight * float64(max-m.Tile.Value()) / float64(max)
	}
}

func tacticPreferOwnTrain(ctx *tacticContext) {
	for i, m := range ctx.moves {
		if m.TrainKind == tile.Personal && m.TrainOwner == ctx.seat {
			ctx.scores[i] += ctx.weight
		}
	}
}

func tacticPreferMexicanTrain(ctx *tacticContext) {
	for i, m := range ctx.moves {
		if m.TrainKind == tile.Mexican {
			ctx.scores[i] += ctx.weight
		}
	}
}

func tacticPreferOpenTrains(ctx *tacticContext) {
	for i, m := range ctx.moves {
		if m.TrainKind == tile.Personal && m.TrainOwner != ctx.seat {
			ctx.scores[i] += ctx.weight
		}
	}
}

// tacticBlockOpponents favors tails few opponent tiles can touch.
func tacticBlockOpponents(ctx *tacticContext) {
	for i, m := range ctx.moves {
		k := ctx.game.CountMatchingInOtherHands(ctx.seat, moveTail(ctx, m))
		ctx.scores[i] += ctx.weight / float64(1+k)
	}
}

func tacticPreserveDoubles(ctx *tacticContext) {
	for i, m := range ctx.moves {
		if m.Tile.IsDouble() {
			ctx.scores[i] -= ctx.weight
		}
	}
}

func tacticDumpDoubles(ctx *tacticContext) {
	for i, m := range ctx.moves {
		if m.Tile.IsDouble() {
			ctx.scores[i] += ctx.weight
		}
	}
}

func tacticEndgameAwareness(ctx *tacticContext) {
	if ctx.game.TotalHandTiles() > 8 {
		return
	}
	max := maxLegalValue(ctx)
	if max == 0 {
		return
	}
	for i, m := range ctx.moves {
		ctx.scores[i] += ctx.weight * float64(m.Tile.Value()) / float64(max)
	}
}

// tacticHandComposition favors tails the remaining hand can follow up on.
func tacticHandComposition(ctx *tacticContext) {
	for i, m := range ctx.moves {
		tail := moveTail(ctx, m)
		count := 0
		for _, held := range ctx.hand {
			if held.ID != m.Tile.ID && held.Matches(tail) {
				count++
			}
		}
		ctx.scores[i] += ctx.weight * 0.5 * float64(count)
	}
}

// tacticChainLength favors moves the remaining hand can extend into the
// longest run on the same destination.
func tacticChainLength(ctx *tacticContext) {
	chains := make([]int, len(ctx.moves))
	maxChain := 0
	for i, m := range ctx.moves {
		rest := handWithout(ctx.hand, m.Tile.ID)
		chains[i] = 1 + chainLength(rest, moveTail(ctx, m), maxChainDepth)
		if chains[i] > maxChain {
			maxChain = chains[i]
		}
	}
	if maxChain == 0 {
		return
	}
	for i := range ctx.moves {
		ctx.scores[i] += ctx.weight * float64(chains[i]) / float64(maxChain)
	}
}

// moveTail is the pip count the destination would expose after the move.
func moveTail(ctx *tacticContext, m rules.Move) int {
	tr, ok := ctx.game.Train(m.TrainKind, m.TrainOwner)
	if !ok {
		return 0
	}
	return m.Tile.OtherSide(tr.HeadValue(ctx.game.EnginePip()))
}

// chainLength is the longest run of plays possible from the hand starting
// at the head value, bounded by depth.
func chainLength(hand []tile.Tile, head, depth int) int {
	if depth == 0 {
		return 0
	}
	best := 0
	for i, t := range hand {
		if !t.Matches(head) {
			continue
		}
		rest := make([]tile.Tile, 0, len(hand)-1)
		rest = append(rest, hand[:i]...)
		rest = append(rest, hand[i+1:]...)
		if n := 1 + chainLength(rest, t.OtherSide(head), depth-1); n > best {
			best = n
		}
	}
	return best
}

// handWithout copies the hand, excluding the tile with the id.
func handWithout(hand []tile.Tile, id tile.ID) []tile.Tile {
	rest := make([]tile.Tile, 0, len(hand)-1)
	for _, t := range hand {
		if t.ID != id {
			rest = append(rest, t)
		}
	}
	return rest
}
