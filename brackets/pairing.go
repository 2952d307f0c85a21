package brackets

import "github.com/google/uuid"

// TopDownGenerator pairs seeds 1v2, 3v4, ... on consecutive boards starting
// at board 0.
type TopDownGenerator struct{}

func NewTopDownGenerator() PairingGenerator {
	return &TopDownGenerator{}
}

func (g *TopDownGenerator) GetName() string {
	return "TopDown"
}

// GeneratePairings stops once BoardCount boards are filled or fewer than two
// players remain. A single leftover player gets a bye on the next board if one
// is still free. Anyone left after that is returned in Unpaired.
func (g *TopDownGenerator) GeneratePairings(params GeneratePairingsParams) (*RoundPairings, error) {
	if params.BoardCount < 1 {
		return nil, ErrInvalidBoardCount
	}
	if params.Round < 1 {
		return nil, ErrInvalidRound
	}

	ranked := params.Ranked
	result := &RoundPairings{
		Round:    params.Round,
		Pairings: make([]Pairing, 0, min(len(ranked)/2, params.BoardCount)),
		Unpaired: make([]uuid.UUID, 0),
	}

	board := 0
	next := 0
	for board < params.BoardCount && next+1 < len(ranked) {
		result.Pairings = append(result.Pairings, Pairing{
			Round:   params.Round,
			Board:   board,
			WhiteID: ranked[next].PlayerID,
			BlackID: ranked[next+1].PlayerID,
		})
		next += 2
		board++
	}

	if len(ranked)-next == 1 && board < params.BoardCount {
		result.Bye = &Bye{
			Round:    params.Round,
			Board:    board,
			PlayerID: ranked[next].PlayerID,
		}
		next++
	}

	for ; next < len(ranked); next++ {
		result.Unpaired = append(result.Unpaired, ranked[next].PlayerID)
	}

	return result, nil
}
