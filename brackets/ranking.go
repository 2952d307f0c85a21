package brackets

import (
	"sort"

	"github.com/Dosada05/chess-league/models"
)

// RankingMode selects the score a ranking sorts by.
type RankingMode string

const (
	// RankingSeeding orders by wins + 0.5*draws. Used for pairing.
	RankingSeeding RankingMode = "seeding"
	// RankingLeaderboard orders by net score. Used for display only.
	RankingLeaderboard RankingMode = "leaderboard"
)

func (m RankingMode) Valid() bool {
	return m == RankingSeeding || m == RankingLeaderboard
}

func (m RankingMode) score(s models.TournamentStanding) float64 {
	if m == RankingLeaderboard {
		return s.NetScore()
	}
	return s.SeedScore()
}

func RankForSeeding(standings []models.TournamentStanding) []models.RankedStanding {
	return Rank(standings, RankingSeeding)
}

func RankForLeaderboard(standings []models.TournamentStanding) []models.RankedStanding {
	return Rank(standings, RankingLeaderboard)
}

// Rank orders standings by descending score. Equal scores keep their input
// order: the comparator falls back to the input index instead of relying on
// sort stability. Ranks are 1-based positions in the output.
func Rank(standings []models.TournamentStanding, mode RankingMode) []models.RankedStanding {
	type entry struct {
		index int
		score float64
	}

	entries := make([]entry, len(standings))
	for i, s := range standings {
		entries[i] = entry{index: i, score: mode.score(s)}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].index < entries[j].index
	})

	ranked := make([]models.RankedStanding, len(entries))
	for pos, e := range entries {
		ranked[pos] = models.RankedStanding{
			TournamentStanding: standings[e.index],
			Rank:               pos + 1,
			Score:              e.score,
		}
	}
	return ranked
}
