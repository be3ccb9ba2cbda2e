package utils

import (
	"math"

	"github.com/chess-vn/chessd/internal/domains/entities"
)

const (
	KFactor       = 32
	RatingFloor   = 100
	DefaultRating = 1200
)

// ExpectedScore is the ELO expectation of a player rated r against an opponent rated opp.
func ExpectedScore(r, opp int) float64 {
	return 1 / (1 + math.Pow(10, float64(opp-r)/400))
}

// CalculateRatingChanges returns the white and black deltas for a finished game.
// Unrated results (unset, aborted) yield zero deltas.
func CalculateRatingChanges(whiteRating, blackRating int, result entities.GameResult) (int, int) {
	whiteScore, rated := result.WhiteScore()
	if !rated {
		return 0, 0
	}
	expected := ExpectedScore(whiteRating, blackRating)
	whiteDelta := int(math.Round(KFactor * (whiteScore - expected)))
	blackDelta := int(math.Round(KFactor * ((1 - whiteScore) - (1 - expected))))
	return whiteDelta, blackDelta
}

// SettleRatings applies a result to both players: new ratings floored at RatingFloor, tallies and games played.
func SettleRatings(
	white entities.Player,
	black entities.Player,
	result entities.GameResult,
) (entities.Player, entities.Player, int, int) {
	whiteScore, rated := result.WhiteScore()
	if !rated {
		return white, black, 0, 0
	}
	whiteDelta, blackDelta := CalculateRatingChanges(white.Rating, black.Rating, result)
	return ApplyResult(white, whiteDelta, whiteScore), ApplyResult(black, blackDelta, 1-whiteScore), whiteDelta, blackDelta
}

// ApplyResult records one rated game with the given score (1, 0.5 or 0) and rating delta on p.
func ApplyResult(p entities.Player, delta int, score float64) entities.Player {
	p.Rating = max(RatingFloor, p.Rating+delta)
	p.GamesPlayed++
	switch score {
	case 1:
		p.Wins++
	case 0:
		p.Losses++
	default:
		p.Draws++
	}
	return p
}
