package entities

import "time"

type GameStatus string

const (
	GameStatusWaiting     GameStatus = "WAITING"
	GameStatusActive      GameStatus = "ACTIVE"
	GameStatusDrawOffered GameStatus = "DRAW_OFFERED"
	GameStatusCompleted   GameStatus = "COMPLETED"
	GameStatusAbandoned   GameStatus = "ABANDONED"
	GameStatusAborted     GameStatus = "ABORTED"
)

func (s GameStatus) IsTerminal() bool {
	switch s {
	case GameStatusCompleted, GameStatusAbandoned, GameStatusAborted:
		return true
	}
	return false
}

type GameResult string

const (
	ResultNone          GameResult = ""
	ResultWhiteWins     GameResult = "WHITE_WINS"
	ResultBlackWins     GameResult = "BLACK_WINS"
	ResultDraw          GameResult = "DRAW"
	ResultStalemate     GameResult = "STALEMATE"
	ResultWhiteTimeout  GameResult = "WHITE_TIMEOUT"
	ResultBlackTimeout  GameResult = "BLACK_TIMEOUT"
	ResultWhiteResigned GameResult = "WHITE_RESIGNED"
	ResultBlackResigned GameResult = "BLACK_RESIGNED"
	ResultAborted       GameResult = "ABORTED"
)

// WhiteScore returns white's actual score and whether the result is rated at all.
func (r GameResult) WhiteScore() (float64, bool) {
	switch r {
	case ResultWhiteWins, ResultBlackTimeout, ResultBlackResigned:
		return 1, true
	case ResultBlackWins, ResultWhiteTimeout, ResultWhiteResigned:
		return 0, true
	case ResultDraw, ResultStalemate:
		return 0.5, true
	}
	return 0, false
}

const (
	SideWhite = "WHITE"
	SideBlack = "BLACK"
)

type Game struct {
	Id                 string     `dynamodbav:"Id" json:"id"`
	WhitePlayerId      string     `dynamodbav:"WhitePlayerId" json:"whitePlayerId"`
	BlackPlayerId      string     `dynamodbav:"BlackPlayerId" json:"blackPlayerId"`
	Fen                string     `dynamodbav:"Fen" json:"fen"`
	Moves              []string   `dynamodbav:"Moves" json:"moves"`
	Transcript         string     `dynamodbav:"Transcript" json:"transcript"`
	Status             GameStatus `dynamodbav:"Status" json:"status"`
	Result             GameResult `dynamodbav:"Result" json:"result"`
	Turn               string     `dynamodbav:"Turn" json:"turn"`
	TimeControl        int        `dynamodbav:"TimeControl" json:"timeControl"`
	Increment          int        `dynamodbav:"Increment" json:"increment"`
	WhiteTimeRemaining int64      `dynamodbav:"WhiteTimeRemaining" json:"whiteTimeRemaining"`
	BlackTimeRemaining int64      `dynamodbav:"BlackTimeRemaining" json:"blackTimeRemaining"`
	DrawOfferedBy      string     `dynamodbav:"DrawOfferedBy" json:"drawOfferedBy,omitempty"`
	WhiteRatingChange  int        `dynamodbav:"WhiteRatingChange" json:"whiteRatingChange"`
	BlackRatingChange  int        `dynamodbav:"BlackRatingChange" json:"blackRatingChange"`
	RatingsSettled     bool       `dynamodbav:"RatingsSettled" json:"ratingsSettled"`
	Pgn                string     `dynamodbav:"Pgn" json:"pgn,omitempty"`
	LastMoveAt         time.Time  `dynamodbav:"LastMoveAt" json:"lastMoveAt"`
	CreatedAt          time.Time  `dynamodbav:"CreatedAt" json:"createdAt"`
	StartedAt          time.Time  `dynamodbav:"StartedAt" json:"startedAt"`
	EndedAt            time.Time  `dynamodbav:"EndedAt" json:"endedAt"`
}

// Clone returns a copy that shares no slices with g.
func (g Game) Clone() Game {
	g.Moves = append([]string(nil), g.Moves...)
	return g
}

// Seat returns SideWhite, SideBlack or "" for a player id.
func (g Game) Seat(playerId string) string {
	switch {
	case playerId == "":
		return ""
	case playerId == g.WhitePlayerId:
		return SideWhite
	case playerId == g.BlackPlayerId:
		return SideBlack
	}
	return ""
}

func (g Game) Opponent(playerId string) string {
	switch g.Seat(playerId) {
	case SideWhite:
		return g.BlackPlayerId
	case SideBlack:
		return g.WhitePlayerId
	}
	return ""
}

// GameRecord is one player's view of a finished game, kept for history.
type GameRecord struct {
	PlayerId     string     `dynamodbav:"PlayerId" json:"playerId"`
	GameId       string     `dynamodbav:"GameId" json:"gameId"`
	OpponentId   string     `dynamodbav:"OpponentId" json:"opponentId"`
	Side         string     `dynamodbav:"Side" json:"side"`
	Status       GameStatus `dynamodbav:"Status" json:"status"`
	Result       GameResult `dynamodbav:"Result" json:"result"`
	RatingChange int        `dynamodbav:"RatingChange" json:"ratingChange"`
	Pgn          string     `dynamodbav:"Pgn" json:"pgn,omitempty"`
	EndedAt      time.Time  `dynamodbav:"EndedAt" json:"endedAt"`
}
