package dtos

import "github.com/chess-vn/chessd/internal/domains/entities"

type MessageType string

const (
	MessageMove         MessageType = "MOVE"
	MessageGameStart    MessageType = "GAME_START"
	MessageGameEnd      MessageType = "GAME_END"
	MessageDrawOffer    MessageType = "DRAW_OFFER"
	MessageDrawAccept   MessageType = "DRAW_ACCEPT"
	MessageDrawDecline  MessageType = "DRAW_DECLINE"
	MessageResign       MessageType = "RESIGN"
	MessageTimeout      MessageType = "TIMEOUT"
	MessageAbort        MessageType = "ABORT"
	MessageAbandon      MessageType = "ABANDON"
	MessagePlayerJoined MessageType = "PLAYER_JOINED"
	MessagePlayerLeft   MessageType = "PLAYER_LEFT"
	MessageError        MessageType = "ERROR"
	MessageAnalysis     MessageType = "ANALYSIS"
	MessageMatchFound   MessageType = "MATCH_FOUND"
)

// GameMessage is published on a game's topic after every state change.
type GameMessage struct {
	Type               MessageType         `json:"type"`
	GameId             string              `json:"gameId"`
	PlayerId           string              `json:"playerId,omitempty"`
	From               string              `json:"from,omitempty"`
	To                 string              `json:"to,omitempty"`
	Promotion          string              `json:"promotion,omitempty"`
	Fen                string              `json:"fen,omitempty"`
	Pgn                string              `json:"pgn,omitempty"`
	Status             entities.GameStatus `json:"status,omitempty"`
	Result             entities.GameResult `json:"result,omitempty"`
	CurrentTurn        string              `json:"currentTurn,omitempty"`
	WhiteTimeRemaining int64               `json:"whiteTimeRemaining"`
	BlackTimeRemaining int64               `json:"blackTimeRemaining"`
	WhitePlayerId      string              `json:"whitePlayerId,omitempty"`
	BlackPlayerId      string              `json:"blackPlayerId,omitempty"`
	WhiteRatingChange  int                 `json:"whiteRatingChange,omitempty"`
	BlackRatingChange  int                 `json:"blackRatingChange,omitempty"`
	Message            string              `json:"message,omitempty"`
	Analysis           *AnalysisResult     `json:"analysis,omitempty"`
}

func GameMessageFromEntity(msgType MessageType, playerId string, game entities.Game) GameMessage {
	return GameMessage{
		Type:               msgType,
		GameId:             game.Id,
		PlayerId:           playerId,
		Fen:                game.Fen,
		Pgn:                game.Transcript,
		Status:             game.Status,
		Result:             game.Result,
		CurrentTurn:        game.Turn,
		WhiteTimeRemaining: game.WhiteTimeRemaining,
		BlackTimeRemaining: game.BlackTimeRemaining,
		WhitePlayerId:      game.WhitePlayerId,
		BlackPlayerId:      game.BlackPlayerId,
		WhiteRatingChange:  game.WhiteRatingChange,
		BlackRatingChange:  game.BlackRatingChange,
	}
}

type MatchFoundMessage struct {
	Type          MessageType `json:"type"`
	GameId        string      `json:"gameId"`
	WhitePlayerId string      `json:"whitePlayerId"`
	WhiteUsername string      `json:"whiteUsername"`
	BlackPlayerId string      `json:"blackPlayerId"`
	BlackUsername string      `json:"blackUsername"`
	TimeControl   int         `json:"timeControl"`
	Increment     int         `json:"increment"`
}

type ErrorMessage struct {
	Type    MessageType `json:"type"`
	GameId  string      `json:"gameId,omitempty"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}
