package dtos

import "github.com/chess-vn/chessd/internal/domains/entities"

type PlayerResponse struct {
	Id          string `json:"id"`
	Username    string `json:"username"`
	Rating      int    `json:"rating"`
	GamesPlayed int    `json:"gamesPlayed"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
}

func PlayerResponseFromEntity(p entities.Player) PlayerResponse {
	return PlayerResponse{
		Id:          p.Id,
		Username:    p.Username,
		Rating:      p.Rating,
		GamesPlayed: p.GamesPlayed,
		Wins:        p.Wins,
		Losses:      p.Losses,
		Draws:       p.Draws,
	}
}
