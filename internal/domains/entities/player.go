package entities

import (
	"errors"
	"time"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrPlayerConflict = errors.New("player was modified concurrently")
)

type Player struct {
	Id          string    `dynamodbav:"Id" json:"id"`
	Username    string    `dynamodbav:"Username" json:"username"`
	Rating      int       `dynamodbav:"Rating" json:"rating"`
	GamesPlayed int       `dynamodbav:"GamesPlayed" json:"gamesPlayed"`
	Wins        int       `dynamodbav:"Wins" json:"wins"`
	Losses      int       `dynamodbav:"Losses" json:"losses"`
	Draws       int       `dynamodbav:"Draws" json:"draws"`
	CreatedAt   time.Time `dynamodbav:"CreatedAt" json:"createdAt"`
	// Version counts saves. SavePlayer only succeeds against the version it was loaded at.
	Version int `dynamodbav:"Version" json:"-"`
}
