package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/pkg/logging"
	"github.com/chess-vn/chessd/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type identity struct {
	PlayerId string
	Username string
}

// auth validates the bearer token of a request. Browsers cannot set headers on a
// websocket handshake, so the token may also arrive as the "token" query parameter.
func (s *Server) auth(r *http.Request) (identity, error) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return identity{}, fmt.Errorf("%w: no authorization", ErrUnauthorized)
	}

	validToken, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !validToken.Valid {
		return identity{}, fmt.Errorf("%w: invalid token: %v", ErrUnauthorized, err)
	}
	mapClaims, ok := validToken.Claims.(jwt.MapClaims)
	if !ok {
		return identity{}, fmt.Errorf("%w: invalid map claims", ErrUnauthorized)
	}
	playerId, err := mapClaims.GetSubject()
	if err != nil || playerId == "" {
		return identity{}, fmt.Errorf("%w: player id not found", ErrUnauthorized)
	}
	username, _ := mapClaims["username"].(string)
	if username == "" {
		username = "player-" + playerId[:min(8, len(playerId))]
	}
	return identity{PlayerId: playerId, Username: username}, nil
}

// ensurePlayer loads the player behind a token, registering it on first sight.
func (s *Server) ensurePlayer(ctx context.Context, id identity) (entities.Player, error) {
	player, err := s.players.GetPlayer(ctx, id.PlayerId)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, entities.ErrPlayerNotFound) {
		return entities.Player{}, err
	}

	player = entities.Player{
		Id:        id.PlayerId,
		Username:  id.Username,
		Rating:    utils.DefaultRating,
		CreatedAt: time.Now(),
	}
	if err := s.players.CreatePlayer(ctx, player); err != nil {
		return entities.Player{}, err
	}
	logging.Info("player registered", zap.String("player_id", player.Id), zap.String("username", player.Username))
	return player, nil
}
