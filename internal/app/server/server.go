package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/chess-vn/chessd/internal/app/game"
	"github.com/chess-vn/chessd/internal/app/matchmaking"
	"github.com/chess-vn/chessd/internal/domains/dtos"
	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/internal/domains/interfaces"
	"github.com/chess-vn/chessd/pkg/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
	http     *http.Server

	hub        *Hub
	games      *game.Manager
	matchmaker *matchmaking.Matchmaker
	players    interfaces.IPlayerRepository
}

type payload struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

func NewServer(
	cfg Config,
	hub *Hub,
	games *game.Manager,
	matchmaker *matchmaking.Matchmaker,
	players interfaces.IPlayerRepository,
) *Server {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	s := &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		hub:        hub,
		games:      games,
		matchmaker: matchmaker,
		players:    players,
	}
	s.http = &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /game/{gameId}", s.handleWebSocket)
	mux.HandleFunc("GET /games/{gameId}", s.handleGetGame)
	mux.HandleFunc("GET /players/{playerId}", s.handleGetPlayer)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /status", s.handleStatus)
	return mux
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	logging.Info("websocket server started", zap.String("port", s.cfg.Port))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, err := s.auth(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	player, err := s.ensurePlayer(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, entities.ErrUsernameTaken) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	c := newClient(conn, player.Id)
	go c.writePump(s.cfg.WriteTimeout, s.cfg.IdleTimeout*9/10)

	if s.hub.register(c) {
		s.games.PlayerConnected(player.Id)
	}
	logging.Info("player connected",
		zap.String("player_id", player.Id),
		zap.String("remote_address", conn.RemoteAddr().String()),
	)
	if gameId := r.PathValue("gameId"); gameId != "" {
		s.watchGame(r.Context(), c, gameId)
	}

	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
	})
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			logging.Info("connection closed",
				zap.String("player_id", player.Id),
				zap.String("remote_address", conn.RemoteAddr().String()),
				zap.Error(err),
			)
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))

		var p payload
		if err := json.Unmarshal(message, &p); err != nil {
			s.replyError(c, "", ErrInvalidPayload)
			continue
		}
		s.handleWebSocketMessage(context.Background(), c, p)
	}

	if s.hub.unregister(c) {
		s.handlePlayerDisconnect(player.Id)
	}
}

func (s *Server) handlePlayerDisconnect(playerId string) {
	s.matchmaker.LeaveQueue(playerId)
	s.games.PlayerDisconnected(playerId)
	logging.Info("player disconnected", zap.String("player_id", playerId))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.games.GetGame(r.Context(), r.PathValue("gameId"))
	if err != nil {
		writeJson(w, http.StatusNotFound, dtos.ErrorMessage{Type: dtos.MessageError, Code: statusFor(err), Message: err.Error()})
		return
	}
	writeJson(w, http.StatusOK, g)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := s.players.GetPlayer(r.Context(), r.PathValue("playerId"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, entities.ErrPlayerNotFound) {
			status = http.StatusNotFound
		}
		writeJson(w, status, dtos.ErrorMessage{Type: dtos.MessageError, Code: statusFor(err), Message: err.Error()})
		return
	}
	writeJson(w, http.StatusOK, dtos.PlayerResponseFromEntity(p))
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	top, err := s.players.TopPlayers(r.Context(), limit)
	if err != nil {
		logging.Error("failed to load leaderboard", zap.Error(err))
		http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
		return
	}
	resp := make([]dtos.PlayerResponse, 0, len(top))
	for _, p := range top {
		resp = append(resp, dtos.PlayerResponseFromEntity(p))
	}
	writeJson(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, dtos.ServerStatusResponse{
		ActiveGames: len(s.games.LiveGames()),
		QueueSize:   s.matchmaker.QueueSize(),
		Connections: s.hub.Connections(),
	})
}

func writeJson(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to write response", zap.Error(err))
	}
}
