package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/internal/domains/interfaces"
)

type playerRepository struct {
	mu        sync.RWMutex
	players   map[string]entities.Player
	usernames map[string]string
}

func NewPlayerRepository() interfaces.IPlayerRepository {
	return &playerRepository{
		players:   make(map[string]entities.Player),
		usernames: make(map[string]string),
	}
}

func (r *playerRepository) GetPlayer(ctx context.Context, id string) (entities.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	player, ok := r.players[id]
	if !ok {
		return entities.Player{}, entities.ErrPlayerNotFound
	}
	return player, nil
}

func (r *playerRepository) CreatePlayer(ctx context.Context, player entities.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(player.Username)
	if owner, taken := r.usernames[key]; taken && owner != player.Id {
		return entities.ErrUsernameTaken
	}
	if old, exists := r.players[player.Id]; exists {
		delete(r.usernames, strings.ToLower(old.Username))
	}
	r.usernames[key] = player.Id
	r.players[player.Id] = player
	return nil
}

func (r *playerRepository) SavePlayer(ctx context.Context, player entities.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.players[player.Id]
	if !ok {
		return entities.ErrPlayerNotFound
	}
	if !strings.EqualFold(old.Username, player.Username) {
		key := strings.ToLower(player.Username)
		if owner, taken := r.usernames[key]; taken && owner != player.Id {
			return entities.ErrUsernameTaken
		}
	}
	if old.Version != player.Version {
		return entities.ErrPlayerConflict
	}
	if !strings.EqualFold(old.Username, player.Username) {
		delete(r.usernames, strings.ToLower(old.Username))
		r.usernames[strings.ToLower(player.Username)] = player.Id
	}
	player.Version++
	r.players[player.Id] = player
	return nil
}

func (r *playerRepository) TopPlayers(ctx context.Context, limit int) ([]entities.Player, error) {
	r.mu.RLock()
	players := make([]entities.Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}
	r.mu.RUnlock()

	sort.Slice(players, func(i, j int) bool {
		if players[i].Rating != players[j].Rating {
			return players[i].Rating > players[j].Rating
		}
		return players[i].Username < players[j].Username
	})
	if limit > 0 && len(players) > limit {
		players = players[:limit]
	}
	return players, nil
}
