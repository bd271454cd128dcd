package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/warcats-game/warcats-backend/game"
	"github.com/warcats-game/warcats-backend/models"
)

// MemoryStore is an in-process game.Store for tests and local development.
// WithTransaction serializes all access under one mutex and snapshots the
// state, so a failed transaction rolls back completely. Store methods must
// only be called from inside WithTransaction.
type MemoryStore struct {
	mu      sync.Mutex
	games   map[string]*models.Game
	entries []models.MatchEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]*models.Game)}
}

func copyGame(g *models.Game) *models.Game {
	cp := *g
	cp.Units = append([]models.Unit(nil), g.Units...)
	cp.Buildings = append([]models.Building(nil), g.Buildings...)
	return &cp
}

func (s *MemoryStore) snapshot() (map[string]*models.Game, []models.MatchEntry) {
	games := make(map[string]*models.Game, len(s.games))
	for id, g := range s.games {
		games[id] = copyGame(g)
	}
	return games, append([]models.MatchEntry(nil), s.entries...)
}

func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	games, entries := s.snapshot()
	if err := fn(ctx); err != nil {
		s.games = games
		s.entries = entries
		return err
	}
	return nil
}

func (s *MemoryStore) FindGame(ctx context.Context, id string) (*models.Game, error) {
	g, ok := s.games[id]
	if !ok {
		return nil, game.NotFoundf("game %s not found", id)
	}
	return copyGame(g), nil
}

func (s *MemoryStore) FindActiveGameByToken(ctx context.Context, tokenID int64) (*models.Game, error) {
	for _, g := range s.games {
		if g.GameOver {
			continue
		}
		if g.Player1.WarcatTokenID == tokenID || g.Player2.WarcatTokenID == tokenID {
			return copyGame(g), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateGame(ctx context.Context, g *models.Game) error {
	if _, exists := s.games[g.ID]; exists {
		return game.StoreError(errDuplicateID)
	}
	s.games[g.ID] = copyGame(g)
	return nil
}

func (s *MemoryStore) UpdateGame(ctx context.Context, g *models.Game) error {
	stored, ok := s.games[g.ID]
	if !ok {
		return game.NotFoundf("game %s not found", g.ID)
	}
	if stored.Version != g.Version {
		return game.ErrConflict
	}
	cp := copyGame(g)
	cp.Version++
	s.games[g.ID] = cp
	g.Version = cp.Version
	return nil
}

func (s *MemoryStore) InsertMatchEntry(ctx context.Context, e *models.MatchEntry) error {
	s.entries = append(s.entries, *e)
	return nil
}

func (s *MemoryStore) ListMatchEntries(ctx context.Context) ([]models.MatchEntry, error) {
	out := append([]models.MatchEntry(nil), s.entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SearchTime < out[j].SearchTime
	})
	return out, nil
}

func (s *MemoryStore) DeleteMatchEntry(ctx context.Context, wallet string, tokenID int64) error {
	for i, e := range s.entries {
		if e.Wallet == wallet && e.WarcatTokenID == tokenID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return nil
}
