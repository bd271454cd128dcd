package game

import (
	"context"

	"github.com/warcats-game/warcats-backend/models"
)

// Store is the session state store contract. Every engine operation runs
// inside WithTransaction: all reads and writes issued by fn through the
// same store commit atomically, and any error from fn rolls everything
// back. Implementations that cannot offer serializable isolation must
// surface ErrConflict from UpdateGame via a version compare-and-swap.
type Store interface {
	// WithTransaction runs fn inside one atomic unit. The context passed
	// to fn must be used for every store call made within it.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	FindGame(ctx context.Context, id string) (*models.Game, error)
	// FindActiveGameByToken returns the non-finished game holding the
	// warcat token, or (nil, nil) when there is none.
	FindActiveGameByToken(ctx context.Context, tokenID int64) (*models.Game, error)
	CreateGame(ctx context.Context, g *models.Game) error
	// UpdateGame writes the full game document if the stored version
	// still equals g.Version, bumping the version. Returns ErrConflict
	// when the compare-and-swap misses.
	UpdateGame(ctx context.Context, g *models.Game) error

	InsertMatchEntry(ctx context.Context, e *models.MatchEntry) error
	// ListMatchEntries returns all queue entries, oldest searchTime first.
	ListMatchEntries(ctx context.Context) ([]models.MatchEntry, error)
	DeleteMatchEntry(ctx context.Context, wallet string, tokenID int64) error
}

// Archiver records finished matches outside the transaction, best effort.
type Archiver interface {
	ArchiveMatch(g *models.Game)
}
