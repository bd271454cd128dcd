package game

import (
	"time"

	"github.com/warcats-game/warcats-backend/models"
)

// Rules bundles the stateless combat/movement primitives the engine
// consumes. Implementations must be pure: deterministic for the given
// arguments, no side effects on the game.
type Rules interface {
	// IsWalkable reports whether the unit class can stand on the tile.
	IsWalkable(class models.UnitClass, pos models.Position) bool
	// AllowedAttackSpaces returns every tile the unit may attack from its
	// current position.
	AllowedAttackSpaces(g *models.Game, u *models.Unit) []models.Position
	Damage(attacker, defender *models.Unit) int
	BuildingDamage(attacker *models.Unit, b *models.Building) int
	// AdjacentFreeTile picks the tile the attacker relocates to after
	// striking target. Falls back to the mover's current position when no
	// adjacent tile is free.
	AdjacentFreeTile(g *models.Game, target models.Position, mover *models.Unit) models.Position
	UnitCost(class models.UnitClass) int
	// SpawnSpaces returns the tiles a building can place a new unit on.
	SpawnSpaces(building models.Position) []models.Position
	// GoldIncome is the per-turn income for the team on the given board.
	GoldIncome(team models.Team, g *models.Game) int
	// VictoryTimeout is how long the waiting player must be stalled on
	// before a victory declaration succeeds.
	VictoryTimeout() time.Duration
}
