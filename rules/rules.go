// Package rules implements the stateless combat and movement primitives
// behind the game.Rules interface. Everything here is pure arithmetic on
// the board: no store access, no mutation of the game.
package rules

import (
	"time"

	"github.com/warcats-game/warcats-backend/models"
)

const (
	MapWidth  = 15
	MapHeight = 9

	// GoldPerBuilding is the per-turn income of one owned building.
	GoldPerBuilding = 100

	// VictoryTimeout is how long a player may stall before the opponent's
	// victory declaration succeeds.
	VictoryTimeout = 3 * time.Minute
)

// mountains block ground units. Kept off every starting-layout tile.
var mountains = map[models.Position]bool{
	{X: 0, Y: 0}:  true,
	{X: 14, Y: 0}: true,
	{X: 7, Y: 4}:  true,
	{X: 0, Y: 8}:  true,
	{X: 14, Y: 8}: true,
}

var unitCosts = map[models.UnitClass]int{
	models.UnitInf1:  200,
	models.UnitInf2:  350,
	models.UnitTank1: 500,
	models.UnitTank2: 700,
	// Warcats are never purchasable: each player fields exactly one.
	models.UnitWarcat: 1 << 20,
}

var attackRange = map[models.UnitClass]int{
	models.UnitInf1:   1,
	models.UnitInf2:   1,
	models.UnitTank1:  2,
	models.UnitTank2:  2,
	models.UnitWarcat: 3,
}

var attackPower = map[models.UnitClass]int{
	models.UnitInf1:   3,
	models.UnitInf2:   4,
	models.UnitTank1:  5,
	models.UnitTank2:  6,
	models.UnitWarcat: 7,
}

var armor = map[models.UnitClass]int{
	models.UnitInf1:   0,
	models.UnitInf2:   0,
	models.UnitTank1:  1,
	models.UnitTank2:  1,
	models.UnitWarcat: 2,
}

// Rules is the default ruleset. The zero value is ready to use.
type Rules struct{}

func New() Rules {
	return Rules{}
}

func inBounds(pos models.Position) bool {
	return pos.X >= 0 && pos.X < MapWidth && pos.Y >= 0 && pos.Y < MapHeight
}

func manhattan(a, b models.Position) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

func (Rules) IsWalkable(class models.UnitClass, pos models.Position) bool {
	if !inBounds(pos) {
		return false
	}
	if class == models.UnitWarcat {
		return true
	}
	return !mountains[pos]
}

func (Rules) AllowedAttackSpaces(g *models.Game, u *models.Unit) []models.Position {
	r := attackRange[u.Path.Class]
	var spaces []models.Position
	for x := u.Position.X - r; x <= u.Position.X+r; x++ {
		for y := u.Position.Y - r; y <= u.Position.Y+r; y++ {
			pos := models.Position{X: x, Y: y}
			d := manhattan(u.Position, pos)
			if d >= 1 && d <= r && inBounds(pos) {
				spaces = append(spaces, pos)
			}
		}
	}
	return spaces
}

func (Rules) Damage(attacker, defender *models.Unit) int {
	d := attackPower[attacker.Path.Class] - armor[defender.Path.Class]
	if d < 1 {
		d = 1
	}
	return d
}

func (Rules) BuildingDamage(attacker *models.Unit, b *models.Building) int {
	d := attackPower[attacker.Path.Class]
	if d < 1 {
		d = 1
	}
	return d
}

var neighborOffsets = [4]models.Position{
	{X: 0, Y: -1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
}

func (r Rules) AdjacentFreeTile(g *models.Game, target models.Position, mover *models.Unit) models.Position {
	for _, off := range neighborOffsets {
		pos := models.Position{X: target.X + off.X, Y: target.Y + off.Y}
		if pos == mover.Position {
			return pos
		}
		if !r.IsWalkable(mover.Path.Class, pos) {
			continue
		}
		if u := g.UnitAt(pos); u != nil {
			continue
		}
		if b := g.BuildingAt(pos); b != nil {
			continue
		}
		return pos
	}
	// Nowhere to step: the attacker holds its ground.
	return mover.Position
}

func (Rules) UnitCost(class models.UnitClass) int {
	if cost, ok := unitCosts[class]; ok {
		return cost
	}
	return 1 << 20
}

func (Rules) SpawnSpaces(building models.Position) []models.Position {
	var spaces []models.Position
	for _, off := range neighborOffsets {
		pos := models.Position{X: building.X + off.X, Y: building.Y + off.Y}
		if inBounds(pos) {
			spaces = append(spaces, pos)
		}
	}
	return spaces
}

func (Rules) GoldIncome(team models.Team, g *models.Game) int {
	income := 0
	for i := range g.Buildings {
		if g.Buildings[i].Team() == team {
			income += GoldPerBuilding
		}
	}
	return income
}

func (Rules) VictoryTimeout() time.Duration {
	return VictoryTimeout
}
