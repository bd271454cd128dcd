package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/warcats-game/warcats-backend/models"
)

const (
	StartingGold           = 1000
	StartingUnitHealth     = 10
	StartingBuildingHealth = 10
	StartingFuel           = 100
	// CaptureHealth is what a neutral building is reset to when captured.
	// Deliberately lower than StartingBuildingHealth: a fresh capture is
	// easier to take back.
	CaptureHealth = 5
)

// Result is the committed outcome of one action: the event to relay to
// the opposing wallet plus its payload. A nil Result from EnqueueAndMatch
// means the caller is still queued.
type Result struct {
	Recipient string
	Event     string
	Payload   interface{}
}

// Engine validates and applies game actions. Every operation is one
// store transaction: read, validate, mutate, commit. A validation error
// aborts the transaction, so a rejected action never mutates state.
type Engine struct {
	store Store
	rules Rules

	// Now is the engine clock, replaceable in tests.
	Now func() time.Time
	// Archive, when set, receives finished games after commit.
	Archive Archiver
}

func NewEngine(store Store, rules Rules) *Engine {
	return &Engine{store: store, rules: rules, Now: time.Now}
}

func (e *Engine) archive(g *models.Game) {
	if e.Archive != nil && g != nil {
		e.Archive.ArchiveMatch(g)
	}
}

// loadActiveGame fetches the game and resolves the acting player,
// rejecting finished games and foreign wallets.
func (e *Engine) loadActiveGame(ctx context.Context, gameID, wallet string) (*models.Game, *models.Player, error) {
	g, err := e.store.FindGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if g.GameOver {
		return nil, nil, Preconditionf("game is over")
	}
	player := g.PlayerWithWallet(wallet)
	if player == nil {
		return nil, nil, NotFoundf("wallet %s is not in this game", wallet)
	}
	return g, player, nil
}

// FindActiveGame returns the running game holding the warcat token, or
// nil when there is none. If the token's stored wallet differs from the
// caller the slot is rebound to the caller; if both slots then resolve to
// one wallet the game is terminated (self-play guard).
func (e *Engine) FindActiveGame(ctx context.Context, wallet string, tokenID int64) (*models.Game, error) {
	var found *models.Game
	err := e.store.WithTransaction(ctx, func(ctx context.Context) error {
		g, err := e.store.FindActiveGameByToken(ctx, tokenID)
		if err != nil || g == nil {
			return err
		}
		changed := false
		if g.Player1.WarcatTokenID == tokenID && g.Player1.Wallet != wallet {
			g.Player1.Wallet = wallet
			changed = true
		}
		if g.Player2.WarcatTokenID == tokenID && g.Player2.Wallet != wallet {
			g.Player2.Wallet = wallet
			changed = true
		}
		if g.Player1.Wallet == g.Player2.Wallet {
			g.GameOver = true
			return e.store.UpdateGame(ctx, g)
		}
		if changed {
			if err := e.store.UpdateGame(ctx, g); err != nil {
				return err
			}
		}
		found = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (e *Engine) MoveUnit(ctx context.Context, wallet, gameID, unitID string, pos models.Position) (*Result, error) {
	var res *Result
	err := e.store.WithTransaction(ctx, func(ctx context.Context) error {
		g, player, err := e.loadActiveGame(ctx, gameID, wallet)
		if err != nil {
			return err
		}
		if !g.IsWalletsTurn(wallet) {
			return Preconditionf("not your turn")
		}
		unit := g.UnitByID(unitID)
		if unit == nil {
			return NotFoundf("unit %s not found", unitID)
		}
		if unit.DidMove {
			return Preconditionf("unit already moved")
		}
		if unit.Team() != player.Team {
			return Preconditionf("unit belongs to the other team")
		}

		unit.Position = pos
		unit.DidMove = true
		if err := e.store.UpdateGame(ctx, g); err != nil {
			return err
		}
		res = &Result{
			Recipient: g.OpposingPlayer(wallet).Wallet,
			Event:     models.EventUnitMoved,
			Payload:   models.UnitMovedPayload{UnitID: unitID, Position: pos},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// AttackUnit resolves an attack by unitID against whatever stands on the
// target tile: an enemy unit, an enemy building, or a neutral building
// (which is captured instead of damaged).
func (e *Engine) AttackUnit(ctx context.Context, wallet, gameID, unitID string, target models.Position) (*Result, error) {
	var res *Result
	var finished *models.Game
	err := e.store.WithTransaction(ctx, func(ctx context.Context) error {
		finished = nil
		g, player, err := e.loadActiveGame(ctx, gameID, wallet)
		if err != nil {
			return err
		}
		if !g.IsWalletsTurn(wallet) {
			return Preconditionf("not your turn")
		}
		attacker := g.UnitByID(unitID)
		if attacker == nil {
			return NotFoundf("unit %s not found", unitID)
		}
		if attacker.DidMove {
			return Preconditionf("unit already attacked")
		}
		if attacker.Team() != player.Team {
			return Preconditionf("unit belongs to the other team")
		}

		if defender := g.UnitAt(target); defender != nil {
			res, finished, err = e.attackUnit(ctx, g, player, attacker, defender)
			return err
		}
		if building := g.BuildingAt(target); building != nil {
			res, err = e.attackBuilding(ctx, g, player, attacker, building)
			return err
		}
		return NotFoundf("nothing to attack at %d,%d", target.X, target.Y)
	})
	if err != nil {
		return nil, err
	}
	e.archive(finished)
	return res, nil
}

func (e *Engine) attackUnit(ctx context.Context, g *models.Game, player *models.Player, attacker, defender *models.Unit) (*Result, *models.Game, error) {
	if defender.Team() == player.Team {
		return nil, nil, Preconditionf("cannot attack a unit on your own team")
	}
	if !inRange(e.rules.AllowedAttackSpaces(g, attacker), defender.Position) {
		return nil, nil, Preconditionf("target is out of attack range")
	}

	damage := e.rules.Damage(attacker, defender)
	newHealth := defender.Health - damage
	if newHealth < 0 {
		newHealth = 0
	}
	newPos := e.rules.AdjacentFreeTile(g, defender.Position, attacker)

	attackerID := attacker.ID
	defenderID := defender.ID
	attacker.Position = newPos
	attacker.DidMove = true

	won := newHealth == 0 && defender.Path.Class == models.UnitWarcat
	if newHealth == 0 {
		// Pointers into g.Units are stale past this point.
		g.RemoveUnit(defenderID)
	} else {
		defender.Health = newHealth
	}

	var finished *models.Game
	winningWallet := ""
	if won {
		g.GameOver = true
		g.Winner = player.Wallet
		winningWallet = player.Wallet
		finished = g
	}
	if err := e.store.UpdateGame(ctx, g); err != nil {
		return nil, nil, err
	}
	res := &Result{
		Recipient: g.OpposingPlayer(player.Wallet).Wallet,
		Event:     models.EventAttackedUnit,
		Payload: models.AttackedUnitPayload{
			AttackerID:       attackerID,
			AttackerPosition: newPos,
			TargetID:         defenderID,
			TargetHealth:     newHealth,
			WinningWallet:    winningWallet,
		},
	}
	return res, finished, nil
}

func (e *Engine) attackBuilding(ctx context.Context, g *models.Game, player *models.Player, attacker *models.Unit, building *models.Building) (*Result, error) {
	if building.Team() == player.Team {
		return nil, Preconditionf("cannot attack a building on your own team")
	}
	if !inRange(e.rules.AllowedAttackSpaces(g, attacker), building.Position) {
		return nil, Preconditionf("target is out of attack range")
	}

	newPos := e.rules.AdjacentFreeTile(g, building.Position, attacker)
	attacker.Position = newPos
	attacker.DidMove = true

	if building.Team() == models.TeamGrey {
		// Neutral buildings are captured, not damaged.
		building.Path = building.Path.Retagged(player.Team)
		building.Health = CaptureHealth
		if err := e.store.UpdateGame(ctx, g); err != nil {
			return nil, err
		}
		return &Result{
			Recipient: g.OpposingPlayer(player.Wallet).Wallet,
			Event:     models.EventCapturedBuilding,
			Payload: models.CapturedBuildingPayload{
				AttackerID:       attacker.ID,
				AttackerPosition: newPos,
				BuildingID:       building.ID,
				BuildingHealth:   building.Health,
				BuildingPath:     building.Path,
			},
		}, nil
	}

	damage := e.rules.BuildingDamage(attacker, building)
	newHealth := building.Health - damage
	if newHealth < 0 {
		newHealth = 0
	}
	building.Health = newHealth
	if newHealth == 0 {
		// Destroyed team buildings revert to neutral.
		building.Path = building.Path.Retagged(models.TeamGrey)
	}
	if err := e.store.UpdateGame(ctx, g); err != nil {
		return nil, err
	}
	return &Result{
		Recipient: g.OpposingPlayer(player.Wallet).Wallet,
		Event:     models.EventAttackedBuilding,
		Payload: models.AttackedBuildingPayload{
			AttackerID:       attacker.ID,
			AttackerPosition: newPos,
			BuildingID:       building.ID,
			BuildingHealth:   newHealth,
			BuildingPath:     building.Path,
		},
	}, nil
}

func (e *Engine) SpawnUnit(ctx context.Context, wallet, gameID, buildingID string, class models.UnitClass, pos models.Position) (*Result, error) {
	var res *Result
	err := e.store.WithTransaction(ctx, func(ctx context.Context) error {
		g, player, err := e.loadActiveGame(ctx, gameID, wallet)
		if err != nil {
			return err
		}
		if !g.IsWalletsTurn(wallet) {
			return Preconditionf("not your turn")
		}
		building := g.BuildingByID(buildingID)
		if building == nil {
			return NotFoundf("building %s not found", buildingID)
		}
		if building.DidSpawn {
			return Preconditionf("building already spawned this turn")
		}
		if building.Team() != player.Team {
			return Preconditionf("building belongs to the other team")
		}
		if !e.rules.IsWalkable(class, pos) {
			return Preconditionf("unit cannot walk at spawn space")
		}
		if !inRange(e.rules.SpawnSpaces(building.Position), pos) {
			return Preconditionf("unit cannot be spawned there from this building")
		}
		cost := e.rules.UnitCost(class)
		if player.Gold < cost {
			return Preconditionf("not enough gold")
		}

		player.Gold -= cost
		unit := models.Unit{
			ID:       uuid.New().String(),
			Path:     models.UnitPath{Team: player.Team, Class: class},
			Position: pos,
			Health:   StartingUnitHealth,
			Fuel:     StartingFuel,
			// A freshly bought unit has spent its action this turn.
			DidMove: true,
		}
		g.Units = append(g.Units, unit)
		building.DidSpawn = true
		if err := e.store.UpdateGame(ctx, g); err != nil {
			return err
		}
		res = &Result{
			Recipient: g.OpposingPlayer(wallet).Wallet,
			Event:     models.EventSpawnedUnit,
			Payload: models.SpawnedUnitPayload{
				Unit:        unit,
				BuildingID:  buildingID,
				Player1Gold: g.Player1.Gold,
				Player2Gold: g.Player2.Gold,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) EndTurn(ctx context.Context, wallet, gameID string) (*Result, error) {
	var res *Result
	err := e.store.WithTransaction(ctx, func(ctx context.Context) error {
		g, _, err := e.loadActiveGame(ctx, gameID, wallet)
		if err != nil {
			return err
		}
		if !g.IsWalletsTurn(wallet) {
			return Preconditionf("not your turn")
		}

		next := g.OpposingPlayer(wallet)
		g.Turn = next.Team
		for i := range g.Units {
			g.Units[i].DidMove = false
		}
		for i := range g.Buildings {
			g.Buildings[i].DidSpawn = false
		}
		// Income accrues to the player about to move, off the post-flip
		// board.
		next.Gold += e.rules.GoldIncome(next.Team, g)
		g.LastMoveTime = e.Now().UnixMilli()

		if err := e.store.UpdateGame(ctx, g); err != nil {
			return err
		}
		res = &Result{
			Recipient: next.Wallet,
			Event:     models.EventTurnEnded,
			Payload: models.TurnEndedPayload{
				Turn:        g.Turn,
				Player1Gold: g.Player1.Gold,
				Player2Gold: g.Player2.Gold,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DeclareVictory is the forfeit-by-timeout check. Only the waiting player
// may call it; before the timeout it commits nothing and reports
// victory=false so the caller can keep polling.
func (e *Engine) DeclareVictory(ctx context.Context, wallet, gameID string) (*Result, error) {
	var res *Result
	var finished *models.Game
	err := e.store.WithTransaction(ctx, func(ctx context.Context) error {
		finished = nil
		g, _, err := e.loadActiveGame(ctx, gameID, wallet)
		if err != nil {
			return err
		}
		if g.IsWalletsTurn(wallet) {
			return Preconditionf("cannot declare victory on your own turn")
		}

		elapsed := e.Now().UnixMilli() - g.LastMoveTime
		victory := elapsed > e.rules.VictoryTimeout().Milliseconds()
		winningWallet := ""
		if victory {
			g.GameOver = true
			g.Winner = wallet
			winningWallet = wallet
			finished = g
			if err := e.store.UpdateGame(ctx, g); err != nil {
				return err
			}
		}
		res = &Result{
			Recipient: g.OpposingPlayer(wallet).Wallet,
			Event:     models.EventVictoryDeclared,
			Payload: models.VictoryDeclaredPayload{
				Victory:       victory,
				WinningWallet: winningWallet,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.archive(finished)
	return res, nil
}

func inRange(spaces []models.Position, pos models.Position) bool {
	for _, s := range spaces {
		if s == pos {
			return true
		}
	}
	return false
}
