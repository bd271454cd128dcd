package game

import (
	"context"

	"github.com/google/uuid"
	"github.com/warcats-game/warcats-backend/models"
)

func makeBuilding(team models.Team, class models.BuildingClass, x, y int) models.Building {
	return models.Building{
		ID:       uuid.New().String(),
		Path:     models.BuildingPath{Team: team, Class: class},
		Position: models.Position{X: x, Y: y},
		Health:   StartingBuildingHealth,
	}
}

func makeUnit(team models.Team, class models.UnitClass, x, y int) models.Unit {
	return models.Unit{
		ID:       uuid.New().String(),
		Path:     models.UnitPath{Team: team, Class: class},
		Position: models.Position{X: x, Y: y},
		Health:   StartingUnitHealth,
		Fuel:     StartingFuel,
	}
}

// newGame lays out the fixed starting board. The coordinates are a wire
// contract with the client renderer; changing any of them is a breaking
// change.
func newGame(player1Wallet, player2Wallet string, player1TokenID, player2TokenID int64, now int64) *models.Game {
	buildings := []models.Building{
		makeBuilding(models.TeamGrey, models.BuildingB2, 1, 3),
		makeBuilding(models.TeamRed, models.BuildingB4, 1, 5),
		makeBuilding(models.TeamGrey, models.BuildingB1, 2, 6),
		makeBuilding(models.TeamRed, models.BuildingB3, 3, 7),
		makeBuilding(models.TeamGrey, models.BuildingB2, 4, 5),
		makeBuilding(models.TeamGrey, models.BuildingB2, 5, 8),
		makeBuilding(models.TeamGrey, models.BuildingB2, 2, 3),
		makeBuilding(models.TeamGrey, models.BuildingB2, 9, 4),
		makeBuilding(models.TeamGrey, models.BuildingB2, 12, 8),
		makeBuilding(models.TeamGrey, models.BuildingB2, 13, 8),
		makeBuilding(models.TeamPurple, models.BuildingB4, 13, 3),
		makeBuilding(models.TeamGrey, models.BuildingB1, 12, 2),
		makeBuilding(models.TeamPurple, models.BuildingB3, 11, 1),
		makeBuilding(models.TeamGrey, models.BuildingB2, 13, 5),
		makeBuilding(models.TeamGrey, models.BuildingB2, 11, 4),
		makeBuilding(models.TeamGrey, models.BuildingB2, 9, 2),
	}
	units := []models.Unit{
		makeUnit(models.TeamRed, models.UnitInf1, 4, 3),
		makeUnit(models.TeamRed, models.UnitInf1, 5, 7),
		makeUnit(models.TeamRed, models.UnitTank2, 3, 6),
		makeUnit(models.TeamRed, models.UnitWarcat, 3, 5),
		makeUnit(models.TeamPurple, models.UnitInf1, 9, 2),
		makeUnit(models.TeamPurple, models.UnitInf1, 10, 5),
		makeUnit(models.TeamPurple, models.UnitTank2, 11, 2),
		makeUnit(models.TeamPurple, models.UnitWarcat, 11, 3),
	}

	return &models.Game{
		ID:   uuid.New().String(),
		Turn: models.TeamRed,
		Player1: models.Player{
			Wallet:        player1Wallet,
			Team:          models.TeamRed,
			WarcatTokenID: player1TokenID,
			Gold:          StartingGold,
		},
		Player2: models.Player{
			Wallet:        player2Wallet,
			Team:          models.TeamPurple,
			WarcatTokenID: player2TokenID,
			Gold:          StartingGold,
		},
		Units:        units,
		Buildings:    buildings,
		LastMoveTime: now,
	}
}

// EnqueueAndMatch puts the wallet into the matchmaking queue and pairs it
// with the oldest waiting entry of a different wallet. A nil Result means
// no opponent yet: the entry stays queued. Pairing, game creation and
// removal of both entries commit in one transaction, so an entry can
// never be matched twice.
func (e *Engine) EnqueueAndMatch(ctx context.Context, wallet string, tokenID int64) (*Result, error) {
	var res *Result
	err := e.store.WithTransaction(ctx, func(ctx context.Context) error {
		res = nil
		entries, err := e.store.ListMatchEntries(ctx)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.WarcatTokenID == tokenID {
				return Preconditionf("warcat %d is already in the queue", tokenID)
			}
		}

		if err := e.store.InsertMatchEntry(ctx, &models.MatchEntry{
			ID:            uuid.New().String(),
			Wallet:        wallet,
			WarcatTokenID: tokenID,
			SearchTime:    e.Now().UnixMilli(),
		}); err != nil {
			return err
		}

		// Oldest searchTime first; a wallet never matches itself.
		for _, entry := range entries {
			if entry.Wallet == wallet {
				continue
			}
			g := newGame(entry.Wallet, wallet, entry.WarcatTokenID, tokenID, e.Now().UnixMilli())
			if err := e.store.CreateGame(ctx, g); err != nil {
				return err
			}
			if err := e.store.DeleteMatchEntry(ctx, wallet, tokenID); err != nil {
				return err
			}
			if err := e.store.DeleteMatchEntry(ctx, entry.Wallet, entry.WarcatTokenID); err != nil {
				return err
			}
			res = &Result{
				Recipient: entry.Wallet,
				Event:     models.EventMatchFound,
				Payload:   models.MatchFoundPayload{Game: g},
			}
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
