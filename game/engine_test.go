package game_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warcats-game/warcats-backend/game"
	"github.com/warcats-game/warcats-backend/models"
	"github.com/warcats-game/warcats-backend/repository"
	"github.com/warcats-game/warcats-backend/rules"
)

const (
	walletRed    = "0xaaa111"
	walletPurple = "0xbbb222"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestEngine() (*game.Engine, *repository.MemoryStore, *testClock) {
	store := repository.NewMemoryStore()
	clock := &testClock{now: time.Unix(1700000000, 0)}
	e := game.NewEngine(store, rules.New())
	e.Now = clock.Now
	return e, store, clock
}

func seedGame(t *testing.T, store *repository.MemoryStore, g *models.Game) {
	t.Helper()
	err := store.WithTransaction(context.Background(), func(ctx context.Context) error {
		return store.CreateGame(ctx, g)
	})
	require.NoError(t, err)
}

func fetchGame(t *testing.T, store *repository.MemoryStore, id string) *models.Game {
	t.Helper()
	var g *models.Game
	err := store.WithTransaction(context.Background(), func(ctx context.Context) error {
		var err error
		g, err = store.FindGame(ctx, id)
		return err
	})
	require.NoError(t, err)
	return g
}

func testUnit(id string, team models.Team, class models.UnitClass, x, y, health int) models.Unit {
	return models.Unit{
		ID:       id,
		Path:     models.UnitPath{Team: team, Class: class},
		Position: models.Position{X: x, Y: y},
		Health:   health,
		Fuel:     game.StartingFuel,
	}
}

func testBuilding(id string, team models.Team, class models.BuildingClass, x, y, health int) models.Building {
	return models.Building{
		ID:       id,
		Path:     models.BuildingPath{Team: team, Class: class},
		Position: models.Position{X: x, Y: y},
		Health:   health,
	}
}

func twoPlayerGame(units []models.Unit, buildings []models.Building) *models.Game {
	return &models.Game{
		ID:   "game-1",
		Turn: models.TeamRed,
		Player1: models.Player{
			Wallet:        walletRed,
			Team:          models.TeamRed,
			WarcatTokenID: 1,
			Gold:          game.StartingGold,
		},
		Player2: models.Player{
			Wallet:        walletPurple,
			Team:          models.TeamPurple,
			WarcatTokenID: 2,
			Gold:          game.StartingGold,
		},
		Units:        units,
		Buildings:    buildings,
		LastMoveTime: time.Unix(1700000000, 0).UnixMilli(),
	}
}

func TestMoveUnit(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("u1", models.TeamRed, models.UnitInf1, 4, 3, 10),
	}, nil)
	seedGame(t, store, g)

	res, err := e.MoveUnit(context.Background(), walletRed, g.ID, "u1", models.Position{X: 4, Y: 4})
	require.NoError(t, err)
	assert.Equal(t, walletPurple, res.Recipient)
	assert.Equal(t, models.EventUnitMoved, res.Event)
	assert.Equal(t, models.UnitMovedPayload{UnitID: "u1", Position: models.Position{X: 4, Y: 4}}, res.Payload)

	stored := fetchGame(t, store, g.ID)
	unit := stored.UnitByID("u1")
	require.NotNil(t, unit)
	assert.Equal(t, models.Position{X: 4, Y: 4}, unit.Position)
	assert.True(t, unit.DidMove)
}

func TestMoveUnitTwiceRejected(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("u1", models.TeamRed, models.UnitInf1, 4, 3, 10),
	}, nil)
	seedGame(t, store, g)

	_, err := e.MoveUnit(context.Background(), walletRed, g.ID, "u1", models.Position{X: 4, Y: 4})
	require.NoError(t, err)

	_, err = e.MoveUnit(context.Background(), walletRed, g.ID, "u1", models.Position{X: 4, Y: 5})
	require.Error(t, err)
	assert.Equal(t, game.KindPrecondition, game.KindOf(err))

	stored := fetchGame(t, store, g.ID)
	assert.Equal(t, models.Position{X: 4, Y: 4}, stored.UnitByID("u1").Position)
}

func TestMoveUnitWrongTurnRejected(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("p1", models.TeamPurple, models.UnitInf1, 9, 2, 10),
	}, nil)
	seedGame(t, store, g)

	_, err := e.MoveUnit(context.Background(), walletPurple, g.ID, "p1", models.Position{X: 9, Y: 3})
	require.Error(t, err)
	assert.Equal(t, game.KindPrecondition, game.KindOf(err))
	assert.Contains(t, err.Error(), "not your turn")

	stored := fetchGame(t, store, g.ID)
	unit := stored.UnitByID("p1")
	assert.Equal(t, models.Position{X: 9, Y: 2}, unit.Position)
	assert.False(t, unit.DidMove)
}

func TestMoveForeignUnitRejected(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("p1", models.TeamPurple, models.UnitInf1, 9, 2, 10),
	}, nil)
	seedGame(t, store, g)

	_, err := e.MoveUnit(context.Background(), walletRed, g.ID, "p1", models.Position{X: 9, Y: 3})
	require.Error(t, err)
	assert.Equal(t, game.KindPrecondition, game.KindOf(err))
}

func TestMoveUnknownUnit(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame(nil, nil)
	seedGame(t, store, g)

	_, err := e.MoveUnit(context.Background(), walletRed, g.ID, "nope", models.Position{X: 1, Y: 1})
	require.Error(t, err)
	assert.Equal(t, game.KindNotFound, game.KindOf(err))
}

func TestAttackUnitDamages(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("r1", models.TeamRed, models.UnitInf1, 5, 5, 10),
		testUnit("p1", models.TeamPurple, models.UnitInf1, 5, 6, 10),
	}, nil)
	seedGame(t, store, g)

	res, err := e.AttackUnit(context.Background(), walletRed, g.ID, "r1", models.Position{X: 5, Y: 6})
	require.NoError(t, err)
	assert.Equal(t, models.EventAttackedUnit, res.Event)

	payload := res.Payload.(models.AttackedUnitPayload)
	assert.Equal(t, "r1", payload.AttackerID)
	assert.Equal(t, "p1", payload.TargetID)
	assert.Equal(t, 7, payload.TargetHealth) // inf1 power 3, no armor
	assert.Empty(t, payload.WinningWallet)

	stored := fetchGame(t, store, g.ID)
	assert.Equal(t, 7, stored.UnitByID("p1").Health)
	assert.True(t, stored.UnitByID("r1").DidMove)
}

func TestAttackRemovesDeadUnit(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("r1", models.TeamRed, models.UnitTank2, 5, 5, 10),
		testUnit("p1", models.TeamPurple, models.UnitInf1, 5, 6, 2),
	}, nil)
	seedGame(t, store, g)

	res, err := e.AttackUnit(context.Background(), walletRed, g.ID, "r1", models.Position{X: 5, Y: 6})
	require.NoError(t, err)

	payload := res.Payload.(models.AttackedUnitPayload)
	assert.Equal(t, 0, payload.TargetHealth)
	assert.Empty(t, payload.WinningWallet)

	stored := fetchGame(t, store, g.ID)
	assert.Nil(t, stored.UnitByID("p1"))
	assert.False(t, stored.GameOver)
}

func TestAttackWarcatKillWinsGame(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("r1", models.TeamRed, models.UnitTank2, 5, 5, 10),
		testUnit("p-warcat", models.TeamPurple, models.UnitWarcat, 5, 6, 2),
	}, nil)
	seedGame(t, store, g)

	res, err := e.AttackUnit(context.Background(), walletRed, g.ID, "r1", models.Position{X: 5, Y: 6})
	require.NoError(t, err)

	payload := res.Payload.(models.AttackedUnitPayload)
	assert.Equal(t, 0, payload.TargetHealth)
	assert.Equal(t, walletRed, payload.WinningWallet)
	assert.Equal(t, walletPurple, res.Recipient)

	stored := fetchGame(t, store, g.ID)
	assert.True(t, stored.GameOver)
	assert.Equal(t, walletRed, stored.Winner)
	assert.Nil(t, stored.UnitByID("p-warcat"))
}

func TestAttackOwnTeamRejected(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("r1", models.TeamRed, models.UnitInf1, 5, 5, 10),
		testUnit("r2", models.TeamRed, models.UnitInf1, 5, 6, 10),
	}, nil)
	seedGame(t, store, g)

	_, err := e.AttackUnit(context.Background(), walletRed, g.ID, "r1", models.Position{X: 5, Y: 6})
	require.Error(t, err)
	assert.Equal(t, game.KindPrecondition, game.KindOf(err))

	stored := fetchGame(t, store, g.ID)
	assert.Equal(t, 10, stored.UnitByID("r2").Health)
	assert.False(t, stored.UnitByID("r1").DidMove)
}

func TestAttackOutOfRangeRejected(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("r1", models.TeamRed, models.UnitInf1, 2, 2, 10),
		testUnit("p1", models.TeamPurple, models.UnitInf1, 9, 2, 10),
	}, nil)
	seedGame(t, store, g)

	_, err := e.AttackUnit(context.Background(), walletRed, g.ID, "r1", models.Position{X: 9, Y: 2})
	require.Error(t, err)
	assert.Equal(t, game.KindPrecondition, game.KindOf(err))
}

func TestAttackEmptyTile(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("r1", models.TeamRed, models.UnitInf1, 2, 2, 10),
	}, nil)
	seedGame(t, store, g)

	_, err := e.AttackUnit(context.Background(), walletRed, g.ID, "r1", models.Position{X: 2, Y: 3})
	require.Error(t, err)
	assert.Equal(t, game.KindNotFound, game.KindOf(err))
}

func TestCaptureNeutralBuilding(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("r1", models.TeamRed, models.UnitInf1, 2, 2, 10),
	}, []models.Building{
		testBuilding("b1", models.TeamGrey, models.BuildingB2, 2, 3, 10),
	})
	seedGame(t, store, g)

	res, err := e.AttackUnit(context.Background(), walletRed, g.ID, "r1", models.Position{X: 2, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, models.EventCapturedBuilding, res.Event)

	payload := res.Payload.(models.CapturedBuildingPayload)
	assert.Equal(t, models.BuildingPath{Team: models.TeamRed, Class: models.BuildingB2}, payload.BuildingPath)
	assert.Equal(t, game.CaptureHealth, payload.BuildingHealth)
	// The attacker was already adjacent, it holds its tile.
	assert.Equal(t, models.Position{X: 2, Y: 2}, payload.AttackerPosition)

	stored := fetchGame(t, store, g.ID)
	b := stored.BuildingByID("b1")
	assert.Equal(t, models.TeamRed, b.Team())
	assert.Equal(t, game.CaptureHealth, b.Health)
	assert.True(t, stored.UnitByID("r1").DidMove)
}

func TestAttackEnemyBuildingDamages(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("r1", models.TeamRed, models.UnitInf1, 2, 2, 10),
	}, []models.Building{
		testBuilding("b1", models.TeamPurple, models.BuildingB3, 2, 3, 10),
	})
	seedGame(t, store, g)

	res, err := e.AttackUnit(context.Background(), walletRed, g.ID, "r1", models.Position{X: 2, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, models.EventAttackedBuilding, res.Event)

	payload := res.Payload.(models.AttackedBuildingPayload)
	assert.Equal(t, 7, payload.BuildingHealth) // inf1 power 3
	assert.Equal(t, models.TeamPurple, payload.BuildingPath.Team)

	stored := fetchGame(t, store, g.ID)
	assert.Equal(t, 7, stored.BuildingByID("b1").Health)
}

func TestDestroyedBuildingRevertsToNeutral(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("r1", models.TeamRed, models.UnitTank2, 2, 2, 10),
	}, []models.Building{
		testBuilding("b1", models.TeamPurple, models.BuildingB3, 2, 3, 5),
	})
	seedGame(t, store, g)

	res, err := e.AttackUnit(context.Background(), walletRed, g.ID, "r1", models.Position{X: 2, Y: 3})
	require.NoError(t, err)

	payload := res.Payload.(models.AttackedBuildingPayload)
	assert.Equal(t, 0, payload.BuildingHealth)
	assert.Equal(t, models.TeamGrey, payload.BuildingPath.Team)

	stored := fetchGame(t, store, g.ID)
	b := stored.BuildingByID("b1")
	assert.Equal(t, models.TeamGrey, b.Team())
	assert.Equal(t, models.BuildingB3, b.Path.Class)
}

func TestSpawnUnit(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame(nil, []models.Building{
		testBuilding("b1", models.TeamRed, models.BuildingB4, 1, 5, 10),
	})
	seedGame(t, store, g)

	res, err := e.SpawnUnit(context.Background(), walletRed, g.ID, "b1", models.UnitInf1, models.Position{X: 1, Y: 4})
	require.NoError(t, err)
	assert.Equal(t, models.EventSpawnedUnit, res.Event)

	payload := res.Payload.(models.SpawnedUnitPayload)
	assert.Equal(t, models.UnitPath{Team: models.TeamRed, Class: models.UnitInf1}, payload.Unit.Path)
	assert.True(t, payload.Unit.DidMove)
	assert.Equal(t, game.StartingGold-200, payload.Player1Gold)
	assert.Equal(t, game.StartingGold, payload.Player2Gold)

	stored := fetchGame(t, store, g.ID)
	require.Len(t, stored.Units, 1)
	assert.Equal(t, game.StartingUnitHealth, stored.Units[0].Health)
	assert.True(t, stored.BuildingByID("b1").DidSpawn)
	assert.Equal(t, game.StartingGold-200, stored.Player1.Gold)
}

func TestSpawnTwiceSameBuildingRejected(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame(nil, []models.Building{
		testBuilding("b1", models.TeamRed, models.BuildingB4, 1, 5, 10),
	})
	seedGame(t, store, g)

	_, err := e.SpawnUnit(context.Background(), walletRed, g.ID, "b1", models.UnitInf1, models.Position{X: 1, Y: 4})
	require.NoError(t, err)

	_, err = e.SpawnUnit(context.Background(), walletRed, g.ID, "b1", models.UnitInf1, models.Position{X: 0, Y: 5})
	require.Error(t, err)
	assert.Equal(t, game.KindPrecondition, game.KindOf(err))

	stored := fetchGame(t, store, g.ID)
	assert.Len(t, stored.Units, 1)
}

func TestSpawnInsufficientGoldRejected(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame(nil, []models.Building{
		testBuilding("b1", models.TeamRed, models.BuildingB4, 1, 5, 10),
	})
	g.Player1.Gold = 100
	seedGame(t, store, g)

	_, err := e.SpawnUnit(context.Background(), walletRed, g.ID, "b1", models.UnitTank2, models.Position{X: 1, Y: 4})
	require.Error(t, err)
	assert.Equal(t, game.KindPrecondition, game.KindOf(err))
	assert.Contains(t, err.Error(), "not enough gold")

	stored := fetchGame(t, store, g.ID)
	assert.Equal(t, 100, stored.Player1.Gold)
	assert.Empty(t, stored.Units)
	assert.False(t, stored.BuildingByID("b1").DidSpawn)
}

func TestSpawnOutsideAdjacencyRejected(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame(nil, []models.Building{
		testBuilding("b1", models.TeamRed, models.BuildingB4, 1, 5, 10),
	})
	seedGame(t, store, g)

	_, err := e.SpawnUnit(context.Background(), walletRed, g.ID, "b1", models.UnitInf1, models.Position{X: 5, Y: 5})
	require.Error(t, err)
	assert.Equal(t, game.KindPrecondition, game.KindOf(err))
}

func TestSpawnFromEnemyBuildingRejected(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame(nil, []models.Building{
		testBuilding("b1", models.TeamPurple, models.BuildingB4, 13, 3, 10),
	})
	seedGame(t, store, g)

	_, err := e.SpawnUnit(context.Background(), walletRed, g.ID, "b1", models.UnitInf1, models.Position{X: 13, Y: 4})
	require.Error(t, err)
	assert.Equal(t, game.KindPrecondition, game.KindOf(err))
}

func TestEndTurnFlipsAndResets(t *testing.T) {
	e, store, clock := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("r1", models.TeamRed, models.UnitInf1, 4, 3, 10),
	}, []models.Building{
		testBuilding("b1", models.TeamRed, models.BuildingB4, 1, 5, 10),
		testBuilding("b2", models.TeamPurple, models.BuildingB4, 13, 3, 10),
		testBuilding("b3", models.TeamPurple, models.BuildingB3, 11, 1, 10),
	})
	seedGame(t, store, g)

	_, err := e.MoveUnit(context.Background(), walletRed, g.ID, "r1", models.Position{X: 4, Y: 4})
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	res, err := e.EndTurn(context.Background(), walletRed, g.ID)
	require.NoError(t, err)
	assert.Equal(t, walletPurple, res.Recipient)

	payload := res.Payload.(models.TurnEndedPayload)
	assert.Equal(t, models.TeamPurple, payload.Turn)
	// Income goes to the player about to move: two purple buildings.
	assert.Equal(t, game.StartingGold+200, payload.Player2Gold)
	assert.Equal(t, game.StartingGold, payload.Player1Gold)

	stored := fetchGame(t, store, g.ID)
	assert.Equal(t, models.TeamPurple, stored.Turn)
	assert.False(t, stored.UnitByID("r1").DidMove)
	assert.Equal(t, clock.Now().UnixMilli(), stored.LastMoveTime)

	// Purple can act now, red cannot.
	_, err = e.EndTurn(context.Background(), walletRed, g.ID)
	require.Error(t, err)
	_, err = e.EndTurn(context.Background(), walletPurple, g.ID)
	require.NoError(t, err)
}

func TestDeclareVictoryBeforeTimeout(t *testing.T) {
	e, store, clock := newTestEngine()
	g := twoPlayerGame(nil, nil)
	g.LastMoveTime = clock.Now().UnixMilli()
	seedGame(t, store, g)

	clock.Advance(time.Minute)
	res, err := e.DeclareVictory(context.Background(), walletPurple, g.ID)
	require.NoError(t, err)

	payload := res.Payload.(models.VictoryDeclaredPayload)
	assert.False(t, payload.Victory)
	assert.Empty(t, payload.WinningWallet)

	stored := fetchGame(t, store, g.ID)
	assert.False(t, stored.GameOver)
}

func TestDeclareVictoryAfterTimeout(t *testing.T) {
	e, store, clock := newTestEngine()
	g := twoPlayerGame(nil, nil)
	g.LastMoveTime = clock.Now().UnixMilli()
	seedGame(t, store, g)

	clock.Advance(rules.VictoryTimeout + time.Second)
	res, err := e.DeclareVictory(context.Background(), walletPurple, g.ID)
	require.NoError(t, err)

	payload := res.Payload.(models.VictoryDeclaredPayload)
	assert.True(t, payload.Victory)
	assert.Equal(t, walletPurple, payload.WinningWallet)

	stored := fetchGame(t, store, g.ID)
	assert.True(t, stored.GameOver)
	assert.Equal(t, walletPurple, stored.Winner)
}

func TestDeclareVictoryOnOwnTurnRejected(t *testing.T) {
	e, store, clock := newTestEngine()
	g := twoPlayerGame(nil, nil)
	seedGame(t, store, g)

	clock.Advance(rules.VictoryTimeout + time.Second)
	_, err := e.DeclareVictory(context.Background(), walletRed, g.ID)
	require.Error(t, err)
	assert.Equal(t, game.KindPrecondition, game.KindOf(err))

	stored := fetchGame(t, store, g.ID)
	assert.False(t, stored.GameOver)
}

func TestFinishedGameRejectsActions(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame([]models.Unit{
		testUnit("r1", models.TeamRed, models.UnitInf1, 4, 3, 10),
	}, nil)
	g.GameOver = true
	seedGame(t, store, g)

	_, err := e.MoveUnit(context.Background(), walletRed, g.ID, "r1", models.Position{X: 4, Y: 4})
	require.Error(t, err)
	assert.Equal(t, game.KindPrecondition, game.KindOf(err))

	_, err = e.EndTurn(context.Background(), walletRed, g.ID)
	require.Error(t, err)

	_, err = e.DeclareVictory(context.Background(), walletPurple, g.ID)
	require.Error(t, err)
}

func TestFindActiveGameRebindsWallet(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame(nil, nil)
	seedGame(t, store, g)

	// Token 2 changed hands: the new owner takes over the purple slot.
	found, err := e.FindActiveGame(context.Background(), "0xccc333", 2)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "0xccc333", found.Player2.Wallet)

	stored := fetchGame(t, store, g.ID)
	assert.Equal(t, "0xccc333", stored.Player2.Wallet)
}

func TestFindActiveGameSelfPlayGuard(t *testing.T) {
	e, store, _ := newTestEngine()
	g := twoPlayerGame(nil, nil)
	seedGame(t, store, g)

	// The red wallet acquires the purple token too: the game terminates.
	found, err := e.FindActiveGame(context.Background(), walletRed, 2)
	require.NoError(t, err)
	assert.Nil(t, found)

	stored := fetchGame(t, store, g.ID)
	assert.True(t, stored.GameOver)
}

func TestFindActiveGameNone(t *testing.T) {
	e, _, _ := newTestEngine()

	found, err := e.FindActiveGame(context.Background(), walletRed, 99)
	require.NoError(t, err)
	assert.Nil(t, found)
}
