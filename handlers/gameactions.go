package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/warcats-game/warcats-backend/models"
)

const actionTimeout = 10 * time.Second

var (
	errMissingPosition  = errors.New("position is required")
	errUnknownUnitClass = errors.New("unknown unit class")
)

// reply and replyError go through the hub rather than straight to c.send:
// the hub closes send channels on reconnect, so only it may write to them.
func (c *Connection) reply(event string, data interface{}) {
	hub.send(c.wallet, models.WsEvent{Event: event, Data: data})
}

func (c *Connection) replyError(action string, err error) {
	log.Printf("Rejected %s from %s: %v", action, c.wallet, err)
	hub.send(c.wallet, models.WsEvent{Event: action, Error: err.Error()})
}

func processMessage(c *Connection, rawMessage []byte) {
	var msg models.GameActionMessage
	if err := json.Unmarshal(rawMessage, &msg); err != nil {
		log.Printf("Error unmarshalling game action message: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	switch msg.Action {
	case "find_match":
		handleFindMatch(ctx, c, msg)
	case "move_unit":
		handleMoveUnit(ctx, c, msg)
	case "attack_unit":
		handleAttackUnit(ctx, c, msg)
	case "spawn_unit":
		handleSpawnUnit(ctx, c, msg)
	case "end_turn":
		handleEndTurn(ctx, c, msg)
	case "declare_victory":
		handleDeclareVictory(ctx, c, msg)
	default:
		log.Printf("Unhandled game action: %s", msg.Action)
	}
}

func handleFindMatch(ctx context.Context, c *Connection, msg models.GameActionMessage) {
	result, err := gameEngine.EnqueueAndMatch(ctx, c.wallet, msg.WarcatTokenID)
	if err != nil {
		c.replyError(msg.Action, err)
		return
	}
	if result == nil {
		c.reply("searching", nil)
		return
	}
	c.reply(result.Event, result.Payload)
	hub.Notify(result.Recipient, result.Event, result.Payload)
}

func handleMoveUnit(ctx context.Context, c *Connection, msg models.GameActionMessage) {
	if msg.Position == nil {
		c.replyError(msg.Action, errMissingPosition)
		return
	}
	result, err := gameEngine.MoveUnit(ctx, c.wallet, msg.GameID, msg.UnitID, *msg.Position)
	if err != nil {
		c.replyError(msg.Action, err)
		return
	}
	c.reply(result.Event, result.Payload)
	hub.Notify(result.Recipient, result.Event, result.Payload)
}

func handleAttackUnit(ctx context.Context, c *Connection, msg models.GameActionMessage) {
	if msg.Position == nil {
		c.replyError(msg.Action, errMissingPosition)
		return
	}
	result, err := gameEngine.AttackUnit(ctx, c.wallet, msg.GameID, msg.UnitID, *msg.Position)
	if err != nil {
		c.replyError(msg.Action, err)
		return
	}
	c.reply(result.Event, result.Payload)
	hub.Notify(result.Recipient, result.Event, result.Payload)
}

func handleSpawnUnit(ctx context.Context, c *Connection, msg models.GameActionMessage) {
	if msg.Position == nil {
		c.replyError(msg.Action, errMissingPosition)
		return
	}
	class, err := parseUnitClass(msg.UnitPath)
	if err != nil {
		c.replyError(msg.Action, err)
		return
	}
	result, err := gameEngine.SpawnUnit(ctx, c.wallet, msg.GameID, msg.BuildingID, class, *msg.Position)
	if err != nil {
		c.replyError(msg.Action, err)
		return
	}
	c.reply(result.Event, result.Payload)
	hub.Notify(result.Recipient, result.Event, result.Payload)
}

func handleEndTurn(ctx context.Context, c *Connection, msg models.GameActionMessage) {
	result, err := gameEngine.EndTurn(ctx, c.wallet, msg.GameID)
	if err != nil {
		c.replyError(msg.Action, err)
		return
	}
	c.reply(result.Event, result.Payload)
	hub.Notify(result.Recipient, result.Event, result.Payload)
}

func handleDeclareVictory(ctx context.Context, c *Connection, msg models.GameActionMessage) {
	result, err := gameEngine.DeclareVictory(ctx, c.wallet, msg.GameID)
	if err != nil {
		c.replyError(msg.Action, err)
		return
	}
	c.reply(result.Event, result.Payload)
	hub.Notify(result.Recipient, result.Event, result.Payload)
}

// parseUnitClass accepts either a bare class ("tank2") or a full tagged
// path ("purple_tank2"); the engine always spawns for the acting team.
func parseUnitClass(s string) (models.UnitClass, error) {
	if strings.Contains(s, "_") {
		path, err := models.ParseUnitPath(s)
		if err != nil {
			return "", err
		}
		return path.Class, nil
	}
	switch c := models.UnitClass(s); c {
	case models.UnitInf1, models.UnitInf2, models.UnitTank1, models.UnitTank2, models.UnitWarcat:
		return c, nil
	}
	return "", errUnknownUnitClass
}
