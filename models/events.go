package models

// Event names delivered over the notification relay. Clients key their
// animations off these, so they are part of the wire contract.
const (
	EventMatchFound       = "match_found"
	EventUnitMoved        = "unit_moved"
	EventAttackedUnit     = "attacked_unit"
	EventAttackedBuilding = "attacked_building"
	EventCapturedBuilding = "captured_building"
	EventSpawnedUnit      = "spawned_unit"
	EventTurnEnded        = "turn_ended"
	EventVictoryDeclared  = "victory_declared"
)

type MatchFoundPayload struct {
	Game *Game `json:"game"`
}

type UnitMovedPayload struct {
	UnitID   string   `json:"unitId"`
	Position Position `json:"position"`
}

type AttackedUnitPayload struct {
	AttackerID       string   `json:"attackerId"`
	AttackerPosition Position `json:"attackerPosition"`
	TargetID         string   `json:"targetId"`
	TargetHealth     int      `json:"targetHealth"`
	WinningWallet    string   `json:"winningWallet,omitempty"`
}

type AttackedBuildingPayload struct {
	AttackerID       string       `json:"attackerId"`
	AttackerPosition Position     `json:"attackerPosition"`
	BuildingID       string       `json:"buildingId"`
	BuildingHealth   int          `json:"buildingHealth"`
	BuildingPath     BuildingPath `json:"buildingPath"`
}

type CapturedBuildingPayload struct {
	AttackerID       string       `json:"attackerId"`
	AttackerPosition Position     `json:"attackerPosition"`
	BuildingID       string       `json:"buildingId"`
	BuildingHealth   int          `json:"buildingHealth"`
	BuildingPath     BuildingPath `json:"buildingPath"`
}

type SpawnedUnitPayload struct {
	Unit        Unit   `json:"unit"`
	BuildingID  string `json:"buildingId"`
	Player1Gold int    `json:"player1Gold"`
	Player2Gold int    `json:"player2Gold"`
}

type TurnEndedPayload struct {
	Turn        Team `json:"turn"`
	Player1Gold int  `json:"player1Gold"`
	Player2Gold int  `json:"player2Gold"`
}

type VictoryDeclaredPayload struct {
	Victory       bool   `json:"victory"`
	WinningWallet string `json:"winningWallet,omitempty"`
}
