package models

// GameActionMessage is the envelope clients send over the websocket. Only
// the fields relevant to the named action are populated.
type GameActionMessage struct {
	Action        string    `json:"action"`
	GameID        string    `json:"gameId,omitempty"`
	UnitID        string    `json:"unitId,omitempty"`
	BuildingID    string    `json:"buildingId,omitempty"`
	UnitPath      string    `json:"unitPath,omitempty"`
	WarcatTokenID int64     `json:"warcatTokenId,omitempty"`
	Position      *Position `json:"position,omitempty"`
}

// WsEvent is what goes back out: either a reply to the acting client or a
// relayed notification to the opponent.
type WsEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}
