package models

// MatchEntry is one wallet waiting in the matchmaking queue. Entries are
// immutable: created on a find-match request, deleted when paired.
type MatchEntry struct {
	ID            string `bson:"_id" json:"id"`
	Wallet        string `bson:"wallet" json:"wallet"`
	WarcatTokenID int64  `bson:"warcatTokenId" json:"warcatTokenId"`
	SearchTime    int64  `bson:"searchTime" json:"searchTime"`
}

// MatchRecord is a finished match as archived in Postgres.
type MatchRecord struct {
	GameID        string `json:"gameId"`
	Player1Wallet string `json:"player1Wallet"`
	Player2Wallet string `json:"player2Wallet"`
	WinnerWallet  string `json:"winnerWallet,omitempty"`
	FinishedAt    int64  `json:"finishedAt"`
}
