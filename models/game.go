package models

type Position struct {
	X int `bson:"x" json:"x"`
	Y int `bson:"y" json:"y"`
}

type Player struct {
	Wallet        string `bson:"wallet" json:"wallet"`
	Team          Team   `bson:"team" json:"team"`
	WarcatTokenID int64  `bson:"warcatTokenId" json:"warcatTokenId"`
	Gold          int    `bson:"gold" json:"gold"`
}

type Unit struct {
	ID       string   `bson:"id" json:"id"`
	Path     UnitPath `bson:"path" json:"path"`
	Position Position `bson:"position" json:"position"`
	Health   int      `bson:"health" json:"health"`
	Fuel     int      `bson:"fuel" json:"fuel"`
	DidMove  bool     `bson:"didMove" json:"didMove"`
}

func (u *Unit) Team() Team {
	return u.Path.Team
}

func (u *Unit) OnPosition(pos Position) bool {
	return u.Position == pos
}

type Building struct {
	ID       string       `bson:"id" json:"id"`
	Path     BuildingPath `bson:"path" json:"path"`
	Position Position     `bson:"position" json:"position"`
	Health   int          `bson:"health" json:"health"`
	DidSpawn bool         `bson:"didSpawn" json:"didSpawn"`
}

func (b *Building) Team() Team {
	return b.Path.Team
}

func (b *Building) OnPosition(pos Position) bool {
	return b.Position == pos
}

// Game is the canonical session document. Version is bumped on every
// committed update and guards against concurrent writers.
type Game struct {
	ID           string     `bson:"_id" json:"id"`
	Version      int64      `bson:"version" json:"-"`
	Turn         Team       `bson:"turn" json:"turn"`
	Player1      Player     `bson:"player1" json:"player1"`
	Player2      Player     `bson:"player2" json:"player2"`
	Units        []Unit     `bson:"units" json:"units"`
	Buildings    []Building `bson:"buildings" json:"buildings"`
	GameOver     bool       `bson:"gameOver" json:"gameOver"`
	Winner       string     `bson:"winner,omitempty" json:"winner,omitempty"`
	LastMoveTime int64      `bson:"lastMoveTime" json:"lastMoveTime"`
}

func (g *Game) PlayerWithWallet(wallet string) *Player {
	if g.Player1.Wallet == wallet {
		return &g.Player1
	}
	if g.Player2.Wallet == wallet {
		return &g.Player2
	}
	return nil
}

func (g *Game) OpposingPlayer(wallet string) *Player {
	if g.Player1.Wallet == wallet {
		return &g.Player2
	}
	return &g.Player1
}

func (g *Game) IsWalletsTurn(wallet string) bool {
	p := g.PlayerWithWallet(wallet)
	return p != nil && p.Team == g.Turn
}

func (g *Game) UnitByID(id string) *Unit {
	for i := range g.Units {
		if g.Units[i].ID == id {
			return &g.Units[i]
		}
	}
	return nil
}

func (g *Game) UnitAt(pos Position) *Unit {
	for i := range g.Units {
		if g.Units[i].OnPosition(pos) {
			return &g.Units[i]
		}
	}
	return nil
}

func (g *Game) BuildingByID(id string) *Building {
	for i := range g.Buildings {
		if g.Buildings[i].ID == id {
			return &g.Buildings[i]
		}
	}
	return nil
}

func (g *Game) BuildingAt(pos Position) *Building {
	for i := range g.Buildings {
		if g.Buildings[i].OnPosition(pos) {
			return &g.Buildings[i]
		}
	}
	return nil
}

func (g *Game) RemoveUnit(id string) {
	for i := range g.Units {
		if g.Units[i].ID == id {
			g.Units = append(g.Units[:i], g.Units[i+1:]...)
			return
		}
	}
}
