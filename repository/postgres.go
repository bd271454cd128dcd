package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/warcats-game/warcats-backend/config"
	"github.com/warcats-game/warcats-backend/models"
)

func ConnectToPostgreSQL(cfg *config.Config) *sql.DB {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalln(err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		log.Fatal(err)
	}
	PostgreSQLDB = db

	log.Println("Successfully connected to PostgreSQL")
	return db
}

var (
	PostgreSQLDB *sql.DB
)

// MatchArchive records finished games in Postgres. It sits outside the
// game transaction: archival is best effort and never rolls a commit back.
type MatchArchive struct {
	db *sql.DB
}

func NewMatchArchive(db *sql.DB) *MatchArchive {
	return &MatchArchive{db: db}
}

func (a *MatchArchive) ArchiveMatch(g *models.Game) {
	_, err := a.db.Exec(
		"INSERT INTO matches (game_id, player1_wallet, player2_wallet, winner_wallet, finished_at) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (game_id) DO NOTHING",
		g.ID, g.Player1.Wallet, g.Player2.Wallet, g.Winner, time.Now().UTC())
	if err != nil {
		log.Printf("Failed to archive match %s: %v", g.ID, err)
		return
	}
	log.Printf("Match %s archived, winner %q", g.ID, g.Winner)
}

func (a *MatchArchive) ListMatches(wallet string) ([]models.MatchRecord, error) {
	rows, err := a.db.Query(
		"SELECT game_id, player1_wallet, player2_wallet, winner_wallet, finished_at FROM matches WHERE player1_wallet = $1 OR player2_wallet = $1 ORDER BY finished_at DESC",
		wallet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var rec models.MatchRecord
		var finishedAt time.Time
		if err := rows.Scan(&rec.GameID, &rec.Player1Wallet, &rec.Player2Wallet, &rec.WinnerWallet, &finishedAt); err != nil {
			return nil, err
		}
		rec.FinishedAt = finishedAt.UnixMilli()
		records = append(records, rec)
	}
	return records, rows.Err()
}
