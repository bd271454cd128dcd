package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/warcats-game/warcats-backend/config"
	"github.com/warcats-game/warcats-backend/game"
	"github.com/warcats-game/warcats-backend/handlers"
	"github.com/warcats-game/warcats-backend/repository"
	"github.com/warcats-game/warcats-backend/rules"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	cfg := config.LoadConfig()
	db := repository.ConnectToPostgreSQL(cfg)
	client := repository.ConnectMongoDB(cfg)

	store := repository.NewMongoStore(client, cfg.MongoDBName)
	archive := repository.NewMatchArchive(db)
	engine := game.NewEngine(store, rules.New())
	engine.Archive = archive

	handlers.Configure(engine)
	handlers.ConfigureArchive(archive)

	r := handlers.NewRouter()

	log.Printf("Server running on http://localhost:%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
