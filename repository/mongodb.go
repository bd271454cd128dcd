package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/warcats-game/warcats-backend/config"
	"github.com/warcats-game/warcats-backend/game"
	"github.com/warcats-game/warcats-backend/models"
)

var errDuplicateID = errors.New("duplicate game id")

func ConnectMongoDB(cfg *config.Config) *mongo.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal(err)
	}

	log.Println("Successfully connected to MongoDB")
	MongoDBClient = client
	return client
}

var (
	MongoDBClient *mongo.Client
)

// MongoStore implements game.Store on top of MongoDB. Transactions use
// driver sessions; the session travels in the context handed to the
// callback, so every store call inside the transaction joins it. Game
// updates compare-and-swap on the version field as a second guard.
type MongoStore struct {
	client  *mongo.Client
	games   *mongo.Collection
	entries *mongo.Collection
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		client:  client,
		games:   db.Collection("games"),
		entries: db.Collection("match_entries"),
	}
}

func (s *MongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return game.StoreError(err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		var ge *game.Error
		if errors.As(err, &ge) {
			return ge
		}
		if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
			return game.StoreError(err)
		}
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.HasErrorLabel("TransientTransactionError") {
			return game.ErrConflict
		}
		return game.StoreError(err)
	}
	return nil
}

func (s *MongoStore) FindGame(ctx context.Context, id string) (*models.Game, error) {
	var g models.Game
	err := s.games.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, game.NotFoundf("game %s not found", id)
	}
	if err != nil {
		return nil, game.StoreError(err)
	}
	return &g, nil
}

func (s *MongoStore) FindActiveGameByToken(ctx context.Context, tokenID int64) (*models.Game, error) {
	filter := bson.M{
		"gameOver": false,
		"$or": bson.A{
			bson.M{"player1.warcatTokenId": tokenID},
			bson.M{"player2.warcatTokenId": tokenID},
		},
	}
	var g models.Game
	err := s.games.FindOne(ctx, filter).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, game.StoreError(err)
	}
	return &g, nil
}

func (s *MongoStore) CreateGame(ctx context.Context, g *models.Game) error {
	if _, err := s.games.InsertOne(ctx, g); err != nil {
		return game.StoreError(err)
	}
	return nil
}

func (s *MongoStore) UpdateGame(ctx context.Context, g *models.Game) error {
	prev := g.Version
	g.Version++
	res, err := s.games.ReplaceOne(ctx, bson.M{"_id": g.ID, "version": prev}, g)
	if err != nil {
		g.Version = prev
		return game.StoreError(err)
	}
	if res.MatchedCount == 0 {
		g.Version = prev
		return game.ErrConflict
	}
	return nil
}

func (s *MongoStore) InsertMatchEntry(ctx context.Context, e *models.MatchEntry) error {
	if _, err := s.entries.InsertOne(ctx, e); err != nil {
		return game.StoreError(err)
	}
	return nil
}

func (s *MongoStore) ListMatchEntries(ctx context.Context) ([]models.MatchEntry, error) {
	cursor, err := s.entries.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"searchTime": 1}))
	if err != nil {
		return nil, game.StoreError(err)
	}
	var entries []models.MatchEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, game.StoreError(err)
	}
	return entries, nil
}

func (s *MongoStore) DeleteMatchEntry(ctx context.Context, wallet string, tokenID int64) error {
	_, err := s.entries.DeleteOne(ctx, bson.M{"wallet": wallet, "warcatTokenId": tokenID})
	if err != nil {
		return game.StoreError(err)
	}
	return nil
}
