// Package mongostore is the durable Store driver, backed by
// go.mongodb.org/mongo-driver.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"mahjong/internal/ai"
	"mahjong/internal/config"
	"mahjong/internal/logx"
	"mahjong/internal/mahjong/text"
	"mahjong/internal/store"
)

// Store is the Mongo-backed implementation of store.Store. A Game is
// persisted as its text summary, not a field-by-field
// document, so the wire format and the persisted format share one encoder.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to Mongo per cfg, pinging once before returning so startup
// fails fast on a bad DSN, matching common/database.NewMongo.
func New(ctx context.Context, cfg config.MongoConf) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URL)
	if cfg.MinPoolSize > 0 {
		opts.SetMinPoolSize(uint64(cfg.MinPoolSize))
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}
	if cfg.Username != "" && cfg.Password != "" {
		opts.SetAuth(options.Credential{Username: cfg.Username, Password: cfg.Password})
	}

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}

	return &Store{client: client, db: client.Database(cfg.DB)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

type gameDoc struct {
	ID      string   `bson:"_id"`
	Name    string   `bson:"name"`
	Players []string `bson:"players"`
	Summary string   `bson:"summary"`
	AI      aiDoc    `bson:"ai"`
}

type aiDoc struct {
	AIPlayerIDs            []string `bson:"ai_player_ids"`
	ClaimAutoStopPlayerIDs []string `bson:"claim_auto_stop_player_ids"`
	CanPassTurn            bool     `bson:"can_pass_turn"`
	CanDrawRound           bool     `bson:"can_draw_round"`
	DrawTileForRealPlayer  bool     `bson:"draw_tile_for_real_player"`
	SortOnDraw             bool     `bson:"sort_on_draw"`
	WithDeadWall           bool     `bson:"with_dead_wall"`
}

func toAIDoc(cfg ai.Config) aiDoc {
	return aiDoc{
		AIPlayerIDs:            keys(cfg.AIPlayerIDs),
		ClaimAutoStopPlayerIDs: keys(cfg.ClaimAutoStopPlayerIDs),
		CanPassTurn:            cfg.CanPassTurn,
		CanDrawRound:           cfg.CanDrawRound,
		DrawTileForRealPlayer:  cfg.DrawTileForRealPlayer,
		SortOnDraw:             cfg.SortOnDraw,
		WithDeadWall:           cfg.WithDeadWall,
	}
}

func fromAIDoc(d aiDoc) ai.Config {
	return ai.Config{
		AIPlayerIDs:            set(d.AIPlayerIDs),
		ClaimAutoStopPlayerIDs: set(d.ClaimAutoStopPlayerIDs),
		CanPassTurn:            d.CanPassTurn,
		CanDrawRound:           d.CanDrawRound,
		DrawTileForRealPlayer:  d.DrawTileForRealPlayer,
		SortOnDraw:             d.SortOnDraw,
		WithDeadWall:           d.WithDeadWall,
	}
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	return out
}

func set(keys []string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

func (s *Store) games() *mongo.Collection   { return s.db.Collection("games") }
func (s *Store) players() *mongo.Collection { return s.db.Collection("players") }
func (s *Store) auth() *mongo.Collection    { return s.db.Collection("auth_info") }

func (s *Store) GetGame(ctx context.Context, id string, useCache bool) (*store.ServiceGame, error) {
	var doc gameDoc
	err := s.games().FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		logx.Error("mongostore: get game failed", "id", id, "err", err)
		return nil, err
	}

	game, err := text.ParseSummary(doc.Summary)
	if err != nil {
		return nil, fmt.Errorf("mongostore: decode summary for %s: %w", id, err)
	}
	game.ID = doc.ID
	game.Name = doc.Name
	game.Players = doc.Players

	return &store.ServiceGame{
		ID:      doc.ID,
		Name:    doc.Name,
		Game:    game,
		AI:      fromAIDoc(doc.AI),
		Players: doc.Players,
	}, nil
}

func (s *Store) SaveGame(ctx context.Context, sg *store.ServiceGame) error {
	doc := gameDoc{
		ID:      sg.ID,
		Name:    sg.Name,
		Players: sg.Players,
		Summary: text.EncodeSummary(sg.Game),
		AI:      toAIDoc(sg.AI),
	}
	upsert := true
	_, err := s.games().ReplaceOne(ctx, bson.M{"_id": sg.ID}, doc, &options.ReplaceOptions{Upsert: &upsert})
	if err != nil {
		logx.Error("mongostore: save game failed", "id", sg.ID, "err", err)
	}
	return err
}

func (s *Store) GetPlayerGames(ctx context.Context, playerID string) ([]*store.ServiceGame, error) {
	cur, err := s.games().Find(ctx, bson.M{"players": playerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var games []*store.ServiceGame
	for cur.Next(ctx) {
		var doc gameDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		game, err := text.ParseSummary(doc.Summary)
		if err != nil {
			continue
		}
		game.ID = doc.ID
		game.Name = doc.Name
		game.Players = doc.Players
		games = append(games, &store.ServiceGame{ID: doc.ID, Name: doc.Name, Game: game, AI: fromAIDoc(doc.AI), Players: doc.Players})
	}
	return games, cur.Err()
}

type playerDoc struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

func (s *Store) GetPlayer(ctx context.Context, id string) (*store.Player, error) {
	var doc playerDoc
	err := s.players().FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store.Player{ID: doc.ID, Name: doc.Name}, nil
}

func (s *Store) SavePlayer(ctx context.Context, p *store.Player) error {
	upsert := true
	_, err := s.players().ReplaceOne(ctx, bson.M{"_id": p.ID}, playerDoc{ID: p.ID, Name: p.Name}, &options.ReplaceOptions{Upsert: &upsert})
	return err
}

func (s *Store) DeleteGames(ctx context.Context, ids []string) error {
	_, err := s.games().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

type authDoc struct {
	Lookup   string `bson:"_id"`
	PlayerID string `bson:"player_id"`
	Token    string `bson:"token"`
}

func (s *Store) GetAuthInfo(ctx context.Context, lookup string) (*store.AuthInfo, error) {
	var doc authDoc
	err := s.auth().FindOne(ctx, bson.M{"_id": lookup}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store.AuthInfo{Lookup: doc.Lookup, PlayerID: doc.PlayerID, Token: doc.Token}, nil
}

func (s *Store) SaveAuthInfo(ctx context.Context, info *store.AuthInfo) error {
	upsert := true
	doc := authDoc{Lookup: info.Lookup, PlayerID: info.PlayerID, Token: info.Token}
	_, err := s.auth().ReplaceOne(ctx, bson.M{"_id": info.Lookup}, doc, &options.ReplaceOptions{Upsert: &upsert})
	return err
}

var _ store.Store = (*Store)(nil)
