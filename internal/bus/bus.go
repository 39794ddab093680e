// Package bus broadcasts game state across dispatcher instances over NATS,
// using a single topic-per-game subject scheme: one subscriber just needs
// "this game changed, re-read it," not a full service-routing envelope.
package bus

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"mahjong/internal/logx"
)

const subjectPrefix = "mahjong.game."

// Update is the payload published whenever a game mutates, carrying just
// enough for a subscriber to know which room to refresh and what kind of
// change happened.
type Update struct {
	GameID  string `json:"game_id"`
	Kind    string `json:"kind"`
	Version string `json:"version"`
	Summary string `json:"summary,omitempty"`
}

const (
	KindGameUpdate        = "game_update"
	KindGameSummaryUpdate = "game_summary_update"
)

func subject(gameID string) string { return subjectPrefix + gameID }

// Bus is a thin NATS pub/sub wrapper. Zero value is unusable; build one
// with Connect.
type Bus struct {
	conn *nats.Conn
}

// Connect dials url and surfaces
// the connection error instead of only logging it — the dispatcher needs
// to refuse to start without a broadcast path.
func Connect(url string) (*Bus, error) {
	conn, err := nats.Connect(url, nats.Name("mahjong-dispatcher"))
	if err != nil {
		return nil, fmt.Errorf("bus: connect: %w", err)
	}
	return &Bus{conn: conn}, nil
}

func (b *Bus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

// Publish announces an Update on the game's subject. Callers publish after
// releasing the game's mutex, never while holding it.
func (b *Bus) Publish(u Update) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("bus: marshal update: %w", err)
	}
	if err := b.conn.Publish(subject(u.GameID), data); err != nil {
		return fmt.Errorf("bus: publish: %w", err)
	}
	return nil
}

// Subscribe delivers every Update published for gameID to handler, until
// the returned unsubscribe func is called. Errors from the handler itself
// are not propagated; handlers log their own failures.
func (b *Bus) Subscribe(gameID string, handler func(Update)) (func() error, error) {
	sub, err := b.conn.Subscribe(subject(gameID), func(msg *nats.Msg) {
		var u Update
		if err := json.Unmarshal(msg.Data, &u); err != nil {
			logx.Warn("bus: dropping malformed update", "game_id", gameID, "err", err)
			return
		}
		handler(u)
	})
	if err != nil {
		return nil, fmt.Errorf("bus: subscribe: %w", err)
	}
	return sub.Unsubscribe, nil
}
