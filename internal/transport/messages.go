// Package transport is the gorilla/websocket room hub: JSON envelopes
// addressed by room name, since a client only ever needs broadcast-to-room,
// not cross-node RPC routing.
package transport

import "encoding/json"

// MessageType names the envelope kinds a client can receive, matching
// the event catalogue.
type MessageType string

const (
	TypeListRooms         MessageType = "list_rooms"
	TypePlayerJoined      MessageType = "player_joined"
	TypePlayerLeft        MessageType = "player_left"
	TypeGameUpdate        MessageType = "game_update"
	TypeGameSummaryUpdate MessageType = "game_summary_update"
	TypeError             MessageType = "error"
)

// Envelope is the wire shape of every message the hub sends or receives.
type Envelope struct {
	Type MessageType     `json:"type"`
	Room string          `json:"room,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// RoomName builds the two room shapes the rules defines: the whole-game room
// everyone in a game joins, and the per-player room used for hole-card
// information only that player should see.
func RoomName(gameID string) string { return gameID }

func PlayerRoomName(gameID, playerID string) string { return gameID + "__" + playerID }

func encode(t MessageType, room string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: t, Room: room, Data: raw})
}

func EncodePlayerJoined(gameID, playerID string) ([]byte, error) {
	return encode(TypePlayerJoined, RoomName(gameID), map[string]string{"player_id": playerID})
}

func EncodePlayerLeft(gameID, playerID string) ([]byte, error) {
	return encode(TypePlayerLeft, RoomName(gameID), map[string]string{"player_id": playerID})
}

func EncodeGameUpdate(gameID, version string) ([]byte, error) {
	return encode(TypeGameUpdate, RoomName(gameID), map[string]string{"version": version})
}

func EncodeGameSummaryUpdate(gameID, summary string) ([]byte, error) {
	return encode(TypeGameSummaryUpdate, RoomName(gameID), map[string]string{"summary": summary})
}

// EncodeGameSummary wraps an arbitrary per-player summary payload (the
// dispatcher's GameSummary) for delivery to one room.
func EncodeGameSummary(room string, summary any) ([]byte, error) {
	return encode(TypeGameSummaryUpdate, room, summary)
}

func EncodeListRooms(rooms []string) ([]byte, error) {
	return encode(TypeListRooms, "", map[string][]string{"rooms": rooms})
}

func EncodeError(room, message string) ([]byte, error) {
	return encode(TypeError, room, map[string]string{"message": message})
}
