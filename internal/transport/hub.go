package transport

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"mahjong/internal/authn"
	"mahjong/internal/logx"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Hub is the room registry: every connected Session is indexed by every
// room it has joined, so a broadcast only ever walks the sessions that
// actually care.
type Hub struct {
	authn *authn.Verifier

	mu    sync.RWMutex
	rooms map[string]map[*Session]bool
}

func NewHub(verifier *authn.Verifier) *Hub {
	return &Hub{authn: verifier, rooms: make(map[string]map[*Session]bool)}
}

// ServeWS upgrades r into a websocket and blocks for the connection's
// lifetime.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	playerID, err := h.authn.Verify(token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Warn("transport: upgrade failed", "err", err)
		return
	}

	session := newSession(conn, h, playerID)
	session.run()
}

// Join subscribes session to room, broadcasting a PlayerJoined event to
// the room's existing members.
func (h *Hub) Join(session *Session, room string) {
	h.mu.Lock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Session]bool)
	}
	h.rooms[room][session] = true
	h.mu.Unlock()

	session.markJoined(room)
	if msg, err := EncodePlayerJoined(room, session.PlayerID); err == nil {
		h.Broadcast(room, msg)
	}
}

// Leave unsubscribes session from room, broadcasting PlayerLeft.
func (h *Hub) Leave(session *Session, room string) {
	h.mu.Lock()
	if set, ok := h.rooms[room]; ok {
		delete(set, session)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()

	session.markLeft(room)
	if msg, err := EncodePlayerLeft(room, session.PlayerID); err == nil {
		h.Broadcast(room, msg)
	}
}

// Broadcast sends msg to every session currently in room. Called after the
// dispatcher releases its per-game mutex, never while holding it.
func (h *Hub) Broadcast(room string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for session := range h.rooms[room] {
		session.Send(msg)
	}
}

// RoomNames lists every room currently populated, for the ListRooms event.
func (h *Hub) RoomNames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.rooms))
	for name := range h.rooms {
		names = append(names, name)
	}
	return names
}

func (h *Hub) removeSession(session *Session) {
	for _, room := range session.joinedRooms() {
		h.Leave(session, room)
	}
	session.Close()
}

func (h *Hub) handleClientMessage(session *Session, raw []byte) {
	env, err := decodeClientEnvelope(raw)
	if err != nil {
		if msg, encErr := EncodeError("", "malformed message"); encErr == nil {
			session.Send(msg)
		}
		return
	}

	switch env.Type {
	case TypeListRooms:
		if msg, err := EncodeListRooms(h.RoomNames()); err == nil {
			session.Send(msg)
		}
	case "join":
		h.Join(session, env.Room)
	case "leave":
		h.Leave(session, env.Room)
	default:
		if msg, err := EncodeError(env.Room, "unknown message type"); err == nil {
			session.Send(msg)
		}
	}
}

func decodeClientEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(raw, &env)
	return env, err
}
