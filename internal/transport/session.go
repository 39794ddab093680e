package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mahjong/internal/logx"
)

// Heartbeat timing: how long a silent connection is tolerated before
// it's considered dead, and how often a ping is sent to keep it alive.
var (
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
	pingInterval = (pongWait * 9) / 10
)

const maxMessageBytes = 1 << 16

// Session is one client's websocket connection, subscribed to one or more
// rooms. Its lifecycle is a read loop, a write loop fed by a channel, and
// a ping ticker, all torn down together via closeOnce.
type Session struct {
	PlayerID string

	conn      *websocket.Conn
	hub       *Hub
	writeChan chan []byte
	closeChan chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	rooms map[string]bool
}

func newSession(conn *websocket.Conn, hub *Hub, playerID string) *Session {
	return &Session{
		PlayerID:  playerID,
		conn:      conn,
		hub:       hub,
		writeChan: make(chan []byte, 256),
		closeChan: make(chan struct{}),
		rooms:     make(map[string]bool),
	}
}

func (s *Session) run() {
	go s.writeLoop()
	s.conn.SetReadLimit(maxMessageBytes)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	s.readLoop()
}

func (s *Session) readLoop() {
	defer s.hub.removeSession(s)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logx.Warn("transport: unexpected close", "player_id", s.PlayerID, "err", err)
			}
			return
		}
		s.hub.handleClientMessage(s, raw)
	}
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer s.Close()

	for {
		select {
		case msg, ok := <-s.writeChan:
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logx.Warn("transport: write failed", "player_id", s.PlayerID, "err", err)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closeChan:
			return
		}
	}
}

// Send enqueues a message for this session alone; never blocks the caller
// beyond the channel's buffer.
func (s *Session) Send(msg []byte) {
	select {
	case s.writeChan <- msg:
	default:
		logx.Warn("transport: write buffer full, dropping session", "player_id", s.PlayerID)
		s.Close()
	}
}

func (s *Session) joinedRooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.rooms))
	for r := range s.rooms {
		out = append(out, r)
	}
	return out
}

func (s *Session) markJoined(room string) {
	s.mu.Lock()
	s.rooms[room] = true
	s.mu.Unlock()
}

func (s *Session) markLeft(room string) {
	s.mu.Lock()
	delete(s.rooms, room)
	s.mu.Unlock()
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closeChan)
		close(s.writeChan)
		_ = s.conn.Close()
	})
}
