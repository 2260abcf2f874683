// internal/server/hub.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	engine "github.com/jason-s-yu/loveletter/engine"
	"github.com/jason-s-yu/loveletter/internal/auth"
	"github.com/jason-s-yu/loveletter/internal/database"
	"github.com/jason-s-yu/loveletter/internal/game"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/jason-s-yu/loveletter/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	sendBuffer   = 64
	pingInterval = 15 * time.Second
	writeTimeout = 5 * time.Second
)

// Errors reported to clients.
var (
	errNoRoom      = store.ErrNoRoom
	errNotInRoom   = errors.New("not in a room")
	errCannotStart = errors.New("the game cannot be started now")
	errBadMessage  = errors.New("unknown message type")
)

// Hub routes websocket messages between clients and their rooms.
type Hub struct {
	Rooms      *store.RoomStore
	Secret     []byte
	SessionTTL time.Duration
	PublicURL  string

	Publisher game.ActionPublisher // Optional.
	Results   game.ResultStore     // Optional.

	// NewSource seeds each room's shuffle. Nil uses the clock.
	NewSource func() engine.Source

	originPatterns []string

	mu      sync.RWMutex
	clients map[string]*Client // session -> client
}

// Client is one authenticated websocket connection.
type Client struct {
	session string
	name    string
	conn    *websocket.Conn
	send    chan []byte

	room *game.LetterGame // Owned by the client's read loop.
}

// NewHub creates a hub. Origins are host patterns accepted in addition to
// same-origin requests.
func NewHub(rooms *store.RoomStore, secret []byte, ttl time.Duration, origins []string) *Hub {
	return &Hub{
		Rooms:          rooms,
		Secret:         secret,
		SessionTTL:     ttl,
		originPatterns: origins,
		clients:        make(map[string]*Client),
	}
}

// ServeWS upgrades an authenticated request and runs the client until it
// disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	session, name, err := auth.ParseSessionToken(h.Secret, r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		logrus.Debugf("Websocket accept for %s failed: %v", session, err)
		return
	}

	client := &Client{session: session.String(), name: name, conn: c, send: make(chan []byte, sendBuffer)}
	if !h.register(client) {
		c.Close(websocket.StatusPolicyViolation, "session already connected")
		return
	}
	logrus.Infof("Client %s (%q) connected.", client.session, name)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go h.writeLoop(ctx, client)

	h.readLoop(ctx, client)

	h.leaveRoom(client)
	h.unregister(client)
	c.Close(websocket.StatusNormalClosure, "bye")
	logrus.Infof("Client %s disconnected.", client.session)
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.session]; ok {
		return false
	}
	h.clients[c.session] = c
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.session] == c {
		delete(h.clients, c.session)
	}
}

func (h *Hub) writeLoop(ctx context.Context, c *Client) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				logrus.Debugf("Write to %s failed: %v", c.session, err)
				return
			}
		case <-ping.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readLoop(ctx context.Context, c *Client) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 {
				logrus.Debugf("Read from %s ended: %v", c.session, err)
			}
			return
		}
		var msg models.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(c, err)
			continue
		}
		if err := h.handle(c, msg); err != nil {
			h.sendError(c, err)
		}
	}
}

// handle applies one client message. Views are pushed by the room itself.
func (h *Hub) handle(c *Client, msg models.ClientMessage) error {
	switch msg.Type {
	case models.MsgNewGame:
		h.leaveRoom(c)
		room := h.Rooms.Create(h.newRoom)
		return h.join(c, room.Code, msg.Name)

	case models.MsgJoinGame:
		code := strings.ToUpper(strings.TrimSpace(msg.Code))
		if _, ok := h.Rooms.Get(code); !ok {
			return errNoRoom
		}
		if c.room != nil && c.room.Code == code {
			return nil
		}
		h.leaveRoom(c)
		return h.join(c, code, msg.Name)

	case models.MsgStartGame:
		if c.room == nil {
			return errNotInRoom
		}
		if !c.room.StartGame(c.session) {
			return errCannotStart
		}
		return nil

	case models.MsgMakeChoice:
		if c.room == nil {
			return errNotInRoom
		}
		return c.room.MakeChoice(c.session, msg.Card, msg.Targets, msg.Secondary)

	case models.MsgMakeBishopChoice:
		if c.room == nil {
			return errNotInRoom
		}
		return c.room.MakeBishopChoice(c.session, msg.Discard)
	}
	return errBadMessage
}

// join seats the client in the room stored under code. The seat is taken
// under the store's read lock, so the room cannot be closed in between.
func (h *Hub) join(c *Client, code, name string) error {
	if strings.TrimSpace(name) == "" {
		name = c.name
	}
	var joined *game.LetterGame
	err := h.Rooms.With(code, func(room *game.LetterGame) error {
		if _, err := room.AddPlayer(c.session, name); err != nil {
			return err
		}
		joined = room
		return nil
	})
	if err != nil {
		if room, ok := h.Rooms.Get(code); ok {
			h.dropIfEmpty(room)
		}
		return err
	}
	c.room = joined
	h.sendTo(c.session, models.ServerMessage{Type: models.MsgRoom, Room: code})
	return nil
}

// leaveRoom removes the client from its room, deleting the room once nobody
// connected is left in it.
func (h *Hub) leaveRoom(c *Client) {
	if c.room == nil {
		return
	}
	room := c.room
	c.room = nil
	room.RemovePlayer(c.session)
	h.dropIfEmpty(room)
}

func (h *Hub) dropIfEmpty(room *game.LetterGame) {
	if h.Rooms.RemoveIfEmpty(room) {
		logrus.Infof("Game %s: Room closed.", room.Code)
	}
}

func (h *Hub) newRoom(code string) *game.LetterGame {
	var src engine.Source
	if h.NewSource != nil {
		src = h.NewSource()
	}
	g := game.NewLetterGame(code, src)
	g.Publisher = h.Publisher
	g.Results = h.Results
	g.BroadcastToPlayerFn = func(session string, v engine.View) {
		h.sendTo(session, models.ServerMessage{Type: models.MsgGame, Room: code, View: &v})
	}
	g.OnGameEnd = func(res database.GameResult) {
		logrus.WithField("room", code).Infof("Game %s: Result %s ready for %d players.", code, res.GameID, len(res.Players))
	}
	logrus.Infof("Game %s: Room created.", code)
	return g
}

// sendTo queues a message for a session, dropping it if the client is
// gone or its buffer is full.
func (h *Hub) sendTo(session string, msg models.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logrus.Errorf("Marshal %s for %s: %v", msg.Type, session, err)
		return
	}
	h.mu.RLock()
	c, ok := h.clients[session]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		logrus.Warnf("Send buffer full for %s, dropping %s.", session, msg.Type)
	}
}

func (h *Hub) sendError(c *Client, err error) {
	h.sendTo(c.session, models.ServerMessage{Type: models.MsgError, Error: err.Error()})
}

// issueSession hands out a new session token.
func (h *Hub) issueSession(name string) (models.Session, string, error) {
	s := models.Session{ID: uuid.NewString(), Name: engine.SanitizeName(name)}
	token, err := auth.IssueSessionToken(h.Secret, uuid.MustParse(s.ID), s.Name, h.SessionTTL)
	return s, token, err
}
