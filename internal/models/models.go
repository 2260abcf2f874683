// internal/models/models.go
package models

import (
	engine "github.com/jason-s-yu/loveletter/engine"
)

// MessageType identifies a websocket message in either direction.
type MessageType string

// Client to server message types.
const (
	MsgNewGame          MessageType = "new-game"           // Create a room and join it.
	MsgJoinGame         MessageType = "join-game"          // Join an existing room by code.
	MsgStartGame        MessageType = "start-game"         // Deal the first round.
	MsgMakeChoice       MessageType = "make-choice"        // Play a card.
	MsgMakeBishopChoice MessageType = "make-bishop-choice" // Answer a Bishop hit.
)

// Server to client message types.
const (
	MsgGame  MessageType = "game"  // Individual game view.
	MsgRoom  MessageType = "room"  // Room joined; carries the code.
	MsgError MessageType = "error" // Request failed; carries a reason.
)

// ClientMessage is the envelope for every message a client sends.
// Fields unused by a given Type are ignored.
type ClientMessage struct {
	Type      MessageType `json:"type"`
	Name      string      `json:"name,omitempty"`
	Code      string      `json:"code,omitempty"`
	Card      engine.Card `json:"card,omitempty"`
	Targets   []int       `json:"targets,omitempty"`
	Secondary *int        `json:"secondary,omitempty"`
	Discard   bool        `json:"discard,omitempty"`
}

// ServerMessage is the envelope for every message the server sends.
type ServerMessage struct {
	Type  MessageType  `json:"type"`
	Room  string       `json:"room,omitempty"`
	View  *engine.View `json:"view,omitempty"`
	Error string       `json:"error,omitempty"`
}

// Session identifies one authenticated websocket client.
type Session struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
