// internal/store/rooms.go
package store

import (
	crand "crypto/rand"
	"errors"
	"math/big"
	"math/rand/v2"
	"sync"

	"github.com/jason-s-yu/loveletter/internal/game"
)

// Room code alphabet and length.
const (
	RoomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	RoomCodeLength = 6
)

// ErrNoRoom is returned for codes that name no stored room.
var ErrNoRoom = errors.New("no such room")

// RoomStore maps room codes to running games.
type RoomStore struct {
	rooms map[string]*game.LetterGame
	mu    sync.RWMutex
}

// NewRoomStore creates an empty store.
func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*game.LetterGame)}
}

// Get retrieves a room by code.
func (s *RoomStore) Get(code string) (*game.LetterGame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.rooms[code]
	return g, ok
}

// Create picks an unused code and stores the room build returns for it.
func (s *RoomStore) Create(build func(code string) *game.LetterGame) *game.LetterGame {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := NewRoomCode(func(c string) bool {
		_, taken := s.rooms[c]
		return taken
	})
	g := build(code)
	s.rooms[code] = g
	return g
}

// With runs fn on the room stored under code. The room cannot be removed
// by RemoveIfEmpty until fn returns.
func (s *RoomStore) With(code string, fn func(*game.LetterGame) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.rooms[code]
	if !ok {
		return ErrNoRoom
	}
	return fn(g)
}

// RemoveIfEmpty deletes g if it is still the room stored under its code and
// nobody connected is seated in it.
func (s *RoomStore) RemoveIfEmpty(g *game.LetterGame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rooms[g.Code] != g || g.ConnectedCount() > 0 {
		return false
	}
	delete(s.rooms, g.Code)
	return true
}

// Delete removes a room.
func (s *RoomStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

// Len returns the number of rooms.
func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// GenerateRoomCode returns a random code of RoomCodeLength letters.
func GenerateRoomCode() string {
	code := make([]byte, RoomCodeLength)
	for i := range RoomCodeLength {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(RoomCodeChars))))
		if err != nil {
			code[i] = RoomCodeChars[rand.IntN(len(RoomCodeChars))]
			continue
		}
		code[i] = RoomCodeChars[n.Int64()]
	}
	return string(code)
}

// NewRoomCode generates codes until exists reports one as free.
func NewRoomCode(exists func(code string) bool) string {
	for {
		code := GenerateRoomCode()
		if !exists(code) {
			return code
		}
	}
}
