// Package engine implements the rules of Love Letter with the 5–8 player
// extension set.
//
// The engine is a synchronous state machine: every exported mutator either
// rejects its input without touching state, or applies it completely and
// advances to the next decision point. A Game is not safe for concurrent use;
// callers serialize access per game instance.
package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen      = 24
	placeholderName = "Anonymous"
)

var (
	ErrEmptySession     = errors.New("session id is empty")
	ErrDuplicateSession = errors.New("session already seated")
	ErrRosterFull       = errors.New("roster is full")
)

// Player is one seat at the table. Hand, Played, Known, Out and Jester are
// reset at the start of every round; Score persists for the whole game.
type Player struct {
	Name    string
	Session string // empty when disconnected
	Score   int

	Hand   []Card
	Played []Card
	// Known[i] is the multiset of cards this player believes player i holds.
	// Entries go stale when cards move without this player seeing them.
	Known [][]Card
	Out   bool
	// Jester is the index of the player holding a Jester claim on this one.
	Jester int
}

// Connected reports whether the player still has a session.
func (p *Player) Connected() bool { return p.Session != "" }

// LastPlayed returns the most recent card in the player's discard pile.
func (p *Player) LastPlayed() Card {
	if len(p.Played) == 0 {
		return NoCard
	}
	return p.Played[len(p.Played)-1]
}

// Protected reports whether the player's last play was the Handmaid.
func (p *Player) Protected() bool { return p.LastPlayed() == Handmaid }

// Holds reports whether c is in the player's hand.
func (p *Player) Holds(c Card) bool { return indexOf(p.Hand, c) >= 0 }

func (p *Player) hasPlayed(c Card) bool { return indexOf(p.Played, c) >= 0 }

// Game holds the complete state of one table.
type Game struct {
	Players []*Player

	Active        int
	BishopDecider int // player who must decide whether to discard, or NoPlayer
	ForcedTarget  int // Sycophant target for the next play, or NoPlayer

	Deck     []Card // drawn from the end
	FaceDown Card   // NoCard once used as the final draw
	FaceUp   []Card // 2-player rounds only, never drawn

	WinningScore int
	Round        int
	Log          EventLog
	// Contenders limits the deal to the tied leaders after a tie restart.
	Contenders []int

	Started   bool
	RoundOver bool
	GameOver  bool

	rng Source
}

// NewGame returns an empty game in the lobby state.
func NewGame(src Source) *Game {
	if src == nil {
		src = NewSource(1)
	}
	return &Game{
		Active:        0,
		BishopDecider: NoPlayer,
		ForcedTarget:  NoPlayer,
		rng:           src,
	}
}

// State reports the lifecycle state of the game.
func (g *Game) State() State {
	switch {
	case g.GameOver:
		return StateGameOver
	case !g.Started:
		return StateLobby
	case g.RoundOver:
		return StateRoundOver
	case g.BishopDecider != NoPlayer:
		return StateAwaitingDecision
	}
	return StateRoundActive
}

// InProgress reports whether a game has started and not yet finished.
func (g *Game) InProgress() bool { return g.Started && !g.GameOver }

func (g *Game) inRound() bool { return g.InProgress() && !g.RoundOver }

// PlayerIndex returns the seat of the given session, or NoPlayer.
func (g *Game) PlayerIndex(session string) int {
	if session == "" {
		return NoPlayer
	}
	for i, p := range g.Players {
		if p.Session == session {
			return i
		}
	}
	return NoPlayer
}

// SanitizeName strips the log templating delimiters from a display name and
// substitutes a placeholder when nothing is left.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "{{", "")
	name = strings.ReplaceAll(name, "}}", "")
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLen {
		name = strings.TrimSpace(string([]rune(name)[:maxNameLen]))
	}
	if name == "" {
		return placeholderName
	}
	return name
}

// AddPlayer seats a new player with score 0. The player sits out until the
// next round is dealt.
func (g *Game) AddPlayer(session, name string) (int, error) {
	if session == "" {
		return NoPlayer, ErrEmptySession
	}
	if !g.InProgress() {
		g.compactRoster()
	}
	if g.PlayerIndex(session) != NoPlayer {
		return NoPlayer, fmt.Errorf("%w: %s", ErrDuplicateSession, session)
	}
	if len(g.Players) >= MaxPlayers {
		return NoPlayer, fmt.Errorf("%w: %d players", ErrRosterFull, MaxPlayers)
	}

	for _, p := range g.Players {
		p.Known = append(p.Known, nil)
	}
	g.Players = append(g.Players, &Player{
		Name:    SanitizeName(name),
		Session: session,
		Known:   make([][]Card, len(g.Players)+1),
		Out:     true,
		Jester:  NoPlayer,
	})
	return len(g.Players) - 1, nil
}

// RemovePlayer clears the player's session. Between games the seat is
// deleted and later seats shift down. During a game the player stays on the
// roster and is knocked out at the next turn boundary; a departing active
// player or Bishop decider reaches that boundary immediately.
func (g *Game) RemovePlayer(session string) bool {
	idx := g.PlayerIndex(session)
	if idx == NoPlayer {
		return false
	}
	if !g.InProgress() {
		g.removeSeat(idx)
		return true
	}
	g.Players[idx].Session = ""

	if !g.inRound() {
		return true
	}
	switch {
	case g.BishopDecider == idx:
		g.decideBishop(false)
	case g.BishopDecider == NoPlayer && g.Active == idx:
		g.advance()
	}
	return true
}

// StartGame resets scores and deals the first round. It is a no-op while a
// game is in progress or when fewer than two players are connected.
func (g *Game) StartGame() bool {
	if g.InProgress() {
		return false
	}
	g.compactRoster()
	connected := g.connectedPlayers()
	if len(connected) < MinPlayers {
		return false
	}

	for _, p := range g.Players {
		p.Score = 0
	}
	g.WinningScore = WinningScore(len(g.Players))
	g.Round = 0
	g.Active = 0
	g.Contenders = nil
	g.Log.Reset()
	g.Started = true
	g.GameOver = false
	g.logEvent(EventGameStarted, NoPlayer, NoPlayer, withValue(g.WinningScore), withPlayers(connected))

	g.startRound(connected)
	return true
}

// compactRoster deletes the seats of players who left during the last game.
func (g *Game) compactRoster() {
	for i := len(g.Players) - 1; i >= 0; i-- {
		if !g.Players[i].Connected() {
			g.removeSeat(i)
		}
	}
}

// removeSeat deletes seat i and renumbers every seat reference above it. A
// reference to the deleted seat becomes NoPlayer, so Winner reports NoPlayer
// once the winner has left.
func (g *Game) removeSeat(i int) {
	g.Players = slices.Delete(g.Players, i, i+1)
	for _, p := range g.Players {
		p.Known = slices.Delete(p.Known, i, i+1)
		p.Jester = shiftSeat(p.Jester, i)
	}
	g.Active = shiftSeat(g.Active, i)
	g.BishopDecider = shiftSeat(g.BishopDecider, i)
	g.ForcedTarget = shiftSeat(g.ForcedTarget, i)

	var contenders []int
	for _, c := range g.Contenders {
		if c = shiftSeat(c, i); c != NoPlayer {
			contenders = append(contenders, c)
		}
	}
	g.Contenders = contenders
}

func shiftSeat(seat, removed int) int {
	switch {
	case seat == removed:
		return NoPlayer
	case seat > removed:
		return seat - 1
	}
	return seat
}

// connectedPlayers returns the seats that still have a session.
func (g *Game) connectedPlayers() []int {
	var out []int
	for i, p := range g.Players {
		if p.Connected() {
			out = append(out, i)
		}
	}
	return out
}

// startRound rebuilds and shuffles the deck, deals to the eligible seats and
// has the active player draw. Fewer than two eligible connected seats returns
// the game to the lobby.
func (g *Game) startRound(eligible []int) {
	seated := make([]bool, len(g.Players))
	var players []int
	for _, i := range eligible {
		if g.Players[i].Connected() {
			seated[i] = true
			players = append(players, i)
		}
	}
	if len(players) < MinPlayers {
		g.Started = false
		g.RoundOver = true
		g.BishopDecider = NoPlayer
		g.ForcedTarget = NoPlayer
		g.logEvent(EventGameAbandoned, NoPlayer, NoPlayer, withPlayers(players))
		return
	}

	g.Round++
	g.Deck = FullDeck(len(g.Players))
	shuffle(g.rng, g.Deck)

	g.FaceDown = g.pop()
	g.FaceUp = nil
	if len(g.Players) == 2 {
		for k := 0; k < FaceUpCards; k++ {
			g.FaceUp = append(g.FaceUp, g.pop())
		}
	}

	for i, p := range g.Players {
		p.Hand = nil
		p.Played = nil
		p.Known = make([][]Card, len(g.Players))
		p.Jester = NoPlayer
		p.Out = !seated[i]
		if seated[i] {
			p.Hand = []Card{g.pop()}
		}
	}

	g.BishopDecider = NoPlayer
	g.ForcedTarget = NoPlayer
	g.RoundOver = false

	if g.Active < 0 || g.Active >= len(g.Players) || g.Players[g.Active].Out {
		g.Active = g.nextInRound(g.Active)
	}
	g.logEvent(EventRoundStarted, g.Active, NoPlayer, withValue(g.Round), withPlayers(players))
	g.draw(g.Active)
}

// pop removes the last card of the deck.
func (g *Game) pop() Card {
	c := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	return c
}

// draw adds a card to the player's hand, falling back to the face-down card
// once the deck is empty.
func (g *Game) draw(i int) {
	var c Card
	switch {
	case len(g.Deck) > 0:
		c = g.pop()
	case g.FaceDown != NoCard:
		c = g.FaceDown
		g.FaceDown = NoCard
	default:
		panic("engine: draw with empty deck and no face-down card")
	}
	g.Players[i].Hand = append(g.Players[i].Hand, c)
}

// nextInRound returns the next seat after from that is still in the round.
func (g *Game) nextInRound(from int) int {
	n := len(g.Players)
	if from < 0 {
		from = n - 1
	}
	for k := 1; k <= n; k++ {
		j := (from + k) % n
		if !g.Players[j].Out {
			return j
		}
	}
	panic("engine: no player left in the round")
}

// Remaining returns the seats still in the current round.
func (g *Game) Remaining() []int {
	var out []int
	for i, p := range g.Players {
		if !p.Out {
			out = append(out, i)
		}
	}
	return out
}

func (g *Game) score(i int) { g.Players[i].Score++ }

// Clone returns a deep copy of the game sharing the randomness source.
func (g *Game) Clone() *Game {
	c := *g
	c.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		cp := *p
		cp.Hand = append([]Card(nil), p.Hand...)
		cp.Played = append([]Card(nil), p.Played...)
		cp.Known = make([][]Card, len(p.Known))
		for j, k := range p.Known {
			cp.Known[j] = append([]Card(nil), k...)
		}
		c.Players[i] = &cp
	}
	c.Deck = append([]Card(nil), g.Deck...)
	c.FaceUp = append([]Card(nil), g.FaceUp...)
	c.Contenders = append([]int(nil), g.Contenders...)
	c.Log = EventLog{entries: g.Log.Entries()}
	return &c
}

// indexOf returns the position of c in cards, or -1.
func indexOf(cards []Card, c Card) int {
	for i, x := range cards {
		if x == c {
			return i
		}
	}
	return -1
}
