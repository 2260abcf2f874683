// internal/game/game.go
package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/loveletter/engine"
	"github.com/jason-s-yu/loveletter/internal/cache"
	"github.com/jason-s-yu/loveletter/internal/database"
	"github.com/sirupsen/logrus"
)

// publishTimeout bounds each asynchronous action-stream or archive write.
const publishTimeout = 2 * time.Second

// ActionPublisher receives the room's action stream.
type ActionPublisher interface {
	PublishGameAction(ctx context.Context, rec cache.GameActionRecord) error
}

// ResultStore archives finished games.
type ResultStore interface {
	StoreGameResult(ctx context.Context, res database.GameResult) error
}

// OnGameEndFunc is called once per finished game with its final standings.
type OnGameEndFunc func(res database.GameResult)

// LetterGame runs one room's engine.Game. All exported methods take Mu, so
// intents from different connections are applied one at a time.
type LetterGame struct {
	ID   uuid.UUID // Unique identifier of the current game; renewed on each start.
	Code string    // Room code players join with.

	Engine *engine.Game

	Mu sync.Mutex

	// Communication callbacks.
	BroadcastToPlayerFn func(session string, v engine.View) // Sends a view to one connected player.
	OnGameEnd           OnGameEndFunc

	Publisher ActionPublisher // Optional action stream.
	Results   ResultStore     // Optional result archive.

	actionIndex int  // Sequential index of published actions.
	archived    bool // Current game's result has been handed off.
	log         *logrus.Entry
	wg          sync.WaitGroup // Outstanding publish and archive writes.
}

// NewLetterGame creates a room. A nil src seeds the shuffle from the clock.
func NewLetterGame(code string, src engine.Source) *LetterGame {
	if src == nil {
		src = engine.NewSource(uint64(time.Now().UnixNano()))
	}
	id, _ := uuid.NewRandom()
	return &LetterGame{
		ID:     id,
		Code:   code,
		Engine: engine.NewGame(src),
		log:    logrus.WithField("room", code),
	}
}

// AddPlayer seats a player. A player joining mid-game sits out until the
// next round is dealt.
func (g *LetterGame) AddPlayer(session, name string) (int, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	idx, err := g.Engine.AddPlayer(session, name)
	if err != nil {
		g.log.Debugf("Game %s: Join from %s refused: %v", g.Code, session, err)
		return idx, err
	}
	p := g.Engine.Players[idx]
	g.log.Infof("Game %s: Player %q joined at seat %d.", g.Code, p.Name, idx)
	g.logAction(session, "player_join", map[string]any{"seat": idx, "name": p.Name})
	g.broadcastViews()
	return idx, nil
}

// RemovePlayer handles a departure. It reports whether the session was seated.
func (g *LetterGame) RemovePlayer(session string) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	idx := g.Engine.PlayerIndex(session)
	if !g.Engine.RemovePlayer(session) {
		g.log.Debugf("Game %s: Departing session %s not seated.", g.Code, session)
		return false
	}
	g.log.Infof("Game %s: Player at seat %d disconnected.", g.Code, idx)
	g.logAction(session, "player_disconnect", map[string]any{"seat": idx})
	g.afterTransition()
	return true
}

// StartGame deals the first round. It is refused while a game is running or
// with fewer than two connected players.
func (g *LetterGame) StartGame(session string) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Engine.PlayerIndex(session) == engine.NoPlayer {
		g.log.Debugf("Game %s: Start requested by unseated session %s.", g.Code, session)
		return false
	}
	if !g.Engine.StartGame() {
		g.log.Debugf("Game %s: StartGame ignored (state %s, %d seats).", g.Code, g.Engine.State(), len(g.Engine.Players))
		return false
	}
	if g.archived {
		// A restart after game over is a new game for the stream and archive.
		g.ID, _ = uuid.NewRandom()
		g.actionIndex = 0
		g.archived = false
	}
	g.log.Infof("Game %s: Started with %d players, first to %d.", g.Code, len(g.Engine.Remaining()), g.Engine.WinningScore)
	g.logAction(session, "game_start", map[string]any{
		"players":      len(g.Engine.Players),
		"winningScore": g.Engine.WinningScore,
	})
	g.afterTransition()
	return true
}

// MakeChoice applies a card play. A rejected play leaves the room unchanged
// and returns the engine's reason.
func (g *LetterGame) MakeChoice(session string, card engine.Card, targets []int, secondary *int) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	out, err := g.Engine.MakeChoice(session, card, targets, secondary)
	if err != nil {
		g.log.Debugf("Game %s: Play of %s by %s rejected: %v", g.Code, card, session, err)
		return err
	}
	payload := map[string]any{"card": card.Name(), "targets": targets, "outcome": out.String()}
	if secondary != nil {
		payload["secondary"] = *secondary
	}
	g.logAction(session, "make_choice", payload)
	g.afterTransition()
	return nil
}

// MakeBishopChoice applies the Bishop target's keep-or-discard decision.
func (g *LetterGame) MakeBishopChoice(session string, discard bool) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if err := g.Engine.MakeBishopChoice(session, discard); err != nil {
		g.log.Debugf("Game %s: Bishop decision by %s rejected: %v", g.Code, session, err)
		return err
	}
	g.logAction(session, "make_bishop_choice", map[string]any{"discard": discard})
	g.afterTransition()
	return nil
}

// Views returns a redacted view for every seat.
func (g *LetterGame) Views() []engine.IndividualView {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.Engine.IndividualViews()
}

// ConnectedCount returns the number of seated players still connected.
func (g *LetterGame) ConnectedCount() int {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.countConnectedPlayers()
}

// Wait blocks until queued action-stream and archive writes have returned.
func (g *LetterGame) Wait() { g.wg.Wait() }

// afterTransition broadcasts fresh views and hands a finished game off to
// the archive. Assumes lock is held by caller.
func (g *LetterGame) afterTransition() {
	g.broadcastViews()
	if g.Engine.GameOver && !g.archived {
		g.endGame()
	}
}

// broadcastViews sends each connected player their own view.
// Assumes lock is held by caller.
func (g *LetterGame) broadcastViews() {
	if g.BroadcastToPlayerFn == nil {
		g.log.Warnf("Game %s: BroadcastToPlayerFn is nil, cannot broadcast views.", g.Code)
		return
	}
	for _, iv := range g.Engine.IndividualViews() {
		if iv.Session != "" {
			g.BroadcastToPlayerFn(iv.Session, iv.View)
		}
	}
}

// endGame archives the result and fires OnGameEnd.
// Assumes lock is held by caller.
func (g *LetterGame) endGame() {
	g.archived = true
	res := g.result()
	w := res.Players[res.Winner]
	g.log.Infof("Game %s: Ended after %d rounds. Winner %q with %d.", g.Code, res.Rounds, w.Name, w.Score)
	g.logAction("", "game_end", map[string]any{"winner": res.Winner, "rounds": res.Rounds})

	if g.Results != nil {
		g.wg.Add(1)
		go func(res database.GameResult) {
			defer g.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			if err := g.Results.StoreGameResult(ctx, res); err != nil {
				g.log.Errorf("Game %s: Failed archiving result of game %s: %v", g.Code, res.GameID, err)
			}
		}(res)
	}
	if g.OnGameEnd != nil {
		g.OnGameEnd(res)
	}
}

// result summarizes the finished game. Assumes lock is held by caller.
func (g *LetterGame) result() database.GameResult {
	res := database.GameResult{
		GameID:       g.ID,
		RoomCode:     g.Code,
		Winner:       g.Engine.Winner(),
		WinningScore: g.Engine.WinningScore,
		Rounds:       g.Engine.Round,
		Players:      make([]database.PlayerResult, len(g.Engine.Players)),
		FinishedAt:   time.Now(),
	}
	for i, p := range g.Engine.Players {
		res.Players[i] = database.PlayerResult{Seat: i, Name: p.Name, Session: p.Session, Score: p.Score}
	}
	return res
}

// countConnectedPlayers assumes lock is held by caller.
func (g *LetterGame) countConnectedPlayers() int {
	count := 0
	for _, p := range g.Engine.Players {
		if p.Connected() {
			count++
		}
	}
	return count
}

// logAction publishes an action record to the stream.
// Assumes lock is held by caller.
func (g *LetterGame) logAction(actor, actionType string, payload map[string]any) {
	g.actionIndex++
	if g.Publisher == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]any)
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		RoomCode:      g.Code,
		ActionIndex:   g.actionIndex,
		ActorSession:  actor,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}

	g.wg.Add(1)
	go func(rec cache.GameActionRecord) {
		defer g.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := g.Publisher.PublishGameAction(ctx, rec); err != nil {
			g.log.Errorf("Game %s: Failed publishing action %d ('%s'): %v", g.Code, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}
