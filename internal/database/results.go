// internal/database/results.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_results (
	game_id        UUID PRIMARY KEY,
	room_code      TEXT NOT NULL,
	winner_name    TEXT NOT NULL,
	winner_session TEXT NOT NULL,
	winning_score  INT NOT NULL,
	rounds         INT NOT NULL,
	players        JSONB NOT NULL,
	finished_at    TIMESTAMPTZ NOT NULL
)`

const insertResult = `
INSERT INTO game_results
	(game_id, room_code, winner_name, winner_session, winning_score, rounds, players, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (game_id) DO NOTHING`

// ErrNoWinner is returned for results that do not name a winning seat.
var ErrNoWinner = errors.New("game result has no winner")

// PlayerResult is one seat's final standing.
type PlayerResult struct {
	Seat    int    `json:"seat"`
	Name    string `json:"name"`
	Session string `json:"session,omitempty"` // Empty if the player had left.
	Score   int    `json:"score"`
}

// GameResult is the archived summary of a finished game.
type GameResult struct {
	GameID       uuid.UUID
	RoomCode     string
	Winner       int // Seat index into Players.
	WinningScore int
	Rounds       int
	Players      []PlayerResult
	FinishedAt   time.Time
}

// ResultArchive writes finished games to Postgres. Rows are never read back.
type ResultArchive struct {
	Pool *pgxpool.Pool
}

// ConnectDB opens a pool and verifies it with a ping.
func ConnectDB(ctx context.Context, url string) (*ResultArchive, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logrus.Info("Connected to Postgres.")
	return &ResultArchive{Pool: pool}, nil
}

// EnsureSchema creates the game_results table if it is missing.
func (a *ResultArchive) EnsureSchema(ctx context.Context) error {
	if _, err := a.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create game_results: %w", err)
	}
	return nil
}

// StoreGameResult inserts one row per game. Repeated stores of the same
// game are ignored.
func (a *ResultArchive) StoreGameResult(ctx context.Context, res GameResult) error {
	if a == nil || a.Pool == nil {
		return nil
	}
	args, err := resultArgs(res)
	if err != nil {
		return err
	}
	if _, err := a.Pool.Exec(ctx, insertResult, args...); err != nil {
		return fmt.Errorf("insert result for game %s: %w", res.GameID, err)
	}
	return nil
}

// Close releases the pool.
func (a *ResultArchive) Close() {
	if a != nil && a.Pool != nil {
		a.Pool.Close()
	}
}

// resultArgs flattens a result into insertResult's parameters.
func resultArgs(res GameResult) ([]any, error) {
	if res.Winner < 0 || res.Winner >= len(res.Players) {
		return nil, fmt.Errorf("%w: seat %d of %d", ErrNoWinner, res.Winner, len(res.Players))
	}
	players, err := json.Marshal(res.Players)
	if err != nil {
		return nil, fmt.Errorf("marshal players: %w", err)
	}
	finished := res.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	w := res.Players[res.Winner]
	return []any{
		res.GameID, res.RoomCode, w.Name, w.Session,
		res.WinningScore, res.Rounds, players, finished.UTC(),
	}, nil
}
