// Package store wraps the PostgreSQL connection pool used to validate player identities and
// record match results, mirroring the two database interactions the original server performs.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/transcendence/pongserv/internal/protocol"
)

// Store is a thin, concurrency-safe wrapper around a pgxpool.Pool; the pool itself is already
// safe for concurrent use by every connection-handling goroutine.
type Store struct {
	pool *pgxpool.Pool
}

// Connect makes socketPath absolute and opens a connection pool to PostgreSQL over the unix
// socket found there, using the same connection parameters as the original server
// (user=transcendence, sslmode=disable).
func Connect(ctx context.Context, socketPath string) (*Store, error) {
	abs, err := filepath.Abs(socketPath)
	if err != nil {
		return nil, fmt.Errorf("store: resolve socket path: %w", err)
	}
	dsn := fmt.Sprintf("user=transcendence sslmode=disable host=%s port=5432", abs)
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool's connections.
func (s *Store) Close() {
	s.pool.Close()
}

// PlayerExists reports whether a player with the given username exists.
func (s *Store) PlayerExists(ctx context.Context, username string) bool {
	row := s.pool.QueryRow(ctx, "select id from account_player where username = $1", username)
	var id int64
	return row.Scan(&id) == nil
}

// RecordResult writes the outcome of a completed mode-0 match to account_gameresult, exactly as
// the original server's write_game_result_to_database does: two CTEs resolving player ids, and a
// winner_id referencing whichever CTE corresponds to the winning side.
func (s *Store) RecordResult(ctx context.Context, leftUsername, rightUsername string, leftScore, rightScore int, winner protocol.Side, start, end time.Time) error {
	var query string
	switch winner {
	case protocol.SideLeft:
		query = `with id1 as (select id from account_player where username = $1),
		              id2 as (select id from account_player where username = $2)
		         insert into account_gameresult(p1_score, p2_score, date, duration, p1_id, p2_id, winner_id)
		         values ($3, $4, $5, cast ($6 as timestamp with time zone) - $5,
		                 (select id from id1), (select id from id2), (select id from id1))`
	case protocol.SideRight:
		query = `with id1 as (select id from account_player where username = $1),
		              id2 as (select id from account_player where username = $2)
		         insert into account_gameresult(p1_score, p2_score, date, duration, p1_id, p2_id, winner_id)
		         values ($3, $4, $5, cast ($6 as timestamp with time zone) - $5,
		                 (select id from id1), (select id from id2), (select id from id2))`
	default:
		return fmt.Errorf("store: invalid winner side %v", winner)
	}
	if leftScore > 1<<15-1 || rightScore > 1<<15-1 {
		panic("store: score is beyond an int16")
	}
	_, err := s.pool.Exec(ctx, query, leftUsername, rightUsername, int16(leftScore), int16(rightScore), start, end)
	if err != nil {
		return fmt.Errorf("store: record result: %w", err)
	}
	return nil
}
