package livegame

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Repository persists finished games to Postgres for league history.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts a finished game. frames is stored as JSON so the full
// roll-by-roll record survives; scoresheet is the human-readable card.
func (r *Repository) SaveResult(ctx context.Context, g *Game, scoresheet string) error {
	if r == nil || r.db == nil || g == nil || g.Session == nil {
		return nil
	}

	framesRaw, _ := json.Marshal(g.Session.Frames)
	total := 0
	if g.Session.FinalScore != nil {
		total = *g.Session.FinalScore
	}
	endedAt := g.UpdatedAt
	if g.Session.EndedAt != nil {
		endedAt = *g.Session.EndedAt
	}
	duration := endedAt.Sub(g.CreatedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO games (
        game_id, player_id, player_name, lane, venue,
        mode, league_id, status, total_score,
        frames, scoresheet, started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
      ) ON CONFLICT (game_id) DO UPDATE SET
        player_name=EXCLUDED.player_name,
        lane=EXCLUDED.lane,
        venue=EXCLUDED.venue,
        mode=EXCLUDED.mode,
        league_id=EXCLUDED.league_id,
        status=EXCLUDED.status,
        total_score=EXCLUDED.total_score,
        frames=EXCLUDED.frames,
        scoresheet=EXCLUDED.scoresheet,
        started_at=EXCLUDED.started_at,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err := r.db.ExecContext(ctx, q,
		g.ID, g.PlayerID, g.PlayerName, g.Lane, g.Venue,
		string(g.Session.Mode), g.Session.LeagueID, string(g.Status), total,
		string(framesRaw), scoresheet, g.CreatedAt, endedAt, duration,
	)
	return err
}

// RecentGames returns the player's latest finished games, newest first.
func (r *Repository) RecentGames(ctx context.Context, playerID string, limit int) ([]GameRecord, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT game_id, player_name, mode, league_id, total_score, scoresheet, started_at, ended_at
        FROM games WHERE player_id = $1
        ORDER BY ended_at DESC LIMIT $2`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameRecord
	for rows.Next() {
		var rec GameRecord
		if err := rows.Scan(&rec.GameID, &rec.PlayerName, &rec.Mode, &rec.LeagueID,
			&rec.TotalScore, &rec.Scoresheet, &rec.StartedAt, &rec.EndedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GameRecord is one row of stored league history.
type GameRecord struct {
	GameID     string    `json:"game_id"`
	PlayerName string    `json:"player_name"`
	Mode       string    `json:"mode"`
	LeagueID   string    `json:"league_id"`
	TotalScore int       `json:"total_score"`
	Scoresheet string    `json:"scoresheet"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}
