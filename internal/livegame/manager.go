package livegame

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lanekit/lanekeeper/internal/bowling"
	"github.com/lanekit/lanekeeper/internal/obslog"
	"github.com/lanekit/lanekeeper/pkg/lanedto"
)

// ErrNoGame is returned when a player has no game that can take the request.
var ErrNoGame = errors.New("no active game for player")

// Notifier receives best-effort announcements about game milestones.
type Notifier interface {
	GameStarted(ctx context.Context, card lanedto.Scorecard) error
	GameFinished(ctx context.Context, card lanedto.Scorecard, scoresheet string) error
}

// Scoresheeter renders the text scoresheet stored with finished games.
type Scoresheeter interface {
	FormatText(s *bowling.GameSession) string
}

// Manager owns the live games: one mutable session per player, stored in
// Redis under a TTL and mutated inside WATCH transactions so concurrent
// submissions from two devices cannot interleave.
type Manager struct {
	rdb      *redis.Client
	repo     *Repository
	notifier Notifier
	sheets   Scoresheeter
	ttl      time.Duration
}

func NewManager(redisURL string, ttl time.Duration) (*Manager, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for live game manager")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{rdb: rdb, ttl: ttl}, nil
}

func (m *Manager) Close() error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Close()
}

// AttachRepository wires a database repository for persisting finished games.
func (m *Manager) AttachRepository(r *Repository) {
	if m != nil {
		m.repo = r
	}
}

// AttachNotifier wires an outbound announcement sink (webhook, companion app).
func (m *Manager) AttachNotifier(n Notifier) {
	if m != nil {
		m.notifier = n
	}
}

// AttachScoresheeter wires the text formatter used for stored scoresheets.
func (m *Manager) AttachScoresheeter(s Scoresheeter) {
	if m != nil {
		m.sheets = s
	}
}

// StartGame opens a new game for the player, abandoning any game still open.
func (m *Manager) StartGame(ctx context.Context, req lanedto.StartGameRequest) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, fmt.Errorf("live game manager not initialized")
	}
	playerID := strings.TrimSpace(req.PlayerID)
	if playerID == "" {
		return nil, fmt.Errorf("player id required")
	}

	if prev, err := m.GetActiveGameByPlayer(ctx, playerID); err == nil && prev != nil {
		if _, aerr := m.Abandon(ctx, playerID); aerr != nil {
			return nil, aerr
		}
	} else if err != nil {
		return nil, err
	}

	mode := bowling.ModeOpen
	if strings.EqualFold(strings.TrimSpace(req.Mode), string(bowling.ModeLeague)) {
		mode = bowling.ModeLeague
	}
	session := bowling.NewSession(mode, strings.TrimSpace(req.LeagueID))

	g := &Game{
		ID:         session.ID,
		PlayerID:   playerID,
		PlayerName: strings.TrimSpace(req.PlayerName),
		Lane:       strings.TrimSpace(req.Lane),
		Venue:      strings.TrimSpace(req.Venue),
		Status:     StatusOpen,
		Session:    session,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := m.save(ctx, g); err != nil {
		return nil, err
	}
	if err := m.indexPlayer(ctx, playerID, g.ID); err != nil {
		return nil, err
	}

	obslog.L().Info("game_start",
		zap.String("game_id", g.ID),
		zap.String("player_id", g.PlayerID),
		zap.String("mode", string(mode)),
		zap.String("lane", g.Lane),
	)
	if m.notifier != nil {
		if err := m.notifier.GameStarted(ctx, Snapshot(g)); err != nil {
			obslog.L().Warn("notify_game_start_error", zap.String("game_id", g.ID), zap.Error(err))
		}
	}
	return g, nil
}

// GetActiveGameByPlayer returns the player's most recently updated OPEN game.
func (m *Manager) GetActiveGameByPlayer(ctx context.Context, playerID string) (*Game, error) {
	return m.latestByStatus(ctx, playerID, func(st Status) bool { return st == StatusOpen })
}

// latestRecordable also admits COMPLETE games so late corrections can reopen
// them; abandoned games stay closed.
func (m *Manager) latestRecordable(ctx context.Context, playerID string) (*Game, error) {
	return m.latestByStatus(ctx, playerID, func(st Status) bool {
		return st == StatusOpen || st == StatusComplete
	})
}

func (m *Manager) latestByStatus(ctx context.Context, playerID string, keep func(Status) bool) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, fmt.Errorf("live game manager not initialized")
	}
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, nil
	}
	ids, err := m.rdb.SMembers(ctx, idxPlayerKey(playerID)).Result()
	if err != nil {
		return nil, err
	}
	var list []*Game
	for _, id := range ids {
		g, gerr := m.get(ctx, id)
		if gerr != nil || g == nil {
			continue
		}
		if keep(g.Status) {
			list = append(list, g)
		}
	}
	if len(list) == 0 {
		return nil, nil
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list[0], nil
}

// RecordRoll applies one delivery (or correction) to the player's game. The
// scoring engine's typed errors pass through unwrapped so callers can match
// them with errors.As.
func (m *Manager) RecordRoll(ctx context.Context, playerID string, frameIndex, rollIndex int, pins []bowling.PinState) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, fmt.Errorf("live game manager not initialized")
	}
	g, err := m.latestRecordable(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNoGame
	}

	gameK := gameKey(g.ID)
	wasComplete := g.Status == StatusComplete

	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, gameK).Bytes()
		if err == redis.Nil {
			return ErrNoGame
		}
		if err != nil {
			return err
		}
		var cur Game
		if jerr := json.Unmarshal(raw, &cur); jerr != nil {
			return jerr
		}
		if cur.Status == StatusAbandoned {
			return ErrNoGame
		}
		if cur.Session == nil {
			return bowling.ErrNoActiveGame
		}
		cur.Session.Normalize()

		if err := cur.Session.RecordRoll(frameIndex, rollIndex, pins); err != nil {
			return err
		}

		cur.UpdatedAt = time.Now()
		if cur.Session.IsComplete() {
			cur.Session.Finalize(cur.UpdatedAt)
			cur.Status = StatusComplete
		} else {
			cur.Session.Reopen()
			cur.Status = StatusOpen
		}

		pipe := tx.TxPipeline()
		newRaw, _ := json.Marshal(&cur)
		pipe.Set(ctx, gameK, newRaw, m.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		g = &cur
		return nil
	}, gameK)

	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("concurrent update detected, retry the roll")
		}
		return nil, err
	}

	obslog.L().Info("roll_recorded",
		zap.String("game_id", g.ID),
		zap.String("player_id", strings.TrimSpace(playerID)),
		zap.Int("frame", frameIndex+1),
		zap.Int("roll", rollIndex+1),
		zap.Int("pins", bowling.KnockedCount(pins)),
		zap.String("status", string(g.Status)),
	)

	if g.Status == StatusComplete && !wasComplete {
		m.finalizeGame(ctx, g)
	}
	return g, nil
}

// Abandon closes the player's open game without a final score.
func (m *Manager) Abandon(ctx context.Context, playerID string) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, fmt.Errorf("live game manager not initialized")
	}
	g, err := m.GetActiveGameByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNoGame
	}

	gameK := gameKey(g.ID)
	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, gameK).Bytes()
		if err == redis.Nil {
			return ErrNoGame
		}
		if err != nil {
			return err
		}
		var cur Game
		if jerr := json.Unmarshal(raw, &cur); jerr != nil {
			return jerr
		}
		if cur.Status != StatusOpen {
			return redis.TxFailedErr
		}
		cur.Status = StatusAbandoned
		cur.UpdatedAt = time.Now()

		pipe := tx.TxPipeline()
		newRaw, _ := json.Marshal(&cur)
		pipe.Set(ctx, gameK, newRaw, m.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		g = &cur
		return nil
	}, gameK)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("game no longer open")
		}
		return nil, err
	}

	obslog.L().Info("game_abandon",
		zap.String("game_id", g.ID),
		zap.String("player_id", strings.TrimSpace(playerID)),
	)
	return g, nil
}

// LoadGame returns a game by id, normalized for use.
func (m *Manager) LoadGame(ctx context.Context, id string) (*Game, error) {
	return m.get(ctx, id)
}

// finalizeGame persists and announces a finished game. Both paths are best
// effort; the authoritative state already lives in Redis.
func (m *Manager) finalizeGame(ctx context.Context, g *Game) {
	sheet := ""
	if m.sheets != nil {
		sheet = m.sheets.FormatText(g.Session)
	}
	total := 0
	if g.Session != nil && g.Session.FinalScore != nil {
		total = *g.Session.FinalScore
	}
	obslog.L().Info("game_final",
		zap.String("game_id", g.ID),
		zap.String("player_id", g.PlayerID),
		zap.Int("total", total),
	)
	if m.repo != nil {
		if err := m.repo.SaveResult(ctx, g, sheet); err != nil {
			obslog.L().Error("result_persist_error", zap.String("game_id", g.ID), zap.Error(err))
		}
	}
	if m.notifier != nil {
		if err := m.notifier.GameFinished(ctx, Snapshot(g), sheet); err != nil {
			obslog.L().Warn("notify_game_final_error", zap.String("game_id", g.ID), zap.Error(err))
		}
	}
}

// Persistence
func (m *Manager) save(ctx context.Context, g *Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, gameKey(g.ID), raw, m.ttl).Err()
}

func (m *Manager) get(ctx context.Context, id string) (*Game, error) {
	raw, err := m.rdb.Get(ctx, gameKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var g Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	if g.Session != nil {
		g.Session.Normalize()
	}
	return &g, nil
}

func (m *Manager) indexPlayer(ctx context.Context, playerID, gameID string) error {
	key := idxPlayerKey(playerID)
	if err := m.rdb.SAdd(ctx, key, gameID).Err(); err != nil {
		return err
	}
	// refresh the index TTL alongside the game TTL
	return m.rdb.Expire(ctx, key, m.ttl).Err()
}

func gameKey(id string) string { return "lane:game:" + strings.TrimSpace(id) }
func idxPlayerKey(pid string) string { return "lane:index:player:" + strings.TrimSpace(pid) }

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
