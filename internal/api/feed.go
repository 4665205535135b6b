package api

import (
	"net/http"
	"sync"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/lanekit/lanekeeper/internal/obslog"
	"github.com/lanekit/lanekeeper/pkg/lanedto"
)

// Feed pushes scorecard snapshots to websocket subscribers after every
// recorded roll, keyed by player id. Slow subscribers miss updates rather
// than block the recording path.
type Feed struct {
	mu   sync.RWMutex
	subs map[string]map[chan lanedto.Scorecard]struct{}
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[string]map[chan lanedto.Scorecard]struct{})}
}

// Publish fans a snapshot out to every subscriber of the player. Never blocks.
func (f *Feed) Publish(playerID string, card lanedto.Scorecard) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.subs[playerID] {
		select {
		case ch <- card:
		default: // subscriber lagging, drop this frame
		}
	}
}

func (f *Feed) add(playerID string) chan lanedto.Scorecard {
	ch := make(chan lanedto.Scorecard, 8)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[playerID] == nil {
		f.subs[playerID] = make(map[chan lanedto.Scorecard]struct{})
	}
	f.subs[playerID][ch] = struct{}{}
	return ch
}

func (f *Feed) remove(playerID string, ch chan lanedto.Scorecard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if set := f.subs[playerID]; set != nil {
		delete(set, ch)
		if len(set) == 0 {
			delete(f.subs, playerID)
		}
	}
}

func (f *Feed) subscribe(w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("player")

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		obslog.L().Warn("feed_accept", zap.String("player", player), zap.Error(err))
		return
	}
	defer c.CloseNow()

	ch := f.add(player)
	defer f.remove(player, ch)
	obslog.L().Info("feed_subscribe", zap.String("player", player))

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "bye")
			return
		case card := <-ch:
			if err := wsjson.Write(ctx, c, card); err != nil {
				obslog.L().Debug("feed_write", zap.String("player", player), zap.Error(err))
				return
			}
		}
	}
}
