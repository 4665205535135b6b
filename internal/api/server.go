package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lanekit/lanekeeper/internal/bowling"
	"github.com/lanekit/lanekeeper/internal/livegame"
	"github.com/lanekit/lanekeeper/internal/obslog"
	"github.com/lanekit/lanekeeper/internal/scoreboard"
	"github.com/lanekit/lanekeeper/pkg/lanedto"
)

// Server is the HTTP surface over the live game manager. The scoring rules
// themselves live in internal/bowling; handlers only translate.
type Server struct {
	mgr  *livegame.Manager
	repo *livegame.Repository
	fmtr *scoreboard.Formatter
	rnd  *scoreboard.Renderer
	feed *Feed
}

func NewServer(mgr *livegame.Manager, repo *livegame.Repository, fmtr *scoreboard.Formatter) *Server {
	return &Server{
		mgr:  mgr,
		repo: repo,
		fmtr: fmtr,
		rnd:  scoreboard.NewRenderer(),
		feed: NewFeed(),
	}
}

// Router wires all routes.
func (s *Server) Router() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /v1/games", s.startGame)
	mux.HandleFunc("GET /v1/games/{player}", s.getGame)
	mux.HandleFunc("POST /v1/games/{player}/rolls", s.recordRoll)
	mux.HandleFunc("POST /v1/games/{player}/abandon", s.abandonGame)
	mux.HandleFunc("GET /v1/games/{player}/scorecard", s.scorecardText)
	mux.HandleFunc("GET /v1/games/{player}/scorecard.png", s.scorecardPNG)
	mux.HandleFunc("GET /v1/games/{player}/feed", s.feed.subscribe)
	mux.HandleFunc("POST /v1/validate", s.validatePins)
	mux.HandleFunc("GET /v1/players/{player}/history", s.history)

	return mux
}

func (s *Server) startGame(w http.ResponseWriter, r *http.Request) {
	var req lanedto.StartGameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, lanedto.DomainError{Code: "BAD_REQUEST", Message: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		writeError(w, http.StatusBadRequest, lanedto.DomainError{Code: "BAD_REQUEST", Message: "player_id is required"})
		return
	}

	g, err := s.mgr.StartGame(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	card := livegame.Snapshot(g)
	s.feed.Publish(g.PlayerID, card)
	if s.fmtr != nil {
		obslog.L().Debug("announce", zap.String("text", s.fmtr.AnnounceGameStart(displayName(g), g.Lane)))
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("player")
	g, err := s.mgr.GetActiveGameByPlayer(r.Context(), player)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if g == nil {
		writeError(w, http.StatusNotFound, lanedto.DomainError{Code: "NO_GAME", Message: "no active game for player"})
		return
	}
	writeJSON(w, http.StatusOK, livegame.Snapshot(g))
}

func (s *Server) recordRoll(w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("player")
	var req lanedto.RecordRollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, lanedto.DomainError{Code: "BAD_REQUEST", Message: "invalid JSON body"})
		return
	}

	pins := bowling.PinsFromNumbers(req.KnockedPins)
	g, err := s.mgr.RecordRoll(r.Context(), player, req.FrameIndex, req.RollIndex, pins)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	card := livegame.Snapshot(g)
	s.feed.Publish(g.PlayerID, card)
	if s.fmtr != nil {
		text := s.fmtr.AnnounceRoll(displayName(g), g.Session, req.FrameIndex)
		if card.Complete {
			text = s.fmtr.AnnounceGameOver(displayName(g), card.Total)
		}
		obslog.L().Debug("announce", zap.String("text", text))
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) abandonGame(w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("player")
	g, err := s.mgr.Abandon(r.Context(), player)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	card := livegame.Snapshot(g)
	s.feed.Publish(g.PlayerID, card)
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) scorecardText(w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("player")
	g, err := s.mgr.GetActiveGameByPlayer(r.Context(), player)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if g == nil {
		writeError(w, http.StatusNotFound, lanedto.DomainError{Code: "NO_GAME", Message: "no active game for player"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.fmtr.FormatText(g.Session) + "\n"))
}

func (s *Server) scorecardPNG(w http.ResponseWriter, r *http.Request) {
	player := r.PathValue("player")
	g, err := s.mgr.GetActiveGameByPlayer(r.Context(), player)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if g == nil {
		writeError(w, http.StatusNotFound, lanedto.DomainError{Code: "NO_GAME", Message: "no active game for player"})
		return
	}
	png, err := s.rnd.RenderPNG(r.Context(), g.Session, displayName(g), scoreboard.CurrentStance(g.Session))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// validatePins lets a UI pre-check a pin selection before submitting a roll.
func (s *Server) validatePins(w http.ResponseWriter, r *http.Request) {
	var req lanedto.ValidatePinsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, lanedto.DomainError{Code: "BAD_REQUEST", Message: "invalid JSON body"})
		return
	}

	var previous *bowling.Roll
	if len(req.AlreadyDown) > 0 {
		roll := bowling.NewRoll(bowling.PinsFromNumbers(req.AlreadyDown))
		previous = &roll
	}
	res := bowling.ValidatePinCombination(bowling.PinsFromNumbers(req.KnockedPins), previous)
	writeJSON(w, http.StatusOK, lanedto.ValidatePinsResponse{
		IsValid:     res.IsValid,
		Errors:      res.Errors,
		InvalidPins: res.InvalidPins,
	})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, lanedto.DomainError{Code: "NO_HISTORY", Message: "history storage not configured"})
		return
	}
	player := r.PathValue("player")
	recs, err := s.repo.RecentGames(r.Context(), player, 10)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func displayName(g *livegame.Game) string {
	if g.PlayerName != "" {
		return g.PlayerName
	}
	return g.PlayerID
}

// writeDomainError maps the scoring engine's typed errors onto HTTP.
func writeDomainError(w http.ResponseWriter, err error) {
	var berr *bowling.BoundsError
	var serr *bowling.SequencingError
	var perr *bowling.PhysicsError

	switch {
	case errors.As(err, &berr):
		writeError(w, http.StatusBadRequest, lanedto.DomainError{Code: "BOUNDS", Message: berr.Error()})
	case errors.As(err, &serr):
		writeError(w, http.StatusConflict, lanedto.DomainError{Code: "SEQUENCE", Message: serr.Error()})
	case errors.As(err, &perr):
		writeError(w, http.StatusUnprocessableEntity, lanedto.DomainError{
			Code:        "PHYSICS",
			Message:     perr.Error(),
			InvalidPins: perr.Pins,
			Reasons:     perr.Reasons,
		})
	case errors.Is(err, livegame.ErrNoGame), errors.Is(err, bowling.ErrNoActiveGame):
		writeError(w, http.StatusNotFound, lanedto.DomainError{Code: "NO_GAME", Message: "no active game for player"})
	default:
		obslog.L().Error("internal_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, lanedto.DomainError{Code: "INTERNAL", Message: "internal error", Retryable: true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, derr lanedto.DomainError) {
	writeJSON(w, status, map[string]any{"error": derr})
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
