// Package server exposes the daily puzzles over HTTP for browser clients.
//
// Endpoints:
//   - GET  /health
//   - GET  /puzzles, GET /puzzles/{category}
//   - GET  /daily            today's completions and the next reset
//   - POST /puzzles/validate validate a posted puzzle document
//   - POST /generate         text-to-puzzle with local fallback
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/verte-zerg/dotdaily/internal/clock"
	"github.com/verte-zerg/dotdaily/internal/daily"
	"github.com/verte-zerg/dotdaily/internal/generator"
	"github.com/verte-zerg/dotdaily/internal/model"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

const maxBody = 1 << 20

// StateStore is the persistence the server reads daily progress from.
type StateStore interface {
	LoadGameState(ctx context.Context) (model.GameState, error)
}

// Options wire the server's collaborators. Assistant and State may be nil.
type Options struct {
	Pack      puzzle.Pack
	State     StateStore
	Assistant *generator.Assistant
	Clock     clock.TimeProvider
	Logger    zerolog.Logger
}

// Server bundles the router and its collaborators.
type Server struct {
	r    *chi.Mux
	opts Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	s := &Server{r: chi.NewRouter(), opts: opts}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(opts.Logger))
	s.r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	s.r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)

	s.r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/puzzles", s.handleList)
	s.r.Get("/puzzles/{category}", s.handleGet)
	s.r.Post("/puzzles/validate", s.handleValidate)
	s.r.Get("/daily", s.handleDaily)
	s.r.Post("/generate", s.handleGenerate)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})
	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.opts.Logger.Info().Str("addr", addr).Msg("listening")
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

type errorRes struct {
	Error  string   `json:"error"`
	Detail string   `json:"detail,omitempty"`
	Issues []string `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorRes{Error: code, Detail: detail})
}

type puzzleSummary struct {
	Category     model.Category `json:"category"`
	Name         string         `json:"name"`
	CategoryName string         `json:"categoryName"`
	Letters      int            `json:"letters"`
	Dots         int            `json:"dots"`
	Edges        int            `json:"edges"`
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	out := make([]puzzleSummary, 0, len(s.opts.Pack))
	for _, c := range model.Categories() {
		doc, ok := s.opts.Pack.Get(c)
		if !ok {
			continue
		}
		out = append(out, puzzleSummary{
			Category:     c,
			Name:         doc.Name,
			CategoryName: doc.CategoryName,
			Letters:      len(doc.Word()),
			Dots:         len(doc.Dots),
			Edges:        len(doc.Sequence),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := model.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_category", err.Error())
		return
	}
	doc, ok := s.opts.Pack.Get(c)
	if !ok {
		writeError(w, http.StatusNotFound, "no_puzzle", string(c))
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := puzzle.Encode(w, doc); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("encode puzzle")
	}
}

type validateRes struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, err := puzzle.Decode(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	issues := doc.Validate()
	res := validateRes{Valid: len(issues) == 0, Issues: make([]string, 0, len(issues))}
	for _, issue := range issues {
		res.Issues = append(res.Issues, issue.String())
	}
	writeJSON(w, http.StatusOK, res)
}

type dailyCategory struct {
	Category  model.Category          `json:"category"`
	Completed bool                    `json:"completed"`
	Record    *model.CompletionRecord `json:"record,omitempty"`
}

type dailyRes struct {
	LastReset  time.Time       `json:"lastReset"`
	NextReset  time.Time       `json:"nextReset"`
	Categories []dailyCategory `json:"categories"`
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	now := s.opts.Clock.Now()
	res := dailyRes{
		LastReset:  daily.LastMidnight(now),
		NextReset:  daily.NextReset(now),
		Categories: make([]dailyCategory, 0, 4),
	}
	var state model.GameState
	if s.opts.State != nil {
		var err error
		state, err = s.opts.State.LoadGameState(r.Context())
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("load game state")
			writeError(w, http.StatusInternalServerError, "state_unavailable", "")
			return
		}
	}
	for _, c := range model.Categories() {
		entry := dailyCategory{Category: c}
		if rec, ok := state.Completed[c]; ok && rec.Completed {
			entry.Completed = true
			entry.Record = &rec
		}
		res.Categories = append(res.Categories, entry)
	}
	writeJSON(w, http.StatusOK, res)
}

type generateReq struct {
	Prompt string `json:"prompt"`
}

type generateRes struct {
	Source   generator.Source `json:"source"`
	Document puzzle.Document  `json:"document"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	assistant := s.opts.Assistant
	if assistant == nil {
		assistant = generator.NewAssistant(nil, s.opts.Logger)
	}
	res, err := assistant.Generate(r.Context(), req.Prompt)
	if errors.Is(err, generator.ErrEmptyPrompt) {
		writeError(w, http.StatusBadRequest, "empty_prompt", "")
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("generate")
		writeError(w, http.StatusInternalServerError, "generate_failed", "")
		return
	}
	writeJSON(w, http.StatusOK, generateRes{Source: res.Source, Document: res.Document})
}
