package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-quest-bot/internal/domain/model"
)

// UsersExporter and LeaderboardQuerier are the slices of the usecase layer
// the admin API consumes.
type UsersExporter interface {
	ExportCSV(ctx context.Context) ([]byte, error)
}

type LeaderboardQuerier interface {
	RankUsers(ctx context.Context, limit int) ([]*model.RankedUser, error)
}

type Server struct {
	users       UsersExporter
	leaderboard LeaderboardQuerier
	auth        *AuthManager
	secret      string
	log         *zerolog.Logger
}

func NewServer(users UsersExporter, leaderboard LeaderboardQuerier, auth *AuthManager, secret string, logger *zerolog.Logger) *Server {
	return &Server{
		users:       users,
		leaderboard: leaderboard,
		auth:        auth,
		secret:      secret,
		log:         logger,
	}
}

// Router builds the admin HTTP surface. Everything under /admin except login
// requires a valid session.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireAdmin)
			r.Get("/users.csv", s.handleUsersCSV)
			r.Get("/leaderboard", s.handleLeaderboard)
		})
	})
	return r
}

type loginRequest struct {
	Secret string `json:"secret"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.secret == "" {
		s.log.Error().Msg("admin session secret is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.secret)) != 1 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if _, err := s.auth.Mint(w); err != nil {
		s.log.Error().Err(err).Msg("session mint failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUsersCSV(w http.ResponseWriter, r *http.Request) {
	data, err := s.users.ExportCSV(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("csv export failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="users.csv"`)
	_, _ = w.Write(data)
}

type leaderboardEntry struct {
	UserID      string `json:"user_id"`
	TelegramID  int64  `json:"telegram_id"`
	FirstName   string `json:"first_name"`
	Username    string `json:"username,omitempty"`
	Activations int    `json:"activations"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		limit = n
	}

	ranked, err := s.leaderboard.RankUsers(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("leaderboard query failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	entries := make([]leaderboardEntry, 0, len(ranked))
	for _, ru := range ranked {
		entries = append(entries, leaderboardEntry{
			UserID:      ru.ID,
			TelegramID:  ru.TelegramID,
			FirstName:   ru.FirstName,
			Username:    ru.Username,
			Activations: ru.Activations,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		s.log.Error().Err(err).Msg("leaderboard encode failed")
	}
}

// ListenAndServe runs the admin server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
