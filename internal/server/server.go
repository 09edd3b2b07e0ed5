package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bitgallery/scanview/internal/model"
	"github.com/bitgallery/scanview/internal/poller"
)

// ViewSource is the read side of the merged view.
type ViewSource interface {
	Search(query string) []model.Listing
	ActiveListing(collection, tokenID string) (model.Listing, bool)
	Fingerprint() string
}

// StatusSource reports poller health.
type StatusSource interface {
	Status() poller.Status
}

// Config holds server configuration.
type Config struct {
	Port int
}

// Server serves the merged view over HTTP and WebSocket.
type Server struct {
	cfg    Config
	logger *slog.Logger

	view   ViewSource
	status StatusSource
	hub    *Hub

	httpSrv *http.Server
}

// viewPayload is the JSON shape pushed to /ws clients and returned by /listings.
type viewPayload struct {
	Fingerprint string          `json:"fingerprint"`
	Items       []model.Listing `json:"items"`
}

// New creates a new Server.
func New(cfg Config, view ViewSource, status StatusSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		view:   view,
		status: status,
		hub:    NewHub(logger),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /listings", s.handleListings)
	mux.HandleFunc("GET /listings/active", s.handleActiveListing)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /ws", s.hub.ServeWS)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Start begins serving. Non-blocking.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		s.logger.Info("view server started", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("view server error", "err", err)
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.Close()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown view server: %w", err)
	}
	s.logger.Info("view server stopped")
	return nil
}

// PublishView pushes a new snapshot to all connected WebSocket clients.
// Called by the poller's update handler, so it only fires on visible change.
func (s *Server) PublishView(snapshot []model.Listing, fingerprint string) {
	payload, err := json.Marshal(viewPayload{
		Fingerprint: fingerprint,
		Items:       snapshot,
	})
	if err != nil {
		s.logger.Error("marshal view payload", "err", err)
		return
	}
	s.hub.Broadcast(payload)
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	items := s.view.Search(r.URL.Query().Get("q"))
	s.writeJSON(w, viewPayload{
		Fingerprint: s.view.Fingerprint(),
		Items:       items,
	})
}

func (s *Server) handleActiveListing(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	tokenID := r.URL.Query().Get("token")
	if collection == "" || tokenID == "" {
		http.Error(w, "collection and token are required", http.StatusBadRequest)
		return
	}

	listing, ok := s.view.ActiveListing(collection, tokenID)
	if !ok {
		http.Error(w, "no active listing", http.StatusNotFound)
		return
	}
	s.writeJSON(w, listing)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	type feedJSON struct {
		Rounds           uint64 `json:"rounds"`
		Failures         uint64 `json:"failures"`
		ConsecutiveEmpty int    `json:"consecutiveEmpty"`
		LastSuccessAt    string `json:"lastSuccessAt,omitempty"`
		LastError        string `json:"lastError,omitempty"`
	}
	toJSON := func(fs poller.FeedStatus) feedJSON {
		out := feedJSON{
			Rounds:           fs.Rounds,
			Failures:         fs.Failures,
			ConsecutiveEmpty: fs.ConsecutiveEmpty,
			LastError:        fs.LastError,
		}
		if !fs.LastSuccessAt.IsZero() {
			out.LastSuccessAt = fs.LastSuccessAt.UTC().Format(time.RFC3339)
		}
		return out
	}

	st := s.status.Status()
	s.writeJSON(w, map[string]any{
		"fast":        toJSON(st.Fast),
		"full":        toJSON(st.Full),
		"listings":    st.Listings,
		"fingerprint": st.Fingerprint,
		"wsClients":   s.hub.Clients(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}
