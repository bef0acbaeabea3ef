package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/mux"

	"github.com/franckalain/platecheck/internal/config"
	"github.com/franckalain/platecheck/internal/database"
	"github.com/franckalain/platecheck/internal/ml"
)

const defaultHistoryLimit = 20

type Server struct {
	db        database.DB
	model     ml.Model
	cfg       *config.Config
	clients   *clientRegistry
	limiter   *clientLimiter
	maxUpload int64

	// analyzePost is the rate-limited POST branch of /api/analyze. Only
	// real analysis work counts against the limit; preflights and method
	// rejections stay free.
	analyzePost http.HandlerFunc
}

func New(db database.DB, model ml.Model, cfg *config.Config) *Server {
	maxUpload := cfg.Upload.MaxSizeBytes
	if maxUpload <= 0 {
		maxUpload = config.DefaultMaxUploadBytes
	}
	s := &Server{
		db:        db,
		model:     model,
		cfg:       cfg,
		clients:   newClientRegistry(),
		limiter:   newClientLimiter(cfg.RateLimit.PerMinute),
		maxUpload: maxUpload,
	}
	s.analyzePost = s.limiter.wrap(s.analyze)
	return s
}

// Router builds the HTTP route table. Split out of Start so tests can drive
// the full routing stack through httptest.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	// The analyze handler does its own method dispatch: the 405 contract
	// requires an Allow header, which mux's default handler does not set.
	router.HandleFunc("/api/analyze", s.handleAnalyze)
	router.HandleFunc("/api/history", s.handleHistory).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.handleWebSocket)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Serve static files
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.cfg.Server.StaticDir)))

	return router
}

func (s *Server) Start() error {
	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:    ":" + s.cfg.Server.Port,
		Handler: s.Router(),
	}

	// Start server
	go func() {
		log.Infof("starting server on port %s", s.cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := s.db.GetRecentAnalyses(r.Context(), limit)
	if err != nil {
		log.WithError(err).Error("failed to load analysis history")
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": records})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
