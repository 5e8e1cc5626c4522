// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jeranaias/helix-tui/internal/backend"
	"github.com/jeranaias/helix-tui/internal/model"
)

// Server timeouts.
const (
	ReadTimeout     = 15 * time.Second
	WriteTimeout    = 30 * time.Second
	IdleTimeout     = 60 * time.Second
	ShutdownTimeout = 10 * time.Second
)

// Server serves the sync API over a Store.
type Server struct {
	store  *Store
	gen    *Generator
	logger *slog.Logger
	router chi.Router
}

// New builds a server over store. A nil logger uses slog.Default().
func New(store *Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:  store,
		gen:    NewGenerator(),
		logger: logger,
	}
	s.router = s.routes(DefaultCORSConfig())
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(corsCfg CORSConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))
	r.Use(cors(corsCfg))
	r.Use(limitBody)

	r.Route("/api", func(r chi.Router) {
		r.Post("/classify", s.handleClassify)
		r.Post("/chat", s.handleChat)
		r.Get("/load", s.handleLoad)
		r.Put("/sequence/update", s.handleUpdateStep)
		r.Delete("/delete_history", s.handleDeleteHistory)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dev server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("dev server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req backend.ClassifyRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	writeJSON(w, http.StatusOK, backend.ClassifyResponse{Intent: ClassifyIntent(req.Message).String()})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req backend.ChatRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "message and user_id are required")
		return
	}
	ctx := r.Context()

	current, _, err := s.store.ActiveSequence(ctx, req.UserID)
	if err != nil {
		s.internalError(w, "load active sequence", err)
		return
	}

	intent := ClassifyIntent(req.Message)
	res := s.gen.Respond(intent, req.Message, current)

	if res.Save {
		if err := s.store.SaveSequence(ctx, req.UserID, res.Sequence); err != nil {
			s.internalError(w, "save sequence", err)
			return
		}
	}
	if err := s.store.AppendMessages(ctx, req.UserID,
		model.NewUserMessage(req.Message),
		model.NewAssistantMessage(res.Reply),
	); err != nil {
		s.internalError(w, "append messages", err)
		return
	}

	reply := backend.ChatReply{
		Reply:    res.Reply,
		Intent:   intent.String(),
		Sequence: res.Sequence.Steps,
	}
	if reply.Sequence == nil {
		reply.Sequence = []model.Step{}
	}
	if res.Sequence.HasID() {
		id := res.Sequence.ID
		reply.SequenceID = &id
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	ctx := r.Context()

	msgs, err := s.store.Messages(ctx, userID)
	if err != nil {
		s.internalError(w, "load messages", err)
		return
	}
	seqs, err := s.store.Sequences(ctx, userID)
	if err != nil {
		s.internalError(w, "load sequences", err)
		return
	}

	out := backend.History{
		ChatHistory: make([]backend.HistoryEntry, 0, len(msgs)),
		Sequences:   seqs,
	}
	for _, m := range msgs {
		out.ChatHistory = append(out.ChatHistory, backend.HistoryEntry{Message: m.Text, Sender: m.Sender})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateStep(w http.ResponseWriter, r *http.Request) {
	var req backend.StepUpdate
	if !s.decode(w, r, &req) {
		return
	}
	field, err := model.ParseStepField(string(req.Field))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SequenceID == "" {
		writeError(w, http.StatusBadRequest, "sequenceId is required")
		return
	}

	err = s.store.UpdateStep(r.Context(), req.SequenceID, req.StepNumber, field, req.Value)
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, model.ErrNoSuchStep):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		s.internalError(w, "update step", err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if err := s.store.DeleteHistory(r.Context(), userID); err != nil {
		s.internalError(w, "delete history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request format")
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, what string, err error) {
	s.logger.Error(what, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
