// Package server exposes a Publisher over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/lemon-mint/vorleser/publish"
	"github.com/rs/zerolog"
)

// MaxScriptBytes bounds the size of a request body.
const MaxScriptBytes = 1 << 20

type Publisher interface {
	Publish(ctx context.Context, script string, voice string) (*publish.Result, error)
}

type Server struct {
	publisher Publisher
	log       zerolog.Logger

	httpServer http.Server
}

func New(p Publisher, log *zerolog.Logger) *Server {
	s := &Server{publisher: p, log: zerolog.Nop()}
	if log != nil {
		s.log = *log
	}
	s.httpServer = http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

type publishRequest struct {
	Script string `json:"script"`
	Voice  string `json:"voice,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/speech", s.handlePublish)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxScriptBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Script) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "script is required"})
		return
	}

	res, err := s.publisher.Publish(r.Context(), req.Script, req.Voice)
	if err != nil {
		kind := publish.KindOf(err)
		writeJSON(w, statusOf(kind), errorResponse{Error: err.Error(), Kind: kind.String()})
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func statusOf(kind publish.Kind) int {
	switch kind {
	case publish.KindSynthesis, publish.KindEmptyAudio, publish.KindUpload:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Serve accepts connections on l until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(l)
	}()

	s.log.Info().Str("addr", l.Addr().String()).Msg("listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
