// Package api is the HTTP transport for list order writes: a JSON server over a workspace
// store, a client for it, and a websocket stream of order changes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"wishlist-cli/internal/model"
	"wishlist-cli/internal/reorder"
	"wishlist-cli/internal/store"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ActorHeader names the acting identity of a request.
const ActorHeader = "X-Wishlist-Actor"

const maxOrderBody = 1 << 20

type ServerConfig struct {
	Addr string
	Dir  string
	// ActorID is used when a request carries no ActorHeader.
	ActorID string
	Logger  *zap.Logger
}

type Server struct {
	cfg     ServerConfig
	store   store.Store
	persist *LocalPersister
	bc      *broadcaster
	log     *zap.Logger
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Dir = strings.TrimSpace(cfg.Dir)
	cfg.ActorID = strings.TrimSpace(cfg.ActorID)
	if cfg.Addr == "" {
		return nil, errors.New("api: addr is empty")
	}
	if cfg.Dir == "" {
		return nil, errors.New("api: dir is empty")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{cfg: cfg, store: store.Store{Dir: cfg.Dir}, bc: newBroadcaster(), log: log}
	s.persist = &LocalPersister{Store: s.store, Logger: log, OnWrite: s.bc.orderChanged}
	return s, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestID)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/lists/{listId}/items", s.handleListItems).Methods(http.MethodGet)
	r.HandleFunc("/lists/{listId}/order", s.handlePutOrder).Methods(http.MethodPut)
	r.HandleFunc("/lists/{listId}/stream", s.handleStream).Methods(http.MethodGet)
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("serving", zap.String("addr", ln.Addr().String()), zap.String("dir", s.cfg.Dir))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

// WatchStore forwards changes made to the workspace by other processes to every stream
// subscriber until ctx is done.
func (s *Server) WatchStore(ctx context.Context) error {
	ch, err := s.store.Watch(ctx, 250*time.Millisecond)
	if err != nil {
		return err
	}
	for range ch {
		s.bc.refreshAll()
	}
	return nil
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			zap.String("id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

func (s *Server) actorFor(r *http.Request) string {
	if a := strings.TrimSpace(r.Header.Get(ActorHeader)); a != "" {
		return a
	}
	return s.cfg.ActorID
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	listID := mux.Vars(r)["listId"]
	items, err := s.persist.ListItems(r.Context(), listID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

// OrderRequest is the body of PUT /lists/{listId}/order.
type OrderRequest struct {
	Ranks []model.RankUpdate `json:"ranks"`
}

func (r OrderRequest) validate() error {
	if len(r.Ranks) == 0 {
		return errors.New("ranks is empty")
	}
	for i, rk := range r.Ranks {
		if strings.TrimSpace(rk.ID) == "" {
			return fmt.Errorf("ranks[%d]: missing id", i)
		}
		if rk.Rank < 0 {
			return fmt.Errorf("ranks[%d]: negative rank", i)
		}
	}
	return nil
}

func (s *Server) handlePutOrder(w http.ResponseWriter, r *http.Request) {
	listID := mux.Vars(r)["listId"]
	actorID := s.actorFor(r)
	if actorID == "" {
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "missing actor"})
		return
	}

	var req OrderRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxOrderBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid body: " + err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	if err := s.persist.PersistOrderAs(r.Context(), actorID, listID, req.Ranks); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code, ok := reorder.StatusCode(err)
	if !ok {
		code = http.StatusInternalServerError
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, code, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
