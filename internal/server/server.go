// Package server exposes the assistant over HTTP and WebSocket. A browser tab
// connected to /ws runs the speech engines: it streams recognition results
// in and receives speak frames and chat updates out.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/colonyops/tasktalk/internal/assistant"
	"github.com/colonyops/tasktalk/internal/core/chatlog"
	"github.com/colonyops/tasktalk/internal/core/config"
	"github.com/colonyops/tasktalk/internal/core/eventbus"
	"github.com/colonyops/tasktalk/internal/core/speech"
)

const shutdownTimeout = 5 * time.Second

// Server serves the JSON API and the WebSocket bridge.
type Server struct {
	app      *assistant.App
	hub      *Hub
	engine   *gin.Engine
	upgrader websocket.Upgrader
	addr     string
	log      zerolog.Logger

	mu      sync.RWMutex
	baseCtx context.Context
}

// New creates a Server and attaches it to the app: replies are spoken by
// broadcasting speak frames, and chat, listening and task changes are relayed
// to every connected client.
func New(app *assistant.App, cfg config.ServerConfig, log zerolog.Logger) *Server {
	log = log.With().Str("component", "server").Logger()

	s := &Server{
		app:     app,
		hub:     NewHub(log),
		addr:    cfg.Addr,
		log:     log,
		baseCtx: context.Background(),
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || originAllowed(cfg.AllowedOrigins, origin)
		},
	}

	s.engine = s.routes(cfg.AllowedOrigins)
	s.attach()

	return s
}

func (s *Server) attach() {
	a := s.app.Assistant

	a.SetSynthesizer(speech.SynthesizerFunc(func(_ context.Context, u speech.Utterance) error {
		s.hub.Broadcast(Frame{Type: FrameSpeak, Utterance: &u})
		return nil
	}))
	a.SubscribeHistory(func(ev chatlog.Event) {
		s.hub.Broadcast(chatFrame(ev))
	})
	a.OnListeningChange(func(on bool) {
		s.hub.Broadcast(listeningFrame(on))
	})

	s.app.Bus.SubscribeTaskCreated(func(p eventbus.TaskCreatedPayload) {
		t := p.Task
		s.hub.Broadcast(Frame{Type: FrameTaskCreated, Task: &t})
	})
	s.app.Bus.SubscribeTaskDeleted(func(p eventbus.TaskDeletedPayload) {
		t := p.Task
		s.hub.Broadcast(Frame{Type: FrameTaskDeleted, Task: &t})
	})
}

// Handler returns the HTTP handler. Broadcasts are only delivered while Run
// is active.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hub returns the client hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	go s.hub.Run(ctx)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info().Str("addr", s.addr).Msg("server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		s.log.Info().Msg("server stopped")
		return nil
	}
}

func (s *Server) baseContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseCtx
}

// handleWebSocket upgrades the connection, greets the client with the
// current state and then pumps frames until it disconnects.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket upgrade")
		return
	}

	a := s.app.Assistant
	client := newClient(s.hub, conn, a, s.log)
	s.hub.Register(client)

	settings := speech.DefaultRecognitionSettings()
	settings.Lang = s.app.Config.Voice.Lang
	s.hub.SendTo(client, Frame{Type: FrameSettings, Settings: &settings})
	s.hub.SendTo(client, Frame{Type: FrameHistory, Messages: a.History()})
	s.hub.SendTo(client, listeningFrame(a.Listening()))

	go client.writePump()
	client.readPump(s.baseContext())
}
