package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"simplix/internal/domain"
	"simplix/internal/interface/outs"
)

const (
	writeTimeout   = 5 * time.Second
	throttleNotice = "You are sending commands too quickly, slow down."
)

// Lobby brings actors online and takes them offline.
type Lobby interface {
	Enter(name string) (domain.Actor, error)
	Leave(name string)
}

type SessionRouter interface {
	Register(actorID string, sender outs.Sender)
	Unregister(actorID string, sender outs.Sender)
}

// LineHandler receives every command line typed in a session.
type LineHandler func(ctx context.Context, issuer domain.Issuer, text string)

type Config struct {
	Addr string
	// Rate and Burst throttle each session. Rate <= 0 disables throttling.
	Rate  float64
	Burst int

	Lobby    Lobby
	Sessions SessionRouter
	Catalog  CatalogProvider
	Log      domain.CommandLogRepository
}

func (c *Config) addr() string {
	if strings.TrimSpace(c.Addr) == "" {
		return ":8080"
	}
	return c.Addr
}

// Server accepts one WebSocket per actor session and serves the read-only
// HTTP API.
type Server struct {
	cfg      Config
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	handler LineHandler
	httpSrv *http.Server

	api *apiHandlers
}

type wsClient struct {
	conn    *websocket.Conn
	actor   domain.Actor
	limiter *rate.Limiter
	mu      sync.Mutex
}

type outgoingPayload struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type incomingPayload struct {
	Text string `json:"text"`
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Send implements outs.Sender.
func (c *wsClient) Send(_ context.Context, text string) error {
	return c.writeJSON(outgoingPayload{Type: "message", Text: text})
}

func (c *wsClient) allow() bool {
	return c.limiter == nil || c.limiter.Allow()
}

func NewServer(cfg Config) *Server {
	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*wsClient]struct{}),
		api:     newAPIHandlers(cfg.Catalog, cfg.Log),
	}
}

func (s *Server) SetHandler(h LineHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func (s *Server) getHandler() LineHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler
}

// Handler builds the HTTP handler. Sessions opened through it live until ctx
// ends or the peer disconnects.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/session", func(w http.ResponseWriter, r *http.Request) {
		s.handleWS(ctx, w, r)
	})
	s.api.register(mux)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			setCORSHeaders(w)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		mux.ServeHTTP(w, r)
	})
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.addr(),
		Handler: s.Handler(ctx),
	}

	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("ws: shutdown error: %v", err)
		}
		s.closeClients()
	}()

	log.Printf("ws: listening on %s", srv.Addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if s.cfg.Lobby == nil {
		writeError(w, http.StatusServiceUnavailable, "world not available")
		return
	}
	actor, err := s.cfg.Lobby.Enter(name)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.cfg.Lobby.Leave(actor.Name())
		log.Printf("ws: upgrade error: %v", err)
		return
	}

	client := &wsClient{conn: conn, actor: actor}
	if s.cfg.Rate > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(s.cfg.Rate), max(1, s.cfg.Burst))
	}

	s.mu.Lock()
	s.clients[client] = struct{}{}
	clientCount := len(s.clients)
	s.mu.Unlock()
	if s.cfg.Sessions != nil {
		s.cfg.Sessions.Register(actor.ID(), client)
	}

	log.Printf("ws: %s joined from %s (%d sessions)", actor.Name(), r.RemoteAddr, clientCount)

	go s.handleClient(ctx, client)
}

func (s *Server) handleClient(ctx context.Context, client *wsClient) {
	defer s.dropClient(client)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgType, data, err := client.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws: read error for %s: %v", client.actor.Name(), err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		text := decodeIncoming(data)
		if text == "" {
			continue
		}
		if !client.allow() {
			if err := client.Send(ctx, throttleNotice); err != nil {
				log.Printf("ws: throttle notice to %s: %v", client.actor.Name(), err)
			}
			continue
		}
		if handler := s.getHandler(); handler != nil {
			handler(ctx, client.actor, text)
		}
	}
}

func (s *Server) dropClient(client *wsClient) {
	client.conn.Close()

	s.mu.Lock()
	_, ok := s.clients[client]
	delete(s.clients, client)
	clientCount := len(s.clients)
	s.mu.Unlock()
	if !ok {
		return
	}

	if s.cfg.Sessions != nil {
		s.cfg.Sessions.Unregister(client.actor.ID(), client)
	}
	if s.cfg.Lobby != nil {
		s.cfg.Lobby.Leave(client.actor.Name())
	}
	log.Printf("ws: %s left (%d sessions)", client.actor.Name(), clientCount)
}

func (s *Server) closeClients() {
	s.mu.RLock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		s.dropClient(c)
	}
}

// decodeIncoming accepts {"text": "..."} or a plain text frame.
func decodeIncoming(data []byte) string {
	payload := incomingPayload{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}
	return strings.TrimSpace(payload.Text)
}
