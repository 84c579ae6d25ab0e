// ABOUTME: Websocket endpoint that triggers preloaded samples by name
// ABOUTME: Plays through the local sample player; audio never crosses the network
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Resonate-Protocol/sampleplayer/internal/version"
)

const (
	writeDeadline  = 10 * time.Second
	maxMessageSize = 4096
)

// Trigger is the part of the sample player the endpoint drives
type Trigger interface {
	PlayWithGainAndPitch(name string, gain, pitch float64) error
	Samples() []string
}

// Config holds endpoint configuration
type Config struct {
	Addr  string
	Name  string
	Debug bool
}

// Server accepts websocket trigger connections
type Server struct {
	config   Config
	serverID string
	trigger  Trigger

	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server

	clients   map[string]*websocket.Conn
	clientsMu sync.Mutex

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
}

// New creates an endpoint serving trigger
func New(config Config, trigger Trigger) *Server {
	if config.Name == "" {
		config.Name = "samplepad"
	}

	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		trigger:  trigger,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Local network tool; browsers on other origins are allowed
				if origin := r.Header.Get("Origin"); origin != "" {
					log.Printf("Accepting websocket from origin: %s", origin)
				}
				return true
			},
		},
		clients:  make(map[string]*websocket.Conn),
		stopChan: make(chan struct{}),
	}

	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/healthz", s.handleHealth)

	return s
}

// Handler returns the HTTP handler with every route
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured address and blocks until Stop
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ln)
}

// Serve handles connections on ln and blocks until Stop
func (s *Server) Serve(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.mux}

	log.Printf("Remote trigger listening on %s", ln.Addr())

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-s.stopChan:
		log.Printf("Remote trigger shutting down...")
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		serverErr = err
	}

	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	s.closeClients()

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// Clients returns the number of open connections
func (s *Server) Clients() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// closeClients closes websocket connections, which http.Server.Shutdown leaves open
func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for id, conn := range s.clients {
		conn.Close()
		delete(s.clients, id)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"server":  s.config.Name,
		"id":      s.serverID,
		"version": version.Version,
		"clients": s.Clients(),
		"samples": len(s.trigger.Samples()),
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	shutdown := s.isShutdown
	s.shutdownMu.RUnlock()
	if shutdown {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New remote connection from %s", r.RemoteAddr)
	s.handleConnection(conn)
}

// handleConnection serves one client until it disconnects
func (s *Server) handleConnection(conn *websocket.Conn) {
	id := uuid.New().String()

	s.clientsMu.Lock()
	s.clients[id] = conn
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, id)
		s.clientsMu.Unlock()
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)

	hello := Message{
		Type:         TypeHello,
		ConnectionID: id,
		Server:       s.config.Name,
		Version:      version.Version,
	}
	if err := s.send(conn, hello); err != nil {
		log.Printf("Error sending hello: %v", err)
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		reply := s.handleMessage(id, data)
		if err := s.send(conn, reply); err != nil {
			log.Printf("Error writing reply: %v", err)
			return
		}
	}
}

// handleMessage processes one client request and returns the reply
func (s *Server) handleMessage(id string, data []byte) Message {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{Type: TypeError, Error: fmt.Sprintf("invalid message: %v", err)}
	}

	if s.config.Debug {
		log.Printf("[DEBUG] %s: %s", id, data)
	}

	switch msg.Type {
	case TypePlay:
		if msg.Sample == "" {
			return Message{Type: TypeError, Error: "missing sample name"}
		}
		if err := s.trigger.PlayWithGainAndPitch(msg.Sample, msg.gainOrDefault(), msg.pitchOrDefault()); err != nil {
			return Message{Type: TypeError, Sample: msg.Sample, Error: err.Error()}
		}
		return Message{Type: TypeOK, Sample: msg.Sample}

	case TypeList:
		return Message{Type: TypeSamples, Samples: s.trigger.Samples()}

	default:
		return Message{Type: TypeError, Error: fmt.Sprintf("unknown message type %q", msg.Type)}
	}
}

func (s *Server) send(conn *websocket.Conn, msg Message) error {
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return conn.WriteJSON(msg)
}
