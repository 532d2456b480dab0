package main

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"

	"github.com/coraldb/coraldb/core"
	"github.com/coraldb/coraldb/db"
	"github.com/coraldb/coraldb/storage"
)

// Server is a TCP SQL server that exposes the CoralDB engine. Each
// connection gets its own engine so USE state stays per session; the
// mutex serializes statement execution against the shared store.
type Server struct {
	listener   net.Listener
	store      *storage.Store
	identity   core.Identity
	authConfig *AuthConfig
	tlsEnabled bool
	mu         sync.Mutex
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewServer creates a new SQL server over the given store. All
// connections act as the given identity.
func NewServer(store *storage.Store, identity core.Identity) *Server {
	return &Server{
		store:    store,
		identity: identity,
		done:     make(chan struct{}),
	}
}

// NewServerWithAuth creates a server that requires clients to
// authenticate before executing statements. Statements run under the
// identity carried by the client's token.
func NewServerWithAuth(store *storage.Store, authConfig *AuthConfig) *Server {
	return &Server{
		store:      store,
		identity:   core.Identity{Name: "CoralDB Server", Email: "server@coraldb.local"},
		authConfig: authConfig,
		done:       make(chan struct{}),
	}
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	log.Printf("SQL Server listening on %s", addr)

	go s.acceptLoop()
	return nil
}

// StartTLS begins listening with TLS using the given certificate and
// key files.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	listener, err := tls.Listen("tcp", addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return fmt.Errorf("failed to start TLS server: %w", err)
	}
	s.listener = listener
	s.tlsEnabled = true

	log.Printf("SQL Server listening on %s (TLS)", addr)

	go s.acceptLoop()
	return nil
}

// TLSEnabled reports whether the server is serving TLS connections.
func (s *Server) TLSEnabled() bool {
	return s.tlsEnabled
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.Printf("Accept error: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	log.Printf("Client connected: %s", conn.RemoteAddr())

	state := &ConnectionState{}
	engine := db.NewEngine(s.store, s.identity)
	reader := bufio.NewReader(conn)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		// Read until newline (one query per line)
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("Read error from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}

		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}

		// Handle special commands
		if strings.ToLower(query) == "quit" || strings.ToLower(query) == "exit" {
			log.Printf("Client disconnected: %s", conn.RemoteAddr())
			return
		}

		var response Response
		switch {
		case s.authEnabled() && strings.HasPrefix(strings.ToUpper(query), "AUTH "):
			response = s.handleAuth(query, state)
			if state.IsAuthenticated() {
				// Rebuild the engine so statements run under the
				// token's identity.
				engine = db.NewEngine(s.store, *state.Identity())
			}
		case s.authEnabled() && !state.IsAuthenticated():
			response = Response{Success: false, Error: "authentication required"}
		default:
			response = s.executeQuery(engine, query)
		}

		data, err := EncodeResponse(response)
		if err != nil {
			log.Printf("Failed to encode response: %v", err)
			continue
		}

		_, err = conn.Write(data)
		if err != nil {
			log.Printf("Write error to %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}

func (s *Server) authEnabled() bool {
	return s.authConfig != nil && s.authConfig.Enabled
}

func (s *Server) executeQuery(engine *db.Engine, query string) Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := engine.Execute(query)
	if err != nil {
		return Response{
			Success: false,
			Error:   err.Error(),
		}
	}

	switch r := result.(type) {
	case db.QueryResult:
		qr := QueryResponse{
			Columns:     r.Columns,
			Data:        formatRows(r.Rows),
			RecordsRead: r.RecordsRead,
			TimeMs:      r.ExecutionTimeSec * 1000,
		}
		data, _ := json.Marshal(qr)
		return Response{
			Success: true,
			Type:    "query",
			Result:  data,
		}

	case db.CommitResult:
		cr := CommitResponse{
			DatabasesCreated: r.DatabasesCreated,
			DatabasesDeleted: r.DatabasesDeleted,
			TablesCreated:    r.TablesCreated,
			TablesDeleted:    r.TablesDeleted,
			RecordsWritten:   r.RecordsWritten,
			RecordsDeleted:   r.RecordsDeleted,
			TimeMs:           r.ExecutionTimeSec * 1000,
		}
		data, _ := json.Marshal(cr)
		return Response{
			Success: true,
			Type:    "commit",
			Result:  data,
		}

	default:
		return Response{
			Success: true,
			Type:    "unknown",
		}
	}
}
