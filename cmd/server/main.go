package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coraldb/coraldb/core"
	"github.com/coraldb/coraldb/storage"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "TCP port to listen on (overrides config)")
	dataDir := flag.String("dataDir", "", "Data directory (memory if empty, overrides config)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("CoralDB SQL Server v%s\n", Version)
		return
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	identity := core.Identity{
		Name:  cfg.Identity.Name,
		Email: cfg.Identity.Email,
	}

	// Initialize the store
	var store *storage.Store
	if cfg.DataDir == "" {
		log.Println("Using in-memory storage")
		store = storage.NewMemoryStore()
		history, err := storage.NewMemoryHistory(identity)
		if err != nil {
			log.Fatalf("Failed to initialize history: %v", err)
		}
		store.SetHistory(history)
	} else {
		log.Printf("Using data directory: %s", cfg.DataDir)
		store, err = storage.NewFileStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to open store: %v", err)
		}
		history, err := storage.NewFileHistory(cfg.DataDir, identity)
		if err != nil {
			log.Fatalf("Failed to initialize history: %v", err)
		}
		store.SetHistory(history)
	}

	// Create and start server
	var server *Server
	if auth := cfg.AuthConfig(); auth != nil {
		server = NewServerWithAuth(store, auth)
	} else {
		server = NewServer(store, identity)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	if cfg.TLS.CertFile != "" {
		err = server.StartTLS(addr, cfg.TLS.CertFile, cfg.TLS.KeyFile)
	} else {
		err = server.Start(addr)
	}
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	// Print banner
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Printf("║   CoralDB SQL Server v%-15s ║\n", Version)
	fmt.Println("║   Versioned SQL Database Engine       ║")
	fmt.Println("╚═══════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Listening on port %d\n", cfg.Port)
	fmt.Println("Send SQL queries (one per line), 'quit' to disconnect")
	fmt.Println()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	server.Stop()
	log.Println("Server stopped")
}
