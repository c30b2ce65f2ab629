package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/nemadb/internal/mcp"
	"github.com/sanonone/nemadb/internal/server"
	"github.com/sanonone/nemadb/pkg/engine"
)

func main() {
	httpAddr := flag.String("http-addr", "", "Address and port for the REST API server (e.g. :9091), overrides the config file")
	dataDir := flag.String("data-dir", "", "Directory for the AOF persistence file, overrides the config file")
	configPath := flag.String("config", "", "Path to the YAML configuration file")
	authToken := flag.String("auth-token", "", "Bearer token required on API routes, overrides the config file")
	mcpMode := flag.Bool("mcp", false, "Serve the Model Context Protocol over stdio instead of HTTP")

	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *authToken != "" {
		cfg.AuthToken = *authToken
	}

	opts := engine.DefaultOptions(cfg.DataDir)
	opts.SyncOnWrite = cfg.SyncOnWrite
	eng, err := engine.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open engine: %v", err)
	}
	defer eng.Close()

	if *mcpMode {
		// MCP clients own the process lifetime; stdio EOF ends the session.
		s := mcp.NewMCPServer(eng)
		if err := s.Run(context.Background(), &mcpsdk.StdioTransport{}); err != nil {
			log.Fatalf("MCP server error: %v", err)
		}
		return
	}

	srv, err := server.NewServer(eng, cfg)
	if err != nil {
		log.Fatalf("Failed to create the server: %v", err)
	}

	// Listen for the interrupt signal (Ctrl+C) or SIGTERM.
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	// Run the HTTP server in a goroutine so main can wait on the signal.
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatal(err)
		}
	}()

	<-shutdownChan

	srv.Shutdown()
}
