// Command ludo-server runs the Ludo simulation server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the REST API, the
//     WebSocket turn feed, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from LUDO_* and NGROK_* environment variables (a .env file is
// loaded when present) and can be overridden with flags.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/ludo/api"
	"github.com/wricardo/mcp-training/ludo/game/scenario"
	"github.com/wricardo/mcp-training/ludo/game/service"
	"github.com/wricardo/mcp-training/ludo/game/store"
	"github.com/wricardo/mcp-training/ludo/transport/mcp"
	"github.com/wricardo/mcp-training/ludo/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Ludo Simulation Server"
)

func usage(fs *flag.FlagSet) func() {
	return func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(out, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(out, "Available modes:\n")
		fmt.Fprintf(out, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(out, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(out, "  mcp-stdio, mcp   Aliases for stdio-mcp\n")
		fmt.Fprintf(out, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  %s                         # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(out, "  %s -port 9090              # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(out, "  %s -scenario-dir ./tests   # Serve scenarios from another directory\n", os.Args[0])
		fmt.Fprintf(out, "  %s stdio-mcp               # Run MCP stdio server\n", os.Args[0])
	}
}

// main parses configuration, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	bindFlags(fs, &cfg)
	fs.Usage = usage(fs)
	fs.Parse(os.Args[1:])

	if cfg.Version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	if cfg.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	mode := "server"
	if fs.NArg() > 0 {
		mode = fs.Arg(0)
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, results, err := initializeServices(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	go results.RunCleanup(ctx, cfg.CleanupInterval)

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		if err := runStdioMCP(ctx, cfg, svc); err != nil {
			log.Fatalf("MCP stdio server error: %v", err)
		}

	case "server", "http":
		runHTTPServer(ctx, cfg, svc)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// initializeServices wires the result store, the scenario manager and the
// simulation service. A missing scenario directory disables scenarios
// instead of failing startup.
func initializeServices(cfg Config) (service.SimulationService, *store.Manager, error) {
	results := store.NewManager(cfg.ResultTTL)
	if cfg.ResultDir != "" {
		persistence, err := store.NewFilePersistence(cfg.ResultDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create result persistence: %w", err)
		}
		results = store.NewManagerWithPersistence(cfg.ResultTTL, persistence)

		loaded, err := results.LoadPersisted()
		if err != nil {
			log.Printf("Warning: Failed to load persisted simulations: %v", err)
		} else if loaded > 0 {
			log.Printf("Loaded %d persisted simulations from %s", loaded, cfg.ResultDir)
		}
	}

	var scenarios service.ScenarioManager
	manager, err := scenario.NewManager(cfg.ScenarioDir)
	if err != nil {
		log.Printf("Warning: scenarios disabled: %v", err)
	} else {
		scenarios = manager
		log.Printf("Serving scenarios from %s", manager.Dir())
	}

	return service.NewSimulationService(results, scenarios), results, nil
}

// newRouter mounts the REST API at the root and the MCP JSON-RPC endpoint at /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	router := http.NewServeMux()
	router.Handle("/", apiServer)

	router.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})

	return router
}

// runHTTPServer serves the API until ctx is cancelled. If ngrok is enabled
// it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cfg Config, svc service.SimulationService) {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := cfg.Addr()
	router := newRouter(api.NewServer(svc, hub), mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws (live) or ws://%s/ws?simulation=<id> (replay)", addr, addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if cfg.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cfg, router)
		}()
	}

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

// runNgrok exposes handler through an ngrok tunnel until ctx is cancelled
func runNgrok(ctx context.Context, cfg Config, handler http.Handler) {
	authToken := cfg.NgrokAuthToken
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTH_TOKEN")
	}
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.Printf("Using custom ngrok domain: %s", cfg.NgrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It reuses an API server already
// listening on the configured address; otherwise it starts an internal one
// on a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cfg Config, svc service.SimulationService) error {
	baseURL := "http://" + cfg.Addr()
	log.Printf("Checking for external API server at %s...", baseURL)

	if apiAvailable(baseURL) {
		log.Printf("External API server found at %s, using it for MCP", baseURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalURL, shutdown := serveInternal(ctx, listener, svc)
		defer shutdown()
		baseURL = internalURL
		log.Printf("Internal HTTP server for MCP stdio on %s", baseURL)
	}

	log.Println("MCP stdio server ready")
	return mcp.NewClient(baseURL).ServeStdio()
}

// apiAvailable reports whether a healthy API answers at baseURL
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// serveInternal serves the API on listener and returns its base URL and a
// shutdown function. The hub stops with ctx.
func serveInternal(ctx context.Context, listener net.Listener, svc service.SimulationService) (string, func()) {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	httpServer := &http.Server{Handler: api.NewServer(svc, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}
	return "http://" + listener.Addr().String(), shutdown
}
