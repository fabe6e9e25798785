// Command compilerd starts the graph compiler HTTP API server.
//
// Usage:
//
//	compilerd [flags]
//
// Flags:
//
//	-addr string
//	    Server address (default ":8080")
//	-read-timeout duration
//	    HTTP read timeout (default 30s)
//	-write-timeout duration
//	    HTTP write timeout (default 30s)
//	-tools string
//	    Directory of tool definition JSON files to preload into the
//	    tool registry at startup
//
// Example:
//
//	# Start server on default port
//	compilerd
//
//	# Start server on custom port, preloading tool definitions
//	compilerd -addr :9090 -tools ./tools
//
// The server exposes the following endpoints:
//
//	POST   /api/v1/compile                 - Compile a pipeline document
//	POST   /api/v1/pipelines               - Save a pipeline definition
//	GET    /api/v1/pipelines                - List pipeline definitions
//	GET    /api/v1/pipelines/{id}           - Load a pipeline definition
//	DELETE /api/v1/pipelines/{id}           - Delete a pipeline definition
//	POST   /api/v1/tools                   - Save a tool definition
//	GET    /api/v1/tools                    - List tool definitions
//	GET    /api/v1/tools/{id}               - Load a tool definition
//	DELETE /api/v1/tools/{id}               - Delete a tool definition
//	GET    /health                         - Health check
//	GET    /health/live                    - Liveness probe
//	GET    /health/ready                   - Readiness probe
//	GET    /metrics                        - Prometheus metrics
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pipeweave/graphc/pkg/schema"
	"github.com/pipeweave/graphc/pkg/server"
)

func main() {
	addr := flag.String("addr", ":8080", "Server address")
	readTimeout := flag.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	toolsDir := flag.String("tools", "", "Directory of tool definition JSON files to preload")

	flag.Parse()

	serverConfig := server.Config{
		Address:            *addr,
		ReadTimeout:        *readTimeout,
		WriteTimeout:       *writeTimeout,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 10 * 1024 * 1024, // 10MB
		EnableCORS:         true,
	}

	tools := schema.NewRegistry()
	if *toolsDir != "" {
		if err := loadTools(tools, *toolsDir); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load tool definitions: %v\n", err)
			os.Exit(1)
		}
	}

	srv, err := server.New(serverConfig, tools)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create server: %v\n", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		fmt.Printf("Starting graph compiler server on %s\n", *addr)
		fmt.Printf("Health check:     http://localhost%s/health\n", *addr)
		fmt.Printf("Liveness probe:   http://localhost%s/health/live\n", *addr)
		fmt.Printf("Readiness probe:  http://localhost%s/health/ready\n", *addr)
		fmt.Printf("Metrics:          http://localhost%s/metrics\n", *addr)
		fmt.Printf("API endpoint:     http://localhost%s/api/v1/compile\n", *addr)
		fmt.Println("\nPress Ctrl+C to shutdown")

		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)
		fmt.Println("Shutting down gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Server stopped")
	}
}

// loadTools reads every *.json file in dir as a tool document and adds it
// to the registry under its file basename (minus extension).
func loadTools(tools *schema.Registry, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading tools directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		tool, err := schema.DecodeToolDocument(raw)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", entry.Name(), err)
		}

		name := entry.Name()[:len(entry.Name())-len(filepath.Ext(entry.Name()))]
		if err := tools.Add(name, tool); err != nil {
			return fmt.Errorf("adding %s: %w", entry.Name(), err)
		}
	}

	return nil
}
