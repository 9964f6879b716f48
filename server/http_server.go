package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	coreruntime "github.com/initializ/gemini-bridge/runtime"
)

// HTTPServer serves MCP over streamable HTTP at /mcp, plus a health check.
type HTTPServer struct {
	addr   string
	mcp    *Server
	logger coreruntime.Logger

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

// NewHTTPServer creates an HTTP transport for s listening on addr.
func NewHTTPServer(addr string, s *Server, logger coreruntime.Logger) *HTTPServer {
	if logger == nil {
		logger = coreruntime.NopLogger{}
	}
	return &HTTPServer{addr: addr, mcp: s, logger: logger}
}

// Handler returns the HTTP handler serving /mcp and /healthz.
func (h *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(h.mcp.MCP()))
	mux.HandleFunc("GET /healthz", handleHealthz)
	return mux
}

// Start begins serving HTTP. It blocks until the context is cancelled or
// an error occurs.
func (h *HTTPServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", h.addr, err)
	}

	srv := &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	h.mu.Lock()
	h.srv = srv
	h.ln = ln
	h.mu.Unlock()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	h.logger.Info("serving MCP over http", map[string]any{"addr": ln.Addr().String()})
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Addr returns the bound listener address once Start is running.
func (h *HTTPServer) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ln == nil {
		return ""
	}
	return h.ln.Addr().String()
}

// Shutdown gracefully shuts down the server.
func (h *HTTPServer) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	srv := h.srv
	h.mu.Unlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
}
