// Package mcp exposes the session service over the Model Context Protocol.
// Tools map one-to-one onto service operations, so an MCP client can run the
// whole propose, confirm, record workflow and read the derived views.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emberhall/steward/internal/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Steward Session Engine MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
	// toolTimeout bounds one tool invocation.
	toolTimeout = 5 * time.Second
)

// Server hosts the MCP server over an in-process session service.
type Server struct {
	mcpServer *mcp.Server
	svc       *service.Service
}

// New creates a configured MCP server for the given service.
func New(svc *service.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("service is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{})
	server := &Server{mcpServer: mcpServer, svc: svc}

	registerSessionTools(mcpServer, svc)
	registerActionTools(mcpServer, svc)
	registerViewTools(mcpServer, svc)
	registerDiceTools(mcpServer)

	return server, nil
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Run creates and serves an MCP server for the service until the context
// ends.
func Run(ctx context.Context, svc *service.Service) error {
	server, err := New(svc)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
