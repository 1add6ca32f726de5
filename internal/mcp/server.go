package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/morgantremaine/cuer-live/internal/domain/guard"
	"github.com/morgantremaine/cuer-live/internal/domain/showcaller"
)

// Services contains all domain services needed by MCP.
type Services struct {
	Rundowns   RundownService
	Sessions   SessionService
	Showcaller *showcaller.Manager
	Guards     *guard.Manager
}

// Config contains server configuration.
type Config struct {
	Services Services
	Tenant   string
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "cuer-live",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	tenant := cfg.Tenant
	if tenant == "" {
		tenant = "default"
	}
	server.AddReceivingMiddleware(tenantMiddleware(tenant))
	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	handler := NewHandler(cfg.Services.Rundowns, cfg.Services.Sessions, cfg.Services.Showcaller, cfg.Services.Guards)
	registerTools(server, handler)

	return server
}
