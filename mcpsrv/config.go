package mcpsrv

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/grant/suneater/config"
)

func StreamableOptions(cfg config.MCPConfig) *mcp.StreamableHTTPOptions {
	return &mcp.StreamableHTTPOptions{
		Stateless:      cfg.Stateless,
		SessionTimeout: cfg.SessionTimeout,
	}
}

// ServerOptionsFrom derives tool registration options from the server
// config. Admin tools need both the flag and an API key.
func ServerOptionsFrom(cfg config.MCPConfig) *ServerOptions {
	return &ServerOptions{
		EnableAdmin: cfg.AdminEnabled(),
		APIKey:      cfg.APIKey,
	}
}
