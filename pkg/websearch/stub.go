package websearch

import (
	"context"
	"fmt"
	"strings"
)

// Stub stands in for a Model Context Protocol search server. It never
// contacts the server; it returns placeholder text that names the query so
// the analysis step still has something to work on.
type Stub struct {
	serverType string
	executable string
	args       []string
}

// NewStub creates the placeholder tool for serverType.
func NewStub(serverType, executable string, args []string) *Stub {
	return &Stub{serverType: serverType, executable: executable, args: args}
}

// Name implements Tool.
func (s *Stub) Name() string { return s.serverType }

// Command returns the server command line the stub stands in for.
func (s *Stub) Command() string {
	return strings.TrimSpace(s.executable + " " + strings.Join(s.args, " "))
}

// Search implements Tool.
func (s *Stub) Search(ctx context.Context, query string, count int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("[Simulated MCP search results for: %s]\n"+
		"Note: Full MCP integration requires MCP server to be running.\n"+
		"For production use, ensure MCP server is properly configured.", query), nil
}
