package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/usecase"
	"github.com/colorcodebot/colorcodebot/internal/conf"
	"github.com/colorcodebot/colorcodebot/internal/data"
)

func connect(t *testing.T) (*mcp.ClientSession, *Server) {
	t.Helper()
	ctx := context.Background()

	configRepo, err := data.NewConfigRepo(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { configRepo.Close() })

	tables := conf.DefaultTables()
	resolver := usecase.NewResolverUsecase(tables, nil, configRepo, usecase.DefaultResolverConfig, nil)
	srv := NewServer(resolver, configRepo, tables, "test", nil)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := srv.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		cs.Close()
		ss.Wait()
	})
	return cs, srv
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError)

	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestListTools(t *testing.T) {
	cs, _ := connect(t)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"guess_syntax", "list_syntaxes", "get_chat_config"}, names)
}

func TestGuessSyntax(t *testing.T) {
	cs, srv := connect(t)

	var out GuessSyntaxOutput
	callTool(t, cs, "guess_syntax", map[string]any{"text": "<?php echo 1;"}, &out)
	assert.True(t, out.Resolved)
	assert.Equal(t, "php", out.Syntax)
	assert.Equal(t, "PHP", out.DisplayName)
	assert.Equal(t, string(usecase.StrategyPrefix), out.Strategy)

	out = GuessSyntaxOutput{}
	callTool(t, cs, "guess_syntax", map[string]any{"text": "print(1)", "markup_language": "python3"}, &out)
	assert.Equal(t, "py", out.Syntax)
	assert.Equal(t, string(usecase.StrategyExplicit), out.Strategy)

	// falls back to the chat default
	require.NoError(t, srv.configRepo.SetDefaultSyntax(context.Background(), -1001, "go"))
	out = GuessSyntaxOutput{}
	callTool(t, cs, "guess_syntax", map[string]any{"text": "x := 1", "chat_id": -1001}, &out)
	assert.Equal(t, "go", out.Syntax)
	assert.Equal(t, string(usecase.StrategyChatDefault), out.Strategy)

	out = GuessSyntaxOutput{}
	callTool(t, cs, "guess_syntax", map[string]any{"text": "hello"}, &out)
	assert.False(t, out.Resolved)
	assert.Equal(t, string(usecase.StrategyUnresolved), out.Strategy)
}

func TestListSyntaxes(t *testing.T) {
	cs, _ := connect(t)

	var out ListSyntaxesOutput
	callTool(t, cs, "list_syntaxes", map[string]any{}, &out)

	require.Len(t, out.Syntaxes, len(conf.DefaultTables().Display))
	assert.Equal(t, SyntaxEntry{Name: "Bash", Syntax: "sh"}, out.Syntaxes[0])
}

func TestGetChatConfig(t *testing.T) {
	cs, srv := connect(t)
	ctx := context.Background()

	var out GetChatConfigOutput
	callTool(t, cs, "get_chat_config", map[string]any{"chat_id": -1001}, &out)
	assert.Equal(t, int64(-1001), out.ChatID)
	assert.Empty(t, out.DefaultSyntax)
	assert.Equal(t, string(domain.ModeWatch), out.Mode)

	_, err := srv.configRepo.ToggleIgnoreMode(ctx, -1001)
	require.NoError(t, err)
	require.NoError(t, srv.configRepo.SetDefaultSyntax(ctx, -1001, "rs"))

	out = GetChatConfigOutput{}
	callTool(t, cs, "get_chat_config", map[string]any{"chat_id": -1001}, &out)
	assert.Equal(t, "rs", out.DefaultSyntax)
	assert.Equal(t, string(domain.ModeIgnore), out.Mode)
}
