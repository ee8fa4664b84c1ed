package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
	"github.com/colorcodebot/colorcodebot/internal/biz/usecase"
)

// Server exposes the syntax resolver and chat config store as MCP tools
type Server struct {
	server     *mcp.Server
	resolver   *usecase.ResolverUsecase
	configRepo repo.ConfigRepo
	tables     *domain.AliasTables
	log        *zap.Logger
}

// NewServer creates a new MCP server. configRepo may be nil; get_chat_config
// then reports an error.
func NewServer(
	resolver *usecase.ResolverUsecase,
	configRepo repo.ConfigRepo,
	tables *domain.AliasTables,
	version string,
	log *zap.Logger,
) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "colorcodebot",
			Version: version,
		}, nil),
		resolver:   resolver,
		configRepo: configRepo,
		tables:     tables,
		log:        log.Named("mcp"),
	}
	s.registerTools()
	return s
}

// Run serves over stdin/stdout until the client disconnects or ctx ends
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools registers all tools
func (s *Server) registerTools() {
	// Tool: guess_syntax - Resolve the syntax of a snippet
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "guess_syntax",
		Description: "Decide which syntax a code snippet should be highlighted as. Tries the explicit language tag, the classifier, leading-prefix rules and the chat default, in that order.",
	}, s.handleGuessSyntax)

	// Tool: list_syntaxes - List the selectable syntaxes
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_syntaxes",
		Description: "List the syntaxes offered on the bot's keyboards, with their display names.",
	}, s.handleListSyntaxes)

	// Tool: get_chat_config - Read a chat's settings
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_chat_config",
		Description: "Get a chat's default syntax and watch/ignore mode.",
	}, s.handleGetChatConfig)
}

// GuessSyntaxInput is the input for guess_syntax tool
type GuessSyntaxInput struct {
	Text           string `json:"text" jsonschema:"The code snippet"`
	MarkupLanguage string `json:"markup_language,omitempty" jsonschema:"Language tag from a fenced code block, if any"`
	ChatID         int64  `json:"chat_id,omitempty" jsonschema:"Chat whose default syntax applies as the last resort"`
}

// GuessSyntaxOutput is the output for guess_syntax tool
type GuessSyntaxOutput struct {
	Resolved    bool    `json:"resolved"`
	Syntax      string  `json:"syntax,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	Strategy    string  `json:"strategy"`
	Label       string  `json:"label,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	Error       string  `json:"error,omitempty"`
}

func (s *Server) handleGuessSyntax(ctx context.Context, req *mcp.CallToolRequest, input GuessSyntaxInput) (*mcp.CallToolResult, GuessSyntaxOutput, error) {
	if input.Text == "" {
		return nil, GuessSyntaxOutput{Strategy: string(usecase.StrategyUnresolved), Error: "text is required"}, nil
	}

	chatID := domain.ChatID(input.ChatID)
	res := s.resolver.Resolve(ctx, usecase.ResolveRequest{
		Text:           input.Text,
		ChatID:         chatID,
		IsGroup:        chatID < 0,
		MarkupLanguage: input.MarkupLanguage,
	})

	out := GuessSyntaxOutput{
		Resolved:   res.Resolved(),
		Syntax:     string(res.Syntax),
		Strategy:   string(res.Strategy),
		Label:      res.Label,
		Confidence: res.Confidence,
	}
	if res.Resolved() {
		out.DisplayName = s.tables.DisplayName(res.Syntax)
	}
	return nil, out, nil
}

// ListSyntaxesInput is empty - no input needed
type ListSyntaxesInput struct{}

// SyntaxEntry is one selectable syntax
type SyntaxEntry struct {
	Name   string `json:"name"`
	Syntax string `json:"syntax"`
}

// ListSyntaxesOutput contains the selectable syntaxes in keyboard order
type ListSyntaxesOutput struct {
	Syntaxes []SyntaxEntry `json:"syntaxes"`
}

func (s *Server) handleListSyntaxes(ctx context.Context, req *mcp.CallToolRequest, input ListSyntaxesInput) (*mcp.CallToolResult, ListSyntaxesOutput, error) {
	out := ListSyntaxesOutput{Syntaxes: make([]SyntaxEntry, 0, len(s.tables.Display))}
	for _, ns := range s.tables.Display {
		out.Syntaxes = append(out.Syntaxes, SyntaxEntry{Name: ns.Name, Syntax: string(ns.Syntax)})
	}
	return nil, out, nil
}

// GetChatConfigInput specifies the chat to read
type GetChatConfigInput struct {
	ChatID int64 `json:"chat_id" jsonschema:"The chat id"`
}

// GetChatConfigOutput contains the chat settings
type GetChatConfigOutput struct {
	ChatID        int64  `json:"chat_id"`
	DefaultSyntax string `json:"default_syntax,omitempty"`
	Mode          string `json:"mode"`
	Error         string `json:"error,omitempty"`
}

func (s *Server) handleGetChatConfig(ctx context.Context, req *mcp.CallToolRequest, input GetChatConfigInput) (*mcp.CallToolResult, GetChatConfigOutput, error) {
	if s.configRepo == nil {
		return nil, GetChatConfigOutput{ChatID: input.ChatID, Error: "config store not configured"}, nil
	}

	cfg, err := s.configRepo.GetChatConfig(ctx, domain.ChatID(input.ChatID))
	if err != nil {
		s.log.Warn("failed to read chat config", zap.Int64("chat_id", input.ChatID), zap.Error(err))
		return nil, GetChatConfigOutput{ChatID: input.ChatID, Error: err.Error()}, nil
	}

	return nil, GetChatConfigOutput{
		ChatID:        input.ChatID,
		DefaultSyntax: string(cfg.DefaultSyntax),
		Mode:          string(cfg.Mode),
	}, nil
}
