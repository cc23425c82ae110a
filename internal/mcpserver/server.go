// Package mcpserver exposes a pkg/memo.Engine as MCP tools
// (memo_add, memo_search, memo_list, memo_forget, memo_status) so an agent
// harness can call the memory store the same way it would call any other
// collaborator tool.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/go-memo/memo/internal/render"
	"github.com/go-memo/memo/pkg/memo"
)

// Name is the MCP implementation name this server reports to clients.
const Name = "memo"

// Server wraps an MCP protocol server around one pkg/memo.Engine.
type Server struct {
	mcp    *mcp.Server
	engine *memo.Engine
	logger *slog.Logger
}

// New constructs a Server over engine and registers its tools. version is
// the value reported to clients during MCP initialization.
func New(engine *memo.Engine, version string) *Server {
	s := &Server{
		engine: engine,
		logger: slog.Default(),
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    Name,
		Version: version,
	}, nil)

	s.registerTools()
	return s
}

// MCPServer returns the underlying SDK server, for callers that need direct
// access (tests, alternative transports).
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memo_add",
		Description: "Store a piece of text in persistent memory, scoped to the current project unless a container is given. Skips the insert if the text is an exact or near duplicate of something already stored.",
	}, s.handleAdd)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memo_search",
		Description: "Search persistent memory with hybrid vector + full-text retrieval, fused by Reciprocal Rank Fusion. Use this before asking the user something that may already be recorded.",
	}, s.handleSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memo_list",
		Description: "List the most recently stored memories in a container, newest first.",
	}, s.handleList)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memo_forget",
		Description: "Delete a memory by id.",
	}, s.handleForget)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "memo_status",
		Description: "Report the embedding configuration, database location, and per-container record counts.",
	}, s.handleStatus)

	s.logger.Debug("registered memo MCP tools", slog.Int("count", 5))
}

func (s *Server) handleAdd(ctx context.Context, _ *mcp.CallToolRequest, input AddInput) (
	*mcp.CallToolResult, AddOutput, error,
) {
	if input.Text == "" {
		return nil, AddOutput{}, NewInvalidParamsError("text is required")
	}

	result, err := s.engine.Add(ctx, input.Text, memo.AddOptions{Container: input.Container})
	if err != nil {
		return nil, AddOutput{}, MapError(err)
	}

	return nil, AddOutput{
		ID:         result.ID,
		Skipped:    result.Skipped,
		Verdict:    string(result.Verdict),
		ExistingID: result.ExistingID,
		Similarity: result.Similarity,
	}, nil
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult, SearchOutput, error,
) {
	if input.Query == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("query is required")
	}

	results, err := s.engine.Search(ctx, input.Query, memo.SearchOptions{
		Container:    input.Container,
		Limit:        input.Limit,
		Threshold:    input.Threshold,
		SkipVector:   input.SkipVector,
		SkipFullText: input.SkipFullText,
	})
	if err != nil {
		return nil, SearchOutput{}, MapError(err)
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, 0, len(results)),
		Text:    render.Results(input.Query, results),
	}
	for _, r := range results {
		output.Results = append(output.Results, SearchResultOutput{
			ID:         r.ID,
			Content:    r.Content,
			Similarity: r.Similarity,
			CreatedAt:  r.CreatedAt,
			Location:   render.SourceLocation(r),
		})
	}

	return nil, output, nil
}

func (s *Server) handleList(ctx context.Context, _ *mcp.CallToolRequest, input ListInput) (
	*mcp.CallToolResult, ListOutput, error,
) {
	limit := input.Limit
	if limit == 0 {
		limit = 20
	}

	records, err := s.engine.List(ctx, input.Container, limit)
	if err != nil {
		return nil, ListOutput{}, MapError(err)
	}

	output := ListOutput{Records: make([]ListRecordOutput, 0, len(records))}
	for _, r := range records {
		output.Records = append(output.Records, ListRecordOutput{
			ID:        r.ID,
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
		})
	}

	return nil, output, nil
}

func (s *Server) handleForget(ctx context.Context, _ *mcp.CallToolRequest, input ForgetInput) (
	*mcp.CallToolResult, ForgetOutput, error,
) {
	if input.ID == "" {
		return nil, ForgetOutput{}, NewInvalidParamsError("id is required")
	}

	if err := s.engine.Forget(ctx, input.ID, memo.ForgetOptions{Container: input.Container}); err != nil {
		return nil, ForgetOutput{}, MapError(err)
	}

	return nil, ForgetOutput{Deleted: true}, nil
}

func (s *Server) handleStatus(ctx context.Context, _ *mcp.CallToolRequest, _ StatusInput) (
	*mcp.CallToolResult, StatusOutput, error,
) {
	status, err := s.engine.Status(ctx)
	if err != nil {
		return nil, StatusOutput{}, MapError(err)
	}

	return nil, StatusOutput{
		EmbeddingProvider:    status.EmbeddingProvider,
		EmbeddingModel:       status.EmbeddingModel,
		EmbeddingDimensions:  status.EmbeddingDimensions,
		DBPath:               status.DBPath,
		SimilarityThreshold:  status.SimilarityThreshold,
		MinVectorSimilarity:  status.MinVectorSimilarity,
		DeduplicationEnabled: status.DeduplicationEnabled,
		Containers:           status.CountsByContainer,
	}, nil
}

// Serve runs the server to completion over transport ("stdio" is the only
// supported value; memo has no network surface).
func (s *Server) Serve(ctx context.Context, transport string) error {
	switch transport {
	case "", "stdio":
		s.logger.Info("starting memo MCP server", slog.String("transport", "stdio"))
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("memo MCP server stopped with error", slog.String("error", err.Error()))
		}
		return err
	default:
		return NewInvalidParamsError("unsupported transport: " + transport)
	}
}
