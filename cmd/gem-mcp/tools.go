package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/idrisgemas/gemlookup/internal/httpapi"
	"github.com/idrisgemas/gemlookup/internal/lookup"
	"github.com/idrisgemas/gemlookup/internal/sheet"
)

// LookupInput is the argument object shared by both tools.
type LookupInput struct {
	Reference string `json:"reference" jsonschema:"the gemstone reference or lot number, e.g. 2976"`
}

func registerTools(server *mcp.Server, svc httpapi.Searcher) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "lookup_gemstone",
		Description: "Find a gemstone by reference and return its inventory record, image and video URLs, and a generated spec sheet.",
	}, lookupHandler(svc.Search))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "gemstone_media",
		Description: "Find a gemstone by reference and return its inventory record with image and video URLs only.",
	}, lookupHandler(svc.ResolveMedia))
}

type searchFunc func(ctx context.Context, reference string) (*lookup.Result, error)

// lookupHandler adapts a search to a tool handler. Lookup failures are
// reported as tool errors so the model sees them; only encoding failures
// are protocol errors.
func lookupHandler(search searchFunc) mcp.ToolHandlerFor[LookupInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in LookupInput) (*mcp.CallToolResult, any, error) {
		res, err := search(ctx, in.Reference)
		if err != nil {
			log.Debug().Err(err).Str("reference", in.Reference).Msg("Tool lookup failed")
			return toolError(err), nil, nil
		}

		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode result: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
		}, nil, nil
	}
}

func toolError(err error) *mcp.CallToolResult {
	msg := err.Error()
	var connErr *sheet.ConnectionError
	switch {
	case errors.Is(err, lookup.ErrEmptyReference):
		msg = "A reference is required."
	case errors.As(err, &connErr):
		msg = fmt.Sprintf("The inventory sheet is unreachable: %v", err)
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
