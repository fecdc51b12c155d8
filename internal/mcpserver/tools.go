// Package mcpserver exposes salary comparisons via MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/salaryrace/salaryrace-go/internal/compare"
	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/og"
	"github.com/salaryrace/salaryrace-go/internal/store"
)

// Comparisons is the slice of compare.Service the tools call.
type Comparisons interface {
	Create(ctx context.Context, in domain.CreateInput) (domain.Comparison, error)
	Get(ctx context.Context, slug string) (domain.Comparison, error)
	Sample(ctx context.Context, slug string, now time.Time) (compare.Snapshot, error)
	Now() time.Time
}

// RegisterTools registers all salaryrace MCP tools on the given server.
// baseURL, when set, makes returned page links absolute.
func RegisterTools(server *mcp.Server, svc Comparisons, baseURL string) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "create_comparison",
			Description: "Create a salary comparison between two people and return its share link",
		},
		createHandler(svc, baseURL),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_comparison",
			Description: "Get a stored salary comparison by slug",
		},
		getHandler(svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "sample_counters",
			Description: "Sample how much each side has earned since the comparison was created",
		},
		sampleHandler(svc),
	)
}

type createInput struct {
	NameA    string `json:"name_a" jsonschema:"display name of the first person"`
	NameB    string `json:"name_b" jsonschema:"display name of the second person"`
	AnnualA  string `json:"annual_a" jsonschema:"annual salary of the first person, a positive number"`
	AnnualB  string `json:"annual_b" jsonschema:"annual salary of the second person, a positive number"`
	Currency string `json:"currency,omitempty" jsonschema:"ISO 4217 currency code"`
}

type createOutput struct {
	Slug       string            `json:"slug"`
	URL        string            `json:"url"`
	OGImage    string            `json:"og_image"`
	PerSecA    string            `json:"per_sec_a"`
	PerSecB    string            `json:"per_sec_b"`
	Comparison domain.Comparison `json:"comparison"`
}

func createHandler(svc Comparisons, baseURL string) mcp.ToolHandlerFor[createInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input createInput) (*mcp.CallToolResult, any, error) {
		c, err := svc.Create(ctx, domain.CreateInput{
			NameA:    input.NameA,
			NameB:    input.NameB,
			AnnualA:  input.AnnualA,
			AnnualB:  input.AnnualB,
			Currency: input.Currency,
		})
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return errorResult(verr.Msg), nil, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("create_comparison: %w", err)
		}

		return textResult(createOutput{
			Slug:       c.Slug,
			URL:        baseURL + c.URL(),
			OGImage:    baseURL + "/api/og/" + c.Slug,
			PerSecA:    og.FormatPerSec(c.PerSecA),
			PerSecB:    og.FormatPerSec(c.PerSecB),
			Comparison: c,
		})
	}
}

type slugInput struct {
	Slug string `json:"slug" jsonschema:"comparison slug, e.g. alice-vs-bob-Ab12Cd"`
}

func getHandler(svc Comparisons) mcp.ToolHandlerFor[slugInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input slugInput) (*mcp.CallToolResult, any, error) {
		if input.Slug == "" {
			return errorResult("slug is required"), nil, nil
		}

		c, err := svc.Get(ctx, input.Slug)
		if errors.Is(err, store.ErrNotFound) {
			return errorResult("comparison not found: " + input.Slug), nil, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("get_comparison: %w", err)
		}

		return textResult(c)
	}
}

func sampleHandler(svc Comparisons) mcp.ToolHandlerFor[slugInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input slugInput) (*mcp.CallToolResult, any, error) {
		if input.Slug == "" {
			return errorResult("slug is required"), nil, nil
		}

		snap, err := svc.Sample(ctx, input.Slug, svc.Now())
		if errors.Is(err, store.ErrNotFound) {
			return errorResult("comparison not found: " + input.Slug), nil, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("sample_counters: %w", err)
		}

		return textResult(snap)
	}
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
