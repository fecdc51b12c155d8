package mcpserver_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaryrace/salaryrace-go/internal/compare"
	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/mcpserver"
	"github.com/salaryrace/salaryrace-go/internal/testutil"
)

var testImpl = &mcp.Implementation{Name: "salaryrace-test", Version: "v0.0.1"}

func newSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	st, _ := testutil.SeedStore(t)
	now := time.Date(2026, 2, 17, 9, 1, 0, 0, time.UTC)
	svc := compare.NewService(st, compare.WithNow(func() time.Time { return now }))

	server := mcp.NewServer(testImpl, nil)
	mcpserver.RegisterTools(server, svc, "https://salaryrace.example")

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = server.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	return tc.Text, result.IsError
}

func TestRegisterTools_Lists(t *testing.T) {
	session := newSession(t)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"create_comparison", "get_comparison", "sample_counters"}, names)
}

func TestCreateComparison(t *testing.T) {
	session := newSession(t)

	text, isErr := callTool(t, session, "create_comparison", map[string]any{
		"name_a": "Ada", "name_b": "Grace", "annual_a": "31536000", "annual_b": "63072000",
	})
	require.False(t, isErr, text)

	var out struct {
		Slug       string            `json:"slug"`
		URL        string            `json:"url"`
		PerSecA    string            `json:"per_sec_a"`
		Comparison domain.Comparison `json:"comparison"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.True(t, strings.HasPrefix(out.Slug, "ada-vs-grace-"), out.Slug)
	assert.Equal(t, "https://salaryrace.example/compare/"+out.Slug, out.URL)
	assert.Equal(t, "1.00/s", out.PerSecA)
	assert.Equal(t, domain.DefaultCurrency, out.Comparison.Currency)
}

func TestCreateComparison_Invalid(t *testing.T) {
	session := newSession(t)

	text, isErr := callTool(t, session, "create_comparison", map[string]any{
		"name_a": "Ada", "name_b": "Grace", "annual_a": "0", "annual_b": "1",
	})
	assert.True(t, isErr)
	assert.Equal(t, domain.MsgInvalidSalary, text)
}

func TestGetComparison(t *testing.T) {
	session := newSession(t)

	text, isErr := callTool(t, session, "get_comparison", map[string]any{"slug": "alice-vs-bob-Ab12Cd"})
	require.False(t, isErr, text)

	var c domain.Comparison
	require.NoError(t, json.Unmarshal([]byte(text), &c))
	assert.Equal(t, "Alice", c.NameA)
	assert.Equal(t, "Bob", c.NameB)

	text, isErr = callTool(t, session, "get_comparison", map[string]any{"slug": "nobody-vs-noone-AAAAAA"})
	assert.True(t, isErr)
	assert.Contains(t, text, "not found")

	_, isErr = callTool(t, session, "get_comparison", map[string]any{"slug": ""})
	assert.True(t, isErr)
}

func TestSampleCounters(t *testing.T) {
	session := newSession(t)

	text, isErr := callTool(t, session, "sample_counters", map[string]any{"slug": "alice-vs-bob-Ab12Cd"})
	require.False(t, isErr, text)

	var snap compare.Snapshot
	require.NoError(t, json.Unmarshal([]byte(text), &snap))
	// 60s after creation at 1/s and 2/s.
	assert.InDelta(t, 60, snap.A, 1e-9)
	assert.InDelta(t, 120, snap.B, 1e-9)
	assert.InDelta(t, -60, snap.Difference, 1e-9)
	assert.Equal(t, "B", snap.Leader)
}
