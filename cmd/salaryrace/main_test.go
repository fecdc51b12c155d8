package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaryrace/salaryrace-go/internal/api"
	"github.com/salaryrace/salaryrace-go/internal/compare"
	"github.com/salaryrace/salaryrace-go/internal/testutil"
)

// runCLI executes the root command and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SALARYRACE_API_URL", "")
	t.Setenv("SALARYRACE_LOG_LEVEL", "error")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestCreateAndShow_Local(t *testing.T) {
	db := filepath.Join(t.TempDir(), "race.db")

	out, err := runCLI(t, "--db", db, "create", "Alice", "31536000", "Bob", "63072000", "--currency", "usd")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	slug := lines[0]
	assert.True(t, strings.HasPrefix(slug, "alice-vs-bob-"), slug)
	assert.True(t, strings.HasSuffix(lines[1], "/compare/"+slug), lines[1])

	out, err = runCLI(t, "--db", db, "show", slug)
	require.NoError(t, err)
	var shown struct {
		Comparison struct {
			NameA    string `json:"nameA"`
			Currency string `json:"currency"`
		} `json:"comparison"`
		PerSecA string  `json:"perSecA"`
		EarnedA float64 `json:"earnedA"`
		Leader  string  `json:"leader"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "Alice", shown.Comparison.NameA)
	assert.Equal(t, "USD", shown.Comparison.Currency)
	assert.Equal(t, "1.00/s", shown.PerSecA)
	assert.GreaterOrEqual(t, shown.EarnedA, 0.0)
	assert.Equal(t, "B", shown.Leader)
}

func TestCreate_InvalidSalary(t *testing.T) {
	db := filepath.Join(t.TempDir(), "race.db")
	_, err := runCLI(t, "--db", db, "create", "Alice", "0", "Bob", "10")
	require.Error(t, err)
	assert.Equal(t, "Invalid salary values", err.Error())
}

func TestCreate_WrongArgCount(t *testing.T) {
	_, err := runCLI(t, "create", "Alice", "10")
	require.Error(t, err)
}

func TestShow_NotFound(t *testing.T) {
	db := filepath.Join(t.TempDir(), "race.db")
	_, err := runCLI(t, "--db", db, "show", "nobody-vs-noone-AAAAAA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestOG_Local(t *testing.T) {
	db := filepath.Join(t.TempDir(), "race.db")
	out, err := runCLI(t, "--db", db, "create", "Alice", "100", "Bob", "200")
	require.NoError(t, err)
	slug := strings.SplitN(out, "\n", 2)[0]

	out, err = runCLI(t, "--db", db, "og", slug)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<svg"), out)

	file := filepath.Join(t.TempDir(), "card.svg")
	out, err = runCLI(t, "--db", db, "og", slug, "-o", file)
	require.NoError(t, err)
	assert.Contains(t, out, "1200x630")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Alice")
}

func TestMigrate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "race.db")
	t.Setenv("SALARYRACE_AUTO_MIGRATE", "false")

	out, err := runCLI(t, "--db", db, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "applied 2 migration(s), schema version 2")

	out, err = runCLI(t, "--db", db, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "applied 0 migration(s), schema version 2")
}

func TestRemoteBackend(t *testing.T) {
	st := testutil.NewStore(t)
	srv, err := api.New(compare.NewService(st), nil, api.Options{})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	out, err := runCLI(t, "--api", ts.URL, "create", "Ada", "50000", "Grace", "60000")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, ts.URL+"/compare/"+lines[0], lines[1])

	out, err = runCLI(t, "--api", ts.URL, "show", lines[0])
	require.NoError(t, err)
	assert.Contains(t, out, `"nameA": "Ada"`)

	_, err = runCLI(t, "--api", ts.URL, "show", "nobody-vs-noone-AAAAAA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestAnalytics_RequiresAPI(t *testing.T) {
	_, err := runCLI(t, "analytics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs --api")
}
