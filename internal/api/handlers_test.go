package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaryrace/salaryrace-go/internal/analytics"
	"github.com/salaryrace/salaryrace-go/internal/api"
	"github.com/salaryrace/salaryrace-go/internal/compare"
	"github.com/salaryrace/salaryrace-go/internal/frame"
	"github.com/salaryrace/salaryrace-go/internal/frame/frametest"
	"github.com/salaryrace/salaryrace-go/internal/testutil"
)

var testNow = time.Date(2026, 2, 17, 9, 0, 10, 0, time.UTC)

type testEnv struct {
	ts     *httptest.Server
	events *analytics.Log
}

func newTestServer(t *testing.T, mutate func(*api.Options)) testEnv {
	t.Helper()
	st, _ := testutil.SeedStore(t)
	svc := compare.NewService(st, compare.WithNow(func() time.Time { return testNow }))
	events := analytics.NewLog(analytics.DefaultCapacity, nil, nil)

	opts := api.Options{
		BaseURL:   "https://salaryrace.example",
		Scheduler: frame.NewScheduler(frametest.NewClock(testNow)),
	}
	if mutate != nil {
		mutate(&opts)
	}
	srv, err := api.New(svc, events, opts)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return testEnv{ts: ts, events: events}
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	env := newTestServer(t, nil)

	resp, err := http.Get(env.ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestCreate(t *testing.T) {
	env := newTestServer(t, nil)

	resp := postJSON(t, env.ts.URL+"/api/create", `{"nameA":"Ada","nameB":"Grace","annualA":"50000","annualB":60000,"currency":"usd"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Slug string `json:"slug"`
		URL  string `json:"url"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, strings.HasPrefix(body.Slug, "ada-vs-grace-"), body.Slug)
	assert.Equal(t, "/compare/"+body.Slug, body.URL)

	got, err := http.Get(env.ts.URL + "/api/compare/" + body.Slug)
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)

	var c map[string]any
	decodeBody(t, got, &c)
	assert.Equal(t, "Ada", c["nameA"])
	assert.Equal(t, "USD", c["currency"])
	assert.InDelta(t, 60000, c["annualB"], 1e-9)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing name", `{"nameA":"","nameB":"B","annualA":1,"annualB":2}`, "Missing fields"},
		{"missing salary", `{"nameA":"A","nameB":"B","annualA":1}`, "Missing fields"},
		{"zero salary", `{"nameA":"A","nameB":"B","annualA":0,"annualB":2}`, "Invalid salary values"},
		{"negative salary", `{"nameA":"A","nameB":"B","annualA":"-5","annualB":2}`, "Invalid salary values"},
		{"not a number", `{"nameA":"A","nameB":"B","annualA":"lots","annualB":2}`, "Invalid salary values"},
		{"markup only name", `{"nameA":"<b></b>","nameB":"B","annualA":1,"annualB":2}`, "Missing fields"},
	}

	env := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, env.ts.URL+"/api/create", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var body map[string]string
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestCreate_BadJSON(t *testing.T) {
	env := newTestServer(t, nil)
	resp := postJSON(t, env.ts.URL+"/api/create", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreate_SchemaMissing(t *testing.T) {
	st := testutil.NewEmptyStore(t)
	srv, err := api.New(compare.NewService(st), nil, api.Options{})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/create", `{"nameA":"A","nameB":"B","annualA":1,"annualB":2}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Database schema missing", body["error"])
	assert.NotEmpty(t, body["hint"])
}

func TestCreate_RateLimited(t *testing.T) {
	env := newTestServer(t, func(o *api.Options) { o.CreateBudgetPerHour = 1 })

	first := postJSON(t, env.ts.URL+"/api/create", `{"nameA":"A","nameB":"B","annualA":1,"annualB":2}`)
	assert.Equal(t, http.StatusCreated, first.StatusCode)

	second := postJSON(t, env.ts.URL+"/api/create", `{"nameA":"C","nameB":"D","annualA":1,"annualB":2}`)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}

func TestGetComparison_NotFound(t *testing.T) {
	env := newTestServer(t, nil)

	for _, path := range []string{"/api/compare/nobody-vs-noone-AAAAAA", "/api/compare/bad%20slug", "/api/og/nobody-vs-noone-AAAAAA"} {
		resp, err := http.Get(env.ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestCounters(t *testing.T) {
	env := newTestServer(t, nil)

	resp, err := http.Get(env.ts.URL + "/api/compare/alice-vs-bob-Ab12Cd/counters")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap compare.Snapshot
	decodeBody(t, resp, &snap)
	assert.InDelta(t, 10, snap.A, 1e-9)
	assert.InDelta(t, 20, snap.B, 1e-9)
	assert.Equal(t, "B", snap.Leader)
}

func TestPageModel(t *testing.T) {
	env := newTestServer(t, nil)

	resp, err := http.Get(env.ts.URL + "/api/compare/alice-vs-bob-Ab12Cd/page")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		URL       string `json:"url"`
		OGImage   string `json:"og_image"`
		StreamURL string `json:"stream_url"`
		Counters  []struct {
			Name string `json:"name"`
		} `json:"counters"`
	}
	decodeBody(t, resp, &page)
	assert.Equal(t, "https://salaryrace.example/compare/alice-vs-bob-Ab12Cd", page.URL)
	assert.Equal(t, "https://salaryrace.example/api/og/alice-vs-bob-Ab12Cd", page.OGImage)
	require.Len(t, page.Counters, 2)
	assert.Equal(t, "Alice", page.Counters[0].Name)
}

func TestOG(t *testing.T) {
	env := newTestServer(t, nil)

	resp, err := http.Get(env.ts.URL + "/api/og/alice-vs-bob-Ab12Cd")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Cache-Control"), "max-age=86400")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Alice")
	assert.Contains(t, string(body), "<svg")
}

func TestAnalytics_RecordAndSummary(t *testing.T) {
	env := newTestServer(t, func(o *api.Options) { o.AdminToken = "tok" })

	for _, body := range []string{
		`{"type":"ad-impression","slot":"top"}`,
		`{"type":"ad-block-detected","slot":"top","reason":"script-missing"}`,
		`{"type":"ad-impression","slot":"side"}`,
	} {
		resp := postJSON(t, env.ts.URL+"/api/analytics", body)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}
	assert.Equal(t, 3, env.events.Len())

	req, err := http.NewRequest(http.MethodGet, env.ts.URL+"/api/analytics?latest=2", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sum analytics.Summary
	decodeBody(t, resp, &sum)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.Counts["ad-impression"])
	require.Len(t, sum.Latest, 2)
	assert.Equal(t, "side", sum.Latest[0].Payload["slot"])
}

func TestAnalytics_MissingType(t *testing.T) {
	env := newTestServer(t, nil)

	for _, body := range []string{`{}`, `{"type":""}`, `{"type":"   "}`, `{"type":42}`} {
		resp := postJSON(t, env.ts.URL+"/api/analytics", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		var got map[string]string
		decodeBody(t, resp, &got)
		assert.Equal(t, "Missing event type", got["error"])
	}
	assert.Zero(t, env.events.Len())
}

func TestAnalytics_SummaryBadLatest(t *testing.T) {
	env := newTestServer(t, func(o *api.Options) { o.AdminToken = "tok" })

	req, err := http.NewRequest(http.MethodGet, env.ts.URL+"/api/analytics?latest=-1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	env := newTestServer(t, func(o *api.Options) { o.CORSOrigins = []string{"https://allowed.example"} })

	req, err := http.NewRequest(http.MethodOptions, env.ts.URL+"/api/create", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://allowed.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://allowed.example", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStream_NotFound(t *testing.T) {
	env := newTestServer(t, nil)

	resp, err := http.Get(env.ts.URL + "/api/compare/nobody-vs-noone-AAAAAA/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func noRedirect(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

func TestCreateForm_Redirects(t *testing.T) {
	env := newTestServer(t, nil)
	client := &http.Client{CheckRedirect: noRedirect}

	resp, err := client.PostForm(env.ts.URL+"/create", url.Values{
		"nameA": {"Ada"}, "nameB": {"Grace"}, "annualA": {"50000"}, "annualB": {"60000"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/compare/ada-vs-grace-"), resp.Header.Get("Location"))
}

func TestCreateForm_ValidationRerendersForm(t *testing.T) {
	env := newTestServer(t, nil)

	resp, err := http.PostForm(env.ts.URL+"/create", url.Values{
		"nameA": {"Ada"}, "nameB": {"Grace"}, "annualA": {"0"}, "annualB": {"60000"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Invalid salary values")
	assert.Contains(t, string(body), `value="Ada"`)
}
