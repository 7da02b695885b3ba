package mcpsrv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grant/suneater/catalog"
	"github.com/grant/suneater/config"
	"github.com/grant/suneater/github"
	"github.com/grant/suneater/types"
)

type fakeSource struct {
	items   int
	err     error
	calls   atomic.Int32
	cleared atomic.Bool
}

func newFakeSource(items int) *fakeSource {
	return &fakeSource{items: items}
}

func (f *fakeSource) ListItems(_ context.Context, category types.CategoryID, icon types.Icon) ([]types.ContentItem, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]types.ContentItem, 0, f.items)
	for i := 0; i < f.items; i++ {
		out = append(out, types.NewContentItem(
			fmt.Sprintf("item %d", i),
			github.Description(category.String()),
			icon,
			[]string{category.String(), "MD"},
			fmt.Sprintf("https://github.com/grant/suneater-data/blob/%s/item-%d.md", category, i),
		))
	}
	return out, nil
}

func (f *fakeSource) ClearCache() {
	f.cleared.Store(true)
}

func TestToolCategoryList(t *testing.T) {
	cat := catalog.Default()

	_, out, err := categoryListHandler(context.Background(), nil, categoryListArgs{}, cat)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Total)
	assert.Equal(t, "workflows", out.Items[0].ID)

	_, out, err = categoryListHandler(context.Background(), nil, categoryListArgs{Query: "FORGE"}, cat)
	require.NoError(t, err)
	require.Equal(t, 1, out.Total)
	assert.Equal(t, "code", out.Items[0].ID)
}

func TestToolCategoryGetItemsRemote(t *testing.T) {
	src := newFakeSource(8)

	result, out, err := categoryGetItemsHandler(context.Background(), nil, categoryGetItemsArgs{Category: "Scripts"}, catalog.Default(), src, nil)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, sourceRemote, out.Source)
	assert.Empty(t, out.Reason)
	assert.Equal(t, 8, out.Total)
	assert.Equal(t, "scripts", out.Category.ID)
	assert.Equal(t, "terminal", out.Items[0].Icon)
	assert.Equal(t, []string{"scripts", "MD"}, out.Items[0].Tags)
}

func TestToolCategoryGetItemsPreviewAndLimit(t *testing.T) {
	cat := catalog.Default()

	_, out, err := categoryGetItemsHandler(context.Background(), nil, categoryGetItemsArgs{Category: "data", Preview: true}, cat, newFakeSource(9), nil)
	require.NoError(t, err)
	assert.Equal(t, catalog.PreviewSize, out.Total)

	_, out, err = categoryGetItemsHandler(context.Background(), nil, categoryGetItemsArgs{Category: "data", Limit: 2}, cat, newFakeSource(9), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
}

func TestToolCategoryGetItemsFallback(t *testing.T) {
	cat := catalog.Default()
	prompts, _ := cat.Category(types.Prompts)

	tests := []struct {
		name   string
		source types.ItemSource
		reason string
	}{
		{"no source", nil, "not_configured"},
		{"network failure", &fakeSource{err: fmt.Errorf("%w: dial tcp", github.ErrNetworkFailure)}, "network_failure"},
		{"bad status", &fakeSource{err: fmt.Errorf("%w: 404", github.ErrNonSuccessStatus)}, "non_success_status"},
		{"empty listing", newFakeSource(0), "empty_result"},
		{"unexpected error", &fakeSource{err: errors.New("boom")}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, out, err := categoryGetItemsHandler(context.Background(), nil, categoryGetItemsArgs{Category: "prompts"}, cat, tt.source, nil)
			require.NoError(t, err)
			assert.Nil(t, result, "fallback is a successful result")
			assert.Equal(t, sourceFallback, out.Source)
			assert.Equal(t, tt.reason, out.Reason)
			assert.Equal(t, prompts.FallbackLen(), out.Total)
			assert.Equal(t, prompts.Fallback()[0].Title(), out.Items[0].Title)
		})
	}
}

func TestToolCategoryGetItemsInvalidArgs(t *testing.T) {
	cases := []categoryGetItemsArgs{
		{Category: ""},
		{Category: "videos"},
		{Category: "code", Limit: -1},
	}
	for _, args := range cases {
		result, _, err := categoryGetItemsHandler(context.Background(), nil, args, catalog.Default(), newFakeSource(1), nil)
		if err != nil {
			t.Fatalf("unexpected handler error: %v", err)
		}
		if result == nil || !result.IsError {
			t.Fatalf("expected IsError result for %+v", args)
		}
	}
}

func TestToolSectionList(t *testing.T) {
	_, out, err := sectionListHandler(context.Background(), nil, catalog.Default())
	require.NoError(t, err)
	assert.Equal(t, 7, out.Total)
	ids := make([]string, 0, len(out.Items))
	for _, s := range out.Items {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"hero", "about", "workflows", "prompts", "scripts", "data", "code"}, ids)
}

func TestCacheClearUnsupportedSource(t *testing.T) {
	result, _, err := cacheClearHandler(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatal("expected IsError for a source without a cache")
	}
}

func TestAdminCacheClearGating(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(1)

	srvWithout := startTestServer(src, config.MCPConfig{}, &ServerOptions{EnableAdmin: true})
	defer srvWithout.Close()
	sessionWithout := connectTestClient(t, ctx, srvWithout.URL+"/mcp")
	toolsWithout, err := sessionWithout.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools without api key: %v", err)
	}
	sessionWithout.Close()
	if containsTool(toolsWithout.Tools, "cache_clear") {
		t.Fatalf("cache_clear should be absent without an api key")
	}

	srvWith := startTestServer(src, config.MCPConfig{}, &ServerOptions{EnableAdmin: true, APIKey: "secret"})
	defer srvWith.Close()
	sessionWith := connectTestClient(t, ctx, srvWith.URL+"/mcp")
	toolsWith, err := sessionWith.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools with admin: %v", err)
	}
	sessionWith.Close()
	if !containsTool(toolsWith.Tools, "cache_clear") {
		t.Fatalf("cache_clear should be present when admin enabled")
	}
}

func TestAdminCacheClearCallsSource(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(1)
	srv := startTestServer(src, config.MCPConfig{}, &ServerOptions{EnableAdmin: true, APIKey: "secret"})
	defer srv.Close()

	session := connectTestClient(t, ctx, srv.URL+"/mcp")
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "cache_clear", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("call cache_clear: %v", err)
	}
	if result.IsError {
		t.Fatalf("cache_clear returned tool error")
	}
	if !src.cleared.Load() {
		t.Fatalf("expected source.ClearCache to be called")
	}
}

func TestServerOptionsFrom(t *testing.T) {
	assert.False(t, ServerOptionsFrom(config.MCPConfig{EnableAdmin: true}).EnableAdmin)
	assert.True(t, ServerOptionsFrom(config.MCPConfig{EnableAdmin: true, APIKey: "k"}).EnableAdmin)
}

func TestAuthMiddleware(t *testing.T) {
	srv := startTestServer(newFakeSource(1), config.MCPConfig{APIKey: "secret", RPS: 100, Burst: 100}, &ServerOptions{})
	defer srv.Close()

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"bearer", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
		{"x-api-key", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
		{"malformed bearer", map[string]string{"Authorization": "Bearer"}, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "secreT"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := postInitialize(srv.URL+"/mcp", tt.headers)
			if err != nil {
				t.Fatalf("initialize request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestOriginAllowlistMiddleware(t *testing.T) {
	srv := startTestServer(newFakeSource(1), config.MCPConfig{RPS: 100, Burst: 100}, &ServerOptions{})
	defer srv.Close()

	headers := map[string]string{"Origin": "https://evil.example"}
	resp, err := postInitialize(srv.URL+"/mcp", headers)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestOriginAllowlistMiddlewareAllowed(t *testing.T) {
	srv := startTestServer(newFakeSource(1), config.MCPConfig{AllowedOrigins: []string{"https://app.example"}, RPS: 100, Burst: 100}, &ServerOptions{})
	defer srv.Close()

	headers := map[string]string{"Origin": "https://app.example"}
	resp, err := postInitialize(srv.URL+"/mcp", headers)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("unexpected allow-origin header %q", got)
	}
}

func TestOriginAllowlistPreflight(t *testing.T) {
	srv := startTestServer(newFakeSource(1), config.MCPConfig{AllowedOrigins: []string{"https://app.example"}, RPS: 100, Burst: 100}, &ServerOptions{})
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	srv := startTestServer(newFakeSource(1), config.MCPConfig{RPS: 1, Burst: 1}, &ServerOptions{})
	defer srv.Close()

	resp1, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	defer resp1.Body.Close()
	if resp1.StatusCode != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", resp1.StatusCode)
	}

	resp2, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected second request 429, got %d", resp2.StatusCode)
	}
}

func TestRateLimitRefill(t *testing.T) {
	srv := startTestServer(newFakeSource(1), config.MCPConfig{RPS: 20, Burst: 1}, &ServerOptions{})
	defer srv.Close()

	resp1, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	resp1.Body.Close()

	resp2, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected second request 429, got %d", resp2.StatusCode)
	}

	time.Sleep(60 * time.Millisecond)
	resp3, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("third request failed: %v", err)
	}
	defer resp3.Body.Close()
	if resp3.StatusCode != http.StatusOK {
		t.Fatalf("expected third request 200 after refill, got %d", resp3.StatusCode)
	}
}

func TestStatelessGetMethod(t *testing.T) {
	handler := NewHandler(NewServer(nil, newFakeSource(1), "dev", &ServerOptions{}), StreamableOptions(config.MCPConfig{Stateless: true}))
	srv := httptest.NewServer(handler)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	srv := startTestServer(newFakeSource(1), config.MCPConfig{}, &ServerOptions{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected healthz response %d %q", resp.StatusCode, body)
	}
}

func TestMCPListTools(t *testing.T) {
	ctx := context.Background()
	srv := startTestServer(newFakeSource(1), config.MCPConfig{}, &ServerOptions{})
	defer srv.Close()

	session := connectTestClient(t, ctx, srv.URL+"/mcp")
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	for _, name := range []string{"category_list", "category_get_items", "section_list"} {
		if !containsTool(tools.Tools, name) {
			t.Fatalf("missing tool %q", name)
		}
	}
}

func TestMCPCoreTools(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(3)
	srv := startTestServer(src, config.MCPConfig{}, &ServerOptions{})
	defer srv.Close()

	session := connectTestClient(t, ctx, srv.URL+"/mcp")
	defer session.Close()

	cases := []mcp.CallToolParams{
		{Name: "category_list", Arguments: map[string]any{}},
		{Name: "category_get_items", Arguments: map[string]any{"category": "workflows", "preview": true}},
		{Name: "section_list", Arguments: map[string]any{}},
	}

	for _, tc := range cases {
		result, err := session.CallTool(ctx, &tc)
		if err != nil {
			t.Fatalf("call tool %s failed: %v", tc.Name, err)
		}
		if result.IsError {
			t.Fatalf("tool %s returned IsError=true", tc.Name)
		}
	}
	if src.calls.Load() != 1 {
		t.Fatalf("expected one listing request, got %d", src.calls.Load())
	}
}

func startTestServer(source types.ItemSource, cfg config.MCPConfig, opts *ServerOptions) *httptest.Server {
	if cfg.RPS <= 0 {
		cfg.RPS = 100
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 100
	}
	server := NewServer(catalog.Default(), source, "test", opts)
	return httptest.NewServer(NewMux(WrapMCPHandler(NewHandler(server, StreamableOptions(cfg)), cfg), nil))
}

func connectTestClient(t *testing.T, ctx context.Context, endpoint string) *mcp.ClientSession {
	t.Helper()
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: endpoint}, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	return session
}

func containsTool(tools []*mcp.Tool, name string) bool {
	for _, tool := range tools {
		if tool != nil && tool.Name == name {
			return true
		}
	}
	return false
}

func postInitialize(url string, headers map[string]string) (*http.Response, error) {
	payload := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2025-06-18",
			"capabilities":    map[string]any{},
			"clientInfo": map[string]any{
				"name":    "test",
				"version": "1",
			},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(string(b)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return http.DefaultClient.Do(req)
}
