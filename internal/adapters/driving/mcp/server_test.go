package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

func TestNewServer(t *testing.T) {
	t.Run("nil ports returns error", func(t *testing.T) {
		server, err := NewServer(nil)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSearchService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)
		assert.NotNil(t, server.Handler())
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("history without search is invalid", func(t *testing.T) {
		err := (&Ports{Runs: &mockRunHistory{}}).Validate()
		assert.ErrorIs(t, err, ErrMissingSearchService)
	})

	t.Run("search only is valid", func(t *testing.T) {
		err := (&Ports{Search: &mockSearchService{}}).Validate()
		assert.NoError(t, err)
	})
}

// connect runs the server over in-memory transports and returns a client
// session.
func connect(t *testing.T, ports *Ports) *mcp.ClientSession {
	t.Helper()

	server, err := NewServer(ports)
	require.NoError(t, err)

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return session
}

func TestServer_SearchOverSession(t *testing.T) {
	search := &mockSearchService{hits: []domain.SearchHit{
		{Filename: "fox.txt", URL: "https://www.dropbox.com/s/id:1/fox.txt?dl=0"},
	}}
	session := connect(t, &Ports{Search: search})

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, "search", tools.Tools[0].Name)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "search",
		Arguments: map[string]any{"query": "quick"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "quick", search.lastTerm)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"results":[{"filename":"fox.txt","url":"https://www.dropbox.com/s/id:1/fox.txt?dl=0"}],"count":1}`,
		string(raw))
}

func TestServer_RunHTTPStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}
