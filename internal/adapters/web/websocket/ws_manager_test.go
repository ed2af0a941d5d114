package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func dial(t *testing.T, srv *httptest.Server, origin string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.NoError(t, err)
	return conn
}

func waitForClients(t *testing.T, m *WSManager, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return m.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestWSManager_BroadcastsActivity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewWSManager(nil, nil)
	m.Start(ctx)

	srv := httptest.NewServer(http.HandlerFunc(m.HandleWebSocket))
	defer srv.Close()

	conn := dial(t, srv, "")
	defer conn.Close()
	waitForClients(t, m, 1)

	id := int64(2)
	cve := "CVE-2024-1235"
	m.NotifyActivity(domain.Activity{
		Comment: domain.Comment{ID: 7, Content: "AI Rating Verification: drift", Author: domain.SystemVerifierAuthor, VulnerabilityID: &id},
		CVEID:   &cve,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string          `json:"type"`
		Payload domain.Activity `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, TypeActivityNew, msg.Type)
	assert.Equal(t, uint(7), msg.Payload.ID)
	assert.Equal(t, "CVE-2024-1235", *msg.Payload.CVEID)

	m.NotifyVerification("default", domain.VerificationSummary{Total: 5, Valid: 4, Discrepancies: 1})
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), TypeVerificationCompleted)
	assert.Contains(t, string(data), `"discrepancies":1`)

	cancel()
	m.Wait()
	assert.Equal(t, 0, m.ClientCount())
}

func TestWSManager_CheckOrigin(t *testing.T) {
	m := NewWSManager([]string{"http://localhost:3000"}, nil)
	check := m.checkOrigin([]string{"http://localhost:3000"})

	tests := []struct {
		name   string
		origin string
		host   string
		want   bool
	}{
		{"no origin", "", "localhost:8080", true},
		{"same origin", "http://localhost:8080", "localhost:8080", true},
		{"allowed origin", "http://localhost:3000", "localhost:8080", true},
		{"foreign origin", "http://evil.example", "localhost:8080", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, check(req))
		})
	}

	wildcard := m.checkOrigin([]string{"*"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	assert.True(t, wildcard(req))
}

func TestWSManager_DropsWhenQueueFull(t *testing.T) {
	m := NewWSManager(nil, nil)

	// Not started, so nothing drains the queue
	for i := 0; i < queueSize+10; i++ {
		m.NotifyActivity(domain.Activity{})
	}
	assert.Len(t, m.queue, queueSize)
}
