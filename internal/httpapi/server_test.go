package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termify/floatspace/internal/config"
	"github.com/termify/floatspace/internal/daemon"
	"github.com/termify/floatspace/internal/metrics"
	"github.com/termify/floatspace/internal/persist"
	"github.com/termify/floatspace/internal/workspace"
)

type fixture struct {
	engine *daemon.Engine
	srv    *httptest.Server
}

func newFixture(t *testing.T, tabsMode string) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()

	bridge := persist.NewBridge(persist.NewMemoryStore(), persist.BridgeOptions{Delay: time.Hour, Logger: logger})
	t.Cleanup(bridge.Stop)

	opts := daemon.OptionsFromConfig(config.DefaultConfig())
	opts.Logger = logger
	opts.Metrics = m
	opts.TabsMode = tabsMode
	engine := daemon.NewEngine(bridge, opts)

	api := NewServer(engine, Options{Metrics: m, Logger: logger})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = api.Stop(context.Background())
	})
	return &fixture{engine: engine, srv: srv}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (f *fixture) layout(t *testing.T) LayoutResponse {
	t.Helper()
	resp, body := f.do(t, http.MethodGet, "/api/layout", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out LayoutResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

const twoTabs = `{"tabs":[
	{"id":"a","type":"terminal","terminalId":"t-a","name":"one"},
	{"id":"b","type":"terminal","terminalId":"t-b","name":"two"},
	{"id":"c","type":"settings","name":"settings"}
]}`

func TestREST_LayoutLifecycle(t *testing.T) {
	f := newFixture(t, config.TabsLocal)

	resp, _ := f.do(t, http.MethodPut, "/api/container", `{"width":1000,"height":600}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodPut, "/api/tabs", twoTabs)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	layout := f.layout(t)
	require.Len(t, layout.Windows, 2)
	assert.Equal(t, workspace.Size{Width: 494, Height: 592}, layout.Windows[0].Size)

	resp, _ = f.do(t, http.MethodPost, "/api/windows/a/move", `{"x":20,"y":30}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodPost, "/api/windows/b/maximize", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	layout = f.layout(t)
	assert.Equal(t, workspace.Point{X: 20, Y: 30}, layout.Windows[0].Position)
	assert.True(t, layout.Windows[0].IsCustomized)
	assert.Equal(t, "maximized", layout.Windows[1].Mode)

	resp, _ = f.do(t, http.MethodPost, "/api/layout/reset", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, f.layout(t).Windows[0].IsCustomized)

	resp, body := f.do(t, http.MethodPost, "/api/tabs", `{"name":"new"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var tab workspace.Tab
	require.NoError(t, json.Unmarshal(body, &tab))
	assert.Equal(t, "new", tab.Name)
	assert.Len(t, f.layout(t).Windows, 3)

	resp, _ = f.do(t, http.MethodPost, "/api/windows/"+tab.ID+"/close", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, f.layout(t).Windows, 2)
}

func TestREST_Errors(t *testing.T) {
	f := newFixture(t, config.TabsLocal)

	resp, _ := f.do(t, http.MethodPost, "/api/windows/missing/focus", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/windows/a/explode", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPut, "/api/container", `{"width":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/keys", `{"key":"ctrl+q"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPut, "/api/container", `{"width":1000,"height":600}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodPut, "/api/tabs", twoTabs)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodPost, "/api/windows/a/snap", `{"direction":"diagonal"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/windows/a/minimize", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodPost, "/api/windows/a/move", `{"x":1,"y":1}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestREST_StatusAndMetrics(t *testing.T) {
	f := newFixture(t, config.TabsLocal)
	f.do(t, http.MethodPut, "/api/container", `{"width":1000,"height":600}`)
	f.do(t, http.MethodPut, "/api/tabs", twoTabs)

	resp, body := f.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st daemon.Status
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, 2, st.Windows)
	assert.Equal(t, "local", st.TabsMode)

	resp, body = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "floatspace_windows 2")

	resp, _ = f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func dialWS(t *testing.T, f *fixture) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until match accepts one or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(map[string]any) bool) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg map[string]any
		require.NoError(t, json.Unmarshal(data, &msg))
		if match(msg) {
			return msg
		}
	}
}

func TestWebSocket_CommandsAndEvents(t *testing.T) {
	f := newFixture(t, config.TabsLocal)
	conn := dialWS(t, f)

	snapshot := readUntil(t, conn, func(m map[string]any) bool { return m["type"] == daemon.EventLayout })
	assert.Nil(t, snapshot["windows"])

	require.NoError(t, conn.WriteJSON(Message{Type: MessageContainer, Width: 1200, Height: 800}))
	readUntil(t, conn, func(m map[string]any) bool { return m["type"] == MessageAck && m["for"] == MessageContainer })

	var tabs struct {
		Tabs []workspace.Tab `json:"tabs"`
	}
	require.NoError(t, json.NewDecoder(bytes.NewBufferString(twoTabs)).Decode(&tabs))
	require.NoError(t, conn.WriteJSON(Message{Type: MessageTabs, Tabs: tabs.Tabs}))

	ev := readUntil(t, conn, func(m map[string]any) bool {
		ws, ok := m["windows"].([]any)
		return m["type"] == daemon.EventLayout && ok && len(ws) == 2
	})
	first := ev["windows"].([]any)[0].(map[string]any)
	assert.Equal(t, "a", first["id"])

	require.NoError(t, conn.WriteJSON(Message{Type: MessageFocus}))
	errMsg := readUntil(t, conn, func(m map[string]any) bool { return m["type"] == MessageError })
	assert.Contains(t, errMsg["error"], "id is required")
}

func TestWebSocket_RemoteCloseIsBroadcast(t *testing.T) {
	f := newFixture(t, config.TabsRemote)
	conn := dialWS(t, f)
	readUntil(t, conn, func(m map[string]any) bool { return m["type"] == daemon.EventLayout })

	require.NoError(t, f.engine.SetContainer(workspace.Size{Width: 800, Height: 600}))
	require.NoError(t, f.engine.SetTabs([]workspace.Tab{{ID: "a", Type: workspace.TabTypeTerminal, TerminalID: "t-a"}}))

	resp, _ := f.do(t, http.MethodPost, "/api/windows/a/close", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg := readUntil(t, conn, func(m map[string]any) bool { return m["type"] == daemon.EventCloseTab })
	assert.Equal(t, "a", msg["tabId"])
	assert.Len(t, f.engine.Windows(), 1)
}
