package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/prefs"
)

func TestMultiFansOutInOrder(t *testing.T) {
	var order []string
	first := ledger.NotifierFunc(func(context.Context, core.Notification) { order = append(order, "first") })
	second := ledger.NotifierFunc(func(context.Context, core.Notification) { order = append(order, "second") })

	Multi{first, nil, second}.Notify(context.Background(), core.Notification{Message: "Goal added"})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_, ok := r.Last()
	assert.False(t, ok)

	r.Notify(context.Background(), core.Notification{Message: "Transaction added"})
	r.Notify(context.Background(), core.Notification{Message: "Transaction deleted"})

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, "Transaction deleted", last.Message)
	assert.Len(t, r.All(), 2)

	r.Reset()
	assert.Empty(t, r.All())
}

func TestLogNotifierLevels(t *testing.T) {
	var buf bytes.Buffer
	cfg := log.DefaultConfig()
	cfg.Format = "json"
	cfg.Level = slog.LevelWarn
	cfg.Output = &buf
	n := NewLogNotifier(log.New(cfg))

	n.Notify(context.Background(), core.Notification{Kind: core.NotifySuccess, Message: "Budget added"})
	assert.Empty(t, buf.String())

	n.Notify(context.Background(), core.Notification{
		Kind:       core.NotifyError,
		Message:    "Failed to save budgets",
		Collection: core.CollectionBudgets,
		Operation:  "add",
	})
	out := buf.String()
	assert.Contains(t, out, "Failed to save budgets")
	assert.Contains(t, out, `"collection":"budgets"`)
	assert.Contains(t, out, `"component":"notify"`)
}

func TestHubBroadcastsToConnectedClients(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleRequest))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Sessions() == 1 }, time.Second, 10*time.Millisecond)

	hub.Notify(context.Background(), core.Notification{
		Kind:       core.NotifySuccess,
		Message:    "Goal updated",
		Collection: core.CollectionGoals,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, TypeNotification, msg.Type)
	require.NotNil(t, msg.Notification)
	assert.Equal(t, "Goal updated", msg.Notification.Message)

	hub.PreferencesChanged(prefs.State{
		Preferences: core.Preferences{ThemeMode: core.ThemeDark, ColorScheme: core.SchemeTeal},
		Dark:        true,
	})
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	msg = Message{}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, TypePreferences, msg.Type)
	require.NotNil(t, msg.Preferences)
	assert.True(t, msg.Preferences.Dark)
}

func TestHubWithoutClientsIsQuiet(t *testing.T) {
	hub := NewHub(nil)
	hub.Notify(context.Background(), core.Notification{Message: "nobody listening"})
	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close())
}
