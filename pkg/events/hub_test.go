package events

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogEntry() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newHubClient(buffer int) *client {
	return &client{
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func TestHub_Publish_DeliversToAllClients(t *testing.T) {
	hub := NewHub(testLogEntry())
	first := newHubClient(1)
	second := newHubClient(1)
	hub.add(first)
	hub.add(second)

	hub.Publish("ASSET_CREATED", map[string]any{"assetId": "AST_1001", "assetType": "Laptop"})

	for _, cl := range []*client{first, second} {
		select {
		case data := <-cl.send:
			var update Update
			require.NoError(t, json.Unmarshal(data, &update))
			require.Equal(t, "ASSET_CREATED", update.Type)
			require.Equal(t, "AST_1001", update.AssetID)
			require.False(t, update.Timestamp.IsZero())

			fields, ok := update.Data.(map[string]any)
			require.True(t, ok)
			require.Equal(t, "Laptop", fields["assetType"])
		case <-time.After(time.Second):
			t.Fatal("expected a frame on the send channel")
		}
	}
	require.Equal(t, 2, hub.ClientCount())
}

func TestHub_Publish_PayloadWithoutAssetID(t *testing.T) {
	hub := NewHub(testLogEntry())
	cl := newHubClient(1)
	hub.add(cl)

	hub.Publish("ASSET_DELETED", map[string]any{"assetIds": []string{"AST_1", "AST_2"}, "deletedCount": 2})

	select {
	case data := <-cl.send:
		var update Update
		require.NoError(t, json.Unmarshal(data, &update))
		require.Equal(t, "ASSET_DELETED", update.Type)
		require.Empty(t, update.AssetID)
	case <-time.After(time.Second):
		t.Fatal("expected a frame on the send channel")
	}
}

func TestHub_Publish_DropsSlowClient(t *testing.T) {
	hub := NewHub(testLogEntry())
	slow := newHubClient(0)
	healthy := newHubClient(1)
	hub.add(slow)
	hub.add(healthy)

	hub.Publish("REPAIR_STARTED", map[string]any{"assetId": "AST_1002"})

	require.Equal(t, 1, hub.ClientCount())
	select {
	case <-slow.done:
	default:
		t.Fatal("expected the slow client's done channel to be closed")
	}

	select {
	case <-healthy.send:
	case <-time.After(time.Second):
		t.Fatal("healthy client should still receive the frame")
	}
}

func TestHub_Publish_NoClients(t *testing.T) {
	hub := NewHub(testLogEntry())

	hub.Publish("ASSET_UPDATED", map[string]any{"assetId": "AST_1003"})

	require.Zero(t, hub.ClientCount())
}

func TestHub_Remove_Idempotent(t *testing.T) {
	hub := NewHub(testLogEntry())
	cl := newHubClient(1)
	hub.add(cl)

	hub.remove(cl)
	// A second remove must not close done again.
	hub.remove(cl)

	require.Zero(t, hub.ClientCount())
}
