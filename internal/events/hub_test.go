package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeEvent(t *testing.T) {
	var e Event
	require.NoError(t, json.Unmarshal([]byte(MakeEvent("r1", TypeSubmissionCreated, map[string]any{"id": 3})), &e))
	assert.Equal(t, TypeSubmissionCreated, e.Type)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "r1", e.RequestID)
	assert.JSONEq(t, `{"id":3}`, string(e.Data))
	assert.False(t, e.At.IsZero())

	require.NoError(t, json.Unmarshal([]byte(MakeEvent("", TypePing, nil)), &e))
	assert.NotContains(t, MakeEvent("", TypePing, nil), `"data"`)
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	for i := 0; i < 20; i++ {
		h.Publish("x")
	}
	subs, dropped := h.Stats()
	assert.Equal(t, 1, subs)
	assert.Equal(t, 4, dropped)
	assert.Len(t, ch, 16)

	h.Unsubscribe(ch)
	h.Unsubscribe(ch)
	subs, _ = h.Stats()
	assert.Zero(t, subs)

	_, open := <-drain(ch)
	assert.False(t, open)
}

func drain(ch chan string) chan string {
	for len(ch) > 0 {
		<-ch
	}
	return ch
}
