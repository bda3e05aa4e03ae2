package broadcast

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_FanOutPreservesOrder(t *testing.T) {
	hub := NewHub(nil)
	a := hub.Subscribe("a", 8)
	b := hub.Subscribe("b", 8)

	for i := 0; i < 5; i++ {
		hub.Publish("tick", i)
	}

	for _, sub := range []*Subscription{a, b} {
		for i := 0; i < 5; i++ {
			event := <-sub.Events()
			assert.Equal(t, "tick", event.Kind)
			assert.Equal(t, i, event.Payload)
			assert.NotEmpty(t, event.ID)
		}
	}
}

func TestHub_FullQueueDropsWithoutBlocking(t *testing.T) {
	hub := NewHub(nil)
	slow := hub.Subscribe("slow", 2)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Publish("tick", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow observer")
	}

	assert.Equal(t, int64(8), slow.Dropped())
	assert.Equal(t, 0, (<-slow.Events()).Payload)
	assert.Equal(t, 1, (<-slow.Events()).Payload)
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("gone", 1)
	assert.Equal(t, 1, hub.Len())

	sub.Close()
	sub.Close()
	hub.Unsubscribe(sub)

	assert.Equal(t, 0, hub.Len())
	_, ok := <-sub.Events()
	assert.False(t, ok)

	// publishing after the observer left is silently ignored
	assert.NotPanics(t, func() { hub.Publish("tick", 1) })
}

func TestHub_ConcurrentPublishAndUnsubscribe(t *testing.T) {
	hub := NewHub(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := hub.Subscribe("churn", 4)
			hub.Publish("tick", 0)
			sub.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.Len())
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("a", 1)
	hub.Close()

	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Len())
}

type recordingSink struct {
	mu     sync.Mutex
	topics []string
	fail   bool
}

func (r *recordingSink) WriteMessage(topic string, msg []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	if r.fail {
		return errors.New("broker down")
	}
	return nil
}

func (r *recordingSink) Close() error { return nil }

func (r *recordingSink) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.topics...)
}

func TestForward(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("sink", 8)
	sink := &recordingSink{fail: true}

	done := make(chan struct{})
	go func() {
		Forward(context.Background(), sub, sink, nil)
		close(done)
	}()

	hub.Publish("ambulance_update", map[string]float64{"lat": 1})
	hub.Publish("signal_state", "cp-0")

	assert.Eventually(t, func() bool { return len(sink.seen()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"ambulance_update", "signal_state"}, sink.seen())

	sub.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forward did not stop after unsubscribe")
	}
}

func TestForward_StopsOnContext(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("sink", 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	Forward(ctx, sub, &recordingSink{}, nil)
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf)

	require.NoError(t, sink.WriteMessage("signal_state", []byte(`{"id":"cp-0"}`)))
	assert.Equal(t, "[signal_state] {\"id\":\"cp-0\"}\n", buf.String())
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	require.NoError(t, err)

	require.NoError(t, sink.WriteMessage("ambulance_update", []byte(`{"n":1}`)))
	require.NoError(t, sink.WriteMessage("ambulance_update", []byte(`{"n":2}`)))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(filepath.Join(dir, "ambulance_update.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, []string{`{"n":1}`, `{"n":2}`}, strings.Split(strings.TrimSpace(string(data)), "\n"))
}
