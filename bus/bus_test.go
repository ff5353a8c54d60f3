package bus

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlum/assistant-backend/core"
)

func newTestStream(t *testing.T) (*miniredis.Miniredis, *RedisStream) {
	t.Helper()
	srv, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	stream := NewRedisStream(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = stream.Close() })
	return srv, stream
}

func TestRedisStream_PublishSubscribe(t *testing.T) {
	_, stream := newTestStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := stream.Subscribe(ctx)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	ev := core.NewUserMessageEvent("corr-1", "hello")
	require.NoError(t, stream.Publish(ctx, ev))

	select {
	case got := <-ch:
		assert.Equal(t, "corr-1", got.ID)
		assert.Equal(t, core.EventNewUserMessage, got.Type)
		assert.Equal(t, "hello", got.Text())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestRedisStream_MalformedPayloadDropped(t *testing.T) {
	srv, stream := newTestStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := stream.Subscribe(ctx)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	srv.Publish("assistant-events", "{not json")
	require.NoError(t, stream.Publish(ctx, core.NewBotReplyEvent("corr-2", "done")))

	select {
	case got := <-ch:
		// The malformed payload is skipped; the valid event comes through.
		assert.Equal(t, "corr-2", got.ID)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestRedisStream_PublishRecoversAfterServerRestart(t *testing.T) {
	srv, stream := newTestStream(t)
	ctx := context.Background()

	require.NoError(t, stream.Publish(ctx, core.NewBotReplyEvent("c-1", "before")))

	// Server gone: the publish path pings, retires the dead client and
	// redials, which still fails while the server is down.
	srv.Close()
	assert.Error(t, stream.Publish(ctx, core.NewBotReplyEvent("c-2", "down")))

	require.NoError(t, srv.Restart())
	require.NoError(t, stream.Publish(ctx, core.NewBotReplyEvent("c-3", "after")))
}

func TestRedisStream_SubscribeEndsOnClose(t *testing.T) {
	_, stream := newTestStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := stream.Subscribe(ctx)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, stream.Close())

	// The consumer goroutine must terminate and close its channel instead of
	// spinning on the torn-down subscription.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription channel still open after Close")
		}
	}
}

func TestCollector_GathersOnlyMatchingNotes(t *testing.T) {
	_, stream := newTestStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := NewCollector(stream)
	require.NoError(t, collector.Start(ctx))
	time.Sleep(50 * time.Millisecond)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = stream.Publish(ctx, core.NewAgentNoteEvent("mine", "note one"))
		_ = stream.Publish(ctx, core.NewAgentNoteEvent("other", "not for us"))
		_ = stream.Publish(ctx, core.NewEvent("mine", "AGENT_NOTE_PLAN", map[string]any{"text": "note two"}))
		_ = stream.Publish(ctx, core.NewBotReplyEvent("mine", "reply, not a note"))
	}()

	notes := collector.Collect(ctx, "mine", 400*time.Millisecond)
	assert.Equal(t, []string{"note one", "note two"}, notes)
}

func TestCollector_WatchBuffersNotesArrivingBeforeCollect(t *testing.T) {
	_, stream := newTestStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := NewCollector(stream)
	require.NoError(t, collector.Start(ctx))
	time.Sleep(50 * time.Millisecond)

	// The note lands while the caller is still between publishing and
	// gathering; the registered watch must hold it.
	w := collector.Watch("early")
	require.NoError(t, stream.Publish(ctx, core.NewAgentNoteEvent("early", "beat the gather")))
	time.Sleep(100 * time.Millisecond)

	notes := w.Collect(ctx, 100*time.Millisecond)
	assert.Equal(t, []string{"beat the gather"}, notes)
}

func TestCollector_TimeoutWithNoNotesIsNotAnError(t *testing.T) {
	_, stream := newTestStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := NewCollector(stream)
	require.NoError(t, collector.Start(ctx))

	start := time.Now()
	notes := collector.Collect(ctx, "nobody-writes-to-me", 150*time.Millisecond)
	assert.Empty(t, notes)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestCollector_ConcurrentRequestsDoNotStealNotes(t *testing.T) {
	_, stream := newTestStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := NewCollector(stream)
	require.NoError(t, collector.Start(ctx))
	time.Sleep(50 * time.Millisecond)

	type result struct {
		id    string
		notes []string
	}
	results := make(chan result, 2)
	for _, id := range []string{"req-a", "req-b"} {
		go func(id string) {
			results <- result{id: id, notes: collector.Collect(ctx, id, 400*time.Millisecond)}
		}(id)
	}

	time.Sleep(50 * time.Millisecond)
	_ = stream.Publish(ctx, core.NewAgentNoteEvent("req-a", "alpha"))
	_ = stream.Publish(ctx, core.NewAgentNoteEvent("req-b", "beta"))

	for i := 0; i < 2; i++ {
		r := <-results
		switch r.id {
		case "req-a":
			assert.Equal(t, []string{"alpha"}, r.notes)
		case "req-b":
			assert.Equal(t, []string{"beta"}, r.notes)
		}
	}
}
