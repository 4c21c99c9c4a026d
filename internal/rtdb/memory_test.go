package rtdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	id, err := m.Push(ctx, "orders", map[string]string{"title": "Algoritma", "status": "Dipesan"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := m.Get(ctx, "orders", id)
	require.NoError(t, err)
	assert.Equal(t, "Algoritma", rec.Fields["title"])

	// merge touches only the supplied fields
	require.NoError(t, m.Merge(ctx, "orders", id, map[string]string{"status": "Selesai"}))
	rec, err = m.Get(ctx, "orders", id)
	require.NoError(t, err)
	assert.Equal(t, "Selesai", rec.Fields["status"])
	assert.Equal(t, "Algoritma", rec.Fields["title"])

	require.NoError(t, m.Delete(ctx, "orders", id))
	_, err = m.Get(ctx, "orders", id)
	assert.ErrorIs(t, err, ErrNodeMissing)
}

func TestMemoryStoreMissingNodes(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.Get(ctx, "orders", "nope")
	assert.ErrorIs(t, err, ErrNodeMissing)

	err = m.Merge(ctx, "orders", "nope", map[string]string{"status": "Selesai"})
	assert.ErrorIs(t, err, ErrNodeMissing)

	// deleting an absent node is a no-op
	assert.NoError(t, m.Delete(ctx, "orders", "nope"))
}

func TestMemoryStoreListIsSortedSnapshot(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	for i := 0; i < 5; i++ {
		_, err := m.Push(ctx, "bookstores", map[string]string{"name": "toko"})
		require.NoError(t, err)
	}

	recs, err := m.List(ctx, "bookstores")
	require.NoError(t, err)
	require.Len(t, recs, 5)
	for i := 1; i < len(recs); i++ {
		assert.Less(t, recs[i-1].ID, recs[i].ID)
	}

	// a snapshot is a copy, not a view
	recs[0].Fields["name"] = "mutated"
	rec, err := m.Get(ctx, "bookstores", recs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "toko", rec.Fields["name"])
}

func TestMemoryStoreWatchTree(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	events, cancel, err := m.WatchTree(ctx, "orders")
	require.NoError(t, err)
	defer cancel()

	ev := recvTree(t, events)
	assert.Empty(t, ev.Records)

	_, err = m.Push(ctx, "orders", map[string]string{"title": "Pemrograman"})
	require.NoError(t, err)

	ev = recvTree(t, events)
	require.Len(t, ev.Records, 1)
	assert.Equal(t, "Pemrograman", ev.Records[0].Fields["title"])
}

func TestMemoryStoreWatchNode(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	id, err := m.Push(ctx, "orders", map[string]string{"status": "Dipesan"})
	require.NoError(t, err)

	events, cancel, err := m.WatchNode(ctx, "orders", id)
	require.NoError(t, err)
	defer cancel()

	ev := recvNode(t, events)
	require.NotNil(t, ev.Record)
	assert.Equal(t, "Dipesan", ev.Record.Fields["status"])

	require.NoError(t, m.Delete(ctx, "orders", id))
	ev = recvNode(t, events)
	assert.Nil(t, ev.Record)
}

func TestMemoryStoreWatchNodeAbsent(t *testing.T) {
	m := NewMemoryStore()

	events, cancel, err := m.WatchNode(context.Background(), "orders", "nope")
	require.NoError(t, err)
	defer cancel()

	ev := recvNode(t, events)
	assert.Nil(t, ev.Record)
}

func TestMemoryStoreCancelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	events, cancel, err := m.WatchTree(ctx, "orders")
	require.NoError(t, err)

	recvTree(t, events) // initial snapshot

	cancel()
	assert.NotPanics(t, cancel)

	// the event channel closes and mutations no longer reach it
	_, err = m.Push(ctx, "orders", map[string]string{"title": "x"})
	require.NoError(t, err)

	select {
	case _, ok := <-events:
		assert.False(t, ok, "expected closed channel after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func recvTree(t *testing.T, ch <-chan TreeEvent) TreeEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "event channel closed")
		require.NoError(t, ev.Err)
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tree event")
		return TreeEvent{}
	}
}

func recvNode(t *testing.T, ch <-chan NodeEvent) NodeEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "event channel closed")
		require.NoError(t, ev.Err)
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for node event")
		return NodeEvent{}
	}
}
