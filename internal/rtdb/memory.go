package rtdb

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and single-node runs.
type MemoryStore struct {
	mu    sync.RWMutex
	trees map[string]map[string]map[string]string
	subs  map[string][]*memSub
}

type memSub struct {
	nodeID string // empty = whole tree
	notify chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trees: make(map[string]map[string]map[string]string),
		subs:  make(map[string][]*memSub),
	}
}

func (m *MemoryStore) Push(ctx context.Context, tree string, fields map[string]string) (string, error) {
	id := uuid.NewString()
	m.mu.Lock()
	t := m.trees[tree]
	if t == nil {
		t = make(map[string]map[string]string)
		m.trees[tree] = t
	}
	t[id] = copyFields(fields)
	m.mu.Unlock()
	m.broadcast(tree, id)
	return id, nil
}

func (m *MemoryStore) Get(ctx context.Context, tree, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fields, ok := m.trees[tree][id]
	if !ok {
		return Record{}, ErrNodeMissing
	}
	return Record{ID: id, Fields: copyFields(fields)}, nil
}

func (m *MemoryStore) List(ctx context.Context, tree string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked(tree), nil
}

func (m *MemoryStore) Merge(ctx context.Context, tree, id string, fields map[string]string) error {
	m.mu.Lock()
	node, ok := m.trees[tree][id]
	if !ok {
		m.mu.Unlock()
		return ErrNodeMissing
	}
	for k, v := range fields {
		node[k] = v
	}
	m.mu.Unlock()
	m.broadcast(tree, id)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, tree, id string) error {
	m.mu.Lock()
	_, ok := m.trees[tree][id]
	if ok {
		delete(m.trees[tree], id)
	}
	m.mu.Unlock()
	if ok {
		m.broadcast(tree, id)
	}
	return nil
}

func (m *MemoryStore) WatchTree(ctx context.Context, tree string) (<-chan TreeEvent, CancelFunc, error) {
	sub := &memSub{notify: make(chan struct{}, 1)}
	m.addSub(tree, sub)

	out := make(chan TreeEvent)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			m.mu.RLock()
			recs := m.snapshotLocked(tree)
			m.mu.RUnlock()
			select {
			case out <- TreeEvent{Records: recs}:
			case <-done:
				return
			}
			select {
			case <-sub.notify:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.removeSub(tree, sub)
			close(done)
		})
	}
	return out, cancel, nil
}

func (m *MemoryStore) WatchNode(ctx context.Context, tree, id string) (<-chan NodeEvent, CancelFunc, error) {
	sub := &memSub{nodeID: id, notify: make(chan struct{}, 1)}
	m.addSub(tree, sub)

	out := make(chan NodeEvent)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			m.mu.RLock()
			var rec *Record
			if fields, ok := m.trees[tree][id]; ok {
				rec = &Record{ID: id, Fields: copyFields(fields)}
			}
			m.mu.RUnlock()
			select {
			case out <- NodeEvent{Record: rec}:
			case <-done:
				return
			}
			select {
			case <-sub.notify:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.removeSub(tree, sub)
			close(done)
		})
	}
	return out, cancel, nil
}

// snapshotLocked builds one consistent copy of a tree. Caller holds mu.
func (m *MemoryStore) snapshotLocked(tree string) []Record {
	t := m.trees[tree]
	recs := make([]Record, 0, len(t))
	for id, fields := range t {
		recs = append(recs, Record{ID: id, Fields: copyFields(fields)})
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs
}

func (m *MemoryStore) addSub(tree string, sub *memSub) {
	m.mu.Lock()
	m.subs[tree] = append(m.subs[tree], sub)
	m.mu.Unlock()
}

func (m *MemoryStore) removeSub(tree string, sub *memSub) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.subs[tree]
	for i, s := range subs {
		if s == sub {
			m.subs[tree] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// broadcast wakes subscribers interested in the changed node. The notify
// channel has capacity 1, so rapid changes coalesce into one re-read.
func (m *MemoryStore) broadcast(tree, id string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sub := range m.subs[tree] {
		if sub.nodeID != "" && sub.nodeID != id {
			continue
		}
		select {
		case sub.notify <- struct{}{}:
		default:
		}
	}
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
