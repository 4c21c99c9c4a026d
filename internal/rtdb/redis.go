package rtdb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/literasipelajar/bookstore-backend/internal/redisx"
)

// RedisStore backs each tree with a membership set plus one hash per node,
// and publishes the changed node id on a per-tree pub/sub channel. Last
// write wins on concurrent field updates; the store is the sole arbiter of
// write ordering.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Push(ctx context.Context, tree string, fields map[string]string) (string, error) {
	id := uuid.NewString()
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, nodeKey(tree, id), toAny(fields))
	pipe.SAdd(ctx, treeKey(tree), id)
	pipe.Publish(ctx, treeChan(tree), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, tree, id string) (Record, error) {
	fields, err := s.rdb.HGetAll(ctx, nodeKey(tree, id)).Result()
	if err != nil {
		return Record{}, err
	}
	if len(fields) == 0 {
		return Record{}, ErrNodeMissing
	}
	return Record{ID: id, Fields: fields}, nil
}

// listScript reads the membership set and every node hash in one server-side
// step, so a snapshot never mixes two points in time.
var listScript = redis.NewScript(`
local ids = redis.call('SMEMBERS', KEYS[1])
table.sort(ids)
local out = {}
for _, id in ipairs(ids) do
	out[#out+1] = id
	out[#out+1] = redis.call('HGETALL', ARGV[1] .. id)
end
return out`)

func (s *RedisStore) List(ctx context.Context, tree string) ([]Record, error) {
	raw, err := listScript.Run(ctx, s.rdb, []string{treeKey(tree)}, nodeKey(tree, "")).Result()
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(raw)
}

// decodeSnapshot parses the script reply: a flat array alternating node id
// and the HGETALL reply for that node.
func decodeSnapshot(raw any) ([]Record, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("rtdb: unexpected snapshot reply %T", raw)
	}
	recs := make([]Record, 0, len(items)/2)
	for i := 0; i+1 < len(items); i += 2 {
		id, ok := items[i].(string)
		if !ok {
			return nil, fmt.Errorf("rtdb: unexpected snapshot id %T", items[i])
		}
		kv, ok := items[i+1].([]any)
		if !ok {
			return nil, fmt.Errorf("rtdb: unexpected snapshot node %T", items[i+1])
		}
		if len(kv) == 0 {
			continue
		}
		fields := make(map[string]string, len(kv)/2)
		for j := 0; j+1 < len(kv); j += 2 {
			k, kok := kv[j].(string)
			v, vok := kv[j+1].(string)
			if !kok || !vok {
				return nil, fmt.Errorf("rtdb: unexpected snapshot field pair %T/%T", kv[j], kv[j+1])
			}
			fields[k] = v
		}
		recs = append(recs, Record{ID: id, Fields: fields})
	}
	return recs, nil
}

func (s *RedisStore) Merge(ctx context.Context, tree, id string, fields map[string]string) error {
	n, err := s.rdb.Exists(ctx, nodeKey(tree, id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNodeMissing
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, nodeKey(tree, id), toAny(fields))
	pipe.Publish(ctx, treeChan(tree), id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Delete(ctx context.Context, tree, id string) error {
	pipe := s.rdb.TxPipeline()
	pipe.SRem(ctx, treeKey(tree), id)
	pipe.Del(ctx, nodeKey(tree, id))
	pipe.Publish(ctx, treeChan(tree), id)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) WatchTree(ctx context.Context, tree string) (<-chan TreeEvent, CancelFunc, error) {
	pubsub := s.rdb.Subscribe(ctx, treeChan(tree))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan TreeEvent)
	done := make(chan struct{})
	go func() {
		defer close(out)
		emit := func() bool {
			recs, err := s.List(context.Background(), tree)
			if err != nil {
				s.emitTree(out, done, TreeEvent{Err: err})
				return false
			}
			return s.emitTree(out, done, TreeEvent{Records: recs})
		}
		if !emit() {
			return
		}
		msgs := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case _, ok := <-msgs:
				if !ok {
					select {
					case <-done: // closed by cancel
					default:
						s.emitTree(out, done, TreeEvent{Err: fmt.Errorf("rtdb: subscription to %s closed", tree)})
					}
					return
				}
				if !emit() {
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}

func (s *RedisStore) WatchNode(ctx context.Context, tree, id string) (<-chan NodeEvent, CancelFunc, error) {
	pubsub := s.rdb.Subscribe(ctx, treeChan(tree))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan NodeEvent)
	done := make(chan struct{})
	go func() {
		defer close(out)
		emit := func() bool {
			rec, err := s.Get(context.Background(), tree, id)
			switch {
			case errors.Is(err, ErrNodeMissing):
				return s.emitNode(out, done, NodeEvent{})
			case err != nil:
				s.emitNode(out, done, NodeEvent{Err: err})
				return false
			default:
				return s.emitNode(out, done, NodeEvent{Record: &rec})
			}
		}
		if !emit() {
			return
		}
		msgs := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					select {
					case <-done:
					default:
						s.emitNode(out, done, NodeEvent{Err: fmt.Errorf("rtdb: subscription to %s/%s closed", tree, id)})
					}
					return
				}
				if msg.Payload != id {
					continue
				}
				if !emit() {
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}

func (s *RedisStore) emitTree(out chan TreeEvent, done chan struct{}, ev TreeEvent) bool {
	select {
	case out <- ev:
		return true
	case <-done:
		return false
	}
}

func (s *RedisStore) emitNode(out chan NodeEvent, done chan struct{}, ev NodeEvent) bool {
	select {
	case out <- ev:
		return true
	case <-done:
		return false
	}
}

func treeKey(tree string) string     { return fmt.Sprintf(redisx.KeyTree, tree) }
func nodeKey(tree, id string) string { return fmt.Sprintf(redisx.KeyNode, tree, id) }
func treeChan(tree string) string    { return fmt.Sprintf(redisx.ChanTree, tree) }

func toAny(fields map[string]string) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
