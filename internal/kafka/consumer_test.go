package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeReader struct {
	mu      sync.Mutex
	msgs    []kafka.Message
	next    int
	commits []kafka.Message
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.next >= len(f.msgs) {
		return kafka.Message{}, io.EOF
	}
	m := f.msgs[f.next]
	f.next++
	return m, nil
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits = append(f.commits, msgs...)
	return nil
}

func (f *fakeReader) Close() error { return nil }

func (f *fakeReader) committed() []kafka.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]kafka.Message, len(f.commits))
	copy(out, f.commits)
	return out
}

func TestConsumerCommitsOnlyAfterHandlerSuccess(t *testing.T) {
	fr := &fakeReader{msgs: []kafka.Message{
		{Offset: 1, Value: []byte("boom")},
		{Offset: 2, Value: []byte("ok")},
		{Offset: 3, Value: []byte("ok")},
	}}
	c := &Consumer{r: fr, workers: 1, log: zap.NewNop()}

	err := c.Start(context.Background(), func(ctx context.Context, m kafka.Message) error {
		if string(m.Value) == "boom" {
			return errors.New("handler failure")
		}
		return nil
	})
	assert.ErrorIs(t, err, io.EOF)

	// workers drain asynchronously after the dispatcher returns
	assert.Eventually(t, func() bool {
		return len(fr.committed()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	for _, m := range fr.committed() {
		assert.NotEqual(t, int64(1), m.Offset, "failed message must not be committed")
	}
}

func TestConsumerStopsOnContextCancel(t *testing.T) {
	fr := &fakeReader{msgs: []kafka.Message{{Offset: 1, Value: []byte("ok")}}}
	c := &Consumer{r: fr, workers: 2, log: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Start(ctx, func(ctx context.Context, m kafka.Message) error { return nil })
	assert.NoError(t, err)
}
