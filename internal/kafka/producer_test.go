package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestProducerPublishAfterCloseIsDropped(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "orders-test", 4, zap.NewNop())
	p.Start(context.Background())

	p.Close()
	p.WaitClosed()

	assert.NotPanics(t, func() { p.Publish([]byte("k"), []byte("v")) })
}

func TestProducerPublishAfterContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewProducer([]string{"localhost:9092"}, "orders-test", 4, zap.NewNop())
	p.Start(ctx)

	cancel()
	p.WaitClosed()

	assert.NotPanics(t, func() { p.Publish([]byte("k"), []byte("v")) })
}

func TestProducerCloseIsIdempotent(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "orders-test", 4, zap.NewNop())
	p.Start(context.Background())

	p.Close()
	assert.NotPanics(t, p.Close)
	p.WaitClosed()
}
