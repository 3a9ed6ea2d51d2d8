package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmskeleton/backend/internal/core/domain"
)

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	block  chan struct{}
}

func (r *recordingAudit) Process(_ context.Context, e domain.AuthEvent) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingAudit) snapshot() []domain.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuthEvent(nil), r.events...)
}

func TestDispatcher_PreservesPerAccountOrder(t *testing.T) {
	svc := &recordingAudit{}
	d := NewDispatcher(4, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()

	for i := 0; i < 50; i++ {
		d.Enqueue(domain.AuthEvent{
			Type:   domain.EventSignInFailed,
			Email:  "a@example.com",
			Detail: fmt.Sprint(i),
		})
	}

	require.Eventually(t, func() bool { return len(svc.snapshot()) == 50 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	for i, e := range svc.snapshot() {
		assert.Equal(t, fmt.Sprint(i), e.Detail)
	}
}

func TestDispatcher_EnqueueDropsWhenFull(t *testing.T) {
	svc := &recordingAudit{block: make(chan struct{})}
	d := NewDispatcher(1, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()

	// One event is held by the blocked worker, the buffer takes channelBuffer
	// more; everything past that must be dropped without blocking.
	finished := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Enqueue(domain.AuthEvent{Type: domain.EventSignedOut, Subject: "x"})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(svc.block)
	cancel()
	<-done
	assert.LessOrEqual(t, len(svc.snapshot()), channelBuffer+1)
}

func TestDispatcher_DrainsOnShutdown(t *testing.T) {
	svc := &recordingAudit{}
	d := NewDispatcher(2, svc, zerolog.Nop())

	for i := 0; i < 10; i++ {
		d.Enqueue(domain.AuthEvent{Type: domain.EventUserCreated, Email: fmt.Sprintf("u%d@example.com", i)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))
	assert.Len(t, svc.snapshot(), 10)
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(8, &recordingAudit{}, zerolog.Nop())
	first := d.shardIndex("a@example.com")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex("a@example.com"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 8)
}
