package debounce

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu        sync.Mutex
	delivered []string
	done      chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 10)}
}

func (r *recorder) deliver(input string, result string, err error) {
	r.mu.Lock()
	r.delivered = append(r.delivered, result)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) results() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.delivered...)
}

func TestShortInputNeverLooksUp(t *testing.T) {
	var calls int32
	lookup := func(ctx context.Context, q string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return q, nil
	}
	rec := newRecorder()
	r := New[string](context.Background(), 5*time.Millisecond, 2, lookup, rec.deliver)
	defer r.Close()

	r.Push("a")
	r.Push(" b ")
	r.Push("é")
	time.Sleep(40 * time.Millisecond)

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Empty(t, rec.results())
}

func TestQuietInputIsDelivered(t *testing.T) {
	lookup := func(ctx context.Context, q string) (string, error) {
		return "hit:" + q, nil
	}
	rec := newRecorder()
	r := New[string](context.Background(), 10*time.Millisecond, 2, lookup, rec.deliver)
	defer r.Close()

	r.Push("dental")

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("quiet input was never delivered")
	}
	assert.Equal(t, []string{"hit:dental"}, rec.results())
}

func TestShortInputDropsInFlightResult(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	returned := make(chan struct{}, 1)
	lookup := func(ctx context.Context, q string) (string, error) {
		started <- struct{}{}
		<-release
		returned <- struct{}{}
		return "hit:" + q, nil
	}
	rec := newRecorder()
	r := New[string](context.Background(), 5*time.Millisecond, 2, lookup, rec.deliver)
	defer r.Close()

	r.Push("dental")
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("lookup never started")
	}

	r.Push("d")
	close(release)

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("lookup never returned")
	}
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, rec.results())
}

func TestRapidInputLooksUpOnlyLatest(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	lookup := func(ctx context.Context, q string) (string, error) {
		mu.Lock()
		seen = append(seen, q)
		mu.Unlock()
		return "result:" + q, nil
	}
	rec := newRecorder()
	r := New[string](context.Background(), 20*time.Millisecond, 2, lookup, rec.deliver)
	defer r.Close()

	r.Push("de")
	r.Push("den")
	r.Push("dent")

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("lookup was never delivered")
	}

	mu.Lock()
	assert.Equal(t, []string{"dent"}, seen)
	mu.Unlock()
	assert.Equal(t, []string{"result:dent"}, rec.results())
}

func TestSupersededLookupIsCancelled(t *testing.T) {
	started := make(chan struct{}, 1)
	cancelled := make(chan struct{}, 1)
	lookup := func(ctx context.Context, q string) (string, error) {
		if q == "slow" {
			started <- struct{}{}
			<-ctx.Done()
			cancelled <- struct{}{}
			return "", ctx.Err()
		}
		return q, nil
	}
	rec := newRecorder()
	r := New[string](context.Background(), 5*time.Millisecond, 2, lookup, rec.deliver)
	defer r.Close()

	r.Push("slow")
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first lookup never started")
	}

	r.Push("fast")

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("in-flight lookup was not cancelled")
	}
	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("latest lookup was never delivered")
	}
	require.Equal(t, []string{"fast"}, rec.results())
}

func TestCloseDiscardsPending(t *testing.T) {
	var calls int32
	lookup := func(ctx context.Context, q string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return q, nil
	}
	rec := newRecorder()
	r := New[string](context.Background(), 10*time.Millisecond, 2, lookup, rec.deliver)

	r.Push("clinic")
	r.Close()
	r.Push("clinics")
	time.Sleep(40 * time.Millisecond)

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
