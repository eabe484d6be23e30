package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/lawdesk/internal/client/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_SkipIssuesNoRequest(t *testing.T) {
	c := New()
	b := &fakeBackend{rows: []viewed{{ID: "1", UserID: "7"}}}

	sub := Subscribe(c, viewedQuery(b), "", SubscribeOptions[[]viewed]{Skip: true})
	defer sub.Close()
	c.Wait()

	assert.Equal(t, StatusPending, sub.State().Status)
	assert.Equal(t, int32(0), b.reads.Load())
	assert.Equal(t, 0, c.Len())

	sub.Update("7", false)
	c.Wait()
	st := sub.State()
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Len(t, st.Data, 1)
	assert.Equal(t, int32(1), b.reads.Load())
}

func TestSubscribe_SharesEntryWithFetch(t *testing.T) {
	c := New()
	b := &fakeBackend{}
	_, err := Fetch(context.Background(), c, viewedQuery(b), "7")
	require.NoError(t, err)

	sub := Subscribe(c, viewedQuery(b), "7", SubscribeOptions[[]viewed]{})
	defer sub.Close()
	c.Wait()

	assert.Equal(t, StatusSuccess, sub.State().Status)
	assert.Equal(t, int32(1), b.reads.Load())
}

func TestSubscription_DropsResultsForOldArgs(t *testing.T) {
	c := New()
	gates := map[string]chan struct{}{"old": make(chan struct{}), "new": make(chan struct{})}
	q := Query[string, string]{Name: "detail", Fetch: func(_ context.Context, id string) (string, error) {
		<-gates[id]
		return "doc-" + id, nil
	}}

	var mu sync.Mutex
	var delivered []string
	sub := Subscribe(c, q, "old", SubscribeOptions[string]{OnChange: func(s State[string]) {
		if s.Status == StatusSuccess {
			mu.Lock()
			delivered = append(delivered, s.Data)
			mu.Unlock()
		}
	}})
	defer sub.Close()

	sub.Update("new", false)
	close(gates["old"])
	close(gates["new"])
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"doc-new"}, delivered)
	assert.Equal(t, "doc-new", sub.State().Data)
	assert.Equal(t, "new", sub.Args())
}

func TestSubscription_NoDeliveryAfterClose(t *testing.T) {
	c := New()
	gate := make(chan struct{})
	q := Query[int, int]{Name: "n", Fetch: func(context.Context, int) (int, error) {
		<-gate
		return 1, nil
	}}

	var calls atomic.Int32
	sub := Subscribe(c, q, 1, SubscribeOptions[int]{OnChange: func(s State[int]) {
		if s.Status == StatusSuccess {
			calls.Add(1)
		}
	}})
	sub.Close()
	sub.Close()
	close(gate)
	c.Wait()

	assert.Equal(t, int32(0), calls.Load())
}

func TestSubscription_EvictsOnLastClose(t *testing.T) {
	m := metrics.New()
	c := New(WithMetrics(m))
	b := &fakeBackend{}

	s1 := Subscribe(c, viewedQuery(b), "7", SubscribeOptions[[]viewed]{})
	s2 := Subscribe(c, viewedQuery(b), "7", SubscribeOptions[[]viewed]{})
	c.Wait()
	require.Equal(t, 1, c.Len())

	s1.Close()
	assert.Equal(t, 1, c.Len())
	s2.Close()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEvictions))
}

func TestSubscription_KeepUnusedWhenConfigured(t *testing.T) {
	c := New(WithEvictUnused(false))
	sub := Subscribe(c, viewedQuery(&fakeBackend{}), "7", SubscribeOptions[[]viewed]{})
	c.Wait()
	sub.Close()
	assert.Equal(t, 1, c.Len())
}

func TestSubscription_RefetchReplacesError(t *testing.T) {
	c := New()
	var fail atomic.Bool
	fail.Store(true)
	q := Query[int, string]{Name: "flaky", Fetch: func(context.Context, int) (string, error) {
		if fail.Load() {
			return "", errors.New("connection failed")
		}
		return "ok", nil
	}}

	sub := Subscribe(c, q, 1, SubscribeOptions[string]{})
	defer sub.Close()
	c.Wait()
	st := sub.State()
	require.Equal(t, StatusError, st.Status)
	require.Error(t, st.Err)

	fail.Store(false)
	st = sub.Refetch(context.Background())
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, "ok", st.Data)
	assert.NoError(t, st.Err)
}

func TestSubscription_RefetchForcesReload(t *testing.T) {
	c := New()
	b := &fakeBackend{}
	sub := Subscribe(c, viewedQuery(b), "7", SubscribeOptions[[]viewed]{})
	defer sub.Close()
	c.Wait()

	_, _ = b.create(context.Background(), viewed{ID: "9", UserID: "7"})
	st := sub.Refetch(context.Background())
	assert.Len(t, st.Data, 1)
	assert.False(t, st.Stale)
	assert.Equal(t, int32(2), b.reads.Load())
}
