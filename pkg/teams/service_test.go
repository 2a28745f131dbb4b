package teams

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/teamstats/internal/testutil"
	"github.com/Sternrassler/teamstats/pkg/cache"
	"github.com/Sternrassler/teamstats/pkg/pipeline"
	"github.com/Sternrassler/teamstats/pkg/queue"
	"github.com/Sternrassler/teamstats/pkg/stats"
	"github.com/Sternrassler/teamstats/pkg/worker"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stubFetcher struct {
	payloads map[int]string
	errs     map[int]error
	gate     chan struct{}
}

func (f *stubFetcher) FetchTeamData(ctx context.Context, team int) ([]byte, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[team]; err != nil {
		return nil, err
	}
	if p, ok := f.payloads[team]; ok {
		return []byte(p), nil
	}
	return []byte(`{"matchUpStats": []}`), nil
}

type stubBulk struct {
	records []stats.StatRecord
	err     error
}

func (b *stubBulk) ProcessAll(context.Context) ([]stats.StatRecord, error) {
	return b.records, b.err
}

type harness struct {
	svc     *Service
	queue   *queue.Queue
	workers *worker.Service
	clock   *fakeClock
}

// newHarness wires the service to a real queue, worker and in-memory
// result cache, the way the binary does.
func newHarness(t *testing.T, fetcher pipeline.Fetcher, bulk BulkRunner) *harness {
	t.Helper()

	clock := &fakeClock{now: time.Date(2020, 9, 13, 12, 0, 0, 0, time.UTC)}
	store := cache.NewMemoryStore()
	store.SetClock(clock.Now)
	results := cache.NewResultCache(store, cache.DefaultTTL)
	results.SetClock(clock.Now)

	q := queue.New(zerolog.Nop())
	svc := NewService(q, results, bulk, zerolog.Nop())
	processor := pipeline.NewProcessor(fetcher, results, zerolog.Nop())
	workers := worker.NewService(q, svc.Track(processor.Handle), worker.DefaultConfig(), zerolog.Nop())

	workers.Start(context.Background())
	t.Cleanup(workers.Stop)

	return &harness{svc: svc, queue: q, workers: workers, clock: clock}
}

func (h *harness) await(t *testing.T, token string) *pipeline.Result {
	t.Helper()
	var res *pipeline.Result
	require.Eventually(t, func() bool {
		r, err := h.svc.Poll(context.Background(), token)
		if err != nil {
			return false
		}
		res = r
		return true
	}, 2*time.Second, 5*time.Millisecond)
	return res
}

func TestEnqueue_DistinctTokens(t *testing.T) {
	h := newHarness(t, &stubFetcher{}, &stubBulk{})

	t1, err := h.svc.Enqueue(context.Background(), 7)
	require.NoError(t, err)
	t2, err := h.svc.Enqueue(context.Background(), 7)
	require.NoError(t, err)

	assert.NotEmpty(t, t1)
	assert.NotEqual(t, t1, t2)
}

func TestEnqueue_InvalidTeam(t *testing.T) {
	h := newHarness(t, &stubFetcher{}, &stubBulk{})

	for _, team := range []int{0, -1} {
		_, err := h.svc.Enqueue(context.Background(), team)
		assert.ErrorIs(t, err, ErrInvalidTeam)
	}
}

func TestEnqueue_ClosedQueue(t *testing.T) {
	h := newHarness(t, &stubFetcher{}, &stubBulk{})
	h.queue.Close()

	_, err := h.svc.Enqueue(context.Background(), 1)
	assert.ErrorIs(t, err, queue.ErrQueueClosed)
	assert.Equal(t, 0, h.svc.Pending())
}

func TestPoll_ConcreteScenario(t *testing.T) {
	fetcher := &stubFetcher{payloads: map[int]string{
		7: testutil.Payload(testutil.Match{
			Date: "2020-11-01", VisName: "A", VisCode: 1, VisScore: 10,
			HomeName: "B", HomeCode: 2, HomeScore: 24,
		}),
	}}
	h := newHarness(t, fetcher, &stubBulk{})

	t1, err := h.svc.Enqueue(context.Background(), 7)
	require.NoError(t, err)

	res := h.await(t, t1)
	assert.Equal(t, pipeline.OutcomeOK, res.Outcome)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "A", res.Records[0].Name)
	assert.Equal(t, "10", res.Records[0].Score)
	assert.Equal(t, "B", res.Records[1].Name)
	assert.Equal(t, "24", res.Records[1].Score)
	for _, r := range res.Records {
		assert.Equal(t, 2020, r.Date.Year())
	}

	summary, err := h.svc.Summary(context.Background(), t1)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "1", summary[0].TeamCode)
	assert.Equal(t, 10, summary[0].TotalScore)
}

func TestPoll_FetchFailureYieldsEmptyResult(t *testing.T) {
	fetcher := &stubFetcher{errs: map[int]error{3: errors.New("connection refused")}}
	h := newHarness(t, fetcher, &stubBulk{})

	token, err := h.svc.Enqueue(context.Background(), 3)
	require.NoError(t, err)

	res := h.await(t, token)
	assert.Equal(t, pipeline.OutcomeFetchFailed, res.Outcome)
	assert.Empty(t, res.Records)
}

func TestPoll_PendingThenDoneThenExpired(t *testing.T) {
	gate := make(chan struct{})
	h := newHarness(t, &stubFetcher{gate: gate}, &stubBulk{})

	token, err := h.svc.Enqueue(context.Background(), 1)
	require.NoError(t, err)

	_, err = h.svc.Poll(context.Background(), token)
	assert.ErrorIs(t, err, ErrPending)
	assert.ErrorIs(t, err, ErrNotFound)

	close(gate)
	res := h.await(t, token)
	assert.Equal(t, pipeline.OutcomeNoData, res.Outcome)
	require.Eventually(t, func() bool { return h.svc.Pending() == 0 }, time.Second, 5*time.Millisecond)

	h.clock.Advance(cache.DefaultTTL)
	_, err = h.svc.Poll(context.Background(), token)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrPending)
}

type recordingQueue struct {
	tasks []queue.Task
}

func (q *recordingQueue) Enqueue(task queue.Task) error {
	q.tasks = append(q.tasks, task)
	return nil
}

// racingReader reports a miss on its first read, but only after running
// complete, so the task finishes between the cache read and the return.
type racingReader struct {
	ResultReader
	complete func()
	once     sync.Once
}

func (r *racingReader) Get(ctx context.Context, token string, dst any) error {
	raced := false
	r.once.Do(func() {
		r.complete()
		raced = true
	})
	if raced {
		return cache.ErrCacheMiss
	}
	return r.ResultReader.Get(ctx, token, dst)
}

func TestPoll_CompletionDuringReadIsNeverNotFound(t *testing.T) {
	results := cache.NewResultCache(cache.NewMemoryStore(), cache.DefaultTTL)
	processor := pipeline.NewProcessor(&stubFetcher{}, results, zerolog.Nop())
	q := &recordingQueue{}
	reader := &racingReader{ResultReader: results}
	svc := NewService(q, reader, &stubBulk{}, zerolog.Nop())

	token, err := svc.Enqueue(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, q.tasks, 1)

	handle := svc.Track(processor.Handle)
	reader.complete = func() {
		require.NoError(t, handle(context.Background(), q.tasks[0]))
	}

	_, err = svc.Poll(context.Background(), token)
	assert.ErrorIs(t, err, ErrPending)
	assert.Equal(t, 0, svc.Pending())

	res, err := svc.Poll(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, token, res.CorrelationID)
	assert.Equal(t, pipeline.OutcomeNoData, res.Outcome)
}

func TestPoll_UnknownToken(t *testing.T) {
	h := newHarness(t, &stubFetcher{}, &stubBulk{})

	_, err := h.svc.Poll(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrPending)

	_, err = h.svc.Summary(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllTeams(t *testing.T) {
	date := time.Date(2020, 9, 13, 0, 0, 0, 0, time.UTC)
	bulk := &stubBulk{records: []stats.StatRecord{
		{Name: "B", Code: "2", Score: "24", Date: date},
		{Name: "A", Code: "1", Score: "10", Date: date},
	}}
	h := newHarness(t, &stubFetcher{}, bulk)

	records, err := h.svc.AllTeams(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	summary, err := h.svc.AllTeamsSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "A", summary[0].TeamName)
	assert.Equal(t, "B", summary[1].TeamName)

	bulk.err = errors.New("bulk fetch: panic")
	_, err = h.svc.AllTeams(context.Background())
	assert.Error(t, err)
	_, err = h.svc.AllTeamsSummary(context.Background())
	assert.Error(t, err)
}
