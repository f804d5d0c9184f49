package insight

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dheerajdev/folio/engagement"
)

type fakeAPI struct {
	mu        sync.Mutex
	detail    *engagement.ContentDetail
	detailErr error
	writeErr  error
	views     []engagement.ViewRequest
	shares    []engagement.ShareRequest
	reactions []engagement.ReactionRequest
}

func (f *fakeAPI) Detail(ctx context.Context, slug string) (*engagement.ContentDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	d := *f.detail
	return &d, nil
}

func (f *fakeAPI) RecordView(ctx context.Context, slug string, req engagement.ViewRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, req)
	return f.writeErr
}

func (f *fakeAPI) RecordShare(ctx context.Context, slug string, req engagement.ShareRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shares = append(f.shares, req)
	return f.writeErr
}

func (f *fakeAPI) RecordReaction(ctx context.Context, slug string, req engagement.ReactionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, req)
	return f.writeErr
}

func (f *fakeAPI) reactionCalls() []engagement.ReactionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engagement.ReactionRequest(nil), f.reactions...)
}

func (f *fakeAPI) counts() (views, shares int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.views), len(f.shares)
}

func quietLogger() *log.Logger {
	l := log.New("insight-test")
	l.SetOutput(io.Discard)
	return l
}

func newTestAggregator(api *fakeAPI, countView bool) (*Aggregator, *clock.Mock) {
	mock := clock.NewMock()
	options := []Option{WithClock(mock), WithLogger(quietLogger())}
	if !countView {
		options = append(options, WithoutViewCount())
	}
	a := New(api, Options{
		Slug:         "debouncing-in-go",
		ContentType:  engagement.ContentPost,
		ContentTitle: "Debouncing in Go",
	}, options...)
	return a, mock
}

const settle = 100 * time.Millisecond

func TestReactionsWithinWindowAreBatched(t *testing.T) {
	api := &fakeAPI{}
	a, mock := newTestAggregator(api, false)
	defer a.Dispose()

	for i := 0; i < 3; i++ {
		a.AddReaction(engagement.ReactionClapping, "")
		mock.Add(100 * time.Millisecond)
	}
	assert.Empty(t, api.reactionCalls(), "nothing is written inside the window")

	mock.Add(DefaultDebounce)
	require.Eventually(t, func() bool { return len(api.reactionCalls()) == 1 }, time.Second, 5*time.Millisecond)
	first := api.reactionCalls()[0]
	assert.Equal(t, 3, first.Count)
	assert.Equal(t, engagement.ReactionClapping, first.Type)
	assert.Equal(t, engagement.ContentPost, first.ContentType)

	a.AddReaction(engagement.ReactionClapping, "")
	mock.Add(DefaultDebounce)
	require.Eventually(t, func() bool { return len(api.reactionCalls()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, api.reactionCalls()[1].Count)

	time.Sleep(settle)
	assert.Len(t, api.reactionCalls(), 2)
}

func TestReactionTypesBatchIndependently(t *testing.T) {
	api := &fakeAPI{}
	a, mock := newTestAggregator(api, false)
	defer a.Dispose()

	a.AddReaction(engagement.ReactionClapping, "intro")
	a.AddReaction(engagement.ReactionThinking, "")
	a.AddReaction(engagement.ReactionClapping, "timers")
	mock.Add(DefaultDebounce)

	require.Eventually(t, func() bool { return len(api.reactionCalls()) == 2 }, time.Second, 5*time.Millisecond)
	byType := map[engagement.ReactionType]engagement.ReactionRequest{}
	for _, r := range api.reactionCalls() {
		byType[r.Type] = r
	}
	assert.Equal(t, 2, byType[engagement.ReactionClapping].Count)
	assert.Equal(t, "timers", byType[engagement.ReactionClapping].Section, "last section wins")
	assert.Equal(t, 1, byType[engagement.ReactionThinking].Count)
}

func TestFullBatchIsWrittenWithoutWaiting(t *testing.T) {
	api := &fakeAPI{}
	a, mock := newTestAggregator(api, false)
	defer a.Dispose()

	for i := 0; i < engagement.MaxBatchCount+5; i++ {
		a.AddReaction(engagement.ReactionClapping, "intro")
	}
	require.Eventually(t, func() bool { return len(api.reactionCalls()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, engagement.MaxBatchCount, api.reactionCalls()[0].Count)
	assert.Equal(t, "intro", api.reactionCalls()[0].Section)

	mock.Add(DefaultDebounce)
	require.Eventually(t, func() bool { return len(api.reactionCalls()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 5, api.reactionCalls()[1].Count)
	assert.Equal(t, engagement.MaxBatchCount+5, a.Data().Meta.ReactionsDetail.Clapping)
}

func TestDefaultMountCountsView(t *testing.T) {
	api := &fakeAPI{detail: &engagement.ContentDetail{}}
	a := New(api, Options{Slug: "hello", ContentType: engagement.ContentPost}, WithLogger(quietLogger()))
	defer a.Dispose()

	require.NoError(t, a.Mount(context.Background()))
	a.Wait()
	views, _ := api.counts()
	assert.Equal(t, 1, views)
}

func TestWaitTracksWritesStartedWhileWaiting(t *testing.T) {
	api := &fakeAPI{}
	a, mock := newTestAggregator(api, false)
	defer a.Dispose()

	a.AddReaction(engagement.ReactionAmazed, "")
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Wait()
		}()
	}
	mock.Add(DefaultDebounce)
	a.AddShare(engagement.ShareOthers)
	wg.Wait()
	a.Wait()

	require.Eventually(t, func() bool { return len(api.reactionCalls()) == 1 }, time.Second, 5*time.Millisecond)
	_, shares := api.counts()
	assert.Equal(t, 1, shares)
}

func TestDisposeCancelsPendingWrites(t *testing.T) {
	api := &fakeAPI{}
	a, mock := newTestAggregator(api, false)

	a.AddReaction(engagement.ReactionAmazed, "")
	a.AddReaction(engagement.ReactionThinking, "")
	a.Dispose()
	mock.Add(time.Minute)

	require.Never(t, func() bool { return len(api.reactionCalls()) > 0 }, settle, 5*time.Millisecond)

	a.AddReaction(engagement.ReactionAmazed, "")
	a.AddShare(engagement.ShareClipboard)
	mock.Add(time.Minute)
	a.Wait()
	_, shares := api.counts()
	assert.Zero(t, shares)
	assert.Empty(t, api.reactionCalls())
}

func TestOptimisticUpdates(t *testing.T) {
	api := &fakeAPI{}
	a, _ := newTestAggregator(api, false)
	defer a.Dispose()

	a.AddShare(engagement.ShareTwitter)
	assert.Equal(t, 1, a.Data().Meta.Shares, "share is visible before the write returns")

	a.AddReaction(engagement.ReactionClapping, "")
	a.AddReaction(engagement.ReactionClapping, "")
	data := a.Data()
	assert.Equal(t, 2, data.Meta.Reactions)
	assert.Equal(t, 2, data.Meta.ReactionsDetail.Clapping)
	assert.Equal(t, 2, data.MetaUser.ReactionsDetail.Clapping)

	a.Wait()
	_, shares := api.counts()
	assert.Equal(t, 1, shares)
}

func TestFailedWritesAreNotRolledBack(t *testing.T) {
	api := &fakeAPI{writeErr: errors.New("offline")}
	a, mock := newTestAggregator(api, false)
	defer a.Dispose()

	a.AddShare(engagement.ShareLinkedIn)
	a.AddReaction(engagement.ReactionThinking, "")
	mock.Add(DefaultDebounce)
	require.Eventually(t, func() bool { return len(api.reactionCalls()) == 1 }, time.Second, 5*time.Millisecond)
	a.Wait()

	data := a.Data()
	assert.Equal(t, 1, data.Meta.Shares)
	assert.Equal(t, 1, data.Meta.ReactionsDetail.Thinking)

	a.AddReaction(engagement.ReactionThinking, "")
	mock.Add(DefaultDebounce)
	require.Eventually(t, func() bool { return len(api.reactionCalls()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, api.reactionCalls()[1].Count, "a failed batch is not retried")
}

func TestMountLoadsAndCountsView(t *testing.T) {
	api := &fakeAPI{detail: &engagement.ContentDetail{
		Meta: engagement.Meta{Views: 41, Reactions: 2, ReactionsDetail: engagement.ReactionsDetail{Amazed: 2}},
	}}
	a, _ := newTestAggregator(api, true)
	defer a.Dispose()

	status, _ := a.Status()
	assert.Equal(t, Idle, status)
	assert.NotNil(t, a.Data().MetaSection, "initial value has an empty section map")

	require.NoError(t, a.Mount(context.Background()))
	a.Wait()

	status, err := a.Status()
	assert.Equal(t, Ready, status)
	assert.NoError(t, err)
	assert.False(t, a.IsLoading())
	assert.Equal(t, 41, a.Data().Meta.Views)
	assert.NotNil(t, a.Data().MetaSection)
	views, _ := api.counts()
	assert.Equal(t, 1, views)
}

func TestMountWithoutViewCounting(t *testing.T) {
	api := &fakeAPI{detail: &engagement.ContentDetail{}}
	a, _ := newTestAggregator(api, false)
	defer a.Dispose()

	require.NoError(t, a.Mount(context.Background()))
	a.Wait()
	views, _ := api.counts()
	assert.Zero(t, views)
}

func TestLoadFailureKeepsData(t *testing.T) {
	api := &fakeAPI{detailErr: &NetworkError{Op: "detail", StatusCode: 500, Message: "boom"}}
	a, _ := newTestAggregator(api, false)
	defer a.Dispose()

	a.AddShare(engagement.ShareOthers)
	err := a.Load(context.Background())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 500, netErr.StatusCode)

	status, statusErr := a.Status()
	assert.Equal(t, Error, status)
	assert.Equal(t, err, statusErr)
	assert.Equal(t, 1, a.Data().Meta.Shares)
}

func TestDataIsACopy(t *testing.T) {
	api := &fakeAPI{detail: &engagement.ContentDetail{
		MetaSection: map[string]engagement.SectionMeta{"intro": {}},
	}}
	a, _ := newTestAggregator(api, false)
	defer a.Dispose()
	require.NoError(t, a.Load(context.Background()))

	data := a.Data()
	delete(data.MetaSection, "intro")
	assert.Contains(t, a.Data().MetaSection, "intro")
}
